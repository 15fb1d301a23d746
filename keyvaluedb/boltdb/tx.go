package boltdb

import (
	"errors"

	bolt "go.etcd.io/bbolt"
)

var errTxClosed = errors.New("tx closed")

// Tx is a read-write bolt transaction, bolt allows one of them at a time.
type Tx struct {
	tx  *bolt.Tx
	b   *bolt.Bucket
	enc EncodeFn
	dec DecodeFn
}

func NewBoltTx(db *bolt.DB, bucket []byte, e EncodeFn, d DecodeFn) (*Tx, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	tx, err := db.Begin(true)
	if err != nil {
		return nil, err
	}
	b := tx.Bucket(bucket)
	if b == nil {
		return nil, errors.Join(errors.New("bucket does not exist"), tx.Rollback())
	}
	return &Tx{tx: tx, b: b, enc: e, dec: d}, nil
}

func (t *Tx) Read(key []byte, value any) (bool, error) {
	if t.tx == nil {
		return false, errTxClosed
	}
	return get(t.b, t.dec, key, value)
}

func (t *Tx) Write(key []byte, value any) error {
	if t.tx == nil {
		return errTxClosed
	}
	return put(t.b, t.enc, key, value)
}

func (t *Tx) Delete(key []byte) error {
	if t.tx == nil {
		return errTxClosed
	}
	return del(t.b, key)
}

func (t *Tx) Rollback() error {
	tx, err := t.close()
	if err != nil {
		return err
	}
	return tx.Rollback()
}

func (t *Tx) Commit() error {
	tx, err := t.close()
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (t *Tx) close() (*bolt.Tx, error) {
	if t.tx == nil {
		return nil, errTxClosed
	}
	tx := t.tx
	t.tx, t.b = nil, nil
	return tx, nil
}
