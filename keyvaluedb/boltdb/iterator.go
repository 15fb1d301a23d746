package boltdb

import (
	"errors"

	bolt "go.etcd.io/bbolt"
)

// Itr keeps a read-only bolt transaction open until Close is called.
type Itr struct {
	tx      *bolt.Tx
	cursor  *bolt.Cursor
	key     []byte
	value   []byte
	decoder DecodeFn
}

// newIterator opens a read tx and positions the cursor with move.
func newIterator(db *bolt.DB, d DecodeFn, move func(*bolt.Cursor) ([]byte, []byte)) *Itr {
	tx, err := db.Begin(false)
	if err != nil {
		return &Itr{}
	}
	it := &Itr{
		tx:      tx,
		cursor:  tx.Bucket(registryBucket).Cursor(),
		decoder: d,
	}
	it.key, it.value = move(it.cursor)
	return it
}

func (it *Itr) Next() {
	if it.Valid() {
		it.key, it.value = it.cursor.Next()
	}
}

func (it *Itr) Prev() {
	if it.Valid() {
		it.key, it.value = it.cursor.Prev()
	}
}

func (it *Itr) Valid() bool {
	return it.key != nil
}

func (it *Itr) Key() []byte {
	return it.key
}

func (it *Itr) Value(v any) error {
	if !it.Valid() {
		return errors.New("iterator invalid")
	}
	return it.decoder(it.value, v)
}

func (it *Itr) Close() error {
	it.key, it.value, it.cursor = nil, nil, nil
	if it.tx == nil {
		return nil
	}
	tx := it.tx
	it.tx = nil
	return tx.Rollback()
}
