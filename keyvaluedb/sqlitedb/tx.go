package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/keyvaluedb"
)

var errTxClosed = errors.New("tx closed")

type Tx struct {
	tx  *sql.Tx
	enc EncodeFn
	dec DecodeFn
}

func (t *Tx) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	if t.tx == nil {
		return false, errTxClosed
	}
	return read(t.tx, t.dec, key, v)
}

func (t *Tx) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	if t.tx == nil {
		return errTxClosed
	}
	return write(t.tx, t.enc, key, v)
}

func (t *Tx) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	if t.tx == nil {
		return errTxClosed
	}
	if _, err := t.tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite tx delete failed, %w", err)
	}
	return nil
}

func (t *Tx) Commit() error {
	if t.tx == nil {
		return errTxClosed
	}
	tx := t.tx
	t.tx = nil
	return tx.Commit()
}

func (t *Tx) Rollback() error {
	if t.tx == nil {
		return errTxClosed
	}
	tx := t.tx
	t.tx = nil
	return tx.Rollback()
}
