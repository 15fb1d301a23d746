package sqlitedb

import (
	"bytes"
	"database/sql"
	"errors"
)

// Itr iterates over a snapshot of the table taken when the iterator was created.
type Itr struct {
	keys    [][]byte
	values  [][]byte
	decoder DecodeFn
	index   int
}

func newIterator(db *sql.DB, d DecodeFn) *Itr {
	it := &Itr{index: -1, decoder: d}
	rows, err := db.Query(`SELECT key, value FROM kv ORDER BY key`)
	if err != nil {
		return it
	}
	defer rows.Close()
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return &Itr{index: -1}
		}
		it.keys = append(it.keys, k)
		it.values = append(it.values, v)
	}
	if rows.Err() != nil {
		return &Itr{index: -1}
	}
	return it
}

func (it *Itr) first() {
	if len(it.keys) > 0 {
		it.index = 0
	}
}

func (it *Itr) last() {
	it.index = len(it.keys) - 1
}

func (it *Itr) seek(key []byte) {
	it.index = -1
	for i, k := range it.keys {
		if bytes.Compare(k, key) >= 0 {
			it.index = i
			return
		}
	}
}

func (it *Itr) Next() {
	if !it.Valid() {
		return
	}
	it.index++
	if it.index >= len(it.keys) {
		it.index = -1
	}
}

func (it *Itr) Prev() {
	if !it.Valid() {
		return
	}
	it.index--
}

func (it *Itr) Valid() bool {
	return it.index >= 0
}

func (it *Itr) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.keys[it.index]
}

func (it *Itr) Value(v any) error {
	if !it.Valid() {
		return errors.New("iterator invalid")
	}
	return it.decoder(it.values[it.index], v)
}

func (it *Itr) Close() error {
	it.keys, it.values, it.index = nil, nil, -1
	return nil
}
