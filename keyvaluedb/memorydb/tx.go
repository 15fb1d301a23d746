package memorydb

import (
	"errors"

	"github.com/google/btree"

	"github.com/flightsurety/flightsurety/keyvaluedb"
)

var errTxClosed = errors.New("tx closed")

// Tx works on a clone of the db tree, Commit makes the clone the content of the db.
type Tx struct {
	mem   *MemoryDB
	items *btree.BTreeG[entry]
}

func (t *Tx) Read(key []byte, v any) (bool, error) {
	t.mem.mu.RLock()
	defer t.mem.mu.RUnlock()
	if t.items == nil {
		return false, errTxClosed
	}
	return read(t.items, t.mem.decoder, key, v)
}

func (t *Tx) Write(key []byte, value any) error {
	t.mem.mu.Lock()
	defer t.mem.mu.Unlock()
	if t.items == nil {
		return errTxClosed
	}
	return t.mem.write(t.items, key, value)
}

func (t *Tx) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	t.mem.mu.Lock()
	defer t.mem.mu.Unlock()
	if t.items == nil {
		return errTxClosed
	}
	t.items.Delete(entry{key: key})
	return nil
}

func (t *Tx) Rollback() error {
	t.mem.mu.Lock()
	defer t.mem.mu.Unlock()
	t.items = nil
	return nil
}

func (t *Tx) Commit() error {
	t.mem.mu.Lock()
	defer t.mem.mu.Unlock()
	if t.items == nil {
		return errTxClosed
	}
	t.mem.items = t.items
	t.items = nil
	return nil
}
