package memorydb

import (
	"bytes"
	"errors"
	"sync"

	"github.com/google/btree"

	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/types"
)

// ErrDiskFull is a convenience error for MockWriteError.
var ErrDiskFull = errors.New("write failed, disk is full")

const degree = 8

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	entry struct {
		key   []byte
		value []byte
	}

	/*
	MemoryDB keeps the encoded values in an ordered B-tree. Iterators and
	transactions work on a copy-on-write clone of the tree so they never
	observe later writes.
	*/
	MemoryDB struct {
		mu       sync.RWMutex
		items    *btree.BTreeG[entry]
		encoder  EncodeFn
		decoder  DecodeFn
		writeErr error
	}
)

func lessEntry(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// New creates a new key value db that is held in memory, values are CBOR encoded.
func New() *MemoryDB {
	return &MemoryDB{
		items:   btree.NewG(degree, lessEntry),
		encoder: types.Cbor.Marshal,
		decoder: types.Cbor.Unmarshal,
	}
}

// Empty returns true if no values are stored in db
func (db *MemoryDB) Empty() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.items.Len() == 0
}

func (db *MemoryDB) Read(key []byte, value any) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return read(db.items, db.decoder, key, value)
}

func (db *MemoryDB) Write(key []byte, value any) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.write(db.items, key, value)
}

func (db *MemoryDB) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.items.Delete(entry{key: key})
	return nil
}

func (db *MemoryDB) First() keyvaluedb.Iterator {
	it := db.iterator()
	it.first()
	return it
}

func (db *MemoryDB) Last() keyvaluedb.Iterator {
	it := db.iterator()
	it.last()
	return it
}

func (db *MemoryDB) Find(key []byte) keyvaluedb.Iterator {
	it := db.iterator()
	it.seek(key)
	return it
}

func (db *MemoryDB) StartTx() (keyvaluedb.DBTransaction, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return &Tx{mem: db, items: db.items.Clone()}, nil
}

func (db *MemoryDB) Close() error {
	return nil
}

// MockWriteError makes all the following writes fail with given error,
// nil restores normal behavior. Used to test disk full scenarios.
func (db *MemoryDB) MockWriteError(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.writeErr = err
}

func (db *MemoryDB) iterator() *Itr {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return newIterator(db.items.Clone(), db.decoder)
}

// write must be called while holding the write lock.
func (db *MemoryDB) write(items *btree.BTreeG[entry], key []byte, value any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, value); err != nil {
		return err
	}
	b, err := db.encoder(value)
	if err != nil {
		return err
	}
	if db.writeErr != nil {
		return db.writeErr
	}
	items.ReplaceOrInsert(entry{key: bytes.Clone(key), value: b})
	return nil
}

func read(items *btree.BTreeG[entry], decode DecodeFn, key []byte, value any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, value); err != nil {
		return false, err
	}
	e, found := items.Get(entry{key: key})
	if !found {
		return false, nil
	}
	return true, decode(e.value, value)
}
