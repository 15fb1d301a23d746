package memorydb

import (
	"bytes"
	"errors"
	"slices"

	"github.com/google/btree"
)

var errIteratorInvalid = errors.New("iterator invalid")

// Itr walks a snapshot of the db in key order, index -1 marks the exhausted iterator.
type Itr struct {
	entries []entry
	decoder DecodeFn
	index   int
}

func newIterator(items *btree.BTreeG[entry], d DecodeFn) *Itr {
	entries := make([]entry, 0, items.Len())
	items.Ascend(func(e entry) bool {
		entries = append(entries, e)
		return true
	})
	return &Itr{entries: entries, decoder: d, index: -1}
}

func (it *Itr) first() {
	it.moveTo(0)
}

func (it *Itr) last() {
	it.moveTo(len(it.entries) - 1)
}

// seek positions the iterator to the first key which is not less than key.
func (it *Itr) seek(key []byte) {
	idx, _ := slices.BinarySearchFunc(it.entries, key, func(e entry, k []byte) int {
		return bytes.Compare(e.key, k)
	})
	it.moveTo(idx)
}

func (it *Itr) moveTo(idx int) {
	if idx < 0 || idx >= len(it.entries) {
		it.index = -1
		return
	}
	it.index = idx
}

func (it *Itr) Next() {
	if it.Valid() {
		it.moveTo(it.index + 1)
	}
}

func (it *Itr) Prev() {
	if it.Valid() {
		it.moveTo(it.index - 1)
	}
}

func (it *Itr) Valid() bool {
	return it.index >= 0
}

func (it *Itr) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.entries[it.index].key
}

func (it *Itr) Value(v any) error {
	if !it.Valid() {
		return errIteratorInvalid
	}
	return it.decoder(it.entries[it.index].value, v)
}

func (it *Itr) Close() error {
	it.entries = nil
	it.index = -1
	return nil
}
