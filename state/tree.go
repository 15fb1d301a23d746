package state

import (
	"errors"
	"fmt"

	"github.com/google/btree"

	"github.com/flightsurety/flightsurety/types"
)

var (
	ErrUnitNotFound = errors.New("unit not found")
	ErrUnitExists   = errors.New("unit already exists")
)

type (
	unitItem struct {
		id   types.UnitID
		unit *Unit
	}

	// tree is a copy-on-write ordered index of units. Cloning is cheap, the
	// clone and the original share nodes until either of them is modified.
	tree struct {
		bt *btree.BTreeG[unitItem]
	}
)

func lessUnitItem(a, b unitItem) bool {
	return a.id.Compare(b.id) < 0
}

func newTree(degree int) *tree {
	return &tree{bt: btree.NewG[unitItem](degree, lessUnitItem)}
}

func (t *tree) Add(id types.UnitID, u *Unit) error {
	if _, found := t.bt.Get(unitItem{id: id}); found {
		return fmt.Errorf("unit %s: %w", id, ErrUnitExists)
	}
	t.bt.ReplaceOrInsert(unitItem{id: id, unit: u})
	return nil
}

func (t *tree) Get(id types.UnitID) (*Unit, error) {
	item, found := t.bt.Get(unitItem{id: id})
	if !found {
		return nil, fmt.Errorf("unit %s: %w", id, ErrUnitNotFound)
	}
	return item.unit, nil
}

func (t *tree) Update(id types.UnitID, u *Unit) error {
	if _, found := t.bt.Get(unitItem{id: id}); !found {
		return fmt.Errorf("unit %s: %w", id, ErrUnitNotFound)
	}
	t.bt.ReplaceOrInsert(unitItem{id: id, unit: u})
	return nil
}

func (t *tree) Delete(id types.UnitID) error {
	if _, found := t.bt.Delete(unitItem{id: id}); !found {
		return fmt.Errorf("unit %s: %w", id, ErrUnitNotFound)
	}
	return nil
}

func (t *tree) Clone() *tree {
	return &tree{bt: t.bt.Clone()}
}

func (t *tree) Len() int {
	return t.bt.Len()
}

// Ascend calls fn for every unit in ascending unit ID order until fn returns false.
func (t *tree) Ascend(fn func(id types.UnitID, u *Unit) bool) {
	t.bt.Ascend(func(item unitItem) bool {
		return fn(item.id, item.unit)
	})
}

// AscendRange calls fn for the units in [from, to) in ascending unit ID order until fn returns false.
func (t *tree) AscendRange(from, to types.UnitID, fn func(id types.UnitID, u *Unit) bool) {
	t.bt.AscendRange(unitItem{id: from}, unitItem{id: to}, func(item unitItem) bool {
		return fn(item.id, item.unit)
	})
}
