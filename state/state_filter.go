package state

import (
	"github.com/flightsurety/flightsurety/types"
)

type (
	// Filter collects IDs of the units accepted by the filter function.
	Filter struct {
		filterFn        func(unitID types.UnitID, unit *Unit) (bool, error)
		filteredUnitIDs []types.UnitID
	}
)

func NewFilter(filterFn func(unitID types.UnitID, unit *Unit) (bool, error)) *Filter {
	return &Filter{filterFn: filterFn}
}

func (s *Filter) Traverse(t *tree) error {
	var err error
	// ascending order so that result is sorted by unit ID
	t.Ascend(func(id types.UnitID, u *Unit) bool {
		var ok bool
		if ok, err = s.filterFn(id, u); err != nil {
			return false
		}
		if ok {
			s.filteredUnitIDs = append(s.filteredUnitIDs, id)
		}
		return true
	})
	return err
}

func (s *Filter) FilteredUnitIDs() []types.UnitID {
	return s.filteredUnitIDs
}
