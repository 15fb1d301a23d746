package surety

import (
	"fmt"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/types"
)

/*
NewGenesisState creates the state of round 0: the registry is operational,
the first airline is registered (but not funded) and the callers are authorized
to use the data store.
*/
func NewGenesisState(admin, firstAirline types.Address, authorized []types.Address, opts ...state.Option) (*state.State, error) {
	s := state.NewEmptyState(opts...)
	store, err := registry.NewStore(s, admin)
	if err != nil {
		return nil, err
	}
	if err := store.Genesis(firstAirline, authorized...); err != nil {
		return nil, err
	}
	if err := s.Commit(0); err != nil {
		return nil, fmt.Errorf("committing genesis state: %w", err)
	}
	return s, nil
}
