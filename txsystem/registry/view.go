package registry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

/*
View is a read-only view of the committed registry. Create it over a state
snapshot (state.State.Clone) to get reads which are consistent with each
other while orders keep being executed.
*/
type View struct {
	reader
}

func NewView(s *state.State) *View {
	return &View{reader: reader{state: s, committed: true}}
}

// Round returns the number of the round the view reflects.
func (v *View) Round() uint64 {
	return v.state.CommittedRound()
}

// Airlines returns the addresses of the registered airlines.
func (v *View) Airlines() ([]types.Address, error) {
	var airlines []types.Address
	err := v.traverse(AirlineUnitType, func(id types.UnitID, u *state.Unit) error {
		if ad, ok := u.Data().(*AirlineData); ok && ad.Registered {
			airlines = append(airlines, types.BytesToAddress(id.Key()))
		}
		return nil
	})
	return airlines, err
}

// Flights returns all flights in the order they were registered.
func (v *View) Flights() ([]*FlightData, error) {
	var flights []*FlightData
	err := v.traverse(FlightUnitType, func(id types.UnitID, u *state.Unit) error {
		fd, ok := u.Data().(*FlightData)
		if !ok {
			return fmt.Errorf("unit %s contains %T, expected %T", id, u.Data(), fd)
		}
		flights = append(flights, fd)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(flights, func(a, b *FlightData) int { return cmp.Compare(a.Seq, b.Seq) })
	return flights, nil
}

func (v *View) traverse(unitType byte, fn func(id types.UnitID, u *state.Unit) error) error {
	return v.state.Traverse(func(id types.UnitID, u *state.Unit) error {
		if !id.HasType(unitType) {
			return nil
		}
		return fn(id, u)
	})
}
