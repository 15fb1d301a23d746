package registry

import (
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

// reader implements the pure reads of the registry, either over the
// committed units or over the units modified by the order being executed.
type reader struct {
	state     *state.State
	committed bool
}

func unitData[T state.UnitData](s *state.State, id types.UnitID, committed bool) (T, error) {
	var zero T
	u, err := s.GetUnit(id, committed)
	if err != nil {
		return zero, err
	}
	d, ok := u.Data().(T)
	if !ok {
		return zero, fmt.Errorf("unit %s contains %T, expected %T", id, u.Data(), zero)
	}
	return d, nil
}

func (r reader) governance() (*GovernanceData, error) {
	gd, err := unitData[*GovernanceData](r.state, GovernanceID, r.committed)
	if err != nil {
		return nil, fmt.Errorf("reading governance unit: %w", err)
	}
	return gd, nil
}

func (r reader) IsOperational() (bool, error) {
	gd, err := r.governance()
	if err != nil {
		return false, err
	}
	return gd.Operational, nil
}

func (r reader) RegisteredCount() (uint64, error) {
	gd, err := r.governance()
	if err != nil {
		return 0, err
	}
	return gd.RegisteredCount, nil
}

func (r reader) FlightCount() (uint64, error) {
	gd, err := r.governance()
	if err != nil {
		return 0, err
	}
	return gd.FlightCount, nil
}

func (r reader) IsCallerAuthorized(caller types.Address) (bool, error) {
	ad, err := unitData[*AuthorizationData](r.state, NewAuthorizationID(caller), r.committed)
	if err != nil {
		if errors.Is(err, state.ErrUnitNotFound) {
			return false, nil
		}
		return false, err
	}
	return ad.Authorized, nil
}

// Airline returns the airline record, an address which has never been
// admitted or voted for is returned as an empty record.
func (r reader) Airline(airline types.Address) (*AirlineData, error) {
	ad, err := unitData[*AirlineData](r.state, NewAirlineID(airline), r.committed)
	if err != nil {
		if errors.Is(err, state.ErrUnitNotFound) {
			return &AirlineData{}, nil
		}
		return nil, err
	}
	return ad, nil
}

func (r reader) IsAirlineRegistered(airline types.Address) (bool, error) {
	ad, err := r.Airline(airline)
	if err != nil {
		return false, err
	}
	return ad.Registered, nil
}

func (r reader) IsAirlineFunded(airline types.Address) (bool, error) {
	ad, err := r.Airline(airline)
	if err != nil {
		return false, err
	}
	return ad.Funded, nil
}

// Voters returns the airlines which have voted for the candidate, in the order
// the votes were cast.
func (r reader) Voters(candidate types.Address) ([]types.Address, error) {
	vd, err := r.Votes(candidate)
	if err != nil {
		return nil, err
	}
	return vd.Voters, nil
}

// Votes returns the vote record of the candidate, empty when nobody has voted yet.
func (r reader) Votes(candidate types.Address) (*VoteData, error) {
	vd, err := unitData[*VoteData](r.state, NewVoteID(candidate), r.committed)
	if errors.Is(err, state.ErrUnitNotFound) {
		return &VoteData{}, nil
	}
	return vd, err
}

// Flight returns the flight or state.ErrUnitNotFound when the flight is not registered.
func (r reader) Flight(airline types.Address, code string, timestamp uint64) (*FlightData, error) {
	return unitData[*FlightData](r.state, NewFlightID(airline, code, timestamp), r.committed)
}
