package registry

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

var (
	ErrStateIsNil   = errors.New("state is nil")
	ErrMissingAdmin = errors.New("administrator address is missing")
)

/*
Store is the data holding component of the registry.

The administrator (fixed at construction) switches the operational gate and
maintains the list of callers authorized to use the privileged mutators.
Every mutator other than SetOperatingStatus fails with types.ErrNotOperational
while the gate is closed and the privileged mutators fail with
types.ErrCallerNotAuthorized for callers not on the list.

Reads see the changes made by the order being executed, use View for reads of
the committed registry.
*/
type Store struct {
	reader
	admin types.Address
}

func NewStore(s *state.State, admin types.Address) (*Store, error) {
	if s == nil {
		return nil, ErrStateIsNil
	}
	if admin == (types.Address{}) {
		return nil, ErrMissingAdmin
	}
	return &Store{
		reader: reader{state: s},
		admin:  admin,
	}, nil
}

func (s *Store) Admin() types.Address { return s.admin }

/*
Genesis creates the initial registry: operational, with the first airline
registered but not funded, and with the given callers authorized.
*/
func (s *Store) Genesis(firstAirline types.Address, authorized ...types.Address) error {
	if firstAirline == (types.Address{}) {
		return errors.New("first airline address is missing")
	}
	actions := []state.Action{
		state.AddUnit(GovernanceID, &GovernanceData{Operational: true, RegisteredCount: 1}),
		state.AddUnit(NewAirlineID(firstAirline), &AirlineData{Registered: true}),
	}
	for _, caller := range authorized {
		actions = append(actions, setAuthorization(caller, true))
	}
	if err := s.state.Apply(actions...); err != nil {
		return fmt.Errorf("creating genesis units: %w", err)
	}
	return nil
}

// SetOperatingStatus opens or closes the operational gate. It is not subject to the gate itself.
func (s *Store) SetOperatingStatus(caller types.Address, operational bool) error {
	if caller != s.admin {
		return fmt.Errorf("caller %s: %w", caller, types.ErrUnauthorized)
	}
	return s.state.Apply(state.UpdateUnitData(GovernanceID, func(data state.UnitData) (state.UnitData, error) {
		gd, ok := data.(*GovernanceData)
		if !ok {
			return nil, fmt.Errorf("unit %s does not contain governance data", GovernanceID)
		}
		gd.Operational = operational
		return gd, nil
	}))
}

func (s *Store) AuthorizeCaller(caller, target types.Address) error {
	return s.setCallerAuthorization(caller, target, true)
}

func (s *Store) DeauthorizeCaller(caller, target types.Address) error {
	return s.setCallerAuthorization(caller, target, false)
}

func (s *Store) setCallerAuthorization(caller, target types.Address, authorized bool) error {
	if err := s.CheckAdmin(caller); err != nil {
		return err
	}
	return s.state.Apply(setAuthorization(target, authorized))
}

// CheckAdmin verifies that the gate is open and the caller is the administrator.
func (s *Store) CheckAdmin(caller types.Address) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	if caller != s.admin {
		return fmt.Errorf("caller %s: %w", caller, types.ErrUnauthorized)
	}
	return nil
}

// Authorize verifies that the gate is open and the caller may use the privileged mutators.
func (s *Store) Authorize(caller types.Address) error {
	if err := s.checkOperational(); err != nil {
		return err
	}
	ok, err := s.IsCallerAuthorized(caller)
	if err != nil {
		return fmt.Errorf("reading caller authorization: %w", err)
	}
	if !ok {
		return fmt.Errorf("caller %s: %w", caller, types.ErrCallerNotAuthorized)
	}
	return nil
}

func (s *Store) checkOperational() error {
	ok, err := s.IsOperational()
	if err != nil {
		return err
	}
	if !ok {
		return types.ErrNotOperational
	}
	return nil
}

// AdmitAirline registers the airline and increments the registered airline count.
func (s *Store) AdmitAirline(caller, airline types.Address, round uint64) error {
	if err := s.Authorize(caller); err != nil {
		return err
	}
	return s.state.Apply(
		state.UpsertUnitData(NewAirlineID(airline), &AirlineData{}, func(data state.UnitData) (state.UnitData, error) {
			ad, ok := data.(*AirlineData)
			if !ok {
				return nil, fmt.Errorf("unit %s does not contain airline data", NewAirlineID(airline))
			}
			if ad.Registered {
				return nil, fmt.Errorf("airline %s: %w", airline, types.ErrAirlineAlreadyRegistered)
			}
			ad.Registered = true
			ad.RegisteredRound = round
			return ad, nil
		}),
		updateGovernance(func(gd *GovernanceData) error {
			gd.RegisteredCount++
			return nil
		}),
	)
}

// FundAirline marks the registered airline funded and adds the amount to its stake.
func (s *Store) FundAirline(caller, airline types.Address, amount *uint256.Int) error {
	if err := s.Authorize(caller); err != nil {
		return err
	}
	if ok, err := s.IsAirlineRegistered(airline); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("airline %s: %w", airline, types.ErrCallerNotAirline)
	}
	return s.state.Apply(state.UpdateUnitData(NewAirlineID(airline), func(data state.UnitData) (state.UnitData, error) {
		ad, ok := data.(*AirlineData)
		if !ok {
			return nil, fmt.Errorf("unit %s does not contain airline data", NewAirlineID(airline))
		}
		stake, overflow := new(uint256.Int).AddOverflow(ad.StakeAmount(), amount)
		if overflow {
			return nil, errors.New("stake overflows 256 bits")
		}
		ad.Funded = true
		ad.Stake = types.AmountToBytes(stake)
		return ad, nil
	}))
}

// AddVote appends the voter to the voters of the candidate and returns the
// number of votes the candidate has.
func (s *Store) AddVote(caller, candidate, voter types.Address) (int, error) {
	if err := s.Authorize(caller); err != nil {
		return 0, err
	}
	votes := 0
	err := s.state.Apply(state.UpsertUnitData(NewVoteID(candidate), &VoteData{}, func(data state.UnitData) (state.UnitData, error) {
		vd, ok := data.(*VoteData)
		if !ok {
			return nil, fmt.Errorf("unit %s does not contain vote data", NewVoteID(candidate))
		}
		if err := vd.CheckVote(voter, candidate); err != nil {
			return nil, err
		}
		vd.Voters = append(vd.Voters, voter)
		votes = len(vd.Voters)
		return vd, nil
	}))
	if err != nil {
		return 0, err
	}
	return votes, nil
}

// ClearVotes deletes the vote record of the candidate.
func (s *Store) ClearVotes(caller, candidate types.Address) error {
	if err := s.Authorize(caller); err != nil {
		return err
	}
	return s.state.Apply(state.DeleteUnit(NewVoteID(candidate)))
}

// AddFlight registers the flight with unknown status and the next insertion sequence number.
func (s *Store) AddFlight(caller, airline types.Address, code string, timestamp, round uint64) (*FlightData, error) {
	if err := s.Authorize(caller); err != nil {
		return nil, err
	}
	seq, err := s.FlightCount()
	if err != nil {
		return nil, err
	}
	flight := &FlightData{
		Airline:         airline,
		Code:            code,
		Timestamp:       timestamp,
		Status:          types.FlightStatusUnknown,
		Seq:             seq,
		RegisteredRound: round,
	}
	id := NewFlightID(airline, code, timestamp)
	if _, err := s.state.GetUnit(id, false); err == nil {
		return nil, fmt.Errorf("flight %s %d of %s: %w", code, timestamp, airline, types.ErrDuplicateFlight)
	}
	err = s.state.Apply(
		state.AddUnit(id, flight),
		updateGovernance(func(gd *GovernanceData) error {
			gd.FlightCount++
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return flight, nil
}

func updateGovernance(f func(gd *GovernanceData) error) state.Action {
	return state.UpdateUnitData(GovernanceID, func(data state.UnitData) (state.UnitData, error) {
		gd, ok := data.(*GovernanceData)
		if !ok {
			return nil, fmt.Errorf("unit %s does not contain governance data", GovernanceID)
		}
		if err := f(gd); err != nil {
			return nil, err
		}
		return gd, nil
	})
}

func setAuthorization(caller types.Address, authorized bool) state.Action {
	return state.UpsertUnitData(NewAuthorizationID(caller), &AuthorizationData{}, func(data state.UnitData) (state.UnitData, error) {
		ad, ok := data.(*AuthorizationData)
		if !ok {
			return nil, fmt.Errorf("unit %s does not contain authorization data", NewAuthorizationID(caller))
		}
		ad.Authorized = authorized
		return ad, nil
	})
}
