package surety

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/flightsurety/flightsurety/txsystem/registry"
	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
	"github.com/flightsurety/flightsurety/types"
)

var _ txtypes.Module = (*Module)(nil)

// DataStore is the data holding component the airline registry is built on.
// The privileged mutators take the identity of the calling component as the
// first argument.
type DataStore interface {
	Authorize(caller types.Address) error

	Airline(airline types.Address) (*registry.AirlineData, error)
	RegisteredCount() (uint64, error)
	Votes(candidate types.Address) (*registry.VoteData, error)
	Flight(airline types.Address, code string, timestamp uint64) (*registry.FlightData, error)

	AdmitAirline(caller, airline types.Address, round uint64) error
	FundAirline(caller, airline types.Address, amount *uint256.Int) error
	AddVote(caller, candidate, voter types.Address) (int, error)
	ClearVotes(caller, candidate types.Address) error
	AddFlight(caller, airline types.Address, code string, timestamp, round uint64) (*registry.FlightData, error)
}

/*
Module implements the airline registry: admission of airlines (immediate for
the bootstrap airlines, by votes of the registered airlines after that),
funding and registration of flights.
*/
type Module struct {
	store        DataStore
	app          types.Address
	minimumStake *uint256.Int
}

func NewModule(store DataStore, options *Options) (*Module, error) {
	if store == nil {
		return nil, errors.New("data store is nil")
	}
	if options == nil {
		return nil, errors.New("surety module options are missing")
	}
	if options.app == (types.Address{}) {
		return nil, errors.New("application identity is missing")
	}
	if options.minimumStake == nil || options.minimumStake.IsZero() {
		return nil, errors.New("minimum stake must be greater than zero")
	}
	return &Module{
		store:        store,
		app:          options.app,
		minimumStake: options.minimumStake.Clone(),
	}, nil
}

func (m *Module) TxHandlers() map[string]txtypes.TxExecutor {
	return map[string]txtypes.TxExecutor{
		TransactionTypeRegisterAirline: txtypes.NewTxHandler[AirlineAttributes](m.validateRegisterAirlineTx, m.executeRegisterAirlineTx),
		TransactionTypeApproveAirline:  txtypes.NewTxHandler[AirlineAttributes](m.validateApproveAirlineTx, m.executeApproveAirlineTx),
		TransactionTypeFund:            txtypes.NewTxHandler[FundAttributes](m.validateFundTx, m.executeFundTx),
		TransactionTypeRegisterFlight:  txtypes.NewTxHandler[RegisterFlightAttributes](m.validateRegisterFlightTx, m.executeRegisterFlightTx),
	}
}

// checkFundedAirline verifies that the airline is registered and funded.
func (m *Module) checkFundedAirline(airline types.Address) error {
	ad, err := m.store.Airline(airline)
	if err != nil {
		return fmt.Errorf("reading airline: %w", err)
	}
	if !ad.Registered || !ad.Funded {
		return fmt.Errorf("airline %s: %w", airline, types.ErrCallerNotFundedAirline)
	}
	return nil
}

// checkCandidate verifies that the candidate is not registered yet.
func (m *Module) checkCandidate(candidate types.Address) error {
	if candidate == (types.Address{}) {
		return errors.New("airline address is missing")
	}
	ad, err := m.store.Airline(candidate)
	if err != nil {
		return fmt.Errorf("reading airline: %w", err)
	}
	if ad.Registered {
		return fmt.Errorf("airline %s: %w", candidate, types.ErrAirlineAlreadyRegistered)
	}
	return nil
}

func (m *Module) checkNotVoted(voter, candidate types.Address) error {
	votes, err := m.store.Votes(candidate)
	if err != nil {
		return fmt.Errorf("reading votes: %w", err)
	}
	return votes.CheckVote(voter, candidate)
}

func newServerMetadata(details any, targets ...types.UnitID) (*types.ServerMetadata, error) {
	sm := &types.ServerMetadata{
		TargetUnits:      targets,
		SuccessIndicator: types.TxStatusSuccessful,
	}
	if details != nil {
		b, err := types.Cbor.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tx processing result: %w", err)
		}
		sm.ProcessingDetails = b
	}
	return sm, nil
}
