package surety

import (
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
	"github.com/flightsurety/flightsurety/types"
)

const maxFlightCodeLength = 32

func (m *Module) executeRegisterFlightTx(tx *types.TransactionOrder, attr *RegisterFlightAttributes, exeCtx txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	flight, err := m.store.AddFlight(m.app, tx.Sender(), attr.Code, attr.Timestamp, exeCtx.CurrentRound())
	if err != nil {
		return nil, fmt.Errorf("adding flight: %w", err)
	}
	id := registry.NewFlightID(tx.Sender(), attr.Code, attr.Timestamp)
	return newServerMetadata(&FlightResult{FlightID: id, Seq: flight.Seq}, id, registry.GovernanceID)
}

func (m *Module) validateRegisterFlightTx(tx *types.TransactionOrder, attr *RegisterFlightAttributes, _ txtypes.ExecutionContext) error {
	if err := m.store.Authorize(m.app); err != nil {
		return err
	}
	if err := m.checkFundedAirline(tx.Sender()); err != nil {
		return err
	}
	if attr.Code == "" {
		return errors.New("flight code is missing")
	}
	if len(attr.Code) > maxFlightCodeLength {
		return fmt.Errorf("flight code is %d bytes, max %d bytes allowed", len(attr.Code), maxFlightCodeLength)
	}
	_, err := m.store.Flight(tx.Sender(), attr.Code, attr.Timestamp)
	switch {
	case err == nil:
		return fmt.Errorf("flight %s %d: %w", attr.Code, attr.Timestamp, types.ErrDuplicateFlight)
	case !errors.Is(err, state.ErrUnitNotFound):
		return fmt.Errorf("reading flight: %w", err)
	}
	return nil
}
