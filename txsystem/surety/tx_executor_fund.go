package surety

import (
	"fmt"

	"github.com/flightsurety/flightsurety/txsystem/registry"
	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
	"github.com/flightsurety/flightsurety/types"
)

func (m *Module) executeFundTx(tx *types.TransactionOrder, attr *FundAttributes, _ txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	amount, err := types.BytesToAmount(attr.Amount)
	if err != nil {
		return nil, err
	}
	if err := m.store.FundAirline(m.app, tx.Sender(), amount); err != nil {
		return nil, fmt.Errorf("funding airline: %w", err)
	}
	return newServerMetadata(nil, registry.NewAirlineID(tx.Sender()))
}

func (m *Module) validateFundTx(tx *types.TransactionOrder, attr *FundAttributes, _ txtypes.ExecutionContext) error {
	if err := m.store.Authorize(m.app); err != nil {
		return err
	}
	ad, err := m.store.Airline(tx.Sender())
	if err != nil {
		return fmt.Errorf("reading airline: %w", err)
	}
	if !ad.Registered {
		return fmt.Errorf("airline %s: %w", tx.Sender(), types.ErrCallerNotAirline)
	}
	amount, err := types.BytesToAmount(attr.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if amount.Lt(m.minimumStake) {
		return fmt.Errorf("amount %s, minimum %s: %w", amount.Dec(), m.minimumStake.Dec(), types.ErrInsufficientStake)
	}
	return nil
}
