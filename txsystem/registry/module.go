package registry

import (
	"errors"
	"fmt"

	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
	"github.com/flightsurety/flightsurety/types"
)

var _ txtypes.Module = (*Module)(nil)

// Module handles the administrator transactions of the registry: the
// operational gate and the caller authorization ledger.
type Module struct {
	store *Store
}

func NewModule(store *Store) (*Module, error) {
	if store == nil {
		return nil, errors.New("registry store is nil")
	}
	return &Module{store: store}, nil
}

func (m *Module) TxHandlers() map[string]txtypes.TxExecutor {
	return map[string]txtypes.TxExecutor{
		TransactionTypeSetOperatingStatus: txtypes.NewTxHandler[SetOperatingStatusAttributes](m.validateSetOperatingStatusTx, m.executeSetOperatingStatusTx),
		TransactionTypeAuthorizeCaller:    txtypes.NewTxHandler[CallerAttributes](m.validateCallerTx, m.executeAuthorizeCallerTx),
		TransactionTypeDeauthorizeCaller:  txtypes.NewTxHandler[CallerAttributes](m.validateCallerTx, m.executeDeauthorizeCallerTx),
	}
}

func (m *Module) validateSetOperatingStatusTx(tx *types.TransactionOrder, _ *SetOperatingStatusAttributes, _ txtypes.ExecutionContext) error {
	if tx.Sender() != m.store.Admin() {
		return fmt.Errorf("caller %s: %w", tx.Sender(), types.ErrUnauthorized)
	}
	return nil
}

func (m *Module) executeSetOperatingStatusTx(tx *types.TransactionOrder, attr *SetOperatingStatusAttributes, _ txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	if err := m.store.SetOperatingStatus(tx.Sender(), attr.Operational); err != nil {
		return nil, fmt.Errorf("setting operating status: %w", err)
	}
	return &types.ServerMetadata{
		TargetUnits:      []types.UnitID{GovernanceID},
		SuccessIndicator: types.TxStatusSuccessful,
	}, nil
}

func (m *Module) validateCallerTx(tx *types.TransactionOrder, attr *CallerAttributes, _ txtypes.ExecutionContext) error {
	if err := m.store.CheckAdmin(tx.Sender()); err != nil {
		return err
	}
	if attr.Caller == (types.Address{}) {
		return errors.New("caller address is missing")
	}
	return nil
}

func (m *Module) executeAuthorizeCallerTx(tx *types.TransactionOrder, attr *CallerAttributes, _ txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	if err := m.store.AuthorizeCaller(tx.Sender(), attr.Caller); err != nil {
		return nil, fmt.Errorf("authorizing caller: %w", err)
	}
	return &types.ServerMetadata{
		TargetUnits:      []types.UnitID{NewAuthorizationID(attr.Caller)},
		SuccessIndicator: types.TxStatusSuccessful,
	}, nil
}

func (m *Module) executeDeauthorizeCallerTx(tx *types.TransactionOrder, attr *CallerAttributes, _ txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	if err := m.store.DeauthorizeCaller(tx.Sender(), attr.Caller); err != nil {
		return nil, fmt.Errorf("deauthorizing caller: %w", err)
	}
	return &types.ServerMetadata{
		TargetUnits:      []types.UnitID{NewAuthorizationID(attr.Caller)},
		SuccessIndicator: types.TxStatusSuccessful,
	}, nil
}
