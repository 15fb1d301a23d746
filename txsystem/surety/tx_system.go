package surety

import (
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
)

/*
NewTxSystem creates the transaction system of the registry: the administrator
module of the data store and the airline registry module on top of it.
*/
func NewTxSystem(observe txsystem.Observability, opts ...Option) (*txsystem.GenericTxSystem, error) {
	options := defaultOptions()
	for _, option := range opts {
		option(options)
	}
	if options.state == nil {
		return nil, errors.New("state is nil")
	}
	store, err := registry.NewStore(options.state, options.admin)
	if err != nil {
		return nil, fmt.Errorf("creating registry store: %w", err)
	}
	adminModule, err := registry.NewModule(store)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry module: %w", err)
	}
	module, err := NewModule(store, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load surety module: %w", err)
	}
	return txsystem.NewGenericTxSystem(
		[]txtypes.Module{adminModule, module},
		observe,
		txsystem.WithHashAlgorithm(options.hashAlgorithm),
		txsystem.WithState(options.state),
		txsystem.WithMaxTimeout(options.maxTimeout),
	)
}
