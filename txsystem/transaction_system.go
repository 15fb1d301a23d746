package txsystem

import (
	"io"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

// TransactionSystem executes transaction orders against the state, one
// order at a time. Every successfully executed order is committed as a round
// of its own.
type TransactionSystem interface {
	// Execute validates and executes the order. On error the state is left
	// unchanged, on success the record of the committed round is returned.
	Execute(tx *types.TransactionOrder) (*types.TransactionRecord, error)

	// ExecuteOrder is Execute which also returns the IDs of all the units
	// changed by the order, the executed order records included.
	ExecuteOrder(tx *types.TransactionOrder) (*types.TransactionRecord, []types.UnitID, error)

	// State returns a snapshot of the committed state.
	State() *state.State

	// CommittedRound returns the number of the latest committed round.
	CommittedRound() uint64

	SerializeState(writer io.Writer) error
}
