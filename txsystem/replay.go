package txsystem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

// ExecutedOrderUnitType is the type of the units which remember executed
// orders until their timeout.
const ExecutedOrderUnitType byte = 0x06

// DefaultMaxTimeout is the default of how many rounds ahead of the current
// round the timeout of an order may be.
const DefaultMaxTimeout uint64 = 1000

// ExecutedOrderData is kept for every executed order until the order expires.
type ExecutedOrderData struct {
	_     struct{} `cbor:",toarray"`
	Round uint64 // round the order was executed in
}

func (d *ExecutedOrderData) Copy() state.UnitData {
	return &ExecutedOrderData{Round: d.Round}
}

/*
NewExecutedOrderID returns the ID of the record of the order with given
timeout and payload hash. The big-endian timeout comes first so the records
are ordered by the round they expire in.
*/
func NewExecutedOrderID(timeout uint64, payloadHash []byte) types.UnitID {
	key := binary.BigEndian.AppendUint64(make([]byte, 0, 8+len(payloadHash)), timeout)
	return types.NewUnitID(ExecutedOrderUnitType, append(key, payloadHash...))
}

// executedOrderID returns the ID of the record of tx.
func (m *GenericTxSystem) executedOrderID(tx *types.TransactionOrder) (types.UnitID, error) {
	h, err := tx.PayloadHash(m.hashAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("hashing payload: %w", err)
	}
	return NewExecutedOrderID(tx.Timeout(), h), nil
}

func (m *GenericTxSystem) checkNotExecuted(id types.UnitID) error {
	_, err := m.state.GetUnit(id, false)
	switch {
	case err == nil:
		return ErrTxReplayed
	case errors.Is(err, state.ErrUnitNotFound):
		return nil
	default:
		return fmt.Errorf("reading executed order record: %w", err)
	}
}

/*
rememberOrder adds the record of the executed order and deletes the records
of the orders which have expired by the current round. Returns IDs of the
changed units.
*/
func (m *GenericTxSystem) rememberOrder(id types.UnitID) ([]types.UnitID, error) {
	expired := m.state.UnitIDsInRange(types.UnitID{ExecutedOrderUnitType}, expiredBefore(m.currentRound))
	actions := make([]state.Action, 0, len(expired)+1)
	for _, e := range expired {
		actions = append(actions, state.DeleteUnit(e))
	}
	actions = append(actions, state.AddUnit(id, &ExecutedOrderData{Round: m.currentRound}))
	if err := m.state.Apply(actions...); err != nil {
		return nil, fmt.Errorf("recording executed order: %w", err)
	}
	return append(expired, id), nil
}

// expiredBefore returns the exclusive upper bound of the IDs of the records
// with timeout not greater than round.
func expiredBefore(round uint64) types.UnitID {
	if round == math.MaxUint64 {
		return types.UnitID{ExecutedOrderUnitType + 1}
	}
	return NewExecutedOrderID(round+1, nil)
}
