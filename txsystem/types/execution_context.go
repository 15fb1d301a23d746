package types

import (
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

type (
	StateInfo interface {
		GetUnit(id types.UnitID, committed bool) (*state.Unit, error)
		CurrentRound() uint64
	}

	// TxExecutionContext - implementation of ExecutionContext interface for generic tx handler
	TxExecutionContext struct {
		txs StateInfo
	}
)

func NewExecutionContext(txSys StateInfo) *TxExecutionContext {
	return &TxExecutionContext{txs: txSys}
}

func (ec *TxExecutionContext) GetUnit(id types.UnitID, committed bool) (*state.Unit, error) {
	return ec.txs.GetUnit(id, committed)
}

func (ec *TxExecutionContext) CurrentRound() uint64 { return ec.txs.CurrentRound() }
