package state

import (
	"bytes"
	"fmt"

	"github.com/flightsurety/flightsurety/types"
)

type (
	// UnitData is the domain specific content of a unit.
	UnitData interface {
		Copy() UnitData
	}

	// Unit is an entry in the state. Besides the data it keeps the head of the
	// unit ledger: a hash chain over the records of transactions which
	// modified the unit.
	Unit struct {
		data       UnitData
		ledgerHead []byte
	}
)

func NewUnit(data UnitData) *Unit {
	return &Unit{
		data: data,
	}
}

func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	return &Unit{
		data:       copyData(u.data),
		ledgerHead: bytes.Clone(u.ledgerHead),
	}
}

func (u *Unit) String() string {
	return fmt.Sprintf("data=%T, ledgerHead=%X", u.data, u.ledgerHead)
}

func (u *Unit) Data() UnitData {
	return copyData(u.data)
}

func (u *Unit) LedgerHead() []byte {
	return bytes.Clone(u.ledgerHead)
}

func MarshalUnitData(u UnitData) ([]byte, error) {
	return types.Cbor.Marshal(u)
}

func copyData(data UnitData) UnitData {
	if data == nil {
		return nil
	}
	return data.Copy()
}
