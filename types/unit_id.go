package types

import (
	"bytes"
	"fmt"
)

// UnitID is the key of a unit in the state: the first byte is the unit type,
// followed by the type specific key.
type UnitID []byte

// NewUnitID creates a new UnitID of given type.
func NewUnitID(unitType byte, key []byte) UnitID {
	id := make(UnitID, 1+len(key))
	id[0] = unitType
	copy(id[1:], key)
	return id
}

func (uid UnitID) Compare(key UnitID) int {
	return bytes.Compare(uid, key)
}

func (uid UnitID) String() string {
	return fmt.Sprintf("%X", []byte(uid))
}

func (uid UnitID) Eq(id UnitID) bool {
	return bytes.Equal(uid, id)
}

func (uid UnitID) HasType(unitType byte) bool {
	return len(uid) > 0 && uid[0] == unitType
}

// Type returns the unit type byte, zero for an empty ID.
func (uid UnitID) Type() byte {
	if len(uid) == 0 {
		return 0
	}
	return uid[0]
}

// Key returns the type specific part of the ID.
func (uid UnitID) Key() []byte {
	if len(uid) == 0 {
		return nil
	}
	return uid[1:]
}

func (uid UnitID) MarshalText() ([]byte, error) {
	return toHex(uid), nil
}

func (uid *UnitID) UnmarshalText(src []byte) error {
	res, err := fromHex(src)
	if err == nil {
		*uid = res
	}
	return err
}
