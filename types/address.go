package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AddressLength is the length of the principal identifier in bytes.
const AddressLength = common.AddressLength

// Address identifies a principal: the administrator, an airline or an
// application component authorized to call the registry.
type Address = common.Address

// ParseAddress converts 0x-prefixed hex string into Address. Unlike
// common.HexToAddress it refuses malformed input instead of truncating it.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// BytesToAddress returns Address with value b, b is left-padded/cropped to
// the address length.
func BytesToAddress(b []byte) Address {
	return common.BytesToAddress(b)
}
