package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Ether is the amount of wei in one ether.
var Ether = uint256.NewInt(1_000_000_000_000_000_000)

// AmountToBytes encodes the amount as minimal big-endian bytes, nil amount
// and zero are both encoded as an empty slice.
func AmountToBytes(a *uint256.Int) []byte {
	if a == nil || a.IsZero() {
		return nil
	}
	return a.Bytes()
}

// BytesToAmount decodes big-endian bytes into an amount.
func BytesToAmount(b []byte) (*uint256.Int, error) {
	if len(b) > 32 {
		return nil, fmt.Errorf("amount is %d bytes, max 32 bytes allowed", len(b))
	}
	return new(uint256.Int).SetBytes(b), nil
}

// ParseAmount parses decimal wei amount.
func ParseAmount(s string) (*uint256.Int, error) {
	a, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return a, nil
}
