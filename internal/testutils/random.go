package test

import (
	"crypto/rand"

	"github.com/flightsurety/flightsurety/types"
)

// RandomAddress returns an address nobody holds the key for.
func RandomAddress() types.Address {
	var addr types.Address
	if _, err := rand.Read(addr[:]); err != nil {
		panic(err)
	}
	return addr
}
