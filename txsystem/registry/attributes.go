package registry

import "github.com/flightsurety/flightsurety/types"

const (
	TransactionTypeSetOperatingStatus = "setOperatingStatus"
	TransactionTypeAuthorizeCaller    = "authorizeCaller"
	TransactionTypeDeauthorizeCaller  = "deauthorizeCaller"
)

type (
	SetOperatingStatusAttributes struct {
		_           struct{} `cbor:",toarray"`
		Operational bool
	}

	// CallerAttributes are the attributes of both authorizeCaller and deauthorizeCaller.
	CallerAttributes struct {
		_      struct{} `cbor:",toarray"`
		Caller types.Address
	}
)
