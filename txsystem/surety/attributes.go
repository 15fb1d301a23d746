package surety

import "github.com/flightsurety/flightsurety/types"

const (
	TransactionTypeRegisterAirline = "registerAirline"
	TransactionTypeApproveAirline  = "approveAirline"
	TransactionTypeFund            = "fund"
	TransactionTypeRegisterFlight  = "registerFlight"
)

type (
	// AirlineAttributes are the attributes of both registerAirline and approveAirline.
	AirlineAttributes struct {
		_       struct{} `cbor:",toarray"`
		Airline types.Address
	}

	FundAttributes struct {
		_      struct{} `cbor:",toarray"`
		Amount []byte // big-endian wei amount
	}

	RegisterFlightAttributes struct {
		_         struct{} `cbor:",toarray"`
		Code      string
		Timestamp uint64 // unix seconds
	}

	// AdmissionResult is the processing details of registerAirline and approveAirline.
	AdmissionResult struct {
		_               struct{}      `cbor:",toarray"`
		Airline         types.Address `json:"airline"`
		Registered      bool          `json:"registered"`
		Votes           uint64        `json:"votes"`
		RegisteredCount uint64        `json:"registeredCount"`
	}

	// FlightResult is the processing details of registerFlight.
	FlightResult struct {
		_        struct{}     `cbor:",toarray"`
		FlightID types.UnitID `json:"flightId"`
		Seq      uint64       `json:"seq"`
	}
)
