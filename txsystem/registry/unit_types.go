package registry

import (
	"encoding/binary"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/types"
)

const (
	GovernanceUnitType    byte = 0x01
	AuthorizationUnitType byte = 0x02
	AirlineUnitType       byte = 0x03
	VoteUnitType          byte = 0x04
	FlightUnitType        byte = 0x05
)

// GovernanceID is the ID of the singleton unit holding the operational flag
// and the registry counters.
var GovernanceID = types.NewUnitID(GovernanceUnitType, nil)

func NewAuthorizationID(caller types.Address) types.UnitID {
	return types.NewUnitID(AuthorizationUnitType, caller.Bytes())
}

func NewAirlineID(airline types.Address) types.UnitID {
	return types.NewUnitID(AirlineUnitType, airline.Bytes())
}

func NewVoteID(candidate types.Address) types.UnitID {
	return types.NewUnitID(VoteUnitType, candidate.Bytes())
}

func NewFlightID(airline types.Address, code string, timestamp uint64) types.UnitID {
	return types.NewUnitID(FlightUnitType, FlightKey(airline, code, timestamp))
}

// FlightKey returns Keccak-256 hash of the airline address, flight code and
// big-endian timestamp.
func FlightKey(airline types.Address, code string, timestamp uint64) []byte {
	return ethcrypto.Keccak256(airline.Bytes(), []byte(code), binary.BigEndian.AppendUint64(nil, timestamp))
}

// NewUnitData is the state.UnitDataConstructor of the registry units and the executed order records.
func NewUnitData(unitID types.UnitID) (state.UnitData, error) {
	switch {
	case unitID.HasType(GovernanceUnitType):
		return &GovernanceData{}, nil
	case unitID.HasType(AuthorizationUnitType):
		return &AuthorizationData{}, nil
	case unitID.HasType(AirlineUnitType):
		return &AirlineData{}, nil
	case unitID.HasType(VoteUnitType):
		return &VoteData{}, nil
	case unitID.HasType(FlightUnitType):
		return &FlightData{}, nil
	case unitID.HasType(txsystem.ExecutedOrderUnitType):
		return &txsystem.ExecutedOrderData{}, nil
	}
	return nil, fmt.Errorf("unknown unit type in UnitID %s", unitID)
}
