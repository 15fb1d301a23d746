package registry

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/holiman/uint256"

	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/types"
)

type (
	GovernanceData struct {
		_               struct{} `cbor:",toarray"`
		Operational     bool
		RegisteredCount uint64 // number of registered airlines
		FlightCount     uint64 // number of registered flights, the sequence number of the next flight
	}

	// AuthorizationData is kept after deauthorization with Authorized = false.
	AuthorizationData struct {
		_          struct{} `cbor:",toarray"`
		Authorized bool
	}

	AirlineData struct {
		_               struct{} `cbor:",toarray"`
		Registered      bool
		Funded          bool
		Stake           []byte // big-endian wei amount
		RegisteredRound uint64
	}

	// VoteData holds the voters of a candidate airline in the order the votes
	// were cast.
	VoteData struct {
		_      struct{} `cbor:",toarray"`
		Voters []types.Address
	}

	FlightData struct {
		_               struct{} `cbor:",toarray"`
		Airline         types.Address
		Code            string
		Timestamp       uint64
		Status          types.FlightStatus
		Seq             uint64
		RegisteredRound uint64
	}
)

func (d *GovernanceData) Copy() state.UnitData {
	return &GovernanceData{
		Operational:     d.Operational,
		RegisteredCount: d.RegisteredCount,
		FlightCount:     d.FlightCount,
	}
}

func (d *AuthorizationData) Copy() state.UnitData {
	return &AuthorizationData{Authorized: d.Authorized}
}

func (d *AirlineData) Copy() state.UnitData {
	return &AirlineData{
		Registered:      d.Registered,
		Funded:          d.Funded,
		Stake:           bytes.Clone(d.Stake),
		RegisteredRound: d.RegisteredRound,
	}
}

// StakeAmount returns the stake as an integer, malformed stake is returned as zero.
func (d *AirlineData) StakeAmount() *uint256.Int {
	a, err := types.BytesToAmount(d.Stake)
	if err != nil {
		return new(uint256.Int)
	}
	return a
}

func (d *VoteData) Copy() state.UnitData {
	return &VoteData{Voters: slices.Clone(d.Voters)}
}

func (d *VoteData) HasVoted(voter types.Address) bool {
	return slices.Contains(d.Voters, voter)
}

// CheckVote returns ErrDuplicateVote when the voter has already voted for the candidate.
func (d *VoteData) CheckVote(voter, candidate types.Address) error {
	if d.HasVoted(voter) {
		return fmt.Errorf("airline %s voting for %s: %w", voter, candidate, types.ErrDuplicateVote)
	}
	return nil
}

func (d *FlightData) Copy() state.UnitData {
	c := *d
	return &c
}
