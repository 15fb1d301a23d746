package surety

import (
	"fmt"

	"github.com/flightsurety/flightsurety/txsystem/registry"
	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
	"github.com/flightsurety/flightsurety/types"
)

func (m *Module) executeRegisterAirlineTx(tx *types.TransactionOrder, attr *AirlineAttributes, exeCtx txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	registered, err := m.store.RegisteredCount()
	if err != nil {
		return nil, err
	}
	if votingRequired(registered) {
		// the registering airline casts the first vote
		res, targets, err := m.castVote(tx.Sender(), attr.Airline, exeCtx.CurrentRound())
		if err != nil {
			return nil, err
		}
		return newServerMetadata(res, targets...)
	}

	if err := m.store.AdmitAirline(m.app, attr.Airline, exeCtx.CurrentRound()); err != nil {
		return nil, fmt.Errorf("admitting airline: %w", err)
	}
	res := &AdmissionResult{
		Airline:         attr.Airline,
		Registered:      true,
		RegisteredCount: registered + 1,
	}
	return newServerMetadata(res, registry.NewAirlineID(attr.Airline), registry.GovernanceID)
}

func (m *Module) validateRegisterAirlineTx(tx *types.TransactionOrder, attr *AirlineAttributes, exeCtx txtypes.ExecutionContext) error {
	if err := m.store.Authorize(m.app); err != nil {
		return err
	}
	if err := m.checkFundedAirline(tx.Sender()); err != nil {
		return err
	}
	if err := m.checkCandidate(attr.Airline); err != nil {
		return err
	}
	registered, err := m.store.RegisteredCount()
	if err != nil {
		return err
	}
	if votingRequired(registered) {
		return m.checkNotVoted(tx.Sender(), attr.Airline)
	}
	return nil
}

func (m *Module) executeApproveAirlineTx(tx *types.TransactionOrder, attr *AirlineAttributes, exeCtx txtypes.ExecutionContext) (*types.ServerMetadata, error) {
	res, targets, err := m.castVote(tx.Sender(), attr.Airline, exeCtx.CurrentRound())
	if err != nil {
		return nil, err
	}
	return newServerMetadata(res, targets...)
}

func (m *Module) validateApproveAirlineTx(tx *types.TransactionOrder, attr *AirlineAttributes, exeCtx txtypes.ExecutionContext) error {
	if err := m.store.Authorize(m.app); err != nil {
		return err
	}
	if err := m.checkFundedAirline(tx.Sender()); err != nil {
		return err
	}
	registered, err := m.store.RegisteredCount()
	if err != nil {
		return err
	}
	if !votingRequired(registered) {
		return fmt.Errorf("%d airlines registered: %w", registered, types.ErrVotingNotRequired)
	}
	if err := m.checkCandidate(attr.Airline); err != nil {
		return err
	}
	return m.checkNotVoted(tx.Sender(), attr.Airline)
}

/*
castVote adds the vote of the voter for the candidate. When the votes reach the
quorum of the airlines registered at the time of the vote the candidate is
registered and the vote record is deleted.
*/
func (m *Module) castVote(voter, candidate types.Address, round uint64) (*AdmissionResult, []types.UnitID, error) {
	votes, err := m.store.AddVote(m.app, candidate, voter)
	if err != nil {
		return nil, nil, fmt.Errorf("adding vote: %w", err)
	}
	registered, err := m.store.RegisteredCount()
	if err != nil {
		return nil, nil, err
	}
	res := &AdmissionResult{
		Airline:         candidate,
		Votes:           uint64(votes),
		RegisteredCount: registered,
	}
	targets := []types.UnitID{registry.NewVoteID(candidate)}
	if !quorumReached(uint64(votes), registered) {
		return res, targets, nil
	}

	if err := m.store.AdmitAirline(m.app, candidate, round); err != nil {
		return nil, nil, fmt.Errorf("admitting airline: %w", err)
	}
	if err := m.store.ClearVotes(m.app, candidate); err != nil {
		return nil, nil, fmt.Errorf("clearing votes: %w", err)
	}
	res.Registered = true
	res.RegisteredCount++
	return res, append(targets, registry.NewAirlineID(candidate), registry.GovernanceID), nil
}
