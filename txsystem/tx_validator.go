package txsystem

import (
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/crypto"
	"github.com/flightsurety/flightsurety/types"
)

var (
	ErrTransactionExpired = errors.New("transaction timeout must be greater than current round number")
	ErrInvalidOwnerProof  = errors.New("invalid owner proof")
	ErrMissingPayload     = errors.New("transaction order payload is missing")
	ErrMissingSender      = errors.New("transaction order sender is missing")
	ErrMissingTimeout     = errors.New("transaction timeout is missing")
	ErrTimeoutTooFar      = errors.New("transaction timeout is too far in the future")
	ErrTxReplayed         = errors.New("transaction has already been executed")
)

/*
VerifyOwnerProof checks that the owner proof of the transaction order is the
signature of the sender over the payload bytes.
*/
func VerifyOwnerProof(tx *types.TransactionOrder) error {
	payloadBytes, err := tx.PayloadBytes()
	if err != nil {
		return fmt.Errorf("failed to marshal payload bytes: %w", err)
	}
	signer, err := crypto.RecoverAddress(tx.OwnerProof, payloadBytes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOwnerProof, err)
	}
	if signer != tx.Sender() {
		return fmt.Errorf("%w: signed by %s, sender is %s", ErrInvalidOwnerProof, signer, tx.Sender())
	}
	return nil
}
