package transaction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/flightsurety/flightsurety/crypto"
	"github.com/flightsurety/flightsurety/types"
)

const (
	defaultTxType = "test"
	// DefaultTimeout is the timeout of the orders unless set otherwise.
	DefaultTimeout = 1000
)

func defaultTx() *types.TransactionOrder {
	ref := uuid.New()
	payload := &types.Payload{
		Type:           defaultTxType,
		ClientMetadata: &types.ClientMetadata{Timeout: DefaultTimeout, ReferenceNumber: ref[:]},
	}
	return &types.TransactionOrder{Payload: payload}
}

type Option func(*types.TransactionOrder) error

func WithPayloadType(t string) Option {
	return func(tx *types.TransactionOrder) error {
		tx.Payload.Type = t
		return nil
	}
}

func WithSender(addr types.Address) Option {
	return func(tx *types.TransactionOrder) error {
		tx.Payload.Sender = addr
		return nil
	}
}

func WithClientMetadata(m *types.ClientMetadata) Option {
	return func(tx *types.TransactionOrder) error {
		tx.Payload.ClientMetadata = m
		return nil
	}
}

func WithTimeout(timeout uint64) Option {
	return func(tx *types.TransactionOrder) error {
		if tx.Payload.ClientMetadata == nil {
			tx.Payload.ClientMetadata = &types.ClientMetadata{}
		}
		tx.Payload.ClientMetadata.Timeout = timeout
		return nil
	}
}

func WithAttributes(attr any) Option {
	return func(tx *types.TransactionOrder) error {
		return tx.Payload.SetAttributes(attr)
	}
}

func WithOwnerProof(proof []byte) Option {
	return func(tx *types.TransactionOrder) error {
		tx.OwnerProof = proof
		return nil
	}
}

func NewTransactionOrder(t *testing.T, options ...Option) *types.TransactionOrder {
	t.Helper()
	tx := defaultTx()
	for _, o := range options {
		require.NoError(t, o(tx))
	}
	return tx
}

/*
NewSignedTransactionOrder creates transaction order sent by the signer, the
owner proof is created after all the options have been applied.
*/
func NewSignedTransactionOrder(t *testing.T, signer crypto.Signer, options ...Option) *types.TransactionOrder {
	t.Helper()
	tx := NewTransactionOrder(t, append([]Option{WithSender(signer.Address())}, options...)...)
	require.NoError(t, tx.SetOwnerProof(signer.SignBytes))
	return tx
}

func NewTransactionRecord(t *testing.T, options ...Option) *types.TransactionRecord {
	t.Helper()
	return &types.TransactionRecord{
		TransactionOrder: NewTransactionOrder(t, options...),
		ServerMetadata: &types.ServerMetadata{
			SuccessIndicator: types.TxStatusSuccessful,
		},
	}
}
