package types

import (
	"crypto"
	"errors"
	"fmt"
)

const (
	TxStatusFailed     TxStatus = 0
	TxStatusSuccessful TxStatus = 1
)

type (
	TxStatus uint64

	// ServerMetadata is the outcome of executing a transaction order.
	ServerMetadata struct {
		_                 struct{} `cbor:",toarray"`
		TargetUnits       []UnitID
		SuccessIndicator  TxStatus
		ProcessingDetails RawCBOR
	}

	// TransactionRecord binds the executed order to its outcome and the round
	// in which it was executed.
	TransactionRecord struct {
		_                struct{} `cbor:",toarray"`
		TransactionOrder *TransactionOrder
		ServerMetadata   *ServerMetadata
		Round            uint64
	}
)

func (sm *ServerMetadata) UnmarshalDetails(v any) error {
	if sm == nil {
		return errors.New("server metadata is nil")
	}
	return Cbor.Unmarshal(sm.ProcessingDetails, v)
}

func (t *TransactionRecord) Hash(algorithm crypto.Hash) ([]byte, error) {
	bytes, err := Cbor.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding transaction record: %w", err)
	}
	hasher := algorithm.New()
	hasher.Write(bytes)
	return hasher.Sum(nil), nil
}
