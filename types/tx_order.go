package types

import (
	"crypto"
	_ "crypto/sha256" // default hash algorithm of orders, records and unit ledgers
	"errors"
	"fmt"
)

type (
	TransactionOrder struct {
		_          struct{} `cbor:",toarray"`
		Payload    *Payload
		OwnerProof []byte
	}

	Payload struct {
		_              struct{} `cbor:",toarray"`
		Type           string
		Sender         Address
		Attributes     RawCBOR
		ClientMetadata *ClientMetadata
	}

	ClientMetadata struct {
		_ struct{} `cbor:",toarray"`
		// Timeout is the round number starting from which the order is not
		// executed anymore. It is mandatory and may not be further than the
		// maximum timeout of the tx system from the current round.
		Timeout uint64
		// ReferenceNumber is an opaque client value, orders which differ
		// only by the reference number are different orders.
		ReferenceNumber []byte
	}

	ProofGenerator func(bytesToSign []byte) (proof []byte, err error)
)

func (t *TransactionOrder) PayloadBytes() ([]byte, error) {
	if t == nil || t.Payload == nil {
		return nil, errors.New("payload is nil")
	}
	return t.Payload.Bytes()
}

func (t *TransactionOrder) UnmarshalAttributes(v any) error {
	if t == nil {
		return errors.New("transaction order is nil")
	}
	return t.Payload.UnmarshalAttributes(v)
}

func (t *TransactionOrder) Sender() Address {
	if t == nil || t.Payload == nil {
		return Address{}
	}
	return t.Payload.Sender
}

func (t *TransactionOrder) Timeout() uint64 {
	if t == nil || t.Payload == nil || t.Payload.ClientMetadata == nil {
		return 0
	}
	return t.Payload.ClientMetadata.Timeout
}

func (t *TransactionOrder) PayloadType() string {
	if t == nil || t.Payload == nil {
		return ""
	}
	return t.Payload.Type
}

func (t *TransactionOrder) Hash(algorithm crypto.Hash) ([]byte, error) {
	bytes, err := Cbor.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding transaction order: %w", err)
	}
	hasher := algorithm.New()
	hasher.Write(bytes)
	return hasher.Sum(nil), nil
}

/*
PayloadHash returns the hash of the payload bytes. Unlike Hash it does not
depend on the owner proof, so re-signing the same payload gives the same value.
*/
func (t *TransactionOrder) PayloadHash(algorithm crypto.Hash) ([]byte, error) {
	bytes, err := t.PayloadBytes()
	if err != nil {
		return nil, err
	}
	hasher := algorithm.New()
	hasher.Write(bytes)
	return hasher.Sum(nil), nil
}

/*
SetOwnerProof assigns the bytes returned by the function provided as argument to
the OwnerProof field unless the function (or reading data to be signed by that
function) returned error.
*/
func (t *TransactionOrder) SetOwnerProof(proofer ProofGenerator) error {
	data, err := t.PayloadBytes()
	if err != nil {
		return fmt.Errorf("reading payload bytes to sign: %w", err)
	}
	if t.OwnerProof, err = proofer(data); err != nil {
		return fmt.Errorf("generating owner proof: %w", err)
	}
	return nil
}

/*
SetAttributes serializes "attr" and assigns the result to payload's Attributes field.
The "attr" is expected to be one of the transaction attribute structs but there is
no validation!
The Payload.UnmarshalAttributes can be used to decode the attributes.
*/
func (p *Payload) SetAttributes(attr any) error {
	bytes, err := Cbor.Marshal(attr)
	if err != nil {
		return fmt.Errorf("marshaling %T as tx attributes: %w", attr, err)
	}
	p.Attributes = bytes
	return nil
}

func (p *Payload) UnmarshalAttributes(v any) error {
	if p == nil {
		return errors.New("payload is nil")
	}
	return Cbor.Unmarshal(p.Attributes, v)
}

func (p *Payload) Bytes() ([]byte, error) {
	return Cbor.Marshal(p)
}
