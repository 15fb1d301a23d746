package types

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Cbor is the codec used for transaction orders, unit data and persisted records.
var Cbor = newCborHandler()

type (
	cborHandler struct {
		enc cbor.EncMode
		dec cbor.DecMode
	}

	// RawCBOR is a pre-encoded CBOR value. It is embedded into the enclosing
	// structure as is, without re-encoding.
	RawCBOR []byte
)

func newCborHandler() *cborHandler {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("creating CBOR encoder mode: %w", err))
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Errorf("creating CBOR decoder mode: %w", err))
	}
	return &cborHandler{enc: enc, dec: dec}
}

func (c *cborHandler) Marshal(v any) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *cborHandler) Unmarshal(data []byte, v any) error {
	return c.dec.Unmarshal(data, v)
}

func (c *cborHandler) Encode(w io.Writer, v any) error {
	return c.enc.NewEncoder(w).Encode(v)
}

func (c *cborHandler) GetEncoder(w io.Writer) (*cbor.Encoder, error) {
	if w == nil {
		return nil, errors.New("writer is nil")
	}
	return c.enc.NewEncoder(w), nil
}

func (c *cborHandler) GetDecoder(r io.Reader) *cbor.Decoder {
	return c.dec.NewDecoder(r)
}

func (r RawCBOR) MarshalCBOR() ([]byte, error) {
	if len(r) == 0 {
		// encode as CBOR null
		return []byte{0xf6}, nil
	}
	return r, nil
}

func (r *RawCBOR) UnmarshalCBOR(data []byte) error {
	if r == nil {
		return errors.New("UnmarshalCBOR on nil pointer")
	}
	*r = bytes.Clone(data)
	return nil
}
