package state

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/flightsurety/flightsurety/types"
)

// CBORChecksumLength is the length of the CBOR encoded 4 byte checksum.
const CBORChecksumLength = 5

const serializationVersion = 1

type (
	header struct {
		_             struct{} `cbor:",toarray"`
		Version       uint32
		Round         uint64
		UnitRecordCnt uint64
	}

	// UnitRecord is the serialized form of a unit.
	UnitRecord struct {
		_                  struct{} `cbor:",toarray"`
		UnitID             types.UnitID
		UnitData           types.RawCBOR
		UnitLedgerHeadHash []byte
	}
)

func newUnitRecord(id types.UnitID, u *Unit) (*UnitRecord, error) {
	data, err := MarshalUnitData(u.data)
	if err != nil {
		return nil, fmt.Errorf("unable to encode unit data: %w", err)
	}
	return &UnitRecord{
		UnitID:             id,
		UnitData:           data,
		UnitLedgerHeadHash: bytes.Clone(u.ledgerHead),
	}, nil
}

func (r *UnitRecord) unit(udc UnitDataConstructor) (*Unit, error) {
	data, err := udc(r.UnitID)
	if err != nil {
		return nil, fmt.Errorf("unable to construct unit data: %w", err)
	}
	if err := types.Cbor.Unmarshal(r.UnitData, data); err != nil {
		return nil, fmt.Errorf("unable to decode unit data: %w", err)
	}
	return &Unit{data: data, ledgerHead: r.UnitLedgerHeadHash}, nil
}

func writeState(writer io.Writer, t *tree, round uint64) error {
	w, hasher := checksumWriter(writer)
	encoder, err := types.Cbor.GetEncoder(w)
	if err != nil {
		return fmt.Errorf("unable to get encoder: %w", err)
	}

	h := &header{
		Version:       serializationVersion,
		Round:         round,
		UnitRecordCnt: uint64(t.Len()),
	}
	if err := encoder.Encode(h); err != nil {
		return fmt.Errorf("unable to write header: %w", err)
	}

	t.Ascend(func(id types.UnitID, u *Unit) bool {
		var rec *UnitRecord
		if rec, err = newUnitRecord(id, u); err != nil {
			return false
		}
		if err = encoder.Encode(rec); err != nil {
			err = fmt.Errorf("unable to encode unit record: %w", err)
			return false
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("unable to write unit records: %w", err)
	}

	// checksum as a fixed length byte array for easier decoding
	checksum := binary.BigEndian.AppendUint32(nil, hasher.Sum32())
	if err := encoder.Encode(checksum); err != nil {
		return fmt.Errorf("unable to write checksum: %w", err)
	}
	return nil
}

func readState(stateData io.Reader, udc UnitDataConstructor, opts ...Option) (*State, error) {
	tr := newTrailerReader(stateData, CBORChecksumLength)
	decoder := types.Cbor.GetDecoder(tr)

	var h header
	if err := decoder.Decode(&h); err != nil {
		return nil, fmt.Errorf("unable to decode header: %w", err)
	}
	if h.Version != serializationVersion {
		return nil, fmt.Errorf("unsupported state version %d", h.Version)
	}

	records := make([]*UnitRecord, 0, h.UnitRecordCnt)
	for i := uint64(0); i < h.UnitRecordCnt; i++ {
		rec := &UnitRecord{}
		if err := decoder.Decode(rec); err != nil {
			return nil, fmt.Errorf("unable to decode unit record: %w", err)
		}
		records = append(records, rec)
	}

	var checksum []byte
	if err := decoder.Decode(&checksum); err != nil {
		return nil, fmt.Errorf("unable to decode checksum: %w", err)
	}
	if len(checksum) != 4 || binary.BigEndian.Uint32(checksum) != tr.Sum() {
		return nil, fmt.Errorf("checksum mismatch")
	}

	return NewStateFromRecords(h.Round, records, udc, opts...)
}
