package node

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/types"
)

const unitKeyPrefix = 'u'

var roundKey = []byte("round")

func unitKey(id types.UnitID) []byte {
	return append([]byte{unitKeyPrefix}, id...)
}

/*
LoadState returns the state persisted in the db. When the db is empty the
initial state is persisted and returned.
*/
func LoadState(db keyvaluedb.KeyValueDB, initial *state.State, opts ...state.Option) (*state.State, error) {
	empty, err := keyvaluedb.IsEmpty(db)
	if err != nil {
		return nil, fmt.Errorf("checking db: %w", err)
	}
	if !empty {
		return readState(db, opts...)
	}
	if initial == nil {
		return nil, errors.New("db is empty and initial state is missing")
	}
	var ids []types.UnitID
	if err := initial.Traverse(func(id types.UnitID, _ *state.Unit) error {
		ids = append(ids, id)
		return nil
	}); err != nil {
		return nil, err
	}
	if err := writeUnits(db, initial, ids); err != nil {
		return nil, fmt.Errorf("persisting initial state: %w", err)
	}
	return initial, nil
}

func readState(db keyvaluedb.KeyValueDB, opts ...state.Option) (_ *state.State, rErr error) {
	var round uint64
	found, err := db.Read(roundKey, &round)
	if err != nil {
		return nil, fmt.Errorf("reading round: %w", err)
	}
	if !found {
		return nil, errors.New("round is missing from the db")
	}

	var records []*state.UnitRecord
	it := db.Find([]byte{unitKeyPrefix})
	defer func() { rErr = errors.Join(rErr, it.Close()) }()
	for ; it.Valid() && bytes.HasPrefix(it.Key(), []byte{unitKeyPrefix}); it.Next() {
		rec := &state.UnitRecord{}
		if err := it.Value(rec); err != nil {
			return nil, fmt.Errorf("reading unit %X: %w", it.Key()[1:], err)
		}
		records = append(records, rec)
	}
	s, err := state.NewStateFromRecords(round, records, registry.NewUnitData, opts...)
	if err != nil {
		return nil, fmt.Errorf("restoring state of round %d: %w", round, err)
	}
	return s, nil
}

// writeUnits persists the committed units (deleting the ones which do not exist) and the round in one db transaction.
func writeUnits(db keyvaluedb.KeyValueDB, s *state.State, ids []types.UnitID) (rErr error) {
	dbTx, err := db.StartTx()
	if err != nil {
		return fmt.Errorf("starting db tx: %w", err)
	}
	defer func() {
		if rErr != nil {
			rErr = errors.Join(rErr, dbTx.Rollback())
		}
	}()

	for _, id := range ids {
		rec, err := s.UnitRecord(id, true)
		switch {
		case errors.Is(err, state.ErrUnitNotFound):
			if err := dbTx.Delete(unitKey(id)); err != nil {
				return fmt.Errorf("deleting unit %s: %w", id, err)
			}
		case err != nil:
			return fmt.Errorf("reading unit %s: %w", id, err)
		default:
			if err := dbTx.Write(unitKey(id), rec); err != nil {
				return fmt.Errorf("writing unit %s: %w", id, err)
			}
		}
	}
	if err := dbTx.Write(roundKey, s.CommittedRound()); err != nil {
		return fmt.Errorf("writing round: %w", err)
	}
	return dbTx.Commit()
}
