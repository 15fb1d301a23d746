package state

import (
	"crypto"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/flightsurety/flightsurety/types"
)

type (

	// State is a data structure that keeps track of units and unit ledgers.
	//
	// State can be changed by calling Apply function with one or more Action function. Savepoint method can be used
	// to add a special marker to the state that allows all actions that are executed after savepoint was established
	// to be rolled back. In the other words, savepoint lets you roll back part of the state changes instead of the
	// entire state. Calling a Commit method makes the changes visible to the readers of the committed state.
	State struct {
		mutex          sync.RWMutex
		hashAlgorithm  crypto.Hash
		degree         int
		committedTree  *tree
		committedRound uint64

		// savepoint is a special marker that allows all actions that are executed after tree was established to
		// be rolled back, restoring the state to what it was at the time of the tree.
		savepoints []*tree
	}

	// UnitDataConstructor is a function that constructs an empty UnitData structure based on UnitID
	UnitDataConstructor func(types.UnitID) (UnitData, error)
)

func NewEmptyState(opts ...Option) *State {
	options := loadOptions(opts...)
	t := newTree(options.degree)
	return &State{
		hashAlgorithm: options.hashAlgorithm,
		degree:        options.degree,
		committedTree: t,
		savepoints:    []*tree{t.Clone()},
	}
}

// NewRecoveredState restores the state serialized by the Serialize method.
func NewRecoveredState(stateData io.Reader, udc UnitDataConstructor, opts ...Option) (*State, error) {
	if stateData == nil {
		return nil, fmt.Errorf("reader is nil")
	}
	if udc == nil {
		return nil, fmt.Errorf("unit data constructor is nil")
	}
	return readState(stateData, udc, opts...)
}

// NewStateFromRecords builds committed state of given round out of unit records.
func NewStateFromRecords(round uint64, records []*UnitRecord, udc UnitDataConstructor, opts ...Option) (*State, error) {
	if udc == nil {
		return nil, fmt.Errorf("unit data constructor is nil")
	}
	s := NewEmptyState(opts...)
	t := s.latestSavepoint()
	for _, rec := range records {
		u, err := rec.unit(udc)
		if err != nil {
			return nil, err
		}
		if err := t.Add(rec.UnitID, u); err != nil {
			return nil, fmt.Errorf("restoring unit: %w", err)
		}
	}
	if err := s.Commit(round); err != nil {
		return nil, err
	}
	return s, nil
}

// Clone returns a clone of the committed state. The original state and the cloned state can be used by different
// goroutines but can never be merged. The cloned state is usually used by read only operations.
func (s *State) Clone() *State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return &State{
		hashAlgorithm:  s.hashAlgorithm,
		degree:         s.degree,
		committedTree:  s.committedTree.Clone(),
		committedRound: s.committedRound,
		savepoints:     []*tree{s.committedTree.Clone()},
	}
}

// GetUnit returns a copy of the unit, either from the committed state or from the latest savepoint.
func (s *State) GetUnit(id types.UnitID, committed bool) (*Unit, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var u *Unit
	var err error
	if committed {
		u, err = s.committedTree.Get(id)
	} else {
		u, err = s.latestSavepoint().Get(id)
	}
	if err != nil {
		return nil, err
	}
	return u.Clone(), nil
}

// AddUnitLog extends the ledger of the unit with the transaction record hash.
func (s *State) AddUnitLog(id types.UnitID, transactionRecordHash []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	u, err := s.latestSavepoint().Get(id)
	if err != nil {
		return fmt.Errorf("unable to add unit log for unit %v: %w", id, err)
	}
	unit := u.Clone()
	hasher := s.hashAlgorithm.New()
	// newly created unit has no previous head
	hasher.Write(unit.ledgerHead)
	hasher.Write(transactionRecordHash)
	unit.ledgerHead = hasher.Sum(nil)
	return s.latestSavepoint().Update(id, unit)
}

// Apply applies given actions to the state. All Action functions are executed together as a single atomic operation. If
// any of the Action functions returns an error all previous state changes made by any of the action function will be
// reverted.
func (s *State) Apply(actions ...Action) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := s.createSavepoint()
	for _, action := range actions {
		if err := action(s.latestSavepoint(), s.hashAlgorithm); err != nil {
			s.rollbackToSavepoint(id)
			return err
		}
	}
	s.releaseToSavepoint(id)
	return nil
}

// Commit makes the changes in the latest savepoint permanent, the round number is the round of the committed state.
func (s *State) Commit(round uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.savepoints) != 1 {
		return fmt.Errorf("unable to commit state with %d open savepoints", len(s.savepoints)-1)
	}
	if round < s.committedRound {
		return fmt.Errorf("commit round %d is before the committed round %d", round, s.committedRound)
	}
	sp := s.latestSavepoint()
	s.committedTree = sp.Clone()
	s.committedRound = round
	return nil
}

// CommittedRound returns the round number of the committed state.
func (s *State) CommittedRound() uint64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.committedRound
}

// Revert rolls back all changes made to the state.
func (s *State) Revert() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.savepoints = []*tree{s.committedTree.Clone()}
}

// Savepoint creates a new savepoint and returns an id of the savepoint. Use RollbackToSavepoint to roll back all
// changes made after calling Savepoint method. Use ReleaseToSavepoint to save all changes made to the state.
func (s *State) Savepoint() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.createSavepoint()
}

// RollbackToSavepoint destroys savepoints without keeping the changes in the state tree. All actions that were executed
// after the savepoint was established are rolled back, restoring the state to what it was at the time of the savepoint.
func (s *State) RollbackToSavepoint(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.rollbackToSavepoint(id)
}

// ReleaseToSavepoint destroys all savepoints, keeping all state changes after it was created. If a savepoint with given
// id does not exist then this method does nothing.
func (s *State) ReleaseToSavepoint(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.releaseToSavepoint(id)
}

// Size returns the number of units in the committed state.
func (s *State) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.committedTree.Len()
}

func (s *State) HashAlgorithm() crypto.Hash {
	return s.hashAlgorithm
}

// Traverse calls fn for every unit of the committed state in ascending unit ID order.
func (s *State) Traverse(fn func(id types.UnitID, u *Unit) error) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var err error
	s.committedTree.Ascend(func(id types.UnitID, u *Unit) bool {
		err = fn(id, u.Clone())
		return err == nil
	})
	return err
}

// GetUnits returns IDs of the committed units of given type, all units when unitType is nil.
func (s *State) GetUnits(unitType *byte) ([]types.UnitID, error) {
	filter := NewFilter(func(unitID types.UnitID, unit *Unit) (bool, error) {
		// get all units if no unit type is provided
		if unitType == nil {
			return true, nil
		}
		return unitID.HasType(*unitType), nil
	})
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := filter.Traverse(s.committedTree); err != nil {
		return nil, fmt.Errorf("failed to traverse state: %w", err)
	}
	return filter.FilteredUnitIDs(), nil
}

// UnitIDsInRange returns the IDs of the units in [from, to) of the latest savepoint in ascending order.
func (s *State) UnitIDsInRange(from, to types.UnitID) []types.UnitID {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var ids []types.UnitID
	s.latestSavepoint().AscendRange(from, to, func(id types.UnitID, _ *Unit) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// UnitRecord returns the serializable form of the unit.
func (s *State) UnitRecord(id types.UnitID, committed bool) (*UnitRecord, error) {
	u, err := s.GetUnit(id, committed)
	if err != nil {
		return nil, err
	}
	return newUnitRecord(id, u)
}

// Serialize writes the state to the given writer.
func (s *State) Serialize(writer io.Writer, committed bool) error {
	if writer == nil {
		return errors.New("writer is nil")
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if committed {
		return writeState(writer, s.committedTree, s.committedRound)
	}
	return writeState(writer, s.latestSavepoint(), s.committedRound)
}

func (s *State) createSavepoint() int {
	s.savepoints = append(s.savepoints, s.latestSavepoint().Clone())
	return len(s.savepoints) - 1
}

func (s *State) rollbackToSavepoint(id int) {
	c := len(s.savepoints)
	if id >= c || id < 1 {
		// nothing to revert
		return
	}
	s.savepoints = s.savepoints[0:id]
}

func (s *State) releaseToSavepoint(id int) {
	c := len(s.savepoints)
	if id >= c || id < 1 {
		// nothing to release
		return
	}
	s.savepoints[id-1] = s.latestSavepoint()
	s.savepoints = s.savepoints[0:id]
}

// latestSavepoint returns the latest savepoint.
func (s *State) latestSavepoint() *tree {
	l := len(s.savepoints)
	return s.savepoints[l-1]
}
