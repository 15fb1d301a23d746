package state

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/flightsurety/flightsurety/types"
)

type (
	UnitStore interface {
		Add(id types.UnitID, u *Unit) error
		Get(id types.UnitID) (*Unit, error)
		Update(id types.UnitID, unit *Unit) error
		Delete(id types.UnitID) error
	}

	Action func(s UnitStore, hashAlgorithm crypto.Hash) error

	// UpdateFunction is a function for updating the data of an item. Taken in previous UnitData and returns new UnitData.
	UpdateFunction func(data UnitData) (newData UnitData, err error)
)

// AddUnit adds a new unit with given identifier and unit data.
func AddUnit(id types.UnitID, data UnitData) Action {
	return func(s UnitStore, hashAlgorithm crypto.Hash) error {
		if id == nil {
			return errors.New("id is nil")
		}
		if data == nil {
			return errors.New("unit data is nil")
		}
		if err := s.Add(id, NewUnit(copyData(data))); err != nil {
			return fmt.Errorf("unable to add unit: %w", err)
		}
		return nil
	}
}

// UpdateUnitData changes the data of the item.
func UpdateUnitData(id types.UnitID, f UpdateFunction) Action {
	return func(s UnitStore, hashAlgorithm crypto.Hash) error {
		if f == nil {
			return errors.New("update function is nil")
		}
		u, err := s.Get(id)
		if err != nil {
			return fmt.Errorf("failed to get unit: %w", err)
		}

		cloned := u.Clone()
		newData, err := f(cloned.data)
		if err != nil {
			return fmt.Errorf("unable to update unit data: %w", err)
		}
		if newData == nil {
			return errors.New("unable to update unit data: new data is nil")
		}
		cloned.data = newData
		if err = s.Update(id, cloned); err != nil {
			return fmt.Errorf("unable to update unit: %w", err)
		}
		return nil
	}
}

// DeleteUnit removes the unit from the state with given identifier.
func DeleteUnit(id types.UnitID) Action {
	return func(s UnitStore, hashAlgorithm crypto.Hash) error {
		if id == nil {
			return errors.New("id is nil")
		}
		if err := s.Delete(id); err != nil {
			return fmt.Errorf("unable to delete unit: %w", err)
		}
		return nil
	}
}

// UpsertUnitData adds the unit with initial data when it does not exist and
// then changes the data of the unit with the update function.
func UpsertUnitData(id types.UnitID, initial UnitData, f UpdateFunction) Action {
	return func(s UnitStore, hashAlgorithm crypto.Hash) error {
		if _, err := s.Get(id); err != nil {
			if !errors.Is(err, ErrUnitNotFound) {
				return fmt.Errorf("failed to get unit: %w", err)
			}
			if err := AddUnit(id, initial)(s, hashAlgorithm); err != nil {
				return err
			}
		}
		return UpdateUnitData(id, f)(s, hashAlgorithm)
	}
}
