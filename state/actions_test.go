package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddUnit(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr string
	}{
		{name: "id is nil", action: AddUnit(nil, &TestData{}), wantErr: "id is nil"},
		{name: "data is nil", action: AddUnit(unitIdentifiers[0], nil), wantErr: "unit data is nil"},
		{name: "unit exists", action: AddUnit(unitIdentifiers[1], &TestData{}), wantErr: "unit already exists"},
		{name: "ok", action: AddUnit(unitIdentifiers[0], &TestData{Value: 9})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStateWithUnits(t)
			err := s.Apply(tt.action)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			u, err := s.GetUnit(unitIdentifiers[0], false)
			require.NoError(t, err)
			require.Equal(t, &TestData{Value: 9}, u.Data())
			require.Nil(t, u.LedgerHead())
		})
	}
}

func TestUpdateUnitData(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr string
	}{
		{name: "update function is nil", action: UpdateUnitData(unitIdentifiers[1], nil), wantErr: "update function is nil"},
		{name: "unit not found", action: UpdateUnitData(unitIdentifiers[0], multiply(2)), wantErr: "unit not found"},
		{
			name: "update function fails",
			action: UpdateUnitData(unitIdentifiers[1], func(UnitData) (UnitData, error) {
				return nil, errors.New("boom")
			}),
			wantErr: "unable to update unit data: boom",
		},
		{
			name: "new data is nil",
			action: UpdateUnitData(unitIdentifiers[1], func(UnitData) (UnitData, error) {
				return nil, nil
			}),
			wantErr: "new data is nil",
		},
		{name: "ok", action: UpdateUnitData(unitIdentifiers[1], multiply(2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStateWithUnits(t)
			err := s.Apply(tt.action)
			u, gerr := s.GetUnit(unitIdentifiers[1], false)
			require.NoError(t, gerr)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				require.EqualValues(t, 1, u.Data().(*TestData).Value)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, 2, u.Data().(*TestData).Value)
		})
	}
}

func TestDeleteUnit(t *testing.T) {
	s := newStateWithUnits(t)
	require.EqualError(t, s.Apply(DeleteUnit(nil)), "id is nil")
	require.ErrorIs(t, s.Apply(DeleteUnit(unitIdentifiers[0])), ErrUnitNotFound)

	require.NoError(t, s.Apply(DeleteUnit(unitIdentifiers[1])))
	_, err := s.GetUnit(unitIdentifiers[1], false)
	require.ErrorIs(t, err, ErrUnitNotFound)
	// still in the committed state
	_, err = s.GetUnit(unitIdentifiers[1], true)
	require.NoError(t, err)
}

func TestUpsertUnitData(t *testing.T) {
	t.Run("unit is added", func(t *testing.T) {
		s := newStateWithUnits(t)
		require.NoError(t, s.Apply(UpsertUnitData(unitIdentifiers[0], &TestData{Value: 3}, multiply(2))))
		u, err := s.GetUnit(unitIdentifiers[0], false)
		require.NoError(t, err)
		require.EqualValues(t, 6, u.Data().(*TestData).Value)
	})

	t.Run("existing unit is updated", func(t *testing.T) {
		s := newStateWithUnits(t)
		require.NoError(t, s.Apply(UpsertUnitData(unitIdentifiers[1], &TestData{Value: 3}, multiply(5))))
		u, err := s.GetUnit(unitIdentifiers[1], false)
		require.NoError(t, err)
		require.EqualValues(t, 5, u.Data().(*TestData).Value)
	})

	t.Run("failed update does not leave the added unit behind", func(t *testing.T) {
		s := newStateWithUnits(t)
		err := s.Apply(UpsertUnitData(unitIdentifiers[0], &TestData{}, func(UnitData) (UnitData, error) {
			return nil, errors.New("boom")
		}))
		require.ErrorContains(t, err, "boom")
		_, err = s.GetUnit(unitIdentifiers[0], false)
		require.ErrorIs(t, err, ErrUnitNotFound)
	})
}

func newStateWithUnits(t *testing.T) *State {
	t.Helper()
	s := NewEmptyState()
	require.NoError(t, s.Apply(AddUnit(unitIdentifiers[1], &TestData{Value: 1})))
	require.NoError(t, s.Commit(1))
	return s
}
