package surety

import (
	"bytes"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/flightsurety/flightsurety/crypto"
	"github.com/flightsurety/flightsurety/internal/testutils/observability"
	testsig "github.com/flightsurety/flightsurety/internal/testutils/sig"
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/txsystem/testutils/transaction"
	"github.com/flightsurety/flightsurety/types"
)

var app = types.BytesToAddress([]byte{0xa1})

// testRegistry is a tx system with an administrator and airline keys, the
// first key belongs to the genesis airline.
type testRegistry struct {
	t        *testing.T
	txSys    *txsystem.GenericTxSystem
	admin    crypto.Signer
	airlines []crypto.Signer
}

func newTestRegistry(t *testing.T, airlines int, opts ...Option) *testRegistry {
	t.Helper()
	signers := testsig.NewSigners(t, airlines+1)
	admin := signers[0]

	s, err := NewGenesisState(admin.Address(), signers[1].Address(), []types.Address{app})
	require.NoError(t, err)
	opts = append([]Option{WithState(s), WithAdmin(admin.Address()), WithApp(app)}, opts...)
	txSys, err := NewTxSystem(observability.Default(t), opts...)
	require.NoError(t, err)
	return &testRegistry{t: t, txSys: txSys, admin: admin, airlines: signers[1:]}
}

func (r *testRegistry) addr(i int) types.Address {
	return r.airlines[i].Address()
}

func (r *testRegistry) signedTx(signer crypto.Signer, typ string, attr any, opts ...transaction.Option) *types.TransactionOrder {
	r.t.Helper()
	return transaction.NewSignedTransactionOrder(r.t, signer, append([]transaction.Option{
		transaction.WithPayloadType(typ),
		transaction.WithAttributes(attr),
	}, opts...)...)
}

func (r *testRegistry) execute(signer crypto.Signer, typ string, attr any) (*types.TransactionRecord, error) {
	r.t.Helper()
	return r.txSys.Execute(r.signedTx(signer, typ, attr))
}

func (r *testRegistry) registerAirline(by int, candidate types.Address) (*AdmissionResult, error) {
	r.t.Helper()
	rec, err := r.execute(r.airlines[by], TransactionTypeRegisterAirline, &AirlineAttributes{Airline: candidate})
	if err != nil {
		return nil, err
	}
	return admissionResult(r.t, rec), nil
}

func (r *testRegistry) approveAirline(by int, candidate types.Address) (*AdmissionResult, error) {
	r.t.Helper()
	rec, err := r.execute(r.airlines[by], TransactionTypeApproveAirline, &AirlineAttributes{Airline: candidate})
	if err != nil {
		return nil, err
	}
	return admissionResult(r.t, rec), nil
}

func (r *testRegistry) fund(by int, amount *uint256.Int) error {
	r.t.Helper()
	_, err := r.execute(r.airlines[by], TransactionTypeFund, &FundAttributes{Amount: types.AmountToBytes(amount)})
	return err
}

func (r *testRegistry) registerFlight(by int, code string, timestamp uint64) (*types.TransactionRecord, error) {
	r.t.Helper()
	return r.execute(r.airlines[by], TransactionTypeRegisterFlight, &RegisterFlightAttributes{Code: code, Timestamp: timestamp})
}

func (r *testRegistry) adminTx(typ string, attr any) {
	r.t.Helper()
	_, err := r.execute(r.admin, typ, attr)
	require.NoError(r.t, err)
}

func (r *testRegistry) view() *registry.View {
	return registry.NewView(r.txSys.State())
}

func (r *testRegistry) airline(i int) *registry.AirlineData {
	r.t.Helper()
	ad, err := r.view().Airline(r.addr(i))
	require.NoError(r.t, err)
	return ad
}

func (r *testRegistry) registeredCount() uint64 {
	r.t.Helper()
	count, err := r.view().RegisteredCount()
	require.NoError(r.t, err)
	return count
}

func (r *testRegistry) flights() []*registry.FlightData {
	r.t.Helper()
	flights, err := r.view().Flights()
	require.NoError(r.t, err)
	return flights
}

func (r *testRegistry) stateBytes() []byte {
	r.t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(r.t, r.txSys.SerializeState(buf))
	return buf.Bytes()
}

// bootstrap funds the genesis airline and admits and funds airlines 1..n-1.
func (r *testRegistry) bootstrap(n int) {
	r.t.Helper()
	require.NoError(r.t, r.fund(0, DefaultMinimumStake))
	for i := 1; i < n; i++ {
		res, err := r.registerAirline(0, r.addr(i))
		require.NoError(r.t, err)
		require.True(r.t, res.Registered)
		require.NoError(r.t, r.fund(i, DefaultMinimumStake))
	}
	require.EqualValues(r.t, n, r.registeredCount())
}

func admissionResult(t *testing.T, rec *types.TransactionRecord) *AdmissionResult {
	t.Helper()
	res := &AdmissionResult{}
	require.NoError(t, types.Cbor.Unmarshal(rec.ServerMetadata.ProcessingDetails, res))
	return res
}

func TestNewModule(t *testing.T) {
	store, err := registry.NewStore(state.NewEmptyState(), types.BytesToAddress([]byte{0xad}))
	require.NoError(t, err)

	tests := []struct {
		name    string
		store   DataStore
		options *Options
		wantErr string
	}{
		{name: "store is nil", options: defaultOptions(), wantErr: "data store is nil"},
		{name: "options are nil", store: store, wantErr: "surety module options are missing"},
		{name: "app is missing", store: store, options: defaultOptions(), wantErr: "application identity is missing"},
		{name: "minimum stake is zero", store: store, options: &Options{app: app, minimumStake: uint256.NewInt(0)}, wantErr: "minimum stake must be greater than zero"},
		{name: "minimum stake is nil", store: store, options: &Options{app: app}, wantErr: "minimum stake must be greater than zero"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewModule(tc.store, tc.options)
			require.EqualError(t, err, tc.wantErr)
			require.Nil(t, m)
		})
	}

	t.Run("success", func(t *testing.T) {
		m, err := NewModule(store, &Options{app: app, minimumStake: DefaultMinimumStake})
		require.NoError(t, err)
		require.Len(t, m.TxHandlers(), 4)
	})
}

func TestNewTxSystem(t *testing.T) {
	admin := types.BytesToAddress([]byte{0xad})

	_, err := NewTxSystem(observability.Default(t), WithAdmin(admin), WithApp(app))
	require.EqualError(t, err, "state is nil")

	_, err = NewTxSystem(observability.Default(t), WithState(state.NewEmptyState()), WithApp(app))
	require.ErrorIs(t, err, registry.ErrMissingAdmin)

	_, err = NewTxSystem(observability.Default(t), WithState(state.NewEmptyState()), WithAdmin(admin))
	require.ErrorContains(t, err, "application identity is missing")
}

func TestGenesis(t *testing.T) {
	r := newTestRegistry(t, 1)
	v := r.view()

	ok, err := v.IsOperational()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 0, v.Round())
	require.EqualValues(t, 1, r.registeredCount())

	ad := r.airline(0)
	require.True(t, ad.Registered)
	require.False(t, ad.Funded)

	ok, err = v.IsCallerAuthorized(app)
	require.NoError(t, err)
	require.True(t, ok)

	airlines, err := v.Airlines()
	require.NoError(t, err)
	require.Equal(t, []types.Address{r.addr(0)}, airlines)
	require.Empty(t, r.flights())
}

func TestOperationalGate(t *testing.T) {
	t.Run("only administrator sets operating status", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		_, err := r.execute(r.airlines[0], registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: false})
		require.ErrorIs(t, err, types.ErrUnauthorized)
		ok, err := r.view().IsOperational()
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("closed gate rejects every mutation", func(t *testing.T) {
		r := newTestRegistry(t, 3)
		r.bootstrap(2)
		_, err := r.registerFlight(0, "FS100", 1700000000)
		require.NoError(t, err)

		r.adminTx(registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: false})
		before := r.stateBytes()

		_, err = r.registerAirline(0, r.addr(2))
		require.ErrorIs(t, err, types.ErrNotOperational)
		_, err = r.approveAirline(0, r.addr(2))
		require.ErrorIs(t, err, types.ErrNotOperational)
		require.ErrorIs(t, r.fund(0, DefaultMinimumStake), types.ErrNotOperational)
		_, err = r.registerFlight(0, "FS200", 1700000000)
		require.ErrorIs(t, err, types.ErrNotOperational)
		_, err = r.execute(r.admin, registry.TransactionTypeAuthorizeCaller, &registry.CallerAttributes{Caller: r.addr(2)})
		require.ErrorIs(t, err, types.ErrNotOperational)
		_, err = r.execute(r.admin, registry.TransactionTypeDeauthorizeCaller, &registry.CallerAttributes{Caller: app})
		require.ErrorIs(t, err, types.ErrNotOperational)
		require.Equal(t, "NotOperational", types.ErrorKind(err))

		require.Equal(t, before, r.stateBytes())

		// reads keep working
		require.Len(t, r.flights(), 1)

		r.adminTx(registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: true})
		res, err := r.registerAirline(0, r.addr(2))
		require.NoError(t, err)
		require.True(t, res.Registered)
		_, err = r.registerFlight(0, "FS200", 1700000000)
		require.NoError(t, err)
	})

	t.Run("gate is checked before caller authorization", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		r.adminTx(registry.TransactionTypeDeauthorizeCaller, &registry.CallerAttributes{Caller: app})
		r.adminTx(registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: false})

		_, err := r.registerAirline(0, r.addr(1))
		require.ErrorIs(t, err, types.ErrNotOperational)
	})
}

func TestReplayedOrders(t *testing.T) {
	t.Run("closing order of the administrator is not executed again", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		closeGate := r.signedTx(r.admin, registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: false})
		_, err := r.txSys.Execute(closeGate)
		require.NoError(t, err)
		r.adminTx(registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: true})
		before := r.stateBytes()

		_, err = r.txSys.Execute(closeGate)
		require.ErrorIs(t, err, txsystem.ErrTxReplayed)
		ok, err := r.view().IsOperational()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, before, r.stateBytes())
	})

	t.Run("deauthorized caller stays deauthorized", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		caller := r.addr(1)
		authorize := r.signedTx(r.admin, registry.TransactionTypeAuthorizeCaller, &registry.CallerAttributes{Caller: caller})
		_, err := r.txSys.Execute(authorize)
		require.NoError(t, err)
		r.adminTx(registry.TransactionTypeDeauthorizeCaller, &registry.CallerAttributes{Caller: caller})

		_, err = r.txSys.Execute(authorize)
		require.ErrorIs(t, err, txsystem.ErrTxReplayed)
		ok, err := r.view().IsCallerAuthorized(caller)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("airline order is not executed again", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		require.NoError(t, r.fund(0, DefaultMinimumStake))
		register := r.signedTx(r.airlines[0], TransactionTypeRegisterFlight, &RegisterFlightAttributes{Code: "FS100", Timestamp: 1700000000})
		_, err := r.txSys.Execute(register)
		require.NoError(t, err)
		_, err = r.txSys.Execute(register)
		require.ErrorIs(t, err, txsystem.ErrTxReplayed)
		require.Len(t, r.flights(), 1)
	})

	t.Run("timeout must be set and within the window", func(t *testing.T) {
		r := newTestRegistry(t, 2, WithMaxTimeout(10))
		attr := &registry.SetOperatingStatusAttributes{Operational: false}

		_, err := r.txSys.Execute(r.signedTx(r.admin, registry.TransactionTypeSetOperatingStatus, attr, transaction.WithTimeout(0)))
		require.ErrorIs(t, err, txsystem.ErrMissingTimeout)
		_, err = r.txSys.Execute(r.signedTx(r.admin, registry.TransactionTypeSetOperatingStatus, attr, transaction.WithTimeout(r.txSys.CurrentRound()+11)))
		require.ErrorIs(t, err, txsystem.ErrTimeoutTooFar)
		ok, err := r.view().IsOperational()
		require.NoError(t, err)
		require.True(t, ok)

		_, err = r.txSys.Execute(r.signedTx(r.admin, registry.TransactionTypeSetOperatingStatus, attr, transaction.WithTimeout(r.txSys.CurrentRound()+10)))
		require.NoError(t, err)
		ok, err = r.view().IsOperational()
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestCallerAuthorization(t *testing.T) {
	r := newTestRegistry(t, 3)
	r.bootstrap(2)

	r.adminTx(registry.TransactionTypeDeauthorizeCaller, &registry.CallerAttributes{Caller: app})
	ok, err := r.view().IsCallerAuthorized(app)
	require.NoError(t, err)
	require.False(t, ok)
	before := r.stateBytes()

	_, err = r.registerAirline(0, r.addr(2))
	require.ErrorIs(t, err, types.ErrCallerNotAuthorized)
	require.Equal(t, "CallerNotAuthorized", types.ErrorKind(err))
	require.ErrorIs(t, r.fund(1, DefaultMinimumStake), types.ErrCallerNotAuthorized)
	_, err = r.registerFlight(0, "FS100", 1700000000)
	require.ErrorIs(t, err, types.ErrCallerNotAuthorized)
	require.Equal(t, before, r.stateBytes())

	r.adminTx(registry.TransactionTypeAuthorizeCaller, &registry.CallerAttributes{Caller: app})
	_, err = r.registerAirline(0, r.addr(2))
	require.NoError(t, err)
}

func TestRegisterAirline(t *testing.T) {
	t.Run("unfunded caller is rejected until funded", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		before := r.stateBytes()
		_, err := r.registerAirline(0, r.addr(1))
		require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
		require.Equal(t, "CallerNotFundedAirline", types.ErrorKind(err))
		require.Equal(t, before, r.stateBytes())

		require.NoError(t, r.fund(0, DefaultMinimumStake))
		res, err := r.registerAirline(0, r.addr(1))
		require.NoError(t, err)
		require.Equal(t, &AdmissionResult{Airline: r.addr(1), Registered: true, RegisteredCount: 2}, res)
	})

	t.Run("unregistered caller is rejected", func(t *testing.T) {
		r := newTestRegistry(t, 3)
		r.bootstrap(1)
		_, err := r.registerAirline(2, r.addr(1))
		require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
	})

	t.Run("registered but unfunded airline cannot register", func(t *testing.T) {
		r := newTestRegistry(t, 3)
		r.bootstrap(1)
		_, err := r.registerAirline(0, r.addr(1))
		require.NoError(t, err)
		_, err = r.registerAirline(1, r.addr(2))
		require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
	})

	t.Run("bootstrap airlines are admitted without votes", func(t *testing.T) {
		r := newTestRegistry(t, 4)
		require.NoError(t, r.fund(0, DefaultMinimumStake))
		for i := 1; i < BootstrapSize; i++ {
			res, err := r.registerAirline(0, r.addr(i))
			require.NoError(t, err)
			require.True(t, res.Registered)
			require.Zero(t, res.Votes)
			require.EqualValues(t, i+1, res.RegisteredCount)

			ad := r.airline(i)
			require.True(t, ad.Registered)
			require.False(t, ad.Funded)
			require.Equal(t, r.txSys.CommittedRound(), ad.RegisteredRound)
		}
		require.EqualValues(t, BootstrapSize, r.registeredCount())
	})

	t.Run("already registered candidate is rejected", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		r.bootstrap(2)
		_, err := r.registerAirline(0, r.addr(1))
		require.ErrorIs(t, err, types.ErrAirlineAlreadyRegistered)
		_, err = r.registerAirline(1, r.addr(0))
		require.ErrorIs(t, err, types.ErrAirlineAlreadyRegistered)
		require.Equal(t, "AirlineAlreadyRegistered", types.ErrorKind(err))
		require.EqualValues(t, 2, r.registeredCount())
	})

	t.Run("candidate address is mandatory", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		r.bootstrap(1)
		_, err := r.registerAirline(0, types.Address{})
		require.ErrorContains(t, err, "airline address is missing")
	})

	t.Run("fifth airline needs half of the registered airlines", func(t *testing.T) {
		r := newTestRegistry(t, 5)
		r.bootstrap(4)
		candidate := r.addr(4)

		res, err := r.registerAirline(0, candidate)
		require.NoError(t, err)
		require.Equal(t, &AdmissionResult{Airline: candidate, Votes: 1, RegisteredCount: 4}, res)
		require.False(t, r.airline(4).Registered)
		voters, err := r.view().Voters(candidate)
		require.NoError(t, err)
		require.Equal(t, []types.Address{r.addr(0)}, voters)

		res, err = r.approveAirline(1, candidate)
		require.NoError(t, err)
		require.Equal(t, &AdmissionResult{Airline: candidate, Registered: true, Votes: 2, RegisteredCount: 5}, res)
		require.True(t, r.airline(4).Registered)
		require.EqualValues(t, 5, r.registeredCount())

		// vote record is removed once the airline is admitted
		_, err = r.txSys.GetUnit(registry.NewVoteID(candidate), true)
		require.ErrorIs(t, err, state.ErrUnitNotFound)

		_, err = r.approveAirline(2, candidate)
		require.ErrorIs(t, err, types.ErrAirlineAlreadyRegistered)
	})

	t.Run("registering airline votes for the candidate", func(t *testing.T) {
		r := newTestRegistry(t, 6)
		r.bootstrap(4)
		candidate := r.addr(5)

		_, err := r.registerAirline(0, candidate)
		require.NoError(t, err)
		// another airline may register the same candidate, that is a vote too
		res, err := r.registerAirline(1, candidate)
		require.NoError(t, err)
		require.True(t, res.Registered)
		require.EqualValues(t, 2, res.Votes)
	})
}

func TestConsensusVoting(t *testing.T) {
	t.Run("duplicate vote is rejected", func(t *testing.T) {
		r := newTestRegistry(t, 5)
		r.bootstrap(4)
		candidate := r.addr(4)

		_, err := r.registerAirline(0, candidate)
		require.NoError(t, err)
		before := r.stateBytes()

		_, err = r.approveAirline(0, candidate)
		require.ErrorIs(t, err, types.ErrDuplicateVote)
		require.Equal(t, "DuplicateVote", types.ErrorKind(err))
		_, err = r.registerAirline(0, candidate)
		require.ErrorIs(t, err, types.ErrDuplicateVote)
		require.Equal(t, before, r.stateBytes())

		voters, err := r.view().Voters(candidate)
		require.NoError(t, err)
		require.Len(t, voters, 1)
	})

	t.Run("voting is not required below bootstrap size", func(t *testing.T) {
		r := newTestRegistry(t, 3)
		r.bootstrap(2)
		_, err := r.approveAirline(0, r.addr(2))
		require.ErrorIs(t, err, types.ErrVotingNotRequired)
		require.Equal(t, "VotingNotRequired", types.ErrorKind(err))
	})

	t.Run("unfunded airline cannot vote", func(t *testing.T) {
		r := newTestRegistry(t, 6)
		r.bootstrap(4)
		_, err := r.registerAirline(0, r.addr(4))
		require.NoError(t, err)
		_, err = r.approveAirline(1, r.addr(4))
		require.NoError(t, err)
		require.False(t, r.airline(4).Funded)

		_, err = r.registerAirline(0, r.addr(5))
		require.NoError(t, err)
		_, err = r.approveAirline(4, r.addr(5))
		require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
	})

	t.Run("quorum uses the registered count at the time of the vote", func(t *testing.T) {
		r := newTestRegistry(t, 6)
		r.bootstrap(4)
		x, y := r.addr(4), r.addr(5)

		res, err := r.registerAirline(0, x)
		require.NoError(t, err)
		require.False(t, res.Registered)
		require.EqualValues(t, 1, res.Votes)

		// y is admitted with 2 votes of 4 registered airlines
		_, err = r.registerAirline(0, y)
		require.NoError(t, err)
		res, err = r.approveAirline(1, y)
		require.NoError(t, err)
		require.True(t, res.Registered)
		require.EqualValues(t, 5, r.registeredCount())

		// 2 votes would have been enough when voting for x started, but 5
		// airlines are registered now
		res, err = r.approveAirline(1, x)
		require.NoError(t, err)
		require.Equal(t, &AdmissionResult{Airline: x, Votes: 2, RegisteredCount: 5}, res)
		require.False(t, r.airline(4).Registered)

		res, err = r.approveAirline(2, x)
		require.NoError(t, err)
		require.Equal(t, &AdmissionResult{Airline: x, Registered: true, Votes: 3, RegisteredCount: 6}, res)
		require.True(t, r.airline(4).Registered)
	})

	t.Run("vote and admission target units", func(t *testing.T) {
		r := newTestRegistry(t, 5)
		r.bootstrap(4)
		candidate := r.addr(4)

		rec, err := r.execute(r.airlines[0], TransactionTypeRegisterAirline, &AirlineAttributes{Airline: candidate})
		require.NoError(t, err)
		require.Equal(t, []types.UnitID{registry.NewVoteID(candidate)}, rec.ServerMetadata.TargetUnits)

		rec, err = r.execute(r.airlines[1], TransactionTypeApproveAirline, &AirlineAttributes{Airline: candidate})
		require.NoError(t, err)
		require.Equal(t, []types.UnitID{registry.NewVoteID(candidate), registry.NewAirlineID(candidate), registry.GovernanceID}, rec.ServerMetadata.TargetUnits)
	})
}

func TestFund(t *testing.T) {
	t.Run("unregistered caller", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		err := r.fund(1, DefaultMinimumStake)
		require.ErrorIs(t, err, types.ErrCallerNotAirline)
		require.Equal(t, "CallerNotAirline", types.ErrorKind(err))
		require.False(t, r.airline(1).Funded)
	})

	t.Run("insufficient stake", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		below := new(uint256.Int).SubUint64(DefaultMinimumStake, 1)
		err := r.fund(0, below)
		require.ErrorIs(t, err, types.ErrInsufficientStake)
		require.Equal(t, "InsufficientStake", types.ErrorKind(err))
		require.False(t, r.airline(0).Funded)
		require.ErrorIs(t, r.fund(0, uint256.NewInt(0)), types.ErrInsufficientStake)
	})

	t.Run("fund and top up", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		rec, err := r.execute(r.airlines[0], TransactionTypeFund, &FundAttributes{Amount: types.AmountToBytes(DefaultMinimumStake)})
		require.NoError(t, err)
		require.Equal(t, []types.UnitID{registry.NewAirlineID(r.addr(0))}, rec.ServerMetadata.TargetUnits)
		ad := r.airline(0)
		require.True(t, ad.Funded)
		require.Equal(t, DefaultMinimumStake, ad.StakeAmount())

		require.NoError(t, r.fund(0, DefaultMinimumStake))
		require.Equal(t, new(uint256.Int).Mul(DefaultMinimumStake, uint256.NewInt(2)), r.airline(0).StakeAmount())
	})

	t.Run("custom minimum stake", func(t *testing.T) {
		r := newTestRegistry(t, 1, WithMinimumStake(uint256.NewInt(100)))
		require.ErrorIs(t, r.fund(0, uint256.NewInt(99)), types.ErrInsufficientStake)
		require.NoError(t, r.fund(0, uint256.NewInt(100)))
		require.True(t, r.airline(0).Funded)
	})

	t.Run("invalid amount encoding", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		_, err := r.execute(r.airlines[0], TransactionTypeFund, &FundAttributes{Amount: make([]byte, 33)})
		require.ErrorContains(t, err, "invalid amount")
	})
}

func TestRegisterFlight(t *testing.T) {
	const ts = uint64(1700000000)

	t.Run("unfunded airline", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		_, err := r.registerFlight(0, "FS100", ts)
		require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
		require.Empty(t, r.flights())
	})

	t.Run("duplicate flight", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		r.bootstrap(1)

		rec, err := r.registerFlight(0, "FS100", ts)
		require.NoError(t, err)
		id := registry.NewFlightID(r.addr(0), "FS100", ts)
		require.Equal(t, []types.UnitID{id, registry.GovernanceID}, rec.ServerMetadata.TargetUnits)
		res := &FlightResult{}
		require.NoError(t, types.Cbor.Unmarshal(rec.ServerMetadata.ProcessingDetails, res))
		require.Equal(t, &FlightResult{FlightID: id, Seq: 0}, res)
		require.Len(t, r.flights(), 1)

		before := r.stateBytes()
		_, err = r.registerFlight(0, "FS100", ts)
		require.ErrorIs(t, err, types.ErrDuplicateFlight)
		require.Equal(t, "DuplicateFlight", types.ErrorKind(err))
		require.Equal(t, before, r.stateBytes())
		require.Len(t, r.flights(), 1)
	})

	t.Run("flights are listed in registration order", func(t *testing.T) {
		r := newTestRegistry(t, 2)
		r.bootstrap(2)
		regs := []struct {
			airline int
			code    string
			ts      uint64
		}{
			{1, "ZZ900", ts + 3600},
			{0, "AA001", ts},
			{1, "AA001", ts},
			{0, "AA001", ts + 60},
		}
		for _, reg := range regs {
			_, err := r.registerFlight(reg.airline, reg.code, reg.ts)
			require.NoError(t, err)
		}

		flights := r.flights()
		require.Len(t, flights, len(regs))
		for i, reg := range regs {
			require.Equal(t, r.addr(reg.airline), flights[i].Airline)
			require.Equal(t, reg.code, flights[i].Code)
			require.Equal(t, reg.ts, flights[i].Timestamp)
			require.EqualValues(t, i, flights[i].Seq)
			require.Equal(t, types.FlightStatusUnknown, flights[i].Status)
		}
		// reads do not change anything
		require.Equal(t, flights, r.flights())

		f, err := r.view().Flight(r.addr(1), "AA001", ts)
		require.NoError(t, err)
		require.Equal(t, flights[2], f)
	})

	t.Run("flight code is validated", func(t *testing.T) {
		r := newTestRegistry(t, 1)
		r.bootstrap(1)
		_, err := r.registerFlight(0, "", ts)
		require.ErrorContains(t, err, "flight code is missing")
		_, err = r.registerFlight(0, strings.Repeat("F", maxFlightCodeLength+1), ts)
		require.ErrorContains(t, err, "flight code is 33 bytes, max 32 bytes allowed")
		_, err = r.registerFlight(0, strings.Repeat("F", maxFlightCodeLength), ts)
		require.NoError(t, err)
	})
}

func TestStateIsUnchangedByFailedOrders(t *testing.T) {
	r := newTestRegistry(t, 5)
	r.bootstrap(4)
	round := r.txSys.CommittedRound()
	before := r.stateBytes()

	_, err := r.approveAirline(0, r.addr(1))
	require.ErrorIs(t, err, types.ErrAirlineAlreadyRegistered)
	_, err = r.execute(r.airlines[4], TransactionTypeApproveAirline, &AirlineAttributes{Airline: r.addr(4)})
	require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
	require.ErrorIs(t, r.fund(4, DefaultMinimumStake), types.ErrCallerNotAirline)
	_, err = r.execute(r.airlines[0], "unknown", &AirlineAttributes{})
	require.ErrorContains(t, err, "unknown transaction type unknown")

	require.Equal(t, round, r.txSys.CommittedRound())
	require.Equal(t, before, r.stateBytes())
}
