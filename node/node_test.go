package node

import (
	"bytes"
	"context"
	gocrypto "crypto"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flightsurety/flightsurety/crypto"
	"github.com/flightsurety/flightsurety/internal/testutils/observability"
	testsig "github.com/flightsurety/flightsurety/internal/testutils/sig"
	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/keyvaluedb/memorydb"
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txbuffer"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/txsystem/surety"
	"github.com/flightsurety/flightsurety/txsystem/testutils/transaction"
	"github.com/flightsurety/flightsurety/types"
)

type testNode struct {
	*Node
	done chan error
	stop func()
}

func newTestGenesis(t *testing.T, airlines int) (*Genesis, crypto.Signer, []crypto.Signer) {
	t.Helper()
	signers := testsig.NewSigners(t, airlines+2)
	admin, app := signers[0], signers[1]
	return NewGenesis(admin.Address(), signers[2].Address(), app.Address()), admin, signers[2:]
}

// startTestNode starts the node over the state loaded from db (or genesis when db is empty).
func startTestNode(t *testing.T, g *Genesis, db keyvaluedb.KeyValueDB) *testNode {
	t.Helper()
	obs := observability.Default(t)
	initial, err := g.State()
	require.NoError(t, err)
	s, err := LoadState(db, initial)
	require.NoError(t, err)
	opts, err := g.TxSystemOptions(s)
	require.NoError(t, err)
	txSys, err := surety.NewTxSystem(obs, opts...)
	require.NoError(t, err)
	buf, err := txbuffer.New(10, gocrypto.SHA256, obs)
	require.NoError(t, err)
	n, err := New(txSys, buf, obs, WithDB(db))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()
	stop := sync.OnceFunc(func() {
		cancel()
		<-done
	})
	t.Cleanup(stop)
	return &testNode{Node: n, done: done, stop: stop}
}

func (n *testNode) submit(t *testing.T, signer crypto.Signer, typ string, attr any) (*types.TransactionRecord, error) {
	t.Helper()
	tx := transaction.NewSignedTransactionOrder(t, signer,
		transaction.WithPayloadType(typ),
		transaction.WithAttributes(attr))
	return n.SubmitTx(context.Background(), tx)
}

func (n *testNode) fund(t *testing.T, signer crypto.Signer) {
	t.Helper()
	_, err := n.submit(t, signer, surety.TransactionTypeFund, &surety.FundAttributes{Amount: types.AmountToBytes(surety.DefaultMinimumStake)})
	require.NoError(t, err)
}

func TestNew(t *testing.T) {
	obs := observability.NOPObservability()
	buf, err := txbuffer.New(1, gocrypto.SHA256, obs)
	require.NoError(t, err)

	n, err := New(nil, buf, obs)
	require.ErrorIs(t, err, ErrTxSystemIsNil)
	require.Nil(t, n)

	g, _, _ := newTestGenesis(t, 1)
	s, err := g.State()
	require.NoError(t, err)
	opts, err := g.TxSystemOptions(s)
	require.NoError(t, err)
	txSys, err := surety.NewTxSystem(obs, opts...)
	require.NoError(t, err)

	_, err = New(txSys, nil, obs)
	require.EqualError(t, err, "tx buffer is nil")
	_, err = New(txSys, buf, nil)
	require.EqualError(t, err, "observability must not be nil")

	n, err = New(txSys, buf, obs)
	require.NoError(t, err)
	require.Nil(t, n.db)
	require.EqualValues(t, 0, n.CommittedRound())
}

func TestNode_SubmitTx(t *testing.T) {
	g, _, airlines := newTestGenesis(t, 4)
	n := startTestNode(t, g, memorydb.New())

	t.Run("failure is returned to the submitter", func(t *testing.T) {
		_, err := n.submit(t, airlines[0], surety.TransactionTypeRegisterFlight, &surety.RegisterFlightAttributes{Code: "FS1", Timestamp: 1})
		require.ErrorIs(t, err, types.ErrCallerNotFundedAirline)
		require.EqualValues(t, 0, n.CommittedRound())
	})

	t.Run("concurrent submitters", func(t *testing.T) {
		n.fund(t, airlines[0])
		var wg sync.WaitGroup
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tx := transaction.NewSignedTransactionOrder(t, airlines[0],
					transaction.WithPayloadType(surety.TransactionTypeRegisterFlight),
					transaction.WithAttributes(&surety.RegisterFlightAttributes{Code: "FS1", Timestamp: uint64(i)}))
				// the buffer may be full, retry until accepted
				for {
					_, err := n.SubmitTx(context.Background(), tx)
					if errors.Is(err, txbuffer.ErrTxBufferFull) {
						continue
					}
					errs <- err
					return
				}
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		flights, err := n.View().Flights()
		require.NoError(t, err)
		require.Len(t, flights, 10)
		for i, f := range flights {
			require.EqualValues(t, i, f.Seq)
		}
		// one round per order
		require.EqualValues(t, 11, n.CommittedRound())
	})

	t.Run("cancelled submitter", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		tx := transaction.NewSignedTransactionOrder(t, airlines[0],
			transaction.WithPayloadType(surety.TransactionTypeRegisterFlight),
			transaction.WithAttributes(&surety.RegisterFlightAttributes{Code: "FS2", Timestamp: 1}))
		_, err := n.SubmitTx(ctx, tx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNode_Recovery(t *testing.T) {
	g, _, airlines := newTestGenesis(t, 5)
	db := memorydb.New()
	n := startTestNode(t, g, db)

	n.fund(t, airlines[0])
	for i := 1; i < 4; i++ {
		_, err := n.submit(t, airlines[0], surety.TransactionTypeRegisterAirline, &surety.AirlineAttributes{Airline: airlines[i].Address()})
		require.NoError(t, err)
		n.fund(t, airlines[i])
	}
	_, err := n.submit(t, airlines[0], surety.TransactionTypeRegisterFlight, &surety.RegisterFlightAttributes{Code: "FS100", Timestamp: 1700000000})
	require.NoError(t, err)

	candidate := airlines[4].Address()
	_, err = n.submit(t, airlines[0], surety.TransactionTypeRegisterAirline, &surety.AirlineAttributes{Airline: candidate})
	require.NoError(t, err)
	found, err := db.Read(unitKey(registry.NewVoteID(candidate)), &state.UnitRecord{})
	require.NoError(t, err)
	require.True(t, found)

	_, err = n.submit(t, airlines[1], surety.TransactionTypeApproveAirline, &surety.AirlineAttributes{Airline: candidate})
	require.NoError(t, err)
	// vote record is deleted from the db too
	found, err = db.Read(unitKey(registry.NewVoteID(candidate)), &state.UnitRecord{})
	require.NoError(t, err)
	require.False(t, found)

	want := &bytes.Buffer{}
	require.NoError(t, n.SerializeState(want))

	// state restored from the db equals the state of the node
	s, err := LoadState(db, nil)
	require.NoError(t, err)
	require.Equal(t, n.CommittedRound(), s.CommittedRound())
	got := &bytes.Buffer{}
	require.NoError(t, s.Serialize(got, true))
	require.Equal(t, want.Bytes(), got.Bytes())

	count, err := registry.NewView(s).RegisteredCount()
	require.NoError(t, err)
	require.EqualValues(t, 5, count)
}

func TestNode_ReplayAfterRestart(t *testing.T) {
	g, admin, _ := newTestGenesis(t, 1)
	db := memorydb.New()
	n := startTestNode(t, g, db)

	closeGate := transaction.NewSignedTransactionOrder(t, admin,
		transaction.WithPayloadType(registry.TransactionTypeSetOperatingStatus),
		transaction.WithAttributes(&registry.SetOperatingStatusAttributes{Operational: false}))
	_, err := n.SubmitTx(context.Background(), closeGate)
	require.NoError(t, err)
	_, err = n.submit(t, admin, registry.TransactionTypeSetOperatingStatus, &registry.SetOperatingStatusAttributes{Operational: true})
	require.NoError(t, err)
	n.stop()

	// executed orders are remembered by the restored node
	n = startTestNode(t, g, db)
	_, err = n.SubmitTx(context.Background(), closeGate)
	require.ErrorIs(t, err, txsystem.ErrTxReplayed)
	ok, err := n.View().IsOperational()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 2, n.CommittedRound())
}

func TestNode_PersistFailure(t *testing.T) {
	g, _, airlines := newTestGenesis(t, 1)
	db := memorydb.New()
	n := startTestNode(t, g, db)

	db.MockWriteError(errors.New("disk full"))
	_, err := n.submit(t, airlines[0], surety.TransactionTypeFund, &surety.FundAttributes{Amount: types.AmountToBytes(surety.DefaultMinimumStake)})
	require.ErrorIs(t, err, ErrPersistRound)
	require.ErrorContains(t, err, "disk full")

	// the node stops
	err = <-n.done
	require.ErrorIs(t, err, ErrPersistRound)
	n.done <- err
}

func TestLoadState(t *testing.T) {
	t.Run("empty db without initial state", func(t *testing.T) {
		s, err := LoadState(memorydb.New(), nil)
		require.EqualError(t, err, "db is empty and initial state is missing")
		require.Nil(t, s)
	})

	t.Run("initial state is persisted", func(t *testing.T) {
		g, _, _ := newTestGenesis(t, 1)
		initial, err := g.State()
		require.NoError(t, err)
		db := memorydb.New()

		s, err := LoadState(db, initial)
		require.NoError(t, err)
		require.Same(t, initial, s)

		var round uint64 = 1
		found, err := db.Read(roundKey, &round)
		require.NoError(t, err)
		require.True(t, found)
		require.EqualValues(t, 0, round)

		restored, err := LoadState(db, nil)
		require.NoError(t, err)
		ok, err := registry.NewView(restored).IsAirlineRegistered(g.FirstAirline)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = registry.NewView(restored).IsCallerAuthorized(g.App)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("round is missing", func(t *testing.T) {
		db := memorydb.New()
		require.NoError(t, db.Write(unitKey(registry.GovernanceID), &state.UnitRecord{UnitID: registry.GovernanceID}))
		_, err := LoadState(db, nil)
		require.EqualError(t, err, "round is missing from the db")
	})
}
