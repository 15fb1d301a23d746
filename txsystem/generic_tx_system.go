package txsystem

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/observability"
	"github.com/flightsurety/flightsurety/state"
	txtypes "github.com/flightsurety/flightsurety/txsystem/types"
	"github.com/flightsurety/flightsurety/types"
)

var _ TransactionSystem = (*GenericTxSystem)(nil)

type GenericTxSystem struct {
	mu            sync.Mutex
	hashAlgorithm crypto.Hash
	state         *state.State
	currentRound  uint64
	maxTimeout    uint64
	executors     txtypes.TxExecutors
	log           *slog.Logger

	txCount  metric.Int64Counter
	execTime metric.Float64Histogram
}

type Observability interface {
	Meter(name string, opts ...metric.MeterOption) metric.Meter
	Logger() *slog.Logger
}

func NewGenericTxSystem(modules []txtypes.Module, observe Observability, opts ...Option) (*GenericTxSystem, error) {
	if observe == nil {
		return nil, errors.New("observability must not be nil")
	}
	options := defaultOptions()
	for _, option := range opts {
		option(options)
	}
	if err := options.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	txs := &GenericTxSystem{
		hashAlgorithm: options.hashAlgorithm,
		state:         options.state,
		currentRound:  options.state.CommittedRound() + 1,
		maxTimeout:    options.maxTimeout,
		executors:     make(txtypes.TxExecutors),
		log:           observe.Logger(),
	}

	for _, module := range modules {
		if err := txs.executors.Add(module.TxHandlers()); err != nil {
			return nil, fmt.Errorf("registering tx executors: %w", err)
		}
	}

	if err := txs.initMetrics(observe.Meter("txsystem")); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	return txs, nil
}

func (m *GenericTxSystem) Execute(tx *types.TransactionOrder) (*types.TransactionRecord, error) {
	rec, _, err := m.ExecuteOrder(tx)
	return rec, err
}

func (m *GenericTxSystem) ExecuteOrder(tx *types.TransactionOrder) (*types.TransactionRecord, []types.UnitID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	rec, changed, err := m.doExecute(tx)
	m.recordExecution(tx, err, time.Since(start))
	return rec, changed, err
}

func (m *GenericTxSystem) doExecute(tx *types.TransactionOrder) (rec *types.TransactionRecord, changed []types.UnitID, rErr error) {
	if err := m.validateGenericTransaction(tx); err != nil {
		return nil, nil, fmt.Errorf("invalid transaction: %w", err)
	}
	orderID, err := m.executedOrderID(tx)
	if err != nil {
		return nil, nil, err
	}
	if err := m.checkNotExecuted(orderID); err != nil {
		return nil, nil, err
	}

	savepointID := m.state.Savepoint()
	defer func() {
		if rErr != nil {
			// transaction execution failed. revert every change made by the transaction order
			m.state.RollbackToSavepoint(savepointID)
		}
	}()

	m.log.Debug(fmt.Sprintf("execute %s", tx.PayloadType()), logger.TxType(tx.PayloadType()), logger.Data(tx), logger.Round(m.currentRound))
	sm, err := m.executors.ValidateAndExecute(tx, txtypes.NewExecutionContext(m))
	if err != nil {
		return nil, nil, err
	}
	records, err := m.rememberOrder(orderID)
	if err != nil {
		return nil, nil, err
	}

	trx := &types.TransactionRecord{
		TransactionOrder: tx,
		ServerMetadata:   sm,
		Round:            m.currentRound,
	}
	trxHash, err := trx.Hash(m.hashAlgorithm)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing transaction record: %w", err)
	}
	for _, targetID := range sm.TargetUnits {
		// units deleted by the transaction have no ledger to extend
		if _, err := m.state.GetUnit(targetID, false); errors.Is(err, state.ErrUnitNotFound) {
			continue
		}
		if err := m.state.AddUnitLog(targetID, trxHash); err != nil {
			return nil, nil, fmt.Errorf("adding unit log: %w", err)
		}
	}

	// transaction execution succeeded
	m.state.ReleaseToSavepoint(savepointID)
	if err := m.state.Commit(m.currentRound); err != nil {
		m.state.Revert()
		return nil, nil, fmt.Errorf("committing round %d: %w", m.currentRound, err)
	}
	m.currentRound++
	return trx, append(slices.Clone(sm.TargetUnits), records...), nil
}

/*
validateGenericTransaction does the tx validation common to all tx systems.
The type-specific validity conditions must be implemented by the tx handler.
*/
func (m *GenericTxSystem) validateGenericTransaction(tx *types.TransactionOrder) error {
	if tx == nil || tx.Payload == nil {
		return ErrMissingPayload
	}
	if tx.Sender() == (types.Address{}) {
		return ErrMissingSender
	}
	timeout := tx.Timeout()
	if timeout == 0 {
		return ErrMissingTimeout
	}
	if m.currentRound >= timeout {
		return ErrTransactionExpired
	}
	if timeout-m.currentRound > m.maxTimeout {
		return fmt.Errorf("%w: timeout %d, current round %d, max %d rounds ahead", ErrTimeoutTooFar, timeout, m.currentRound, m.maxTimeout)
	}
	if err := VerifyOwnerProof(tx); err != nil {
		return err
	}
	return nil
}

func (m *GenericTxSystem) recordExecution(tx *types.TransactionOrder, err error, d time.Duration) {
	attrs := []attribute.KeyValue{
		observability.TxType(tx.PayloadType()),
		observability.ErrStatus(err),
		observability.ErrKind(err),
	}
	ctx := context.Background()
	m.txCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.execTime.Record(ctx, d.Seconds(), metric.WithAttributes(attrs[:2]...))
	if err != nil {
		m.log.Debug(fmt.Sprintf("%s rejected", tx.PayloadType()), logger.Error(err), logger.ErrorKind(err))
	}
}

// GetUnit returns the unit from the current (uncommitted) state when
// committed is false.
func (m *GenericTxSystem) GetUnit(id types.UnitID, committed bool) (*state.Unit, error) {
	return m.state.GetUnit(id, committed)
}

// CurrentRound returns the number of the round the next order is executed in.
func (m *GenericTxSystem) CurrentRound() uint64 { return m.currentRound }

func (m *GenericTxSystem) CommittedRound() uint64 {
	return m.state.CommittedRound()
}

func (m *GenericTxSystem) State() *state.State {
	return m.state.Clone()
}

func (m *GenericTxSystem) SerializeState(writer io.Writer) error {
	return m.state.Serialize(writer, true)
}

func (m *GenericTxSystem) initMetrics(mtr metric.Meter) (err error) {
	if _, err := mtr.Int64ObservableUpDownCounter(
		"unit.count",
		metric.WithDescription(`Number of units in the state.`),
		metric.WithUnit("{unit}"),
		metric.WithInt64Callback(func(ctx context.Context, io metric.Int64Observer) error {
			io.Observe(int64(m.state.Size()))
			return nil
		}),
	); err != nil {
		return fmt.Errorf("creating state unit counter: %w", err)
	}

	if m.txCount, err = mtr.Int64Counter("tx.count",
		metric.WithDescription("Number of transaction orders executed, by type, status and failure kind."),
		metric.WithUnit("{transaction}"),
	); err != nil {
		return fmt.Errorf("creating tx counter: %w", err)
	}

	if m.execTime, err = mtr.Float64Histogram("exec.tx.time",
		metric.WithDescription("How long it took to execute a transaction order."),
		metric.WithUnit("s"),
	); err != nil {
		return fmt.Errorf("creating tx execution time histogram: %w", err)
	}
	return nil
}
