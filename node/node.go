package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/flightsurety/flightsurety/keyvaluedb"
	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/observability"
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txbuffer"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/types"
)

var (
	ErrTxSystemIsNil = errors.New("transaction system is nil")
	// ErrPersistRound is returned when the committed round could not be
	// written into the db, the node stops.
	ErrPersistRound = errors.New("persisting round")
)

type (
	Observability interface {
		Tracer(name string, options ...trace.TracerOption) trace.Tracer
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Logger() *slog.Logger
	}

	/*
	Node is the single writer of the registry: orders submitted concurrently are
	queued in the tx buffer and executed one at a time by the main loop. The
	units changed by an order are persisted (when the node has a db) before the
	submitter receives the result.
	*/
	Node struct {
		txSystem txsystem.TransactionSystem
		buffer   *txbuffer.TxBuffer
		db       keyvaluedb.KeyValueDB
		log      *slog.Logger
		tracer   trace.Tracer
		procTime metric.Float64Histogram
	}

	Option func(*Node)
)

// WithDB makes the node persist the committed units into db.
func WithDB(db keyvaluedb.KeyValueDB) Option {
	return func(n *Node) {
		n.db = db
	}
}

func New(txSystem txsystem.TransactionSystem, buffer *txbuffer.TxBuffer, observe Observability, opts ...Option) (*Node, error) {
	if txSystem == nil {
		return nil, ErrTxSystemIsNil
	}
	if buffer == nil {
		return nil, errors.New("tx buffer is nil")
	}
	if observe == nil {
		return nil, errors.New("observability must not be nil")
	}
	n := &Node{
		txSystem: txSystem,
		buffer:   buffer,
		log:      slog.New(logger.NewRoundHandler(observe.Logger().Handler(), txSystem.CommittedRound)).With(logger.Module("node")),
		tracer:   observe.Tracer("node"),
	}
	for _, opt := range opts {
		opt(n)
	}
	if err := n.initMetrics(observe); err != nil {
		return nil, fmt.Errorf("initialize metrics: %w", err)
	}
	return n, nil
}

func (n *Node) initMetrics(observe Observability) error {
	m := observe.Meter("node")
	_, err := m.Int64ObservableCounter("round", metric.WithDescription("latest committed round"),
		metric.WithInt64Callback(func(ctx context.Context, io metric.Int64Observer) error {
			io.Observe(int64(n.txSystem.CommittedRound())) /* #nosec G115 its unlikely that value of round exceeds int64 max value */
			return nil
		}))
	if err != nil {
		return fmt.Errorf("creating counter for round number: %w", err)
	}
	n.procTime, err = m.Float64Histogram("process.time",
		metric.WithDescription("How long it took to execute the order and persist the result"),
		metric.WithUnit("s"))
	if err != nil {
		return fmt.Errorf("creating histogram for processing time: %w", err)
	}
	return nil
}

/*
Run executes the queued orders until ctx is cancelled or persisting the
result of an order fails.
*/
func (n *Node) Run(ctx context.Context) error {
	n.log.InfoContext(ctx, "node started", logger.Round(n.txSystem.CommittedRound()))
	for {
		req, err := n.buffer.Remove(ctx)
		if err != nil {
			return err
		}
		rec, err := n.process(ctx, req.Tx)
		req.Reply(rec, err)
		if errors.Is(err, ErrPersistRound) {
			return err
		}
	}
}

func (n *Node) process(ctx context.Context, tx *types.TransactionOrder) (_ *types.TransactionRecord, rErr error) {
	ctx, span := n.tracer.Start(ctx, "node.process", trace.WithAttributes(observability.TxType(tx.PayloadType())))
	start := time.Now()
	defer func() {
		n.procTime.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(observability.TxType(tx.PayloadType()), observability.ErrStatus(rErr)))
		if rErr != nil {
			span.RecordError(rErr)
			span.SetStatus(codes.Error, rErr.Error())
		}
		span.End()
	}()

	rec, changed, err := n.txSystem.ExecuteOrder(tx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(observability.Round(rec.Round))
	if n.db != nil {
		if err := writeUnits(n.db, n.txSystem.State(), changed); err != nil {
			n.log.ErrorContext(ctx, "persisting round", logger.Error(err), logger.Round(rec.Round))
			return nil, fmt.Errorf("%w %d: %w", ErrPersistRound, rec.Round, err)
		}
	}
	n.log.DebugContext(ctx, fmt.Sprintf("%s executed", tx.PayloadType()), logger.Round(rec.Round), logger.Airline(tx.Sender()))
	return rec, nil
}

/*
SubmitTx queues the order for execution and waits for the result. The order
is executed even when ctx is cancelled after it has been queued.
*/
func (n *Node) SubmitTx(ctx context.Context, tx *types.TransactionOrder) (*types.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req, err := n.buffer.Add(ctx, tx)
	if err != nil {
		return nil, err
	}
	return req.Wait(ctx)
}

// State returns a snapshot of the committed state.
func (n *Node) State() *state.State {
	return n.txSystem.State()
}

// View returns read-only view of the latest committed round of the registry.
func (n *Node) View() *registry.View {
	return registry.NewView(n.txSystem.State())
}

func (n *Node) CommittedRound() uint64 {
	return n.txSystem.CommittedRound()
}

func (n *Node) SerializeState(w io.Writer) error {
	return n.txSystem.SerializeState(w)
}
