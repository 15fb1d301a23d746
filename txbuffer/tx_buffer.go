package txbuffer

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/observability"
	"github.com/flightsurety/flightsurety/types"
)

var (
	ErrTxIsNil      = errors.New("tx is nil")
	ErrTxInBuffer   = errors.New("tx already in tx buffer")
	ErrTxBufferFull = errors.New("tx buffer is full")
)

type (
	// TxBuffer is an in-memory queue of transaction orders waiting to be executed.
	TxBuffer struct {
		mutex         sync.Mutex
		transactions  map[string]time.Time // index of pending transactions, hash->added_ts
		requestsCh    chan *Request
		hashAlgorithm crypto.Hash
		log           *slog.Logger
		tracer        trace.Tracer

		mDur metric.Float64Histogram
	}

	/*
	Request is a transaction order in the buffer. The submitter waits for the
	outcome of the execution with Wait, the executor reports it with Reply.
	*/
	Request struct {
		Tx   *types.TransactionOrder
		Hash []byte

		reply chan result
	}

	result struct {
		rec *types.TransactionRecord
		err error
	}

	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Tracer(name string, options ...trace.TracerOption) trace.Tracer
		Logger() *slog.Logger
	}
)

/*
New creates a new instance of the TxBuffer.
MaxSize specifies the total number of transactions the TxBuffer may contain.
*/
func New(maxSize uint, hashAlgorithm crypto.Hash, obs Observability) (*TxBuffer, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("buffer max size must be greater than zero, got %d", maxSize)
	}
	if !hashAlgorithm.Available() {
		return nil, fmt.Errorf("buffer hash algorithm not available")
	}

	buf := &TxBuffer{
		hashAlgorithm: hashAlgorithm,
		transactions:  make(map[string]time.Time),
		requestsCh:    make(chan *Request, maxSize),
		log:           obs.Logger(),
		tracer:        obs.Tracer("txBuffer"),
	}
	if err := buf.initMetrics(obs); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	return buf, nil
}

/*
Add adds the given transaction into the transaction buffer.
Returns an error if the transaction is nil, is already present in the TxBuffer,
or TxBuffer is full.
*/
func (buf *TxBuffer) Add(ctx context.Context, tx *types.TransactionOrder) (*Request, error) {
	ctx, span := buf.tracer.Start(ctx, "TxBuffer.Add")
	defer span.End()
	if tx == nil {
		return nil, ErrTxIsNil
	}

	txHash, err := tx.Hash(buf.hashAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("hashing transaction: %w", err)
	}
	buf.log.DebugContext(ctx, fmt.Sprintf("received transaction (type=%s), hash %X", tx.PayloadType(), txHash), logger.Airline(tx.Sender()))
	txId := string(txHash)
	span.SetAttributes(observability.TxHash(txHash), observability.TxType(tx.PayloadType()))

	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	if _, found := buf.transactions[txId]; found {
		return nil, ErrTxInBuffer
	}

	req := &Request{Tx: tx, Hash: txHash, reply: make(chan result, 1)}
	select {
	case buf.requestsCh <- req:
		buf.transactions[txId] = time.Now()
	default:
		return nil, ErrTxBufferFull
	}

	return req, nil
}

// Remove returns the oldest request in the buffer, blocking until there is one or ctx is done.
func (buf *TxBuffer) Remove(ctx context.Context) (*Request, error) {
	_, span := buf.tracer.Start(ctx, "TxBuffer.Remove")
	defer span.End()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case req := <-buf.requestsCh:
		span.SetAttributes(observability.TxHash(req.Hash), observability.TxType(req.Tx.PayloadType()))
		buf.removeFromIndex(ctx, string(req.Hash))
		return req, nil
	}
}

/*
removeFromIndex deletes the transaction with given id from the index.
*/
func (buf *TxBuffer) removeFromIndex(ctx context.Context, id string) {
	_, span := buf.tracer.Start(ctx, "TxBuffer.removeFromIndex")
	defer span.End()

	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	if added, found := buf.transactions[id]; found {
		bufTime := time.Since(added)
		span.SetAttributes(attribute.String("buffered.duration", bufTime.String()))
		buf.mDur.Record(ctx, bufTime.Seconds())
		delete(buf.transactions, id)
	}
}

func (buf *TxBuffer) HashAlgorithm() crypto.Hash {
	return buf.hashAlgorithm
}

func (buf *TxBuffer) initMetrics(obs Observability) (err error) {
	m := obs.Meter("txbuffer")

	if _, err = m.Int64ObservableUpDownCounter(
		"count",
		metric.WithDescription(`Number of transactions in the buffer.`),
		metric.WithUnit("{transaction}"),
		metric.WithInt64Callback(func(ctx context.Context, io metric.Int64Observer) error {
			io.Observe(int64(len(buf.requestsCh)))
			return nil
		}),
	); err != nil {
		return fmt.Errorf("creating tx counter: %w", err)
	}

	if buf.mDur, err = m.Float64Histogram(
		"queued",
		metric.WithDescription("For how long transaction was in the buffer before being processed."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(50e-6, 100e-6, 250e-6, 500e-6, 0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.5, 3),
	); err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	return nil
}

/*
Reply reports the outcome of executing the order to the submitter. Only the
first reply is delivered, it never blocks.
*/
func (r *Request) Reply(rec *types.TransactionRecord, err error) {
	select {
	case r.reply <- result{rec: rec, err: err}:
	default:
	}
}

// Wait blocks until the order has been executed or ctx is done.
func (r *Request) Wait(ctx context.Context) (*types.TransactionRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-r.reply:
		return res.rec, res.err
	}
}
