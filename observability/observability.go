package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tnop "go.opentelemetry.io/otel/trace/noop"
)

/*
Observability is the set of logging, metrics and tracing providers the
components of the node are given.
*/
type Observability interface {
	Tracer(name string, options ...trace.TracerOption) trace.Tracer
	TracerProvider() trace.TracerProvider
	Meter(name string, opts ...metric.MeterOption) metric.Meter
	PrometheusRegisterer() prometheus.Registerer
	MetricsHandler() http.Handler
	Shutdown() error
	Logger() *slog.Logger
}

/*
New creates observability implementation with given metrics and traces
exporters, empty exporter name disables the corresponding signal.
*/
func New(metrics, traces string, log *slog.Logger) (*Otel, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName("flightsurety"),
			semconv.ServiceVersion("0.1.0"),
		))
	if err != nil {
		return nil, fmt.Errorf("creation OTEL resource: %w", err)
	}

	o := &Otel{
		mp:  noop.NewMeterProvider(),
		tp:  tnop.NewTracerProvider(),
		log: log,
	}

	if metrics != "" {
		mp, err := o.initMeterProvider(metrics, res)
		if err != nil {
			return o, fmt.Errorf("initialize meter provider: %w", err)
		}
		o.mp = mp
		o.shutdownFuncs = append(o.shutdownFuncs, mp.Shutdown)
	}

	if traces != "" {
		tp, err := newTraceProvider(traces, res)
		if err != nil {
			return o, fmt.Errorf("initialize tracer provider: %w", err)
		}
		o.tp = tp
		o.shutdownFuncs = append(o.shutdownFuncs, tp.Shutdown)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return o, nil
}

type Otel struct {
	mp  metric.MeterProvider
	tp  trace.TracerProvider
	pr  prometheus.Registerer
	log *slog.Logger

	shutdownFuncs []func(context.Context) error
}

func (o *Otel) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, fn := range o.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("observability shutdown: %w", errors.Join(errs...))
	}
	return nil
}

func (o *Otel) Logger() *slog.Logger {
	return o.log
}

func (o *Otel) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, opts...)
}

func (o *Otel) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return o.tp.Tracer(name, options...)
}

func (o *Otel) TracerProvider() trace.TracerProvider {
	return o.tp
}

func (o *Otel) MetricsHandler() http.Handler {
	if o.pr == nil {
		return nil
	}
	return promhttp.HandlerFor(o.pr.(prometheus.Gatherer), promhttp.HandlerOpts{MaxRequestsInFlight: 1})
}

func (o *Otel) PrometheusRegisterer() prometheus.Registerer {
	return o.pr
}

func (o *Otel) initMeterProvider(exporter string, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var reader sdkmetric.Reader
	switch exporter {
	case "stdout":
		me, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("creating stdout exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(me)
	case "prometheus":
		var err error
		o.pr = prometheus.NewRegistry()
		if reader, err = promexp.New(promexp.WithRegisterer(o.pr), promexp.WithNamespace("fs")); err != nil {
			return nil, fmt.Errorf("creating Prometheus exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported metrics exporter %q", exporter)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res), sdkmetric.WithReader(reader)}
	for _, hv := range histogramViews {
		opts = append(opts, sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: hv.name, Scope: instrumentation.Scope{Name: hv.scope}},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: hv.boundaries}},
		)))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

const μs = 1e-6

// histogramViews override the default bucket boundaries (in seconds) of the histograms.
var histogramViews = []struct {
	scope, name string
	boundaries  []float64
}{
	// time the order spends in the buffer waiting for the node loop
	{scope: "txbuffer", name: "queued", boundaries: []float64{100 * μs, 500 * μs, 0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.5, 3, 6}},
	{scope: "txsystem", name: "exec.tx.time", boundaries: []float64{50 * μs, 100 * μs, 200 * μs, 400 * μs, 800 * μs, 0.0016, 0.003, 0.006, 0.015}},
	// includes persisting the units in the db
	{scope: "node", name: "process.time", boundaries: []float64{100 * μs, 500 * μs, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}},
}

func newTraceProvider(exporter string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var exp sdktrace.SpanExporter
	switch exporter {
	case "stdout":
		var err error
		if exp, err = stdouttrace.New(); err != nil {
			return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q", exporter)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}
