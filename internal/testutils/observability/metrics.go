package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	tnop "go.opentelemetry.io/otel/trace/noop"

	testlogr "github.com/flightsurety/flightsurety/internal/testutils/logger"
)

/*
NOPObservability creates observability implementation where everything is no-op.
Use it for tests for which it absolutely doesn't make sense to create any logs, traces or metrics.
*/
func NOPObservability() *Observability {
	return &Observability{
		mp:  noop.NewMeterProvider(),
		tp:  tnop.NewTracerProvider(),
		log: testlogr.NOP(),
	}
}

/*
Default creates observability implementation which logs into the test log.
Traces are exported to stdout when FS_TEST_TRACER=stdout is set.
*/
func Default(t *testing.T) *Observability {
	obs := &Observability{
		mp:  noop.NewMeterProvider(),
		tp:  tnop.NewTracerProvider(),
		log: testlogr.New(t),
	}

	if os.Getenv("FS_TEST_TRACER") == "stdout" {
		exp, err := stdouttrace.New()
		if err != nil {
			t.Fatal("failed to init trace exporter", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL,
				semconv.ServiceName("flightsurety"),
				semconv.ServiceInstanceID(t.Name()),
			)),
			sdktrace.WithSyncer(exp),
		)
		obs.tp = tp
		t.Cleanup(func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				t.Logf("shutting down trace exporter: %v", err)
			}
		})
	}
	return obs
}

type Observability struct {
	log *slog.Logger
	tp  trace.TracerProvider
	mp  metric.MeterProvider
}

func (o *Observability) Logger() *slog.Logger { return o.log }

func (o *Observability) Meter(name string, options ...metric.MeterOption) metric.Meter {
	return o.mp.Meter(name, options...)
}

func (o *Observability) MetricsHandler() http.Handler {
	return nil
}

func (o *Observability) PrometheusRegisterer() prometheus.Registerer {
	return nil
}

func (o *Observability) Tracer(name string, options ...trace.TracerOption) trace.Tracer {
	return o.tp.Tracer(name, options...)
}

func (o *Observability) TracerProvider() trace.TracerProvider { return o.tp }

func (o *Observability) Shutdown() error { return nil }

// WithMeterProvider replaces the meter provider, used to collect metrics in tests.
func (o *Observability) WithMeterProvider(mp metric.MeterProvider) *Observability {
	if mp == nil {
		panic(fmt.Errorf("meter provider is nil"))
	}
	o.mp = mp
	return o
}
