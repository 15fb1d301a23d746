package rpc

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/observability"
)

// metricsUpdaterTxReceived returns func which counts the orders submitted over the API by type and outcome.
func metricsUpdaterTxReceived(mtr metric.Meter, log *slog.Logger) func(ctx context.Context, txType string, apiErr error) {
	txReceived, err := mtr.Int64Counter("tx.count",
		metric.WithDescription("Number of transaction orders submitted"),
		metric.WithUnit("{transaction}"))
	if err != nil {
		log.Error("creating submitted orders counter", logger.Error(err))
		return func(context.Context, string, error) {}
	}

	return func(ctx context.Context, txType string, apiErr error) {
		txReceived.Add(ctx, 1, metric.WithAttributes(
			observability.TxType(txType),
			observability.ErrStatus(apiErr),
			observability.ErrKind(apiErr),
		))
	}
}

/*
instrumentHTTP returns middleware which counts the calls of the endpoint and
records how long serving the request took. Both are labeled with the route
template, method and response status. Failed requests are logged on debug
level with the request ID.
*/
func instrumentHTTP(mtr metric.Meter, log *slog.Logger) mux.MiddlewareFunc {
	callCnt, err := mtr.Int64Counter("calls", metric.WithDescription("Number of calls of the endpoint"))
	if err != nil {
		log.Error("creating calls counter", logger.Error(err))
		return passthroughMW
	}
	callDur, err := mtr.Float64Histogram("duration",
		metric.WithDescription("Time it took to serve the request"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(100e-6, 250e-6, 500e-6, 0.001, 0.005, 0.01, 0.05, 0.25, 1, 5))
	if err != nil {
		log.Error("creating duration histogram", logger.Error(err))
		return passthroughMW
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(req.Method),
				semconv.HTTPResponseStatusCode(rec.status),
			}
			if route := mux.CurrentRoute(req); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					attrs = append(attrs, semconv.HTTPRoute(tmpl))
				}
			}
			set := metric.WithAttributeSet(attribute.NewSet(attrs...))
			callCnt.Add(req.Context(), 1, set)
			callDur.Record(req.Context(), time.Since(start).Seconds(), set)

			if rec.status >= http.StatusBadRequest {
				log.DebugContext(req.Context(), "request failed",
					slog.String("request_id", req.Header.Get(headerRequestID)),
					slog.String("path", req.URL.Path),
					slog.Int("status", rec.status))
			}
		})
	}
}

func passthroughMW(next http.Handler) http.Handler { return next }

// statusRecorder remembers the status code written to the response.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
