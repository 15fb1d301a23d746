package rpc

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"
)

const (
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-ID"
	applicationJson   = "application/json"
	applicationCBOR   = "application/cbor"

	metricsScopeRESTAPI = "rest_api"

	MaxBodySize int64 = 1 << 20 // 1MB
)

var allowedCORSHeaders = []string{"Accept", "Accept-Language", "Content-Language", "Origin", headerContentType, headerRequestID}

type (
	// Registrar registers new HTTP handlers for given router.
	Registrar interface {
		Register(r *mux.Router)
	}

	// RegistrarFunc type is an adapter to allow the use of ordinary function as Registrar.
	RegistrarFunc func(r *mux.Router)

	Observability interface {
		Meter(name string, opts ...metric.MeterOption) metric.Meter
		Logger() *slog.Logger
	}
)

func NewRESTServer(addr string, maxBodySize int64, obs Observability, registrars ...Registrar) *http.Server {
	mtr := obs.Meter(metricsScopeRESTAPI)
	log := obs.Logger()

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(http.NotFound)
	apiV1Router := r.PathPrefix("/api/v1").Subrouter()
	apiV1Router.Use(requestID, handlers.CORS(handlers.AllowedHeaders(allowedCORSHeaders)), instrumentHTTP(mtr, log))

	for _, registrar := range registrars {
		registrar.Register(apiV1Router)
	}

	return &http.Server{
		Addr:              addr,
		ReadTimeout:       3 * time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       30 * time.Second,
		Handler:           http.MaxBytesHandler(r, maxBodySize),
	}
}

func (f RegistrarFunc) Register(r *mux.Router) {
	f(r)
}

// MetricsEndpoints serves the Prometheus metrics, nothing is registered when handler is nil.
func MetricsEndpoints(handler http.Handler) RegistrarFunc {
	return func(r *mux.Router) {
		if handler != nil {
			r.Handle("/metrics", handler).Methods(http.MethodGet)
		}
	}
}

/*
requestID is a middleware which echoes the request ID sent by the client or
assigns a new one to the request.
*/
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
			req.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, req)
	})
}
