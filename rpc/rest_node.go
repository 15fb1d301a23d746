package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/state"
	"github.com/flightsurety/flightsurety/txsystem/registry"
	"github.com/flightsurety/flightsurety/txsystem/surety"
	"github.com/flightsurety/flightsurety/types"
)

type (
	registryNode interface {
		SubmitTx(ctx context.Context, tx *types.TransactionOrder) (*types.TransactionRecord, error)
		View() *registry.View
		SerializeState(w io.Writer) error
	}

	TxResponse struct {
		Round       uint64         `json:"round"`
		TxType      string         `json:"txType"`
		TargetUnits []types.UnitID `json:"targetUnits"`
		Details     any            `json:"details,omitempty"`
	}

	OperationalResponse struct {
		Operational     bool   `json:"operational"`
		RegisteredCount uint64 `json:"registeredCount"`
		FlightCount     uint64 `json:"flightCount"`
		Round           uint64 `json:"round"`
	}

	AirlineResponse struct {
		Airline         types.Address `json:"airline"`
		Registered      bool          `json:"registered"`
		Funded          bool          `json:"funded"`
		Stake           string        `json:"stake"` // decimal wei amount
		RegisteredRound uint64        `json:"registeredRound"`
	}

	VotesResponse struct {
		Candidate       types.Address   `json:"candidate"`
		Voters          []types.Address `json:"voters"`
		RegisteredCount uint64          `json:"registeredCount"`
	}

	CallerResponse struct {
		Caller     types.Address `json:"caller"`
		Authorized bool          `json:"authorized"`
	}

	FlightResponse struct {
		FlightID        types.UnitID       `json:"flightId"`
		Airline         types.Address      `json:"airline"`
		Code            string             `json:"code"`
		Timestamp       uint64             `json:"timestamp"`
		Status          types.FlightStatus `json:"status"`
		Seq             uint64             `json:"seq"`
		RegisteredRound uint64             `json:"registeredRound"`
	}

	RoundResponse struct {
		Round uint64 `json:"round"`
	}
)

/*
NodeEndpoints registers the order submission endpoint and the read endpoints
of the registry. Every read is served from a snapshot of the latest committed
round.
*/
func NodeEndpoints(node registryNode, obs Observability, opts ...Option) RegistrarFunc {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return func(r *mux.Router) {
		log := obs.Logger()
		txReceived := metricsUpdaterTxReceived(obs.Meter(metricsScopeRESTAPI), log)

		r.HandleFunc("/transactions", submitTransaction(node, options.submitTimeout, txReceived, log)).Methods(http.MethodPost, http.MethodOptions)
		r.HandleFunc("/operational", getOperational(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/airlines", getAirlines(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/airlines/{address}", getAirline(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/airlines/{address}/votes", getVotes(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/callers/{address}", getCaller(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/flights", getFlights(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/flights/{airline}/{code}/{timestamp}", getFlight(node, log)).Methods(http.MethodGet, http.MethodOptions)
		r.HandleFunc("/rounds/latest", getLatestRound(node, log)).Methods(http.MethodGet, http.MethodOptions)
		// get the state file
		r.HandleFunc("/state", getState(node, log)).Methods(http.MethodGet)
	}
}

func submitTransaction(node registryNode, timeout time.Duration, txReceived func(context.Context, string, error), log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer req.Body.Close()
		tx := &types.TransactionOrder{}
		if err := types.Cbor.GetDecoder(req.Body).Decode(tx); err != nil {
			writeError(w, fmt.Errorf("unable to decode request body as transaction: %w", err), http.StatusBadRequest, log)
			return
		}
		if tx.Payload == nil {
			writeError(w, errors.New("transaction order payload is missing"), http.StatusBadRequest, log)
			return
		}

		ctx, cancel := context.WithTimeout(req.Context(), timeout)
		defer cancel()
		rec, err := node.SubmitTx(ctx, tx)
		txReceived(req.Context(), tx.PayloadType(), err)
		if err != nil {
			log.DebugContext(req.Context(), fmt.Sprintf("%s rejected", tx.PayloadType()), logger.Error(err), logger.Airline(tx.Sender()))
			writeError(w, err, http.StatusBadRequest, log)
			return
		}

		details, err := processingDetails(rec)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		writeJSON(w, &TxResponse{
			Round:       rec.Round,
			TxType:      tx.PayloadType(),
			TargetUnits: rec.ServerMetadata.TargetUnits,
			Details:     details,
		}, http.StatusOK, log)
	}
}

// processingDetails decodes the processing details of the orders which have them.
func processingDetails(rec *types.TransactionRecord) (any, error) {
	var details any
	switch rec.TransactionOrder.PayloadType() {
	case surety.TransactionTypeRegisterAirline, surety.TransactionTypeApproveAirline:
		details = &surety.AdmissionResult{}
	case surety.TransactionTypeRegisterFlight:
		details = &surety.FlightResult{}
	default:
		return nil, nil
	}
	if err := rec.ServerMetadata.UnmarshalDetails(details); err != nil {
		return nil, fmt.Errorf("decoding processing details: %w", err)
	}
	return details, nil
}

func getOperational(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		v := node.View()
		operational, err := v.IsOperational()
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		registered, err := v.RegisteredCount()
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		flights, err := v.FlightCount()
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		writeJSON(w, &OperationalResponse{
			Operational:     operational,
			RegisteredCount: registered,
			FlightCount:     flights,
			Round:           v.Round(),
		}, http.StatusOK, log)
	}
}

func getAirlines(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		airlines, err := node.View().Airlines()
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		if airlines == nil {
			airlines = []types.Address{}
		}
		writeJSON(w, airlines, http.StatusOK, log)
	}
}

func getAirline(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		addr, err := types.ParseAddress(mux.Vars(req)["address"])
		if err != nil {
			writeError(w, err, http.StatusBadRequest, log)
			return
		}
		ad, err := node.View().Airline(addr)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		writeJSON(w, &AirlineResponse{
			Airline:         addr,
			Registered:      ad.Registered,
			Funded:          ad.Funded,
			Stake:           ad.StakeAmount().Dec(),
			RegisteredRound: ad.RegisteredRound,
		}, http.StatusOK, log)
	}
}

func getVotes(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		candidate, err := types.ParseAddress(mux.Vars(req)["address"])
		if err != nil {
			writeError(w, err, http.StatusBadRequest, log)
			return
		}
		v := node.View()
		voters, err := v.Voters(candidate)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		count, err := v.RegisteredCount()
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		if voters == nil {
			voters = []types.Address{}
		}
		writeJSON(w, &VotesResponse{Candidate: candidate, Voters: voters, RegisteredCount: count}, http.StatusOK, log)
	}
}

func getCaller(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		caller, err := types.ParseAddress(mux.Vars(req)["address"])
		if err != nil {
			writeError(w, err, http.StatusBadRequest, log)
			return
		}
		authorized, err := node.View().IsCallerAuthorized(caller)
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		writeJSON(w, &CallerResponse{Caller: caller, Authorized: authorized}, http.StatusOK, log)
	}
}

func getFlights(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		flights, err := node.View().Flights()
		if err != nil {
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		rsp := make([]*FlightResponse, 0, len(flights))
		for _, f := range flights {
			rsp = append(rsp, newFlightResponse(f))
		}
		writeJSON(w, rsp, http.StatusOK, log)
	}
}

func getFlight(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		airline, err := types.ParseAddress(vars["airline"])
		if err != nil {
			writeError(w, err, http.StatusBadRequest, log)
			return
		}
		timestamp, err := strconv.ParseUint(vars["timestamp"], 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("invalid timestamp %q", vars["timestamp"]), http.StatusBadRequest, log)
			return
		}
		f, err := node.View().Flight(airline, vars["code"], timestamp)
		if err != nil {
			if errors.Is(err, state.ErrUnitNotFound) {
				writeError(w, errors.New("flight is not registered"), http.StatusNotFound, log)
				return
			}
			writeError(w, err, http.StatusInternalServerError, log)
			return
		}
		writeJSON(w, newFlightResponse(f), http.StatusOK, log)
	}
}

func newFlightResponse(f *registry.FlightData) *FlightResponse {
	return &FlightResponse{
		FlightID:        registry.NewFlightID(f.Airline, f.Code, f.Timestamp),
		Airline:         f.Airline,
		Code:            f.Code,
		Timestamp:       f.Timestamp,
		Status:          f.Status,
		Seq:             f.Seq,
		RegisteredRound: f.RegisteredRound,
	}
}

func getLatestRound(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, &RoundResponse{Round: node.View().Round()}, http.StatusOK, log)
	}
}

func getState(node registryNode, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, request *http.Request) {
		w.Header().Set(headerContentType, applicationCBOR)
		if err := node.SerializeState(w); err != nil {
			WriteCBORError(w, err, http.StatusInternalServerError, log)
		}
	}
}
