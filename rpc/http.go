package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flightsurety/flightsurety/logger"
	"github.com/flightsurety/flightsurety/node"
	"github.com/flightsurety/flightsurety/txbuffer"
	"github.com/flightsurety/flightsurety/txsystem"
	"github.com/flightsurety/flightsurety/types"
)

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

var errorStatus = []struct {
	err    error
	status int
}{
	{types.ErrNotOperational, http.StatusServiceUnavailable},
	{types.ErrUnauthorized, http.StatusForbidden},
	{types.ErrCallerNotAuthorized, http.StatusForbidden},
	{types.ErrCallerNotFundedAirline, http.StatusForbidden},
	{types.ErrCallerNotAirline, http.StatusForbidden},
	{types.ErrAirlineAlreadyRegistered, http.StatusConflict},
	{types.ErrDuplicateFlight, http.StatusConflict},
	{types.ErrDuplicateVote, http.StatusConflict},
	{types.ErrInsufficientStake, http.StatusUnprocessableEntity},
	{types.ErrVotingNotRequired, http.StatusUnprocessableEntity},
	{txsystem.ErrInvalidOwnerProof, http.StatusUnauthorized},
	{txsystem.ErrTxReplayed, http.StatusConflict},
	{txbuffer.ErrTxInBuffer, http.StatusConflict},
	{txbuffer.ErrTxBufferFull, http.StatusServiceUnavailable},
	{node.ErrPersistRound, http.StatusInternalServerError},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

/*
statusCode returns the HTTP status code for the error, fallback is returned
when the error has no dedicated status.
*/
func statusCode(err error, fallback int) int {
	for _, s := range errorStatus {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, response any, statusCode int, log *slog.Logger) {
	w.Header().Set(headerContentType, applicationJson)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Warn("failed to write JSON response", logger.Error(err))
	}
}

// writeError replies with the status of the err, fallback status is used
// when err is not a known failure.
func writeError(w http.ResponseWriter, err error, fallback int, log *slog.Logger) {
	writeJSON(w, &ErrorResponse{Kind: types.ErrorKind(err), Message: err.Error()}, statusCode(err, fallback), log)
}

// WriteCBORError replies to the request with the specified error message and HTTP code.
// It does not otherwise end the request; the caller should ensure no further
// writes are done to w.
func WriteCBORError(w http.ResponseWriter, e error, code int, log *slog.Logger) {
	w.Header().Set(headerContentType, applicationCBOR)
	w.WriteHeader(code)
	if err := types.Cbor.Encode(w, struct {
		_   struct{} `cbor:",toarray"`
		Err string
	}{
		Err: fmt.Sprintf("%v", e),
	}); err != nil {
		log.Warn("failed to write CBOR error response", logger.Error(err))
	}
}
