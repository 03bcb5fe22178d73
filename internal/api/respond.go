// Package api provides the shared JSON response envelope and the mapping
// from domain errors to HTTP status codes, used by every module's handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// Envelope wraps handler payloads in the standard response shape.
type Envelope struct {
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata carries response metadata common to all endpoints.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
}

// WriteJSON writes data inside the standard envelope.
func WriteJSON(log zerolog.Logger, w http.ResponseWriter, status int, data interface{}) {
	WriteJSONRun(log, w, status, data, "")
}

// WriteJSONRun writes data inside the standard envelope, tagging the response
// with a run identifier (used by simulation endpoints).
func WriteJSONRun(log zerolog.Logger, w http.ResponseWriter, status int, data interface{}, runID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	envelope := Envelope{
		Data: data,
		Metadata: Metadata{
			Timestamp: time.Now().Format(time.RFC3339),
			RunID:     runID,
		},
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteError maps a domain error to its HTTP status and writes it.
// Caller mistakes (bad scenarios, malformed inputs) are 400s, data problems
// (too little history, degenerate statistics) are 422s, everything else is a
// 500 with the detail kept out of the response body.
func WriteError(log zerolog.Logger, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var (
		invalid      *domain.InvalidScenarioError
		malformedC   *domain.MalformedCurveError
		malformedS   *domain.MalformedSeriesError
		insufficient *domain.InsufficientDataError
		degenerate   *domain.DegenerateInputError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &malformedC), errors.As(err, &malformedS):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.As(err, &insufficient), errors.As(err, &degenerate):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		log.Error().Err(err).Msg("Request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorBody{Error: message}); encErr != nil {
		log.Error().Err(encErr).Msg("Failed to encode error response")
	}
}
