package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/metrics"

	"go.uber.org/zap"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.log.Error("Failed to encode response", zap.Error(err))
		}
	}
}

// respondError maps service errors onto HTTP status codes. Unrecognized
// errors become a 500 with the detail kept out of the response body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, journal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, journal.ErrConflict),
		errors.Is(err, journal.ErrTradeClosed),
		errors.Is(err, journal.ErrReferenced),
		errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, journal.ErrInvalidExitDate),
		errors.Is(err, metrics.ErrInvalidLevels):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	default:
		s.log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.respond(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}
	s.respond(w, status, errorResponse{Error: err.Error()})
}

// badRequest reports a client error that never reached a service.
func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.respond(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
