package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/metrics"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/adapters/middleware"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/core/domain"
	"github.com/AchilleasB/teaching-practice/workflow-service/internal/logger"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Kind   domain.ErrorKind  `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// statusFor maps a domain error kind onto its HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPermission:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindInvalidState, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindPrecondition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports domain errors as they are and hides everything else
// behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, statusFor(de.Kind), ErrorResponse{Error: de.Message, Kind: de.Kind, Fields: de.Fields})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError(map[string]string{"body": "must be a valid JSON object"})
	}
	return nil
}

// viewer returns the caller authenticated by the auth middleware.
func viewer(w http.ResponseWriter, r *http.Request) (domain.Viewer, bool) {
	v, ok := middleware.ViewerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	return v, ok
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

func record(m *metrics.Metrics, operation string, err error) {
	m.Transition(operation, outcome(err))
}
