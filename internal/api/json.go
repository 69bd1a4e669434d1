package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bryanpdl/briefly/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrDiscarded):
		return http.StatusGone
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrBusy), errors.Is(err, apperr.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrPaymentRequired):
		return http.StatusPaymentRequired
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its mapped status. Unmapped errors are logged and
// reported as "internal error".
func writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, status, errorBody("internal error"))
		return
	}
	if status == http.StatusBadGateway {
		slog.Warn(op+" failed", append(attrs, slog.String("error", err.Error()))...)
	}
	writeJSON(w, status, errorBody(err.Error()))
}
