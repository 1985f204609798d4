package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"finbook/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch core.KindOf(err) {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindInvalidArgument:
		return http.StatusBadRequest
	case core.KindConflict:
		return http.StatusConflict
	case core.KindTransientConflict:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an error to its HTTP status. Internal failures log with
// the full cause but leak only a generic message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Request failed", "error", err)
		msg = "internal error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
		msg = "temporary write contention, retry the request"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
