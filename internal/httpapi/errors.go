package httpapi

import (
	"encoding/json"
	"net/http"

	"predictord/internal/engine"
	"predictord/pkg/types"
)

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case engine.IsInvalidRequest(err):
		return http.StatusBadRequest
	case engine.IsCapacityExceeded(err):
		return http.StatusTooManyRequests
	case engine.IsShuttingDown(err):
		return http.StatusServiceUnavailable
	case engine.IsTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}
