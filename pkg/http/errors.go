package http

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error  string `json:"error"`  // Machine-readable error code
	Notice string `json:"notice"` // User-facing notice string
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, notice string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:  errorCode,
		Notice: notice,
	}

	// Log encoding errors but don't expose them to client
	_ = json.NewEncoder(w).Encode(resp)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, notice string) {
	WriteError(w, http.StatusBadRequest, "bad_request", notice)
}

func WriteUnauthorized(w http.ResponseWriter, notice string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", notice)
}

func WriteForbidden(w http.ResponseWriter, notice string) {
	WriteError(w, http.StatusForbidden, "forbidden", notice)
}

func WriteInternalError(w http.ResponseWriter, notice string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", notice)
}
