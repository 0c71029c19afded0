package httpx

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes payload with status. Responses carry caller-specific
// data and are never cached.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	headers := w.Header()
	headers.Set("Content-Type", "application/json")
	headers.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends {"error": msg}, tagged with the request id assigned by
// audit.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg, RequestID: w.Header().Get("X-Request-ID")})
}
