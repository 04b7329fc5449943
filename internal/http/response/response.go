// Package response renders the JSON envelope shared by every handler
// and middleware. Success payloads and errors use the same top-level
// shape so API consumers can branch on a single "success" field.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a success envelope. A nil data still produces a body so
// callers can always decode the envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, Envelope{Success: true, Data: data})
}

// Error writes a failure envelope. code is a stable machine-readable
// identifier; message is for humans; details is optional structure
// (for example validation field errors).
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	write(w, r, status, Envelope{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func write(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// Headers are already out, nothing to send to the client.
		slog.ErrorContext(r.Context(), "failed to encode response envelope",
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}
}
