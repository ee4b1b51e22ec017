// Package httpx writes the JSON bodies and document downloads every handler
// in this app produces.
package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the error shape of the whole API: a stable code plus the
// per-field violations map when validation failed.
type ErrorResponse struct {
	Error      string            `json:"error"`
	Violations map[string]string `json:"violations,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes an ErrorResponse. violations may be nil for errors that
// carry no field detail.
func JSONError(w http.ResponseWriter, status int, code string, violations map[string]string) {
	JSON(w, status, ErrorResponse{Error: code, Violations: violations})
}

// Download streams a rendered invoice document as an attachment.
func Download(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}
