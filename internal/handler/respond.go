package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/service"
)

// maxBodyBytes caps request bodies; the largest legitimate payload is
// a transaction of a few hundred bytes.
const maxBodyBytes = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeRawJSON sends pre-serialized JSON, as produced by the analytics
// cache, without a re-encode.
func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// validationResponse is the 400 body for failed input validation.
type validationResponse struct {
	Error   string             `json:"error"`
	Details []model.FieldError `json:"details,omitempty"`
}

// decodeBody reads a JSON request body into v. It writes the error
// response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

// writeServiceError maps a service error onto its response. Errors
// without a specific mapping become an opaque 500; the detail goes to
// the log, never to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrValidation) {
		writeJSON(w, http.StatusBadRequest, validationResponse{
			Error:   "validation failed",
			Details: service.ValidationDetails(err),
		})
		return
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
}
