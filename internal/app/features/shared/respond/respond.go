// internal/app/features/shared/respond/respond.go

// Package respond holds the JSON plumbing shared by every feature handler:
// encoding responses, decoding request bodies, and mapping workflow errors
// to HTTP statuses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/betalift/betalift/internal/domain/apperr"
	"go.uber.org/zap"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Err maps err's kind to an HTTP status and writes a JSON error body.
// Unknown kinds are server faults: they are logged with the cause and the
// client sees only a generic message.
func Err(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	JSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// Decode parses the JSON request body into dst. A malformed body reports as
// a validation error so the caller sees 400, not 500.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}
