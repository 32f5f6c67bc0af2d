package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/catalogforge/imgingest/internal/apperror"
)

// writeJSON encodes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates err through apperror's single HTTP-status table
// and writes the abstract error kind as the wire-level error code.
func writeError(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)
	kind, ok := apperror.KindOf(err)
	if !ok {
		kind = apperror.KindInternalIO
	}
	writeJSON(w, status, map[string]interface{}{
		"error":   string(kind),
		"message": err.Error(),
	})
}

// writeValidationError writes a 422 with per-field validation messages.
func writeValidationError(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"error":  string(apperror.KindValidationFailed),
		"fields": fields,
	})
}
