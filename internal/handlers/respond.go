package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ukydev/vehicle-inventory/internal/inventory"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg})
}

// writeServiceError maps boundary errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var violations validation.Violations
	switch {
	case errors.As(err, &violations):
		writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "Validation failed", Details: violations})
	case errors.Is(err, inventory.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, inventory.ErrForbidden):
		writeError(w, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, inventory.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Invalid input")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeFields reads a JSON object body into a field map. Numbers are kept
// as json.Number so integer checks see the literal value.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return nil, false
	}
	return fields, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}
