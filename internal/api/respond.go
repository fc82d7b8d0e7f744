package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cmra-project/group-dashboard/internal/services"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses. Aggregation failures only
// take down the section that asked for them; the JSON body names the cause.
func writeError(w http.ResponseWriter, err error) {
	var mf *services.MissingFieldError
	if errors.As(err, &mf) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": mf.Error(), "missing_field": mf.Key})
		return
	}
	var sm *services.SchemaMismatchError
	if errors.As(err, &sm) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": sm.Error(), "subdomain": sm.Subdomain})
		return
	}
	if se, ok := services.AsServiceError(err); ok {
		writeJSON(w, statusFor(se.Code), map[string]any{"error": se.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}

func statusFor(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict:
		return http.StatusConflict
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	case services.ErrorBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
