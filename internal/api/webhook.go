package api

import (
	"errors"
	"net/http"

	"github.com/cmra-project/group-dashboard/internal/services"
)

// webhookPayload is the Typeform delivery envelope.
type webhookPayload struct {
	EventID      string                 `json:"event_id" validate:"required"`
	FormResponse services.RawSubmission `json:"form_response" validate:"required"`
}

// GET answers a static welcome so delivery URLs can be probed; POST ingests
// one submission, provided realtime mode is on.
func (rt *Router) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"message": welcomeMessage})
	case http.MethodPost:
		var payload webhookPayload
		if err := bindJSON(r, &payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		rt.log.Info().Str("event_id", payload.EventID).Msg("webhook received")
		err := rt.ingest.Ingest(payload.EventID, &payload.FormResponse)
		switch {
		case errors.Is(err, services.ErrRealtimeDisabled):
			// Acknowledged, deliberately not stored.
			writeJSON(w, http.StatusOK, map[string]any{"status": "ignored", "reason": "real-time data not enabled"})
		case err != nil:
			writeError(w, err)
		default:
			writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
