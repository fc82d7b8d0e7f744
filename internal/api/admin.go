package api

import (
	"net/http"
	"time"
)

type syncRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
	Force bool       `json:"force"`
}

// POST /api/sync — fetch a remote window and replace the store with it.
// Skips the fetch when the window matches the last one synced, unless forced.
func (rt *Router) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if rt.sync == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "remote fetch not configured"})
		return
	}
	var req syncRequest
	if err := bindJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	if !req.Force && !rt.session.NeedsSync(req.Start, req.End) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "skipped", "reason": "window unchanged"})
		return
	}
	result, err := rt.sync.Sync(r.Context(), req.Start, req.End)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.session.MarkSynced(req.Start, req.End)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result": result})
}

// POST /api/responses/clear — reset the store to an empty dataset.
func (rt *Router) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := rt.store.Clear(); err != nil {
		writeError(w, err)
		return
	}
	rt.log.Info().Msg("response store cleared")
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

type realtimeRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// POST /api/realtime — toggle the realtime flag file the webhook checks.
func (rt *Router) handleRealtime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req realtimeRequest
	if err := bindJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	var err error
	if *req.Enabled {
		err = rt.flag.Enable()
	} else {
		err = rt.flag.Disable()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enabled": *req.Enabled})
}
