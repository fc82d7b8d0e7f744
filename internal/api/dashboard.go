package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cmra-project/group-dashboard/internal/services"
)

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts, nil
		}
	}
	return nil, services.NewInvalidError(fmt.Sprintf("invalid %s timestamp %q", name, raw))
}

func parseFilter(r *http.Request, startName, endName string) (services.CohortFilter, error) {
	start, err := parseTimeParam(r, startName)
	if err != nil {
		return services.CohortFilter{}, err
	}
	end, err := parseTimeParam(r, endName)
	if err != nil {
		return services.CohortFilter{}, err
	}
	return services.CohortFilter{
		Role:  r.URL.Query().Get("role"),
		Start: start,
		End:   end,
	}, nil
}

// GET /api/roles — selectable role filter options.
func (rt *Router) handleRoles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rows, err := rt.store.ReadAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": services.RoleOptions(rows)})
}

// GET /api/dashboard/summary?role=&start=&end=
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	filter, err := parseFilter(r, "start", "end")
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := rt.store.ReadAll()
	if err != nil {
		writeError(w, err)
		return
	}
	cohort := filter.Apply(rows)
	summary, err := rt.aggregator.Summarize(cohort)
	if errors.Is(err, services.ErrNoData) {
		// An empty-but-valid dataset is a notice, not an error.
		writeJSON(w, http.StatusOK, map[string]any{
			"no_data": true,
			"message": "No data available for the selected filters and date range.",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"no_data": false, "summary": summary})
}

// GET /api/dashboard/comparison?role=&start=&end=&prev_start=&prev_end=
//
// Both cohorts share the role filter; each has its own window, matching how
// the dashboard selects a previous cohort to compare against.
func (rt *Router) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	current, err := parseFilter(r, "start", "end")
	if err != nil {
		writeError(w, err)
		return
	}
	previous, err := parseFilter(r, "prev_start", "prev_end")
	if err != nil {
		writeError(w, err)
		return
	}
	previous.Role = current.Role

	rows, err := rt.store.ReadAll()
	if err != nil {
		writeError(w, err)
		return
	}
	comparison, err := rt.comparator.Compare(current.Apply(rows), previous.Apply(rows))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": comparison})
}

// GET /api/export?role=&start=&end= — current cohort as a CSV download.
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	filter, err := parseFilter(r, "start", "end")
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := rt.store.ReadAll()
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := services.ExportCohortCSV(filter.Apply(rows))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=current_cohort.csv")
	_, _ = w.Write(b)
}
