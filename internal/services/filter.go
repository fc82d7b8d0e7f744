package services

import (
	"sort"
	"time"
)

// Role filter sentinels used by the dashboard.
const (
	AllRolesOption  = "All"
	EmptyRoleOption = "Empty/Unknown"
)

// CohortFilter selects the rows making up one cohort. Nil time bounds mean
// unbounded on that side; bounds are inclusive.
type CohortFilter struct {
	Role  string
	Start *time.Time
	End   *time.Time
}

// Apply filters rows without mutating the input slice.
func (f CohortFilter) Apply(rows []*NormalizedRow) []*NormalizedRow {
	out := make([]*NormalizedRow, 0, len(rows))
	for _, row := range rows {
		if !f.matchRole(row) {
			continue
		}
		if f.Start != nil && row.SubmittedAt.Before(*f.Start) {
			continue
		}
		if f.End != nil && row.SubmittedAt.After(*f.End) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (f CohortFilter) matchRole(row *NormalizedRow) bool {
	switch f.Role {
	case "", AllRolesOption:
		return true
	case EmptyRoleOption:
		return row.Role == nil || *row.Role == ""
	default:
		return row.Role != nil && *row.Role == f.Role
	}
}

// RoleOptions lists the selectable role filters: the two sentinels followed
// by the distinct non-empty roles present in the data, sorted.
func RoleOptions(rows []*NormalizedRow) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		if row.Role != nil && *row.Role != "" {
			seen[*row.Role] = true
		}
	}
	roles := make([]string, 0, len(seen))
	for r := range seen {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return append([]string{AllRolesOption, EmptyRoleOption}, roles...)
}
