package services

import (
	"github.com/cmra-project/group-dashboard/internal/schema"
)

// ComparisonRow holds one subdomain's averages across two cohorts and the
// percentage movement between them. Derived per request, never persisted.
type ComparisonRow struct {
	Domain        string  `json:"domain"`
	Subdomain     string  `json:"subdomain"`
	CurrentAvg    float64 `json:"current_avg"`
	PreviousAvg   float64 `json:"previous_avg"`
	PctDifference float64 `json:"pct_difference"`
}

// Comparator computes per-subdomain deltas between two filtered cohorts.
type Comparator struct {
	schema *schema.Schema
}

func NewComparator(sch *schema.Schema) *Comparator {
	return &Comparator{schema: sch}
}

// Compare emits one row per subdomain in schema enumeration order.
//
// An empty cohort contributes a 0 mean for every subdomain. That is a
// deliberate zero-substitution, distinct from the Aggregator's ErrNoData
// signal, so the percentage arithmetic stays total.
func (c *Comparator) Compare(current, previous []*NormalizedRow) ([]ComparisonRow, error) {
	curMeans, err := cohortMeansOrZero(c.schema, current)
	if err != nil {
		return nil, err
	}
	prevMeans, err := cohortMeansOrZero(c.schema, previous)
	if err != nil {
		return nil, err
	}

	var out []ComparisonRow
	for _, d := range c.schema.Domains {
		for _, sub := range d.Subdomains {
			cur := curMeans[sub]
			prev := prevMeans[sub]
			out = append(out, ComparisonRow{
				Domain:        c.schema.DisplayName(d.Key),
				Subdomain:     c.schema.DisplayName(sub),
				CurrentAvg:    round2(cur),
				PreviousAvg:   round2(prev),
				PctDifference: pctDifference(cur, prev),
			})
		}
	}
	return out, nil
}

func cohortMeansOrZero(sch *schema.Schema, rows []*NormalizedRow) (map[string]float64, error) {
	if len(rows) == 0 {
		means := map[string]float64{}
		for _, key := range sch.SubdomainKeys() {
			means[key] = 0
		}
		return means, nil
	}
	return subdomainMeans(sch, rows)
}

// pctDifference applies the movement rule. A previous mean of 0 with a
// non-zero current mean yields the 100 sentinel, a "fully new" marker rather
// than a true percentage.
func pctDifference(current, previous float64) float64 {
	switch {
	case previous == 0 && current == 0:
		return 0
	case previous == 0:
		return 100
	default:
		return round1((current - previous) / previous * 100)
	}
}
