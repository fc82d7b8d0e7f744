package services

import (
	"math"
	"sort"

	"github.com/cmra-project/group-dashboard/internal/schema"
)

// DomainSummary is one domain's aggregate over a cohort.
type DomainSummary struct {
	Key             string  `json:"key"`
	DisplayName     string  `json:"display_name"`
	AverageScore    float64 `json:"average_score"`
	MedianScore     float64 `json:"median_score"`
	TopSubdomain    string  `json:"top_subdomain"`
	LowestSubdomain string  `json:"lowest_subdomain"`
	ResponseCount   int     `json:"response_count"`
}

// SubdomainAverage is a per-subdomain cohort mean, used for charts and the
// global rankings.
type SubdomainAverage struct {
	DomainKey    string  `json:"domain_key"`
	Domain       string  `json:"domain"`
	SubdomainKey string  `json:"subdomain_key"`
	Subdomain    string  `json:"subdomain"`
	Average      float64 `json:"average"`
}

// CohortSummary is the derived, per-request aggregate of a filtered row set.
// It is never persisted.
type CohortSummary struct {
	Domains           []DomainSummary    `json:"domains"`
	Subdomains        []SubdomainAverage `json:"subdomains"`
	StrongestDomain   string             `json:"strongest_domain"`
	Lowest4Subdomains []string           `json:"lowest_4_subdomains"`
	ResponseCount     int                `json:"response_count"`
}

// Aggregator computes cohort summaries against a fixed schema.
type Aggregator struct {
	schema *schema.Schema
}

func NewAggregator(sch *schema.Schema) *Aggregator {
	return &Aggregator{schema: sch}
}

// Summarize aggregates an already-filtered row set.
//
// An empty row set returns ErrNoData rather than zeroed aggregates; callers
// must branch on it before presenting insights. A row lacking a subdomain the
// schema declares fails the whole call with SchemaMismatchError: no partial
// summary is returned.
func (a *Aggregator) Summarize(rows []*NormalizedRow) (*CohortSummary, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	subMeans, err := subdomainMeans(a.schema, rows)
	if err != nil {
		return nil, err
	}

	summary := &CohortSummary{ResponseCount: len(rows)}
	strongestIdx := -1
	for _, d := range a.schema.Domains {
		values := domainValues(rows, d.Key)
		ds := DomainSummary{
			Key:           d.Key,
			DisplayName:   a.schema.DisplayName(d.Key),
			ResponseCount: len(values),
		}
		if len(values) > 0 {
			ds.AverageScore = round2(mean(values))
			ds.MedianScore = round2(median(values))
		}
		ds.TopSubdomain, ds.LowestSubdomain = rankWithinDomain(a.schema, d, subMeans)
		summary.Domains = append(summary.Domains, ds)

		// Strict > keeps the schema-first domain on ties. Domains with no
		// scored rows never win.
		if len(values) > 0 {
			i := len(summary.Domains) - 1
			if strongestIdx < 0 || summary.Domains[i].AverageScore > summary.Domains[strongestIdx].AverageScore {
				strongestIdx = i
			}
		}

		for _, sub := range d.Subdomains {
			summary.Subdomains = append(summary.Subdomains, SubdomainAverage{
				DomainKey:    d.Key,
				Domain:       a.schema.DisplayName(d.Key),
				SubdomainKey: sub,
				Subdomain:    a.schema.DisplayName(sub),
				Average:      round2(subMeans[sub]),
			})
		}
	}
	if strongestIdx >= 0 {
		summary.StrongestDomain = summary.Domains[strongestIdx].DisplayName
	}
	summary.Lowest4Subdomains = lowestSubdomains(a.schema, subMeans, 4)
	return summary, nil
}

// subdomainMeans computes the mean of every schema subdomain across the row
// set. A nil subdomain value on any row is a schema mismatch.
func subdomainMeans(sch *schema.Schema, rows []*NormalizedRow) (map[string]float64, error) {
	means := map[string]float64{}
	for _, key := range sch.SubdomainKeys() {
		var values []float64
		for _, row := range rows {
			v, _ := row.ScoreValue(key)
			if v == nil {
				return nil, &SchemaMismatchError{Subdomain: key}
			}
			values = append(values, *v)
		}
		means[key] = mean(values)
	}
	return means, nil
}

func domainValues(rows []*NormalizedRow, key string) []float64 {
	var values []float64
	for _, row := range rows {
		// Null domain scores exclude the row from this domain's aggregate
		// only, not from the whole cohort.
		if v, _ := row.ScoreValue(key); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func rankWithinDomain(sch *schema.Schema, d schema.Domain, means map[string]float64) (top, lowest string) {
	if len(d.Subdomains) == 0 {
		return "", ""
	}
	topKey, lowKey := d.Subdomains[0], d.Subdomains[0]
	for _, sub := range d.Subdomains[1:] {
		if means[sub] > means[topKey] {
			topKey = sub
		}
		if means[sub] < means[lowKey] {
			lowKey = sub
		}
	}
	return sch.DisplayName(topKey), sch.DisplayName(lowKey)
}

func lowestSubdomains(sch *schema.Schema, means map[string]float64, n int) []string {
	keys := sch.SubdomainKeys()
	sort.SliceStable(keys, func(i, j int) bool { return means[keys[i]] < means[keys[j]] })
	if len(keys) > n {
		keys = keys[:n]
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, sch.DisplayName(k))
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
