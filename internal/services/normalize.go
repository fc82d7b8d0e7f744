package services

import (
	"sort"

	"github.com/cmra-project/group-dashboard/internal/schema"
)

// SubdomainScore pairs a subdomain key with a score value.
type SubdomainScore struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// NormalizedResult carries the persisted row plus derived per-submission
// rankings that callers may present but that never reach the store.
type NormalizedResult struct {
	Row *NormalizedRow
	// Top3 and Bottom3 rank the present subdomain scores descending and
	// ascending-from-worst respectively. Stable order: subdomains with equal
	// values keep schema enumeration order.
	Top3    []SubdomainScore
	Bottom3 []SubdomainScore
}

// Normalizer converts raw submissions into flat rows against a fixed schema.
type Normalizer struct {
	schema   *schema.Schema
	fieldIDs map[string]string
}

func NewNormalizer(sch *schema.Schema) *Normalizer {
	if sch == nil {
		sch = schema.Default()
	}
	return &Normalizer{schema: sch, fieldIDs: schema.FieldIDs}
}

// Normalize maps one submission to one row.
//
// Answers resolve through the fixed field-ID enumeration; unrecognized field
// IDs and answers that fail extraction are skipped without rejecting the
// submission, so upstream form edits degrade to null fields instead of hard
// failures. Missing mandatory domain scores are the opposite case: they fail
// with MissingFieldError because every domain score is required for
// aggregation.
func (n *Normalizer) Normalize(raw *RawSubmission) (*NormalizedResult, error) {
	row := &NormalizedRow{SubmittedAt: raw.SubmittedAt}

	for _, ans := range raw.Answers {
		name, ok := n.fieldIDs[ans.Field.ID]
		if !ok {
			continue
		}
		v, err := extractAnswer(ans)
		if err != nil {
			continue
		}
		row.SetAnswerValue(name, &v)
	}

	scores := map[string]float64{}
	for _, v := range raw.Variables {
		if v.Number == nil {
			continue
		}
		scores[v.Key] = *v.Number
	}

	for _, key := range n.schema.DomainKeys() {
		v, ok := scores[key]
		if !ok {
			return nil, &MissingFieldError{Key: key}
		}
		scaled := schema.RescaleDomainScore(v)
		row.SetScoreValue(key, &scaled)
	}
	for _, key := range n.schema.SubdomainKeys() {
		if v, ok := scores[key]; ok {
			val := v
			row.SetScoreValue(key, &val)
		}
	}
	for _, key := range []string{"score", "finalpercentage"} {
		if v, ok := scores[key]; ok {
			val := v
			row.SetScoreValue(key, &val)
		}
	}

	top, bottom := rankSubdomains(n.schema, row)
	return &NormalizedResult{Row: row, Top3: top, Bottom3: bottom}, nil
}

func extractAnswer(ans RawAnswer) (string, error) {
	switch ans.Type {
	case "text":
		if ans.Text == "" {
			return "", ErrMalformedAnswer
		}
		return ans.Text, nil
	case "email":
		if ans.Email == "" {
			return "", ErrMalformedAnswer
		}
		return ans.Email, nil
	default:
		return "", ErrMalformedAnswer
	}
}

func rankSubdomains(sch *schema.Schema, row *NormalizedRow) (top, bottom []SubdomainScore) {
	ranked := make([]SubdomainScore, 0, len(sch.SubdomainKeys()))
	for _, key := range sch.SubdomainKeys() {
		if v, ok := row.ScoreValue(key); ok && v != nil {
			ranked = append(ranked, SubdomainScore{Key: key, Value: *v})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })

	for i := 0; i < len(ranked) && i < 3; i++ {
		top = append(top, ranked[i])
	}
	// Weakest first, walking backwards from the tail.
	for i := len(ranked) - 1; i >= 0 && len(bottom) < 3; i-- {
		bottom = append(bottom, ranked[i])
	}
	return top, bottom
}
