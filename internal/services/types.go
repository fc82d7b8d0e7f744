package services

import "time"

// RawAnswerField carries the Typeform field reference on an answer.
type RawAnswerField struct {
	ID string `json:"id"`
}

// RawAnswer is one (field, answer) pair from a submission. Only text and
// email answers carry data this system keeps.
type RawAnswer struct {
	Field RawAnswerField `json:"field"`
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	Email string         `json:"email,omitempty"`
}

// RawVariable is one (key, numeric value) pair from a submission's computed
// variables.
type RawVariable struct {
	Key    string   `json:"key"`
	Number *float64 `json:"number"`
}

// RawSubmission is the inbound payload shape shared by the webhook's
// form_response body and the paginated responses API items.
type RawSubmission struct {
	Token       string        `json:"token,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	Answers     []RawAnswer   `json:"answers"`
	Variables   []RawVariable `json:"variables"`
}

// NormalizedRow is the canonical flat record, one per submission. Nil fields
// were absent from the raw payload; they are never fabricated. Rows are
// immutable once created and only ever appended to the store.
type NormalizedRow struct {
	SubmittedAt time.Time `json:"submitted_at"`

	Respondent *string `json:"respondent"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Church     *string `json:"church"`

	// Domain scores, rescaled 0–25 → 0–100.
	Discipleship *float64 `json:"discipleship"`
	Sending      *float64 `json:"sending"`
	Support      *float64 `json:"support"`
	Structure    *float64 `json:"structure"`

	// Subdomain scores, raw scale.
	Education    *float64 `json:"education"`
	Training     *float64 `json:"training"`
	Sending1     *float64 `json:"sending1"`
	MemberCare   *float64 `json:"membercare"`
	Praying      *float64 `json:"praying"`
	Giving       *float64 `json:"giving"`
	Community    *float64 `json:"community"`
	Organisation *float64 `json:"organisation"`
	Policies     *float64 `json:"policies"`
	Partnerships *float64 `json:"partnerships"`

	Score           *float64 `json:"score"`
	FinalPercentage *float64 `json:"finalpercentage"`
}

// ScoreValue resolves a domain, subdomain or summary key to its field. The
// second return is false for keys outside the flat schema.
func (r *NormalizedRow) ScoreValue(key string) (*float64, bool) {
	switch key {
	case "discipleship":
		return r.Discipleship, true
	case "sending":
		return r.Sending, true
	case "support":
		return r.Support, true
	case "structure":
		return r.Structure, true
	case "education":
		return r.Education, true
	case "training":
		return r.Training, true
	case "sending1":
		return r.Sending1, true
	case "membercare":
		return r.MemberCare, true
	case "praying":
		return r.Praying, true
	case "giving":
		return r.Giving, true
	case "community":
		return r.Community, true
	case "organisation":
		return r.Organisation, true
	case "policies":
		return r.Policies, true
	case "partnerships":
		return r.Partnerships, true
	case "score":
		return r.Score, true
	case "finalpercentage":
		return r.FinalPercentage, true
	}
	return nil, false
}

// SetScoreValue assigns a score field by key, mirroring ScoreValue.
func (r *NormalizedRow) SetScoreValue(key string, v *float64) bool {
	switch key {
	case "discipleship":
		r.Discipleship = v
	case "sending":
		r.Sending = v
	case "support":
		r.Support = v
	case "structure":
		r.Structure = v
	case "education":
		r.Education = v
	case "training":
		r.Training = v
	case "sending1":
		r.Sending1 = v
	case "membercare":
		r.MemberCare = v
	case "praying":
		r.Praying = v
	case "giving":
		r.Giving = v
	case "community":
		r.Community = v
	case "organisation":
		r.Organisation = v
	case "policies":
		r.Policies = v
	case "partnerships":
		r.Partnerships = v
	case "score":
		r.Score = v
	case "finalpercentage":
		r.FinalPercentage = v
	default:
		return false
	}
	return true
}

// AnswerValue resolves a logical answer field name to its value.
func (r *NormalizedRow) AnswerValue(name string) (*string, bool) {
	switch name {
	case "respondent":
		return r.Respondent, true
	case "email":
		return r.Email, true
	case "role":
		return r.Role, true
	case "church":
		return r.Church, true
	}
	return nil, false
}

// SetAnswerValue assigns an answer field by logical name.
func (r *NormalizedRow) SetAnswerValue(name string, v *string) bool {
	switch name {
	case "respondent":
		r.Respondent = v
	case "email":
		r.Email = v
	case "role":
		r.Role = v
	case "church":
		r.Church = v
	default:
		return false
	}
	return true
}

// RowStore abstracts the persisted response store. Implementations keep rows
// in append order; a missing backing file reads as an empty dataset.
type RowStore interface {
	ReadAll() ([]*NormalizedRow, error)
	Append(row *NormalizedRow) error
	ReplaceAll(rows []*NormalizedRow) error
	Clear() error
}
