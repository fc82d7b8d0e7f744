// Package schema holds the static survey schema: the four assessment domains,
// their subdomains, display names, the flat CSV column order, and the Typeform
// field-ID mapping. The mapping is fixed at compile time, not derived from data.
package schema

// Domain and subdomain keys as they appear in Typeform variables and in the
// persisted store.
const (
	DomainDiscipleship = "discipleship"
	DomainSending      = "sending"
	DomainSupport      = "support"
	DomainStructure    = "structure"
)

// Domain groups a domain key with its ordered subdomain keys.
type Domain struct {
	Key        string
	Subdomains []string
}

// Schema is the fixed domain→subdomain mapping plus display names. Aggregation
// and comparison are parameterized on it so they can be tested against
// alternate schemas.
type Schema struct {
	Domains      []Domain
	DisplayNames map[string]string
}

// Default returns the production schema: four domains, ten subdomains.
// Every subdomain key belongs to exactly one domain.
func Default() *Schema {
	return &Schema{
		Domains: []Domain{
			{Key: DomainDiscipleship, Subdomains: []string{"education", "training"}},
			{Key: DomainSending, Subdomains: []string{"sending1", "membercare"}},
			{Key: DomainSupport, Subdomains: []string{"praying", "giving", "community"}},
			{Key: DomainStructure, Subdomains: []string{"organisation", "policies", "partnerships"}},
		},
		DisplayNames: map[string]string{
			"discipleship": "Discipleship",
			"sending":      "Sending",
			"support":      "Support",
			"structure":    "Structure",
			"education":    "Education",
			"training":     "Training",
			"sending1":     "Sending",
			"membercare":   "Member Care",
			"praying":      "Praying",
			"giving":       "Giving",
			"community":    "Community",
			"organisation": "Organisation",
			"policies":     "Policies",
			"partnerships": "Partnerships",
		},
	}
}

// DomainKeys returns the domain keys in schema order.
func (s *Schema) DomainKeys() []string {
	out := make([]string, 0, len(s.Domains))
	for _, d := range s.Domains {
		out = append(out, d.Key)
	}
	return out
}

// SubdomainKeys returns all subdomain keys flattened in schema order.
func (s *Schema) SubdomainKeys() []string {
	var out []string
	for _, d := range s.Domains {
		out = append(out, d.Subdomains...)
	}
	return out
}

// DisplayName resolves a key to its display name, falling back to the key
// itself so an unknown key never renders blank.
func (s *Schema) DisplayName(key string) string {
	if n, ok := s.DisplayNames[key]; ok {
		return n
	}
	return key
}

// CSVHeaders is the persisted column order. The store writes exactly this
// header row and one data row per normalized submission.
var CSVHeaders = []string{
	"submitted_at",
	"respondent",
	"email",
	"role",
	"church",
	"discipleship",
	"education",
	"training",
	"sending",
	"sending1",
	"membercare",
	"support",
	"praying",
	"giving",
	"community",
	"structure",
	"organisation",
	"policies",
	"partnerships",
	"score",
	"finalpercentage",
}

// FieldIDs maps the Typeform answer field IDs to their logical names. Answers
// whose field ID is not listed here are skipped during normalization.
var FieldIDs = map[string]string{
	"Wz6EJ0SrP537": "respondent",
	"mQQ6n4XODVE8": "email",
	"7rGpb91gC5Zv": "role",
	"4yBh92Cyp8hz": "church",
}
