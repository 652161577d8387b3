package compare

import (
	"regexp"
	"strings"

	"github.com/hyperifyio/doclens/internal/normalize"
	"github.com/hyperifyio/doclens/internal/sections"
)

// Header names of the comparison contract, in canonical order.
const (
	HeaderOverview          = "DOCUMENT COMPARISON"
	HeaderKeyDifferences    = "KEY DIFFERENCES"
	HeaderMoreFavorable     = "WHICH IS MORE FAVORABLE"
	HeaderClauseDifferences = "SPECIFIC CLAUSE DIFFERENCES"
	HeaderRecommendation    = "RECOMMENDATION"
)

// InsufficientToken is what the producer answers with when the two inputs
// cannot be compared.
const InsufficientToken = "INSUFFICIENT_INPUT"

// Schema is the comparison header vocabulary. Headers may omit the colon.
var Schema = sections.New(true,
	sections.Section{Name: HeaderOverview, Kind: sections.Text, Hint: "[One short paragraph describing both documents]"},
	sections.Section{Name: HeaderKeyDifferences, Kind: sections.List, Hint: "• [List the main differences between the documents, each on a new line]"},
	sections.Section{Name: HeaderMoreFavorable, Kind: sections.Text, Hint: "[Clearly state which document is more favorable to the user and why]"},
	sections.Section{Name: HeaderClauseDifferences, Kind: sections.List, Hint: "• [List specific clauses that differ significantly, each on a new line]"},
	sections.Section{Name: HeaderRecommendation, Kind: sections.Text, Hint: "[Provide a clear recommendation on which document to choose and why]"},
)

var insufficientRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(InsufficientToken))

// Status tells the renderer how to present a parsed comparison.
type Status int

const (
	// Structured means at least one section was recognised.
	Structured Status = iota
	// Insufficient means the producer reported unusable inputs; no field may
	// be rendered.
	Insufficient
	// Unstructured means nothing matched the contract; render Fallback as a
	// plain block.
	Unstructured
)

func (s Status) String() string {
	switch s {
	case Structured:
		return "structured"
	case Insufficient:
		return "insufficient"
	case Unstructured:
		return "unstructured"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Record holds the five comparison sections.
type Record struct {
	Overview          string   `json:"overview,omitempty" yaml:"overview,omitempty"`
	KeyDifferences    []string `json:"key_differences" yaml:"key_differences"`
	MoreFavorable     string   `json:"more_favorable" yaml:"more_favorable"`
	ClauseDifferences []string `json:"clause_differences" yaml:"clause_differences"`
	Recommendation    string   `json:"recommendation" yaml:"recommendation"`
	Insufficient      bool     `json:"insufficient" yaml:"insufficient"`
}

// empty reports whether all five sections came back empty.
func (r Record) empty() bool {
	return r.Overview == "" && len(r.KeyDifferences) == 0 && r.MoreFavorable == "" &&
		len(r.ClauseDifferences) == 0 && r.Recommendation == ""
}

// Result is a parsed comparison with its rendering decision.
type Result struct {
	Record Record `json:"record"`
	Status Status `json:"status"`
	// Fallback is the normalised producer text, set only when Status is
	// Unstructured.
	Fallback string `json:"fallback,omitempty"`
}

// Parse checks for the insufficiency sentinel, then extracts the five
// sections from the bullet-normalised text. When every section is empty the
// result is Unstructured and carries the normalised text instead. Parse never
// panics.
func Parse(text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = unstructured(text)
		}
	}()

	if IsInsufficient(text) {
		return Result{
			Record: Record{Insufficient: true},
			Status: Insufficient,
		}
	}

	clean := normalize.Structured(text)
	rec := Record{
		Overview:          textSection(clean, HeaderOverview),
		KeyDifferences:    listSection(clean, HeaderKeyDifferences),
		MoreFavorable:     textSection(clean, HeaderMoreFavorable),
		ClauseDifferences: listSection(clean, HeaderClauseDifferences),
		Recommendation:    textSection(clean, HeaderRecommendation),
	}
	if rec.empty() {
		return unstructured(text)
	}
	return Result{Record: rec, Status: Structured}
}

// IsInsufficient reports whether text carries the sentinel token anywhere,
// in any casing. Markdown-escaped underscores are accepted.
func IsInsufficient(text string) bool {
	return insufficientRe.MatchString(strings.ReplaceAll(text, `\_`, "_"))
}

func unstructured(text string) Result {
	return Result{
		Record:   Record{KeyDifferences: []string{}, ClauseDifferences: []string{}},
		Status:   Unstructured,
		Fallback: normalize.Structured(text),
	}
}

func textSection(text, name string) string {
	body, _ := Schema.Span(text, name)
	return strings.TrimSpace(body)
}

func listSection(text, name string) []string {
	body, ok := Schema.Span(text, name)
	if !ok {
		return []string{}
	}
	return sections.ItemsSplitInline(body)
}
