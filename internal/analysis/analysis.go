package analysis

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/doclens/internal/sections"
)

// Header names of the single-document analysis contract, in canonical order.
const (
	HeaderRiskScore = "RISK SCORE"
	HeaderKeyIssues = "KEY ISSUES"
	HeaderSummary   = "PLAIN ENGLISH SUMMARY"
	HeaderRedFlags  = "RED FLAGS"
)

const (
	// DefaultRiskScore is used when the score is missing or unparsable.
	DefaultRiskScore = 5
	MinRiskScore     = 1
	MaxRiskScore     = 10

	// NoRedFlagsSentinel marks the producer's "none detected" line. Matched
	// case-insensitively as a substring.
	NoRedFlagsSentinel = "no major red flags"
)

// Schema is the header vocabulary the analysis prompt asks for and Parse
// reads back.
var Schema = sections.New(false,
	sections.Section{Name: HeaderRiskScore, Kind: sections.Scalar, Hint: "[Rate from 1-10, where 1=very safe, 10=very risky]"},
	sections.Section{Name: HeaderKeyIssues, Kind: sections.List, Hint: "• [List 3-5 most important clauses that need attention, each on a new line with bullet points]"},
	sections.Section{Name: HeaderSummary, Kind: sections.Text, Hint: "[Explain the document in simple terms that a 12-year-old could understand. Use clear, conversational language without legal jargon.]"},
	sections.Section{Name: HeaderRedFlags, Kind: sections.List, Hint: "• [List any predatory or unusual terms, each on a new line with bullet points. If none, write \"No major red flags detected.\"]"},
)

var riskRe = regexp.MustCompile(`(?i)RISK[\p{Z}\t]+SCORE[*_\p{Z}\t]*:[*_\s]*(\d+)`)

// Record is the typed result of parsing one analysis response.
type Record struct {
	RiskScore    int      `json:"risk_score" yaml:"risk_score"`
	KeyIssues    []string `json:"key_issues" yaml:"key_issues"`
	PlainSummary string   `json:"plain_summary" yaml:"plain_summary"`
	RedFlags     []string `json:"red_flags" yaml:"red_flags"`
	// DocumentType and Language are attached by the caller.
	DocumentType string `json:"document_type,omitempty" yaml:"document_type,omitempty"`
	Language     string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Extractor parses analysis responses. The zero value stores the risk score
// exactly as parsed.
type Extractor struct {
	// ClampRisk forces the parsed score into [MinRiskScore, MaxRiskScore].
	ClampRisk bool
}

// Parse is Extractor{}.Parse.
func Parse(text string) Record {
	return Extractor{}.Parse(text)
}

// Fallback is the record returned when nothing can be extracted: default
// score, empty lists and the trimmed input as the summary.
func Fallback(text string) Record {
	return Record{
		RiskScore:    DefaultRiskScore,
		KeyIssues:    []string{},
		PlainSummary: strings.TrimSpace(text),
		RedFlags:     []string{},
	}
}

// Parse extracts the four sections from text. It never panics and always
// returns a record; a missing section falls back per field.
func (e Extractor) Parse(text string) (rec Record) {
	defer func() {
		if r := recover(); r != nil {
			rec = Fallback(text)
		}
	}()

	rec = Fallback("")
	if score, ok := parseRisk(text); ok {
		rec.RiskScore = score
	}
	if e.ClampRisk {
		rec.RiskScore = Clamp(rec.RiskScore)
	}
	if body, ok := Schema.Span(text, HeaderKeyIssues); ok {
		rec.KeyIssues = sections.Items(body)
	}
	if body, ok := Schema.Span(text, HeaderSummary); ok {
		rec.PlainSummary = strings.TrimSpace(body)
	}
	if body, ok := Schema.Span(text, HeaderRedFlags); ok {
		for _, item := range sections.Items(body) {
			if strings.Contains(strings.ToLower(item), NoRedFlagsSentinel) {
				continue
			}
			rec.RedFlags = append(rec.RedFlags, item)
		}
	}
	if rec.PlainSummary == "" {
		rec.PlainSummary = strings.TrimSpace(text)
	}
	return rec
}

func parseRisk(text string) (int, bool) {
	m := riskRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clamp bounds a score to [MinRiskScore, MaxRiskScore].
func Clamp(score int) int {
	if score < MinRiskScore {
		return MinRiskScore
	}
	if score > MaxRiskScore {
		return MaxRiskScore
	}
	return score
}
