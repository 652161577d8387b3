// Package render turns parsed records into Markdown, HTML and PDF reports.
// Every string coming from a record is treated as untrusted text and escaped
// for the target format.
package render

import (
	"time"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/enrich"
)

// DefaultTitle heads reports that do not set one.
const DefaultTitle = "Document Analysis Report"

// Level is the coarse risk band shown next to the numeric score.
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// RiskLevel bands a score after clamping it into the displayable range:
// up to 3 is Low, up to 6 is Medium, anything above is High.
func RiskLevel(score int) Level {
	switch s := analysis.Clamp(score); {
	case s <= 3:
		return Low
	case s <= 6:
		return Medium
	default:
		return High
	}
}

// Indicator is one tile of the risk breakdown.
type Indicator struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Breakdown lists the indicators shown for a risk band.
func Breakdown(level Level) []Indicator {
	switch level {
	case Low:
		return []Indicator{
			{"Low Risk", "Standard terms, minimal concerns"},
			{"Favorable", "Generally beneficial conditions"},
			{"Standard", "Typical legal language used"},
		}
	case Medium:
		return []Indicator{
			{"Medium Risk", "Some terms need attention"},
			{"Caution", "Review specific clauses"},
			{"Negotiable", "Consider discussing terms"},
		}
	default:
		return []Indicator{
			{"High Risk", "Significant concerns identified"},
			{"Urgent", "Immediate attention required"},
			{"Legal Review", "Consult with attorney"},
		}
	}
}

// Report is everything a rendered analysis may contain. Only Record is
// required; empty enrichments are left out of the output.
type Report struct {
	Title       string
	Record      analysis.Record
	Clauses     []enrich.Clause
	Glossary    []enrich.Term
	Tips        []string
	GeneratedAt time.Time
	Footer      *Footer
}

func (r Report) title() string {
	if r.Title == "" {
		return DefaultTitle
	}
	return r.Title
}

func (r Report) date() string {
	if r.GeneratedAt.IsZero() {
		return ""
	}
	return r.GeneratedAt.Format("2006-01-02")
}
