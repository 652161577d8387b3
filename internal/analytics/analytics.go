// Package analytics keeps running totals over analysed documents: counts,
// average risk, a risk histogram and per-type risk trends.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/doctype"
)

// MinutesPerDocument is the reading time credited to each analysed document.
const MinutesPerDocument = 15

// DateLayout formats trend points.
const DateLayout = "2006-01-02"

// Entry is one analysed document in the history.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	At           time.Time `json:"at"`
	DocumentType string    `json:"document_type"`
	RiskScore    int       `json:"risk_score"`
	KeyIssues    int       `json:"key_issues"`
	RedFlags     int       `json:"red_flags"`
}

// NewEntry builds a history entry for a parsed record. The raw risk score is
// kept; out-of-range values are only left out of the histogram.
func NewEntry(rec analysis.Record, at time.Time) Entry {
	docType := rec.DocumentType
	if docType == "" {
		docType = doctype.DefaultType
	}
	return Entry{
		ID:           uuid.New(),
		At:           at.UTC(),
		DocumentType: docType,
		RiskScore:    rec.RiskScore,
		KeyIssues:    len(rec.KeyIssues),
		RedFlags:     len(rec.RedFlags),
	}
}

// Summary is the dashboard view of the history.
type Summary struct {
	TotalDocuments int     `json:"total_documents"`
	TotalRiskScore int     `json:"total_risk_score"`
	AverageRisk    float64 `json:"average_risk"`
	// Histogram[i] counts documents scored i+1.
	Histogram    [10]int `json:"histogram"`
	MinutesSaved int     `json:"minutes_saved"`
}

// add folds count documents of the given score into s.
func (s *Summary) add(score, count int) {
	s.TotalDocuments += count
	s.TotalRiskScore += score * count
	if score >= analysis.MinRiskScore && score <= analysis.MaxRiskScore {
		s.Histogram[score-1] += count
	}
}

func (s *Summary) finish() {
	if s.TotalDocuments > 0 {
		s.AverageRisk = float64(s.TotalRiskScore) / float64(s.TotalDocuments)
	}
	s.MinutesSaved = s.TotalDocuments * MinutesPerDocument
}

// Summarize computes the summary of a list of entries.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		s.add(e.RiskScore, 1)
	}
	s.finish()
	return s
}

// Point is one dated risk score in a trend.
type Point struct {
	Date string `json:"date"`
	Risk int    `json:"risk"`
}

// Trends maps doctype.Key of a document type to its scores, oldest first.
type Trends map[string][]Point

// Last returns a copy holding at most n of the newest points per type.
func (t Trends) Last(n int) Trends {
	out := make(Trends, len(t))
	for k, pts := range t {
		if n > 0 && len(pts) > n {
			pts = pts[len(pts)-n:]
		}
		out[k] = append([]Point(nil), pts...)
	}
	return out
}

// Keys returns the trend keys in sorted order.
func (t Trends) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TrendsOf groups entries by document type in chronological order.
func TrendsOf(entries []Entry) Trends {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })
	out := Trends{}
	for _, e := range sorted {
		k := doctype.Key(e.DocumentType)
		out[k] = append(out[k], Point{Date: e.At.Format(DateLayout), Risk: e.RiskScore})
	}
	return out
}

// Store persists the history.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Summary(ctx context.Context) (Summary, error)
	Trends(ctx context.Context) (Trends, error)
	History(ctx context.Context) ([]Entry, error)
	Reset(ctx context.Context) error
	Close() error
}
