package enrich

import (
	"sort"
	"strings"
)

// Labels of a clause block.
const (
	LabelPriority = "PRIORITY"
	LabelCategory = "CATEGORY"
	LabelAction   = "ACTION"
)

// Priority levels, most urgent first.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Defaults for clauses the producer did not cover.
const (
	DefaultPriority = PriorityMedium
	DefaultCategory = "General"
	DefaultAction   = "Review this clause before signing."
)

// ClauseLabels are the labels requested per clause, in prompt order.
var ClauseLabels = []string{LabelPriority, LabelCategory, LabelAction}

// Clause is one flagged clause with its triage.
type Clause struct {
	Text     string `json:"text" yaml:"text"`
	Priority string `json:"priority" yaml:"priority"`
	Category string `json:"category" yaml:"category"`
	Action   string `json:"action" yaml:"action"`
}

// Clauses pairs each input clause with block i of raw.
func Clauses(items []string, raw string) ([]Clause, Mismatch) {
	fields, mm := Zip(len(items), raw)
	out := make([]Clause, len(items))
	for i, text := range items {
		f := fields[i]
		out[i] = Clause{
			Text:     text,
			Priority: CanonicalPriority(f.Get(LabelPriority)),
			Category: orDefault(f.Get(LabelCategory), DefaultCategory),
			Action:   orDefault(f.Get(LabelAction), DefaultAction),
		}
	}
	return out, mm
}

// CanonicalPriority maps free-form priority words to High, Medium or Low.
// Unknown or empty input yields DefaultPriority.
func CanonicalPriority(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "high"), strings.HasPrefix(s, "critical"), strings.HasPrefix(s, "urgent"):
		return PriorityHigh
	case strings.HasPrefix(s, "low"), strings.HasPrefix(s, "minor"):
		return PriorityLow
	default:
		return DefaultPriority
	}
}

func priorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// SortByPriority orders clauses High, Medium, Low, keeping input order within
// a level.
func SortByPriority(cs []Clause) {
	sort.SliceStable(cs, func(i, j int) bool {
		return priorityRank(cs[i].Priority) < priorityRank(cs[j].Priority)
	})
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
