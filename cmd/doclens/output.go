package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/hyperifyio/doclens/internal/analytics"
	"github.com/hyperifyio/doclens/internal/app"
	"github.com/hyperifyio/doclens/internal/enrich"
)

func writeTips(a *app.App, format string, tips []string) error {
	if format == "json" {
		return a.WriteJSON(map[string][]string{"tips": tips})
	}
	var b strings.Builder
	for i, t := range tips {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	_, err := io.WriteString(a.Stdout, b.String())
	return err
}

func writeClauses(a *app.App, format string, clauses []enrich.Clause) error {
	if format == "json" {
		return a.WriteJSON(map[string][]enrich.Clause{"clauses": clauses})
	}
	var b strings.Builder
	for _, c := range clauses {
		fmt.Fprintf(&b, "[%s] (%s) %s\n", c.Priority, c.Category, c.Text)
		if c.Action != "" {
			fmt.Fprintf(&b, "    Action: %s\n", c.Action)
		}
	}
	_, err := io.WriteString(a.Stdout, b.String())
	return err
}

func writeGlossary(a *app.App, format string, terms []enrich.Term) error {
	if format == "json" {
		return a.WriteJSON(map[string][]enrich.Term{"glossary": terms})
	}
	var b strings.Builder
	for _, t := range terms {
		fmt.Fprintf(&b, "%s: %s\n", t.Term, t.Definition)
		if t.Example != "" {
			fmt.Fprintf(&b, "    Example: %s\n", t.Example)
		}
	}
	_, err := io.WriteString(a.Stdout, b.String())
	return err
}

// writeStats prints the dashboard totals, the score histogram and the recent
// risk trend per document type.
func writeStats(w io.Writer, sum analytics.Summary, trends analytics.Trends) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Documents analysed: %d\n", sum.TotalDocuments)
	fmt.Fprintf(&b, "Average risk:       %.2f\n", sum.AverageRisk)
	fmt.Fprintf(&b, "Time saved:         %d min\n", sum.MinutesSaved)
	b.WriteString("\nRisk distribution:\n")
	for i, n := range sum.Histogram {
		fmt.Fprintf(&b, "  %2d | %s %d\n", i+1, strings.Repeat("#", n), n)
	}
	if keys := trends.Keys(); len(keys) > 0 {
		b.WriteString("\nRecent trends:\n")
		for _, k := range keys {
			scores := make([]string, 0, len(trends[k]))
			for _, p := range trends[k] {
				scores = append(scores, fmt.Sprintf("%s=%d", p.Date, p.Risk))
			}
			fmt.Fprintf(&b, "  %s: %s\n", k, strings.Join(scores, " "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
