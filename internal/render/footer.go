package render

import (
	"fmt"
	"strings"
)

// Footer records the producer configuration behind a report so a reader can
// tell which model wrote it and whether cached answers were reused.
type Footer struct {
	Model       string
	BaseURL     string
	CacheActive bool
	// Clamped is set when scores were clamped at parse time.
	Clamped bool
}

// String renders the footer as a single deterministic line.
func (f Footer) String() string {
	var b strings.Builder
	b.WriteString("Generated by: ")
	b.WriteString("model=")
	b.WriteString(strings.TrimSpace(f.Model))
	b.WriteString("; llm_base_url=")
	b.WriteString(strings.TrimSpace(f.BaseURL))
	b.WriteString("; llm_cache=")
	b.WriteString(fmt.Sprintf("%t", f.CacheActive))
	b.WriteString("; clamp_risk=")
	b.WriteString(fmt.Sprintf("%t", f.Clamped))
	return b.String()
}

// appendFooter adds a horizontal rule and the footer line to markdown.
func appendFooter(markdown string, f Footer) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(markdown, "\n"))
	b.WriteString("\n\n---\n")
	b.WriteString(escapeMarkdown(f.String()))
	b.WriteString("\n")
	return b.String()
}
