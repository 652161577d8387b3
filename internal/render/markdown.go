package render

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/compare"
)

// InsufficientNotice replaces every comparison field when the producer
// reported that the inputs could not be compared.
const InsufficientNotice = "The documents could not be compared. Provide two complete documents with readable text and try again."

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", `\<`, ">", `\>`, "#", `\#`, "|", `\|`,
)

// escapeMarkdown neutralises inline markup so record text renders literally.
func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

// Markdown renders an analysis report. Sections with nothing to show are
// omitted, except the summary which is always present.
func Markdown(r Report) string {
	var b strings.Builder
	rec := r.Record
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(r.title()))
	if d := r.date(); d != "" {
		fmt.Fprintf(&b, "Generated on: %s\n\n", d)
	}
	if rec.DocumentType != "" {
		fmt.Fprintf(&b, "Document type: %s\n\n", escapeMarkdown(rec.DocumentType))
	}

	b.WriteString("## Risk Assessment\n\n")
	level := RiskLevel(rec.RiskScore)
	fmt.Fprintf(&b, "Overall Risk Score: %d/10 (%s Risk)\n\n", analysis.Clamp(rec.RiskScore), level)
	for _, ind := range Breakdown(level) {
		fmt.Fprintf(&b, "- **%s**: %s\n", ind.Title, ind.Description)
	}
	b.WriteString("\n")

	writeList(&b, "Key Issues", rec.KeyIssues)
	b.WriteString("## Plain English Summary\n\n")
	writeParagraphs(&b, rec.PlainSummary)
	writeList(&b, "Red Flags", rec.RedFlags)

	if len(r.Clauses) > 0 {
		b.WriteString("## Clause Priorities\n\n")
		for _, c := range r.Clauses {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n  Action: %s\n",
				escapeMarkdown(c.Priority), escapeMarkdown(c.Category),
				escapeMarkdown(c.Text), escapeMarkdown(c.Action))
		}
		b.WriteString("\n")
	}
	if len(r.Glossary) > 0 {
		b.WriteString("## Glossary\n\n")
		for _, t := range r.Glossary {
			fmt.Fprintf(&b, "- **%s**: %s\n", escapeMarkdown(t.Term), escapeMarkdown(t.Definition))
			if t.Example != "" {
				fmt.Fprintf(&b, "  Example: %s\n", escapeMarkdown(t.Example))
			}
		}
		b.WriteString("\n")
	}
	if len(r.Tips) > 0 {
		b.WriteString("## Negotiation Tips\n\n")
		for i, tip := range r.Tips {
			fmt.Fprintf(&b, "%d. %s\n", i+1, escapeMarkdown(tip))
		}
		b.WriteString("\n")
	}

	out := b.String()
	if r.Footer != nil {
		out = appendFooter(out, *r.Footer)
	}
	return out
}

// ComparisonMarkdown renders a parsed comparison according to its status.
func ComparisonMarkdown(res compare.Result) string {
	var b strings.Builder
	b.WriteString("# Document Comparison\n\n")
	switch res.Status {
	case compare.Insufficient:
		b.WriteString(InsufficientNotice)
		b.WriteString("\n")
		return b.String()
	case compare.Unstructured:
		writeParagraphs(&b, res.Fallback)
		return b.String()
	}
	rec := res.Record
	writeText(&b, "Overview", rec.Overview)
	writeList(&b, "Key Differences", rec.KeyDifferences)
	writeText(&b, "Which Is More Favorable", rec.MoreFavorable)
	writeList(&b, "Specific Clause Differences", rec.ClauseDifferences)
	writeText(&b, "Recommendation", rec.Recommendation)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeText(b *strings.Builder, heading, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	writeParagraphs(b, text)
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", escapeMarkdown(it))
	}
	b.WriteString("\n")
}

// writeParagraphs keeps the text's own line breaks. A line starting with a
// list marker is escaped so it is not rendered as a list item.
func writeParagraphs(b *strings.Builder, text string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "+") {
			b.WriteString(`\`)
		}
		b.WriteString(escapeMarkdown(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
