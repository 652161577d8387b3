// Package prompt builds the producer prompts. Every structured prompt renders
// its format block from the same section schema the matching extractor
// parses, so header wording cannot drift between the two.
package prompt

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/compare"
	"github.com/hyperifyio/doclens/internal/doctype"
	"github.com/hyperifyio/doclens/internal/enrich"
	"github.com/hyperifyio/doclens/internal/sections"
)

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

// Key is the text the response cache is keyed on.
func (p Prompt) Key() string {
	return p.System + "\n\n" + p.User
}

const systemAnalyst = "You are a legal document analysis assistant. You explain contracts to non-lawyers in plain language. You never give legal advice and never invent clauses that are not in the document."

const plainTextRule = "IMPORTANT: Do not use JSON format. Use plain text with bullet points (•) only."

// Format renders a schema as the answer template shown to the producer.
func Format(s *sections.Schema) string {
	var sb strings.Builder
	for i, sec := range s.Sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sec.Name)
		sb.WriteString(":")
		if sec.Hint == "" {
			continue
		}
		if sec.Kind == sections.Scalar {
			sb.WriteString(" ")
		} else {
			sb.WriteString("\n")
		}
		sb.WriteString(sec.Hint)
	}
	return sb.String()
}

// Detection asks for the document's language and category.
func Detection(document string) Prompt {
	var sb strings.Builder
	sb.WriteString("Analyze this document and determine:\n")
	sb.WriteString("1. Document language (")
	names := make([]string, 0, len(doctype.Languages)+1)
	for _, tag := range doctype.Languages {
		names = append(names, doctype.CanonicalLanguage(tag.String()))
	}
	names = append(names, "or Other")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(")\n2. Document type from these categories:\n")
	for _, p := range doctype.Profiles() {
		fmt.Fprintf(&sb, "   - %s (%s)\n", p.Name, p.Examples)
	}
	sb.WriteString("\nRespond in this exact format:\nLANGUAGE: [detected language]\nTYPE: [document type]\n")
	writeDocument(&sb, "DOCUMENT", document)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

// Analysis asks for the four-section risk analysis of one document.
func Analysis(p doctype.Profile, language, document string) Prompt {
	var sb strings.Builder
	if len(p.Focus) > 0 {
		fmt.Fprintf(&sb, "You are analyzing %s. Focus on:\n", strings.ToUpper(p.Name))
		for i, f := range p.Focus {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, f)
		}
		fmt.Fprintf(&sb, "\nRate risk focusing on: %s.\n\n", p.RiskFocus)
	}
	sb.WriteString("Please provide your analysis in the following format:\n\n")
	sb.WriteString(Format(analysis.Schema))
	sb.WriteString("\n\n")
	sb.WriteString(plainTextRule)
	writeLanguage(&sb, language)
	writeDocument(&sb, "DOCUMENT", document)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

// Comparison asks for the five-section comparison of two documents.
func Comparison(docA, docB string) Prompt {
	var sb strings.Builder
	sb.WriteString("Compare these two legal documents and provide a clear analysis.\n\n")
	sb.WriteString("Please provide your comparison in the following format:\n\n")
	sb.WriteString(Format(compare.Schema))
	sb.WriteString("\n\n")
	sb.WriteString(plainTextRule)
	fmt.Fprintf(&sb, "\nIf either document is empty, unreadable or not a legal document, answer only with %s.", compare.InsufficientToken)
	writeDocument(&sb, "DOCUMENT A", docA)
	writeDocument(&sb, "DOCUMENT B", docB)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

// Negotiation asks for numbered negotiation points for an analysed document.
func Negotiation(rec analysis.Record) Prompt {
	var sb strings.Builder
	sb.WriteString("Based on this legal document analysis, provide practical negotiation advice.\n\n")
	writeRecord(&sb, rec)
	sb.WriteString("\nPlease provide 3-5 specific, actionable negotiation points that could improve the terms for the user. ")
	sb.WriteString("Format your response as clear, numbered points without any special formatting characters.")
	writeLanguage(&sb, rec.Language)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

// Question asks a free-form question about an analysed document.
func Question(rec analysis.Record, question string) Prompt {
	var sb strings.Builder
	sb.WriteString("Based on the legal document analysis, answer this question in simple terms:\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\n", strings.TrimSpace(question))
	fmt.Fprintf(&sb, "Document Summary: %s\n\n", rec.PlainSummary)
	sb.WriteString("Provide a helpful, clear answer in 2-3 sentences.")
	writeLanguage(&sb, rec.Language)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

// Clauses asks for a triage block per clause, in input order.
func Clauses(items []string) Prompt {
	var sb strings.Builder
	sb.WriteString("Triage each clause below for a non-lawyer. For every clause, in the same order, write one block:\n\n")
	sb.WriteString(enrich.Delimiter(1))
	sb.WriteString("\n")
	sb.WriteString(enrich.LabelPriority + ": High, Medium or Low\n")
	sb.WriteString(enrich.LabelCategory + ": one or two words (Fees, Termination, Privacy, ...)\n")
	sb.WriteString(enrich.LabelAction + ": one sentence on what the reader should do\n\n")
	writeItems(&sb, "CLAUSES", items)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

// Glossary asks for a plain-language definition block per term, in input
// order.
func Glossary(terms []enrich.Candidate) Prompt {
	var sb strings.Builder
	sb.WriteString("Define each legal term below in plain language. For every term, in the same order, write one block:\n\n")
	sb.WriteString(enrich.Delimiter(1))
	sb.WriteString("\n")
	sb.WriteString(enrich.LabelDefinition + ": one or two sentences a 12-year-old could follow\n")
	sb.WriteString(enrich.LabelExample + ": a short example of the term in use\n\n")
	names := make([]string, len(terms))
	for i, c := range terms {
		names[i] = c.Term
		if c.Expansion != "" {
			names[i] += " (" + c.Expansion + ")"
		}
	}
	writeItems(&sb, "TERMS", names)
	return Prompt{System: systemAnalyst, User: sb.String()}
}

func writeLanguage(sb *strings.Builder, language string) {
	if language == "" || doctype.IsDefaultLanguage(language) {
		return
	}
	name := doctype.CanonicalLanguage(language)
	fmt.Fprintf(sb, "\n\nIMPORTANT: The document is in %s. Please provide your answer in %s while keeping the same format and the English section headers.", name, name)
}

func writeDocument(sb *strings.Builder, label, document string) {
	fmt.Fprintf(sb, "\n\n%s:\n\"\"\"\n%s\n\"\"\"", label, strings.TrimSpace(document))
}

func writeRecord(sb *strings.Builder, rec analysis.Record) {
	sb.WriteString("Document Analysis:\n")
	if rec.DocumentType != "" {
		fmt.Fprintf(sb, "- Document Type: %s\n", rec.DocumentType)
	}
	fmt.Fprintf(sb, "- Risk Score: %d/10\n", rec.RiskScore)
	fmt.Fprintf(sb, "- Key Issues: %s\n", strings.Join(rec.KeyIssues, ", "))
	fmt.Fprintf(sb, "- Summary: %s\n", rec.PlainSummary)
	flags := "None detected"
	if len(rec.RedFlags) > 0 {
		flags = strings.Join(rec.RedFlags, ", ")
	}
	fmt.Fprintf(sb, "- Red Flags: %s\n", flags)
}

func writeItems(sb *strings.Builder, label string, items []string) {
	fmt.Fprintf(sb, "%s (%d):\n", label, len(items))
	for i, it := range items {
		fmt.Fprintf(sb, "%d. %s\n", i+1, strings.TrimSpace(it))
	}
}
