package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/compare"
)

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(strings.TrimSpace(s), "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div class="header">
<h1>{{.Title}}</h1>
{{- if .Date}}
<p>Generated on: {{.Date}}</p>
{{- end}}
{{- if .Record.DocumentType}}
<p class="document-type">{{.Record.DocumentType}}</p>
{{- end}}
</div>
<div class="section">
<h2>Risk Assessment</h2>
<div class="risk-score risk-{{lower .Level}}">
<h3>Overall Risk Score: {{.Score}}/10 ({{.Level}} Risk)</h3>
<div class="risk-breakdown">
{{- range .Breakdown}}
<div class="risk-item {{lower $.Level}}"><div class="risk-item-title">{{.Title}}</div><div class="risk-item-desc">{{.Description}}</div></div>
{{- end}}
</div>
</div>
</div>
{{- if .Record.KeyIssues}}
<div class="section">
<h2>Key Issues</h2>
<ul class="key-issues">
{{- range .Record.KeyIssues}}
<li>{{.}}</li>
{{- end}}
</ul>
</div>
{{- end}}
<div class="section">
<h2>Plain English Summary</h2>
<div class="summary">
{{- range paragraphs .Record.PlainSummary}}
<p>{{.}}</p>
{{- end}}
</div>
</div>
{{- if .Record.RedFlags}}
<div class="section">
<h2>Red Flags</h2>
<ul class="red-flags">
{{- range .Record.RedFlags}}
<li>{{.}}</li>
{{- end}}
</ul>
</div>
{{- end}}
{{- if .Clauses}}
<div class="section">
<h2>Clause Priorities</h2>
{{- range .Clauses}}
<div class="clause-item priority-{{lower .Priority}}">
<div class="clause-header"><span class="priority-badge">{{.Priority}}</span> <span class="category-tag">{{.Category}}</span></div>
<div class="clause-text">{{.Text}}</div>
<div class="clause-action">{{.Action}}</div>
</div>
{{- end}}
</div>
{{- end}}
{{- if .Glossary}}
<div class="section">
<h2>Glossary</h2>
<dl class="glossary">
{{- range .Glossary}}
<dt>{{.Term}}</dt>
<dd>{{.Definition}}{{if .Example}}<br><em>Example: {{.Example}}</em>{{end}}</dd>
{{- end}}
</dl>
</div>
{{- end}}
{{- if .Tips}}
<div class="section">
<h2>Negotiation Tips</h2>
<ol class="tips">
{{- range .Tips}}
<li>{{.}}</li>
{{- end}}
</ol>
</div>
{{- end}}
{{- if .Footer}}
<footer>{{.Footer.String}}</footer>
{{- end}}
</body>
</html>
`))

var comparisonTmpl = template.Must(template.New("comparison").Funcs(funcs).Parse(`<div class="comparison comparison-{{.Status}}">
{{- if .Insufficient}}
<div class="error-message">{{.Notice}}</div>
{{- else if .Unstructured}}
<div class="comparison-raw">
{{- range paragraphs .Fallback}}
<p>{{.}}</p>
{{- end}}
</div>
{{- else}}
{{- with .Record.Overview}}
<div class="comparison-section"><h4>Overview</h4><p>{{.}}</p></div>
{{- end}}
{{- with .Record.KeyDifferences}}
<div class="comparison-section"><h4>Key Differences</h4><ul>{{range .}}<li>{{.}}</li>{{end}}</ul></div>
{{- end}}
{{- with .Record.MoreFavorable}}
<div class="comparison-section favorable"><h4>Which Is More Favorable</h4><p>{{.}}</p></div>
{{- end}}
{{- with .Record.ClauseDifferences}}
<div class="comparison-section"><h4>Specific Clause Differences</h4><ul>{{range .}}<li>{{.}}</li>{{end}}</ul></div>
{{- end}}
{{- with .Record.Recommendation}}
<div class="comparison-section recommendation"><h4>Recommendation</h4><p>{{.}}</p></div>
{{- end}}
{{- end}}
</div>
`))

var bubbleTmpl = template.Must(template.New("bubble").Parse(
	`<div class="chat-message {{.Sender}}"><div class="message-content">{{.Text}}</div></div>`))

type reportView struct {
	Report
	Title     string
	Date      string
	Score     int
	Level     string
	Breakdown []Indicator
}

// HTML renders an analysis report as a standalone page.
func HTML(r Report) (string, error) {
	level := RiskLevel(r.Record.RiskScore)
	view := reportView{
		Report:    r,
		Title:     r.title(),
		Date:      r.date(),
		Score:     analysis.Clamp(r.Record.RiskScore),
		Level:     string(level),
		Breakdown: Breakdown(level),
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type comparisonView struct {
	compare.Result
	Insufficient bool
	Unstructured bool
	Notice       string
}

// ComparisonHTML renders a parsed comparison as an HTML fragment. An
// insufficient result renders only the notice; an unstructured one renders
// the fallback text as plain paragraphs.
func ComparisonHTML(res compare.Result) (string, error) {
	view := comparisonView{
		Result:       res,
		Insufficient: res.Status == compare.Insufficient,
		Unstructured: res.Status == compare.Unstructured,
		Notice:       InsufficientNotice,
	}
	var buf bytes.Buffer
	if err := comparisonTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatBubble renders one question or answer as an HTML fragment. Unknown
// senders are shown as the assistant.
func ChatBubble(sender Sender, text string) string {
	if sender != SenderUser {
		sender = SenderAI
	}
	var buf bytes.Buffer
	if err := bubbleTmpl.Execute(&buf, struct {
		Sender Sender
		Text   string
	}{sender, text}); err != nil {
		return ""
	}
	return buf.String()
}
