package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/analytics"
	"github.com/hyperifyio/doclens/internal/analyzer"
	"github.com/hyperifyio/doclens/internal/cache"
	"github.com/hyperifyio/doclens/internal/compare"
	"github.com/hyperifyio/doclens/internal/doctype"
	"github.com/hyperifyio/doclens/internal/enrich"
	"github.com/hyperifyio/doclens/internal/extract"
	"github.com/hyperifyio/doclens/internal/fetch"
	"github.com/hyperifyio/doclens/internal/llm"
	"github.com/hyperifyio/doclens/internal/render"
)

// ErrNoContent is returned when an input document has no text. The CLI maps
// it to exit code 2.
var ErrNoContent = analyzer.ErrNoContent

// MemoryDB as AnalyticsDB keeps analytics in memory only.
const MemoryDB = ":memory:"

// App wires configuration to the analyzer, the cache and the analytics store.
type App struct {
	cfg      Config
	Analyzer *analyzer.Analyzer
	// Store is nil when analytics are disabled.
	Store    analytics.Store
	// Fetcher loads inputs given as http(s) URLs.
	Fetcher  *fetch.Client
	provider *llm.OpenAIProvider
	Stdout   io.Writer
	Now      func() time.Time

	inputs []manifestInput
}

// New builds an App. A missing API key is not an error here: offline
// commands still work and model calls fail with llm.ErrNotConfigured.
func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{
		cfg:     cfg,
		Fetcher: &fetch.Client{HTTPClient: newFetchHTTPClient(), MaxAttempts: 2, PerRequestTimeout: 30 * time.Second},
		Stdout:  os.Stdout,
		Now:     time.Now,
	}

	var llmCache *cache.LLMCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if n, err := cache.EnforceLimits(cfg.CacheDir, cfg.CacheMaxAge, cfg.CacheMaxCount); err != nil {
			log.Warn().Err(err).Msg("cache limits not enforced")
		} else if n > 0 {
			log.Debug().Int("removed", n).Msg("cache entries evicted")
		}
		llmCache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	var client llm.Client
	p, err := llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey)
	switch {
	case err == nil:
		a.provider = p
		client = llm.NewLimitedClient(llm.NewRetryClient(p), cfg.RPM, cfg.Burst)
	case errors.Is(err, llm.ErrNotConfigured):
		log.Debug().Msg("no LLM API key; only cached answers are available")
	default:
		return nil, err
	}
	a.Analyzer = &analyzer.Analyzer{
		Client:    client,
		Model:     cfg.LLMModel,
		Cache:     llmCache,
		CacheOnly: cfg.LLMCacheOnly,
		ClampRisk: cfg.ClampRisk,
	}

	if !cfg.NoAnalytics {
		if cfg.AnalyticsDB == "" || cfg.AnalyticsDB == MemoryDB {
			a.Store = analytics.NewMemoryStore()
		} else {
			store, err := analytics.OpenSQLite(ctx, cfg.AnalyticsDB)
			if err != nil {
				return nil, err
			}
			a.Store = store
		}
	}
	return a, nil
}

// Close releases the analytics store.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Warn().Err(err).Msg("analytics close failed")
		}
	}
}

// Preflight lists the endpoint's models as a best-effort connectivity check.
func (a *App) Preflight(ctx context.Context) {
	if a.provider == nil {
		log.Warn().Msg("LLM not configured; set LLM_API_KEY or GEMINI_API_KEY")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := a.provider.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	log.Info().Int("count", len(models.Models)).Str("model", a.cfg.LLMModel).Msg("LLM reachable")
}

// Footer describes the producer configuration for rendered reports.
func (a *App) Footer() *render.Footer {
	return &render.Footer{
		Model:       a.cfg.LLMModel,
		BaseURL:     a.cfg.LLMBaseURL,
		CacheActive: a.Analyzer.Cache != nil,
		Clamped:     a.cfg.ClampRisk,
	}
}

// loadDocument reads a local file or downloads a URL.
func (a *App) loadDocument(ctx context.Context, path string) (extract.Document, error) {
	var (
		doc extract.Document
		err error
	)
	if fetch.IsURL(path) {
		doc, err = a.Fetcher.Document(ctx, path)
	} else {
		doc, err = extract.Load(path)
	}
	if err != nil {
		return doc, err
	}
	if strings.TrimSpace(doc.Text) == "" {
		return doc, fmt.Errorf("%s: %w", path, ErrNoContent)
	}
	a.inputs = append(a.inputs, newManifestInput(doc))
	return doc, nil
}

// analyzeInput detects (unless configured) and analyses the input document.
func (a *App) analyzeInput(ctx context.Context) (extract.Document, analyzer.Analysis, error) {
	doc, err := a.loadDocument(ctx, a.cfg.InputPath)
	if err != nil {
		return doc, analyzer.Analysis{}, err
	}
	det := doctype.Detection{Type: a.cfg.DocumentType}
	if a.cfg.Language != "" {
		det.Language = doctype.CanonicalLanguage(a.cfg.Language)
	}
	if det.Type == "" || det.Language == "" {
		found, err := a.Analyzer.Detect(ctx, doc.Text)
		if err != nil {
			return doc, analyzer.Analysis{}, err
		}
		if det.Type == "" {
			det.Type = found.Type
		}
		if det.Language == "" {
			det.Language = found.Language
		}
	}
	res, err := a.Analyzer.Analyze(ctx, doc.Text, det)
	return doc, res, err
}

// Analyze runs the full analysis of the input document, records it in the
// analytics store and adds the enrichments the config asks for. Enrichment
// failures are logged and leave that part of the report empty.
func (a *App) Analyze(ctx context.Context) (render.Report, error) {
	doc, res, err := a.analyzeInput(ctx)
	if err != nil {
		return render.Report{}, err
	}
	if a.Store != nil {
		if err := a.Store.Record(ctx, analytics.NewEntry(res.Record, a.Now())); err != nil {
			log.Warn().Err(err).Msg("analytics record failed")
		}
	}
	rep := render.Report{
		Record:      res.Record,
		GeneratedAt: a.Now(),
		Footer:      a.Footer(),
	}
	if doc.Title != "" {
		rep.Title = doc.Title
	}
	if a.cfg.WithClauses {
		if rep.Clauses, _, err = a.Analyzer.PrioritizeClauses(ctx, clauseItems(res.Record)); err != nil {
			log.Warn().Err(err).Msg("clause triage failed")
		}
	}
	if a.cfg.WithGlossary {
		if rep.Glossary, _, err = a.Analyzer.Glossary(ctx, doc.Text, a.cfg.GlossaryTerms); err != nil {
			log.Warn().Err(err).Msg("glossary failed")
		}
	}
	if a.cfg.WithTips {
		if rep.Tips, err = a.Analyzer.Negotiate(ctx, res.Record); err != nil {
			log.Warn().Err(err).Msg("negotiation tips failed")
		}
	}
	return rep, nil
}

func clauseItems(rec analysis.Record) []string {
	return append(append([]string{}, rec.KeyIssues...), rec.RedFlags...)
}

// Compare compares the input document with the configured second document.
func (a *App) Compare(ctx context.Context) (compare.Result, error) {
	docA, err := a.loadDocument(ctx, a.cfg.InputPath)
	if err != nil {
		return compare.Result{}, err
	}
	docB, err := a.loadDocument(ctx, a.cfg.ComparePath)
	if err != nil {
		return compare.Result{}, err
	}
	return a.Analyzer.Compare(ctx, docA.Text, docB.Text)
}

// Negotiate analyses the input and returns negotiation tips for it.
func (a *App) Negotiate(ctx context.Context) ([]string, error) {
	_, res, err := a.analyzeInput(ctx)
	if err != nil {
		return nil, err
	}
	return a.Analyzer.Negotiate(ctx, res.Record)
}

// Ask analyses the input and answers question about it.
func (a *App) Ask(ctx context.Context, question string) (string, error) {
	_, res, err := a.analyzeInput(ctx)
	if err != nil {
		return "", err
	}
	return a.Analyzer.Ask(ctx, res.Record, question)
}

// Clauses analyses the input and triages its key issues and red flags.
func (a *App) Clauses(ctx context.Context) ([]enrich.Clause, error) {
	_, res, err := a.analyzeInput(ctx)
	if err != nil {
		return nil, err
	}
	out, _, err := a.Analyzer.PrioritizeClauses(ctx, clauseItems(res.Record))
	return out, err
}

// Glossary defines the legal terms found in the input document.
func (a *App) Glossary(ctx context.Context) ([]enrich.Term, error) {
	doc, err := a.loadDocument(ctx, a.cfg.InputPath)
	if err != nil {
		return nil, err
	}
	out, _, err := a.Analyzer.Glossary(ctx, doc.Text, a.cfg.GlossaryTerms)
	return out, err
}

// Parse kinds for ParseFile.
const (
	ParseAnalysis   = "analysis"
	ParseComparison = "comparison"
)

// ParseFile runs only an extractor over a saved model answer.
func (a *App) ParseFile(kind string) (any, error) {
	b, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return nil, err
	}
	switch kind {
	case ParseAnalysis, "":
		return analysis.Extractor{ClampRisk: a.cfg.ClampRisk}.Parse(string(b)), nil
	case ParseComparison:
		return compare.Parse(string(b)), nil
	}
	return nil, fmt.Errorf("unknown parse kind %q", kind)
}

// reportJSON is the json output of an analysis.
type reportJSON struct {
	Record    analysis.Record    `json:"record"`
	RiskLevel render.Level       `json:"risk_level"`
	Clauses   []enrich.Clause    `json:"clauses,omitempty"`
	Glossary  []enrich.Term      `json:"glossary,omitempty"`
	Tips      []string           `json:"tips,omitempty"`
	Breakdown []render.Indicator `json:"breakdown"`
}

// WriteReport renders rep in the configured format and writes it to the
// output path, stdout for "-" or for text formats without a path. It
// returns where the report went.
func (a *App) WriteReport(rep render.Report) (string, error) {
	format := formatFor(a.cfg.Format, a.cfg.OutputPath)
	out := a.outputPath(format)
	var data []byte
	switch format {
	case "pdf":
		if err := render.WritePDF(rep, out); err != nil {
			return "", err
		}
		return out, a.writeManifest(out, rep.Record)
	case "html":
		s, err := render.HTML(rep)
		if err != nil {
			return "", err
		}
		data = []byte(s)
	case "json":
		level := render.RiskLevel(rep.Record.RiskScore)
		b, err := json.MarshalIndent(reportJSON{
			Record:    rep.Record,
			RiskLevel: level,
			Clauses:   rep.Clauses,
			Glossary:  rep.Glossary,
			Tips:      rep.Tips,
			Breakdown: render.Breakdown(level),
		}, "", "  ")
		if err != nil {
			return "", err
		}
		data = append(b, '\n')
	default:
		data = []byte(render.Markdown(rep))
	}
	if err := a.writeOutput(out, data); err != nil {
		return "", err
	}
	return out, a.writeManifest(out, rep.Record)
}

// WriteComparison renders a comparison as markdown, html or json.
func (a *App) WriteComparison(res compare.Result) (string, error) {
	format := formatFor(a.cfg.Format, a.cfg.OutputPath)
	out := a.outputPath(format)
	var data []byte
	switch format {
	case "html":
		s, err := render.ComparisonHTML(res)
		if err != nil {
			return "", err
		}
		data = []byte(s)
	case "json":
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", err
		}
		data = append(b, '\n')
	case "pdf":
		return "", errors.New("pdf output is only available for analysis reports")
	default:
		data = []byte(render.ComparisonMarkdown(res))
	}
	if err := a.writeOutput(out, data); err != nil {
		return "", err
	}
	return out, a.writeManifest(out, res)
}

// WriteJSON writes v as indented JSON to the output.
func (a *App) WriteJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.writeOutput(a.cfg.OutputPath, append(b, '\n'))
}

func (a *App) outputPath(format string) string {
	if a.cfg.OutputPath != "" {
		return a.cfg.OutputPath
	}
	if format == "pdf" {
		return deriveOutputPath(a.cfg.InputPath, format, a.Now())
	}
	return "-"
}

func (a *App) writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Stats returns the analytics summary and the recent trends.
func (a *App) Stats(ctx context.Context) (analytics.Summary, analytics.Trends, error) {
	if a.Store == nil {
		return analytics.Summary{}, nil, errors.New("analytics are disabled")
	}
	sum, err := a.Store.Summary(ctx)
	if err != nil {
		return sum, nil, err
	}
	tr, err := a.Store.Trends(ctx)
	if err != nil {
		return sum, nil, err
	}
	return sum, tr, nil
}

// Export writes the analytics history workbook to path.
func (a *App) Export(ctx context.Context, path string) error {
	if a.Store == nil {
		return errors.New("analytics are disabled")
	}
	h, err := a.Store.History(ctx)
	if err != nil {
		return err
	}
	b, err := analytics.ExportXLSX(h)
	if err != nil {
		return err
	}
	return a.writeOutput(path, b)
}
