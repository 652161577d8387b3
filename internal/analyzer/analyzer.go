// Package analyzer drives the producer: it builds each prompt, serves it
// from the response cache or the model, and hands the raw answer to the
// matching extractor.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/doclens/internal/advice"
	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/budget"
	"github.com/hyperifyio/doclens/internal/cache"
	"github.com/hyperifyio/doclens/internal/compare"
	"github.com/hyperifyio/doclens/internal/doctype"
	"github.com/hyperifyio/doclens/internal/enrich"
	"github.com/hyperifyio/doclens/internal/llm"
	"github.com/hyperifyio/doclens/internal/prompt"
)

var (
	// ErrNoContent is returned for empty documents or questions.
	ErrNoContent = errors.New("no content")
	// ErrEmptyResponse is returned when the model answers with nothing.
	ErrEmptyResponse = errors.New("empty model response")
	// ErrCacheMiss is returned in cache-only mode when nothing is cached.
	ErrCacheMiss = errors.New("response not cached")
)

// Prompt families, used as cache entry kinds and log fields.
const (
	KindDetect    = "detect"
	KindAnalysis  = "analysis"
	KindCompare   = "compare"
	KindNegotiate = "negotiate"
	KindAsk       = "ask"
	KindClauses   = "clauses"
	KindGlossary  = "glossary"
)

// DefaultGlossaryTerms caps how many terms are sent for definition.
const DefaultGlossaryTerms = 12

// Analyzer runs analyses against a chat model.
type Analyzer struct {
	Client llm.Client
	Model  string
	Cache  *cache.LLMCache
	// CacheOnly answers from the cache and fails with ErrCacheMiss otherwise.
	CacheOnly bool
	// ClampRisk bounds parsed risk scores to 1..10.
	ClampRisk bool
	// Temperature for every call. Zero keeps answers close to deterministic.
	Temperature float32
}

// Analysis is a parsed single-document analysis with the producer's raw text.
type Analysis struct {
	Record analysis.Record `json:"record"`
	Raw    string          `json:"raw"`
}

// Detect asks the model for the document's type and language.
func (a *Analyzer) Detect(ctx context.Context, document string) (doctype.Detection, error) {
	if strings.TrimSpace(document) == "" {
		return doctype.Detection{}, ErrNoContent
	}
	document = a.fit(KindDetect, prompt.Detection(""), document, 1)
	raw, err := a.complete(ctx, KindDetect, prompt.Detection(document))
	if err != nil {
		return doctype.Detection{}, err
	}
	d := doctype.ParseDetection(raw)
	log.Debug().Str("type", d.Type).Str("language", d.Language).Msg("document detected")
	return d, nil
}

// Analyze runs the four-section analysis using the profile for det.Type and
// attaches det to the record.
func (a *Analyzer) Analyze(ctx context.Context, document string, det doctype.Detection) (Analysis, error) {
	if strings.TrimSpace(document) == "" {
		return Analysis{}, ErrNoContent
	}
	if det.Type == "" {
		det.Type = doctype.DefaultType
	}
	if det.Language == "" {
		det.Language = doctype.DefaultLanguage
	}
	profile := doctype.GetProfile(det.Type)
	document = a.fit(KindAnalysis, prompt.Analysis(profile, det.Language, ""), document, 1)
	raw, err := a.complete(ctx, KindAnalysis, prompt.Analysis(profile, det.Language, document))
	if err != nil {
		return Analysis{}, err
	}
	rec := analysis.Extractor{ClampRisk: a.ClampRisk}.Parse(raw)
	rec.DocumentType = det.Type
	rec.Language = det.Language
	log.Info().Str("type", det.Type).Int("risk", rec.RiskScore).Int("issues", len(rec.KeyIssues)).Int("red_flags", len(rec.RedFlags)).Msg("analysis parsed")
	return Analysis{Record: rec, Raw: raw}, nil
}

// Compare runs the five-section comparison of two documents.
func (a *Analyzer) Compare(ctx context.Context, docA, docB string) (compare.Result, error) {
	if strings.TrimSpace(docA) == "" || strings.TrimSpace(docB) == "" {
		return compare.Result{}, ErrNoContent
	}
	scaffold := prompt.Comparison("", "")
	docA = a.fit(KindCompare, scaffold, docA, 2)
	docB = a.fit(KindCompare, scaffold, docB, 2)
	raw, err := a.complete(ctx, KindCompare, prompt.Comparison(docA, docB))
	if err != nil {
		return compare.Result{}, err
	}
	res := compare.Parse(raw)
	ev := log.Info()
	if res.Status == compare.Unstructured {
		ev = log.Warn()
	}
	ev.Str("status", res.Status.String()).Msg("comparison parsed")
	return res, nil
}

// Negotiate asks for negotiation points for an analysed document.
func (a *Analyzer) Negotiate(ctx context.Context, rec analysis.Record) ([]string, error) {
	raw, err := a.complete(ctx, KindNegotiate, prompt.Negotiation(rec))
	if err != nil {
		return nil, err
	}
	return advice.ParseTips(raw), nil
}

// Ask answers a question about an analysed document in one line.
func (a *Analyzer) Ask(ctx context.Context, rec analysis.Record, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrNoContent
	}
	raw, err := a.complete(ctx, KindAsk, prompt.Question(rec, question))
	if err != nil {
		return "", err
	}
	return advice.Answer(raw), nil
}

// PrioritizeClauses triages items, pairing answer blocks with items by
// position, and returns them ordered High to Low.
func (a *Analyzer) PrioritizeClauses(ctx context.Context, items []string) ([]enrich.Clause, enrich.Mismatch, error) {
	if len(items) == 0 {
		return []enrich.Clause{}, enrich.Mismatch{}, nil
	}
	raw, err := a.complete(ctx, KindClauses, prompt.Clauses(items))
	if err != nil {
		return nil, enrich.Mismatch{}, err
	}
	clauses, mm := enrich.Clauses(items, raw)
	warnMismatch(KindClauses, mm)
	enrich.SortByPriority(clauses)
	return clauses, mm, nil
}

// Glossary extracts up to limit candidate terms from document and asks for
// plain-language definitions. limit <= 0 uses DefaultGlossaryTerms. A document
// without candidates yields an empty glossary without calling the model.
func (a *Analyzer) Glossary(ctx context.Context, document string, limit int) ([]enrich.Term, enrich.Mismatch, error) {
	if strings.TrimSpace(document) == "" {
		return nil, enrich.Mismatch{}, ErrNoContent
	}
	if limit <= 0 {
		limit = DefaultGlossaryTerms
	}
	terms := enrich.ExtractTerms(document, 2, limit)
	if len(terms) == 0 {
		return []enrich.Term{}, enrich.Mismatch{}, nil
	}
	raw, err := a.complete(ctx, KindGlossary, prompt.Glossary(terms))
	if err != nil {
		return nil, enrich.Mismatch{}, err
	}
	out, mm := enrich.Glossary(terms, raw)
	warnMismatch(KindGlossary, mm)
	return out, mm, nil
}

// fit trims a document that would overflow the model context. share splits
// the allowance between documents sent in the same prompt.
func (a *Analyzer) fit(kind string, scaffold prompt.Prompt, document string, share int) string {
	allowed := budget.DocumentTokens(a.Model, budget.EstimateTokens(scaffold.System+scaffold.User)) / share
	out, cut := budget.Fit(document, allowed)
	if cut {
		log.Warn().Str("kind", kind).Int("tokens", budget.EstimateTokens(document)).Int("allowed", allowed).Msg("document trimmed to fit the model context")
	}
	return out
}

func warnMismatch(kind string, mm enrich.Mismatch) {
	if !mm.OK() {
		log.Warn().Str("kind", kind).Int("want", mm.Want).Int("got", mm.Got).Msg("block count mismatch, defaults filled by position")
	}
}

// complete returns the model's answer to p, consulting the cache first.
func (a *Analyzer) complete(ctx context.Context, kind string, p prompt.Prompt) (string, error) {
	if a == nil || (a.Client == nil && !a.CacheOnly) || strings.TrimSpace(a.Model) == "" {
		return "", llm.ErrNotConfigured
	}
	key := cache.KeyFrom(a.Model, p.Key())
	if a.Cache != nil {
		if e, ok, _ := a.Cache.Get(ctx, key); ok {
			log.Debug().Str("kind", kind).Str("key", key[:12]).Msg("cache hit")
			return e.Text, nil
		}
	}
	if a.CacheOnly {
		return "", fmt.Errorf("%s: %w", kind, ErrCacheMiss)
	}
	req := openai.ChatCompletionRequest{
		Model: a.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: a.Temperature,
		N:           1,
	}
	resp, err := a.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s call: %w", kind, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", kind, ErrEmptyResponse)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%s: %w", kind, ErrEmptyResponse)
	}
	if a.Cache != nil {
		if err := a.Cache.Save(ctx, key, cache.Entry{Model: a.Model, Kind: kind, Text: out}); err != nil {
			log.Warn().Err(err).Str("kind", kind).Msg("cache save failed")
		}
	}
	return out, nil
}
