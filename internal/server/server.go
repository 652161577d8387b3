// Package server exposes the analyzer and the extractors over a JSON HTTP API.
// The server keeps no analysis state between requests: follow-up calls such
// as negotiate and ask carry the record they refer to.
package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/analysis"
	"github.com/hyperifyio/doclens/internal/analytics"
	"github.com/hyperifyio/doclens/internal/analyzer"
	"github.com/hyperifyio/doclens/internal/compare"
	"github.com/hyperifyio/doclens/internal/doctype"
	"github.com/hyperifyio/doclens/internal/enrich"
	"github.com/hyperifyio/doclens/internal/extract"
	"github.com/hyperifyio/doclens/internal/render"
)

// DefaultTrendPoints is how many recent scores per type the trends endpoint
// returns unless ?last= says otherwise.
const DefaultTrendPoints = 10

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Analyzer *analyzer.Analyzer
	// Store is optional; without it analyses are not recorded and the
	// analytics endpoints report 404.
	Store analytics.Store
	// Language, when set, is used for documents whose request names none.
	Language string
	// Footer is attached to rendered reports.
	Footer *render.Footer
	Now    func() time.Time
}

// Handler builds the gin engine with all routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestID(), accessLog(), gin.Recovery(), limitBody(extract.MaxBytes))

	r.GET("/healthz", func(c *gin.Context) { ok(c, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	{
		api.POST("/analyze", s.analyze)
		api.POST("/compare", s.compare)
		api.POST("/negotiate", s.negotiate)
		api.POST("/ask", s.ask)
		api.POST("/clauses", s.clauses)
		api.POST("/glossary", s.glossary)
		api.POST("/report", s.report)

		parse := api.Group("/parse")
		parse.POST("/analysis", s.parseAnalysis)
		parse.POST("/comparison", s.parseComparison)

		stats := api.Group("/analytics")
		stats.GET("", s.summary)
		stats.DELETE("", s.reset)
		stats.GET("/trends", s.trends)
		stats.GET("/history", s.history)
		stats.GET("/export.xlsx", s.export)
	}
	return r
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type analyzeRequest struct {
	Document string `json:"document"`
	// Type and Language skip detection when both are given.
	Type     string `json:"type"`
	Language string `json:"language"`
}

type analyzeResponse struct {
	Record    analysis.Record    `json:"record"`
	RiskLevel render.Level       `json:"risk_level"`
	Breakdown []render.Indicator `json:"breakdown"`
	Raw       string             `json:"raw"`
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()
	det := doctype.Detection{Type: req.Type, Language: doctype.CanonicalLanguage(req.Language)}
	if req.Language == "" {
		det.Language = s.Language
	}
	if det.Type == "" || det.Language == "" {
		found, err := s.Analyzer.Detect(ctx, req.Document)
		if err != nil {
			failFor(c, err)
			return
		}
		if det.Type == "" {
			det.Type = found.Type
		}
		if det.Language == "" {
			det.Language = found.Language
		}
	}
	res, err := s.Analyzer.Analyze(ctx, req.Document, det)
	if err != nil {
		failFor(c, err)
		return
	}
	if s.Store != nil {
		if err := s.Store.Record(ctx, analytics.NewEntry(res.Record, s.now())); err != nil {
			log.Warn().Err(err).Msg("analytics record failed")
		}
	}
	level := render.RiskLevel(res.Record.RiskScore)
	ok(c, analyzeResponse{
		Record:    res.Record,
		RiskLevel: level,
		Breakdown: render.Breakdown(level),
		Raw:       res.Raw,
	})
}

type compareRequest struct {
	DocumentA string `json:"document_a"`
	DocumentB string `json:"document_b"`
}

type compareResponse struct {
	Result compare.Result `json:"result"`
	HTML   string         `json:"html"`
}

func (s *Server) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	res, err := s.Analyzer.Compare(c.Request.Context(), req.DocumentA, req.DocumentB)
	if err != nil {
		failFor(c, err)
		return
	}
	writeComparison(c, res)
}

func writeComparison(c *gin.Context, res compare.Result) {
	html, err := render.ComparisonHTML(res)
	if err != nil {
		failFor(c, err)
		return
	}
	msg := ""
	if res.Status == compare.Insufficient {
		msg = render.InsufficientNotice
	}
	ok(c, compareResponse{Result: res, HTML: html}, msg)
}

type recordRequest struct {
	Record   analysis.Record `json:"record"`
	Question string          `json:"question"`
}

func (s *Server) negotiate(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	tips, err := s.Analyzer.Negotiate(c.Request.Context(), req.Record)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, gin.H{"tips": tips})
}

func (s *Server) ask(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	answer, err := s.Analyzer.Ask(c.Request.Context(), req.Record, req.Question)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, gin.H{
		"answer":   answer,
		"question": render.ChatBubble(render.SenderUser, req.Question),
		"reply":    render.ChatBubble(render.SenderAI, answer),
	})
}

type clausesRequest struct {
	Items []string `json:"items"`
	// Record supplies key issues and red flags when Items is empty.
	Record *analysis.Record `json:"record"`
}

func (s *Server) clauses(c *gin.Context) {
	var req clausesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	items := req.Items
	if len(items) == 0 && req.Record != nil {
		items = append(append([]string{}, req.Record.KeyIssues...), req.Record.RedFlags...)
	}
	out, mm, err := s.Analyzer.PrioritizeClauses(c.Request.Context(), items)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, gin.H{"clauses": out, "mismatch": mm})
}

type glossaryRequest struct {
	Document string `json:"document"`
	Max      int    `json:"max"`
}

func (s *Server) glossary(c *gin.Context) {
	var req glossaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	terms, mm, err := s.Analyzer.Glossary(c.Request.Context(), req.Document, req.Max)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, gin.H{"terms": terms, "mismatch": mm})
}

type reportRequest struct {
	Title    string          `json:"title"`
	Record   analysis.Record `json:"record"`
	Clauses  []enrich.Clause `json:"clauses"`
	Glossary []enrich.Term   `json:"glossary"`
	Tips     []string        `json:"tips"`
}

// report renders a report in the format named by ?format= (markdown, html
// or pdf; markdown by default) and returns the file itself.
func (s *Server) report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	rep := render.Report{
		Title:       req.Title,
		Record:      req.Record,
		Clauses:     req.Clauses,
		Glossary:    req.Glossary,
		Tips:        req.Tips,
		GeneratedAt: s.now(),
		Footer:      s.Footer,
	}
	switch strings.ToLower(c.DefaultQuery("format", "markdown")) {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(render.Markdown(rep)))
	case "html":
		out, err := render.HTML(rep)
		if err != nil {
			failFor(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
	case "pdf":
		var buf bytes.Buffer
		if err := render.PDF(rep, &buf); err != nil {
			failFor(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.pdf"`, rep.GeneratedAt.Format("2006-01-02")))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	default:
		badRequest(c, "format must be markdown, html or pdf")
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

// parseAnalysis runs only the extractor over a saved producer answer.
func (s *Server) parseAnalysis(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	rec := analysis.Extractor{ClampRisk: s.Analyzer != nil && s.Analyzer.ClampRisk}.Parse(req.Text)
	ok(c, gin.H{"record": rec, "risk_level": render.RiskLevel(rec.RiskScore)})
}

func (s *Server) parseComparison(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	writeComparison(c, compare.Parse(req.Text))
}

func (s *Server) needStore(c *gin.Context) bool {
	if s.Store == nil {
		fail(c, http.StatusNotFound, "NO_ANALYTICS", "analytics are disabled")
		return false
	}
	return true
}

func (s *Server) summary(c *gin.Context) {
	if !s.needStore(c) {
		return
	}
	sum, err := s.Store.Summary(c.Request.Context())
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, sum)
}

func (s *Server) trends(c *gin.Context) {
	if !s.needStore(c) {
		return
	}
	last := DefaultTrendPoints
	if v := c.Query("last"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "last must be a non-negative integer")
			return
		}
		last = n
	}
	tr, err := s.Store.Trends(c.Request.Context())
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, tr.Last(last))
}

func (s *Server) history(c *gin.Context) {
	if !s.needStore(c) {
		return
	}
	h, err := s.Store.History(c.Request.Context())
	if err != nil {
		failFor(c, err)
		return
	}
	if h == nil {
		h = []analytics.Entry{}
	}
	ok(c, h)
}

func (s *Server) reset(c *gin.Context) {
	if !s.needStore(c) {
		return
	}
	if err := s.Store.Reset(c.Request.Context()); err != nil {
		failFor(c, err)
		return
	}
	ok(c, nil, "analytics cleared")
}

func (s *Server) export(c *gin.Context) {
	if !s.needStore(c) {
		return
	}
	h, err := s.Store.History(c.Request.Context())
	if err != nil {
		failFor(c, err)
		return
	}
	b, err := analytics.ExportXLSX(h)
	if err != nil {
		failFor(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analytics.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}
