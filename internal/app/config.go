package app

import "time"

// Defaults used when neither flags, env nor a config file set a value.
const (
	DefaultCacheDir      = ".doclens-cache"
	DefaultAnalyticsDB   = ".doclens/analytics.db"
	DefaultAddr          = ":8080"
	DefaultRPM           = 15
	DefaultBurst         = 1
	DefaultCacheMaxCount = 500
)

// Config holds runtime configuration for the CLI and the server.
type Config struct {
	InputPath   string
	ComparePath string
	OutputPath  string
	// Format is markdown, html, pdf or json. Empty picks by OutputPath
	// extension.
	Format string
	// Manifest writes a "<output>.manifest.json" sidecar next to report
	// files.
	Manifest bool

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	RPM        int
	Burst      int

	// Analysis
	Language      string
	DocumentType  string
	ClampRisk     bool
	GlossaryTerms int
	WithClauses   bool
	WithGlossary  bool
	WithTips      bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheMaxCount    int
	CacheClear       bool
	CacheStrictPerms bool
	LLMCacheOnly     bool

	// Analytics
	AnalyticsDB string
	NoAnalytics bool

	// Server
	Addr string

	Verbose bool
}
