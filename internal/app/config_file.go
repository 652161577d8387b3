package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperifyio/doclens/internal/llm"
	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
	Input string `yaml:"input" json:"input"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
		RPM     int    `yaml:"rpm" json:"rpm"`
		Burst   int    `yaml:"burst" json:"burst"`
	} `yaml:"llm" json:"llm"`

	Analysis struct {
		Language      string `yaml:"language" json:"language"`
		DocumentType  string `yaml:"documentType" json:"documentType"`
		ClampRisk     bool   `yaml:"clampRisk" json:"clampRisk"`
		GlossaryTerms int    `yaml:"glossaryTerms" json:"glossaryTerms"`
		Clauses       bool   `yaml:"clauses" json:"clauses"`
		Glossary      bool   `yaml:"glossary" json:"glossary"`
		Tips          bool   `yaml:"tips" json:"tips"`
	} `yaml:"analysis" json:"analysis"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxCount    int           `yaml:"maxCount" json:"maxCount"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
		Only        bool          `yaml:"only" json:"only"`
	} `yaml:"cache" json:"cache"`

	Analytics struct {
		DB      string `yaml:"db" json:"db"`
		Disable bool   `yaml:"disable" json:"disable"`
	} `yaml:"analytics" json:"analytics"`

	Server struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"server" json:"server"`

	Output struct {
		Path     string `yaml:"path" json:"path"`
		Format   string `yaml:"format" json:"format"`
		Manifest bool   `yaml:"manifest" json:"manifest"`
	} `yaml:"output" json:"output"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig fills fields of cfg that are still unset (or at their flag
// default) from fc. Flags must already be parsed.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	str := func(dst *string, v string, flagDefault string) {
		if (*dst == "" || *dst == flagDefault) && v != "" {
			*dst = v
		}
	}
	num := func(dst *int, v int, flagDefault int) {
		if (*dst == 0 || *dst == flagDefault) && v > 0 {
			*dst = v
		}
	}
	flag := func(dst *bool, v bool) {
		if !*dst && v {
			*dst = true
		}
	}

	str(&cfg.InputPath, fc.Input, "")
	str(&cfg.OutputPath, fc.Output.Path, "")
	str(&cfg.Format, fc.Output.Format, "")
	flag(&cfg.Manifest, fc.Output.Manifest)

	str(&cfg.LLMBaseURL, fc.LLM.BaseURL, "")
	str(&cfg.LLMModel, fc.LLM.Model, "")
	str(&cfg.LLMAPIKey, fc.LLM.APIKey, "")
	num(&cfg.RPM, fc.LLM.RPM, DefaultRPM)
	num(&cfg.Burst, fc.LLM.Burst, DefaultBurst)

	str(&cfg.Language, fc.Analysis.Language, "")
	str(&cfg.DocumentType, fc.Analysis.DocumentType, "")
	flag(&cfg.ClampRisk, fc.Analysis.ClampRisk)
	num(&cfg.GlossaryTerms, fc.Analysis.GlossaryTerms, 0)
	flag(&cfg.WithClauses, fc.Analysis.Clauses)
	flag(&cfg.WithGlossary, fc.Analysis.Glossary)
	flag(&cfg.WithTips, fc.Analysis.Tips)

	str(&cfg.CacheDir, fc.Cache.Dir, DefaultCacheDir)
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	num(&cfg.CacheMaxCount, fc.Cache.MaxCount, DefaultCacheMaxCount)
	flag(&cfg.CacheClear, fc.Cache.Clear)
	flag(&cfg.CacheStrictPerms, fc.Cache.StrictPerms)
	flag(&cfg.LLMCacheOnly, fc.Cache.Only)

	str(&cfg.AnalyticsDB, fc.Analytics.DB, DefaultAnalyticsDB)
	flag(&cfg.NoAnalytics, fc.Analytics.Disable)

	str(&cfg.Addr, fc.Server.Addr, DefaultAddr)
	flag(&cfg.Verbose, fc.Verbose)
}

// ApplyDefaults fills whatever is still unset after flags, env and file.
func ApplyDefaults(cfg *Config) {
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = llm.DefaultBaseURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = llm.DefaultModel
	}
	if cfg.RPM == 0 {
		cfg.RPM = DefaultRPM
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}
	if cfg.CacheMaxCount == 0 {
		cfg.CacheMaxCount = DefaultCacheMaxCount
	}
	if cfg.AnalyticsDB == "" {
		cfg.AnalyticsDB = DefaultAnalyticsDB
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
}

// Command names used by ValidateConfig.
const (
	CmdAnalyze   = "analyze"
	CmdCompare   = "compare"
	CmdNegotiate = "negotiate"
	CmdAsk       = "ask"
	CmdClauses   = "clauses"
	CmdGlossary  = "glossary"
	CmdParse     = "parse"
	CmdStats     = "stats"
	CmdExport    = "export"
	CmdServe     = "serve"
)

// ValidateConfig checks the settings the given command needs.
func ValidateConfig(cfg Config, cmd string) error {
	needsInput := false
	needsLLM := false
	switch cmd {
	case CmdAnalyze, CmdNegotiate, CmdAsk, CmdClauses, CmdGlossary:
		needsInput, needsLLM = true, true
	case CmdCompare:
		needsInput, needsLLM = true, true
		if strings.TrimSpace(cfg.ComparePath) == "" {
			return errors.New("config: a second document is required for compare")
		}
	case CmdParse:
		needsInput = true
	case CmdServe:
		needsLLM = true
		if strings.TrimSpace(cfg.Addr) == "" {
			return errors.New("config: server.addr is required")
		}
	case CmdStats, CmdExport:
	default:
		return fmt.Errorf("config: unknown command %q", cmd)
	}
	if needsInput && strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if needsLLM {
		if strings.TrimSpace(cfg.LLMModel) == "" {
			return errors.New("config: llm.model is required (or set LLM_MODEL)")
		}
		if strings.TrimSpace(cfg.LLMAPIKey) == "" && !cfg.LLMCacheOnly {
			return errors.New("config: llm.key is required (or set LLM_API_KEY / GEMINI_API_KEY)")
		}
	}
	if cfg.RPM < 0 || cfg.Burst < 0 || cfg.GlossaryTerms < 0 || cfg.CacheMaxCount < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	switch cfg.Format {
	case "", "markdown", "md", "html", "pdf", "json":
	default:
		return fmt.Errorf("config: unknown output format %q", cfg.Format)
	}
	return nil
}
