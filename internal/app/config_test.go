package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/doclens/internal/llm"
)

const sampleYAML = `
input: lease.txt
llm:
  model: gemini-2.5-flash
  rpm: 60
analysis:
  language: Spanish
  clampRisk: true
  clauses: true
cache:
  dir: /var/cache/doclens
  maxAge: 72h
analytics:
  db: /var/lib/doclens/analytics.db
server:
  addr: ":9090"
output:
  format: html
`

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	y := filepath.Join(dir, "doclens.yaml")
	if err := os.WriteFile(y, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(y)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if fc.LLM.Model != "gemini-2.5-flash" || fc.Cache.MaxAge != 72*time.Hour || fc.Output.Format != "html" {
		t.Fatalf("yaml fields: %+v", fc)
	}

	j := filepath.Join(dir, "doclens.json")
	if err := os.WriteFile(j, []byte(`{"llm":{"model":"m"},"server":{"addr":":1"}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err = LoadConfigFile(j)
	if err != nil || fc.LLM.Model != "m" || fc.Server.Addr != ":1" {
		t.Fatalf("json: %+v %v", fc, err)
	}

	bad := filepath.Join(dir, "doclens.yml")
	if err := os.WriteFile(bad, []byte("llm: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigFile(bad); err == nil || !strings.Contains(err.Error(), "parse yaml") {
		t.Fatalf("want parse error, got %v", err)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	dir := t.TempDir()
	y := filepath.Join(dir, "doclens.yaml")
	if err := os.WriteFile(y, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(y)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := Config{InputPath: "other.txt", RPM: DefaultRPM, CacheDir: DefaultCacheDir}
	ApplyFileConfig(&cfg, fc)
	if cfg.InputPath != "other.txt" {
		t.Fatalf("flag input overwritten: %q", cfg.InputPath)
	}
	if cfg.RPM != 60 || cfg.CacheDir != "/var/cache/doclens" {
		t.Fatalf("flag defaults should yield to file: rpm=%d dir=%q", cfg.RPM, cfg.CacheDir)
	}
	if !cfg.ClampRisk || !cfg.WithClauses || cfg.Language != "Spanish" || cfg.Addr != ":9090" || cfg.Format != "html" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	if cfg.LLMModel != llm.DefaultModel || cfg.LLMBaseURL != llm.DefaultBaseURL {
		t.Fatalf("llm defaults: %+v", cfg)
	}
	if cfg.RPM != DefaultRPM || cfg.CacheDir != DefaultCacheDir || cfg.AnalyticsDB != DefaultAnalyticsDB || cfg.Addr != DefaultAddr {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	ok := Config{InputPath: "a.txt", LLMModel: "m", LLMAPIKey: "k"}
	cases := []struct {
		name    string
		cfg     Config
		cmd     string
		wantErr string
	}{
		{"analyze ok", ok, CmdAnalyze, ""},
		{"analyze no input", Config{LLMModel: "m", LLMAPIKey: "k"}, CmdAnalyze, "input path"},
		{"analyze no key", Config{InputPath: "a", LLMModel: "m"}, CmdAnalyze, "llm.key"},
		{"cache only needs no key", Config{InputPath: "a", LLMModel: "m", LLMCacheOnly: true}, CmdAnalyze, ""},
		{"compare needs second", ok, CmdCompare, "second document"},
		{"parse offline", Config{InputPath: "a"}, CmdParse, ""},
		{"stats offline", Config{}, CmdStats, ""},
		{"serve needs addr", Config{LLMModel: "m", LLMAPIKey: "k"}, CmdServe, "server.addr"},
		{"negative", Config{InputPath: "a", RPM: -1}, CmdParse, "negative"},
		{"bad format", Config{InputPath: "a", Format: "docx"}, CmdParse, "output format"},
		{"unknown command", ok, "frobnicate", "unknown command"},
	}
	for _, c := range cases {
		err := ValidateConfig(c.cfg, c.cmd)
		if c.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", c.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), c.wantErr) {
			t.Fatalf("%s: want error containing %q, got %v", c.name, c.wantErr, err)
		}
	}
}

func TestFormatForAndDeriveOutputPath(t *testing.T) {
	if formatFor("", "out.PDF") != "pdf" || formatFor("md", "x.html") != "markdown" || formatFor("", "") != "markdown" {
		t.Fatalf("formatFor mismatch")
	}
	got := deriveOutputPath(filepath.Join("docs", "My Lease (final).txt"), "pdf", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if want := filepath.Join("docs", "my-lease-final-analysis-2026-01-02.pdf"); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDeriveOutputPath_URL(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	if got, want := deriveOutputPath("https://www.example.com/legal/terms.html", "pdf", now), "www-example-com-terms-analysis-2026-01-02.pdf"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got, want := deriveOutputPath("https://example.com", "html", now), "example-com-analysis-2026-01-02.html"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
