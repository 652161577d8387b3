package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadEnvFiles_OverrideOrderAndMissing(t *testing.T) {
	t.Setenv("K", "")
	t.Setenv("Q", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("# comment\nK=first\nQ=\"quoted value\"\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, filepath.Join(dir, "missing.env"), b); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("K=%q, want second", got)
	}
	if got := os.Getenv("Q"); got != "quoted value" {
		t.Fatalf("Q=%q, want unquoted", got)
	}
}

func TestApplyEnvToConfig_FromEnv(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("DOCLENS_CACHE_DIR", "/tmp/doclens-cache")
	t.Setenv("DOCLENS_LANGUAGE", "es")
	t.Setenv("DOCLENS_RPM", "30")
	t.Setenv("DOCLENS_CACHE_MAX_AGE", "48h")
	t.Setenv("DOCLENS_CLAMP_RISK", "yes")

	cfg := Config{CacheDir: "explicit"}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMAPIKey != "gem-key" {
		t.Fatalf("LLMAPIKey=%q, want GEMINI_API_KEY fallback", cfg.LLMAPIKey)
	}
	if cfg.CacheDir != "explicit" {
		t.Fatalf("explicit CacheDir overwritten: %q", cfg.CacheDir)
	}
	if cfg.Language != "es" || cfg.RPM != 30 || cfg.CacheMaxAge != 48*time.Hour || !cfg.ClampRisk {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestApplyEnvOverrides_BooleansBothWays(t *testing.T) {
	t.Setenv("DOCLENS_CLAMP_RISK", "off")
	t.Setenv("LLM_CACHE_ONLY", "1")
	t.Setenv("LLM_MODEL", "gemini-2.5-pro")
	cfg := Config{ClampRisk: true, LLMModel: "from-file"}
	ApplyEnvOverrides(&cfg)
	if cfg.ClampRisk || !cfg.LLMCacheOnly || cfg.LLMModel != "gemini-2.5-pro" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestVersion_IncludesBuildVersion(t *testing.T) {
	if v := Version(); !strings.HasPrefix(v, BuildVersion+" (commit ") {
		t.Fatalf("version = %q", v)
	}
}
