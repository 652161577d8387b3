package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/doclens/internal/app"
)

// clearEnv blanks the variables ApplyEnvOverrides reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY", "GEMINI_API_KEY",
		"DOCLENS_CACHE_DIR", "DOCLENS_ANALYTICS_DB", "DOCLENS_LANGUAGE", "DOCLENS_ADDR",
		"DOCLENS_RPM", "DOCLENS_CACHE_MAX_AGE"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "doclens.yaml")
	yml := "llm:\n  model: file-model\n  key: file-key\nanalysis:\n  language: Finnish\ncache:\n  dir: file-cache\n"
	if err := os.WriteFile(cfgPath, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LLM_MODEL", "env-model")

	cfg, _, err := loadConfig(app.CmdAnalyze, []string{"-config", cfgPath, "-env", "", "lease.txt"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLMModel != "env-model" || cfg.LLMAPIKey != "file-key" || cfg.Language != "Finnish" {
		t.Fatalf("env over file: %+v", cfg)
	}
	if cfg.InputPath != "lease.txt" || cfg.CacheDir != "file-cache" || cfg.RPM != app.DefaultRPM {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}

	cfg, _, err = loadConfig(app.CmdAnalyze, []string{"-config", cfgPath, "-env", "", "-llm.model", "flag-model", "-lang", "es", "lease.txt"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLMModel != "flag-model" || cfg.Language != "es" {
		t.Fatalf("flags over env: %+v", cfg)
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	clearEnv(t)
	envPath := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(envPath, []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, _, err := loadConfig(app.CmdClauses, []string{"-env", envPath, "lease.txt"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LLMAPIKey != "from-dotenv" {
		t.Fatalf("expected key from dotenv, got %q", cfg.LLMAPIKey)
	}
}

func TestLoadConfig_Positional(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "k")
	cfg, _, err := loadConfig(app.CmdCompare, []string{"-env", "", "a.txt", "b.txt"})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cfg.InputPath != "a.txt" || cfg.ComparePath != "b.txt" {
		t.Fatalf("compare paths: %+v", cfg)
	}

	_, opts, err := loadConfig(app.CmdAsk, []string{"-env", "", "a.txt", "can", "I", "sublet?"})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if opts.question != "can I sublet?" {
		t.Fatalf("question = %q", opts.question)
	}

	if _, _, err := loadConfig(app.CmdAsk, []string{"-env", "", "a.txt"}); err == nil {
		t.Fatal("expected error for ask without question")
	}
	if _, _, err := loadConfig(app.CmdCompare, []string{"-env", "", "a.txt"}); err == nil {
		t.Fatal("expected error for compare with one document")
	}
	if _, _, err := loadConfig(app.CmdStats, []string{"-env", "", "extra"}); err == nil {
		t.Fatal("expected error for stats with arguments")
	}
	if _, _, err := loadConfig(app.CmdParse, []string{"-env", "", "-nope"}); err == nil {
		t.Fatal("expected flag error")
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(fmt.Errorf("load: %w", app.ErrNoContent)); got != 2 {
		t.Fatalf("no content exit = %d, want 2", got)
	}
	if got := exitCode(errors.New("boom")); got != 1 {
		t.Fatalf("other exit = %d, want 1", got)
	}
}

func TestRun_ParseComparisonOffline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "answer.txt")
	if err := os.WriteFile(in, []byte("The documents are unrelated. INSUFFICIENT_INPUT"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := app.Config{InputPath: in, CacheDir: filepath.Join(dir, "cache")}
	var out bytes.Buffer
	if err := run(context.Background(), app.CmdParse, cfg, options{kind: "comparison"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), `"status": "insufficient"`) {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestRun_StatsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg := app.Config{AnalyticsDB: app.MemoryDB, CacheDir: filepath.Join(dir, "cache")}
	var out bytes.Buffer
	if err := run(context.Background(), app.CmdStats, cfg, options{}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Documents analysed: 0") || !strings.Contains(out.String(), "10 |  0") {
		t.Fatalf("unexpected stats:\n%s", out.String())
	}
}

// newProducer serves an OpenAI-compatible chat endpoint that answers by
// prompt marker.
func newProducer(t *testing.T, replies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		content := ""
		if n := len(req.Messages); n > 0 {
			for marker, reply := range replies {
				if strings.Contains(req.Messages[n-1].Content, marker) {
					content = reply
				}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "test",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_AnalyzeAgainstProducer(t *testing.T) {
	srv := newProducer(t, map[string]string{
		"Respond in this exact format": "LANGUAGE: English\nTYPE: Loan Agreement",
		"RISK SCORE:":                  "RISK SCORE: 8\nKEY ISSUES:\n- Variable rate\nPLAIN ENGLISH SUMMARY:\nA loan with a variable rate.\nRED FLAGS:\n- Prepayment penalty",
	})
	dir := t.TempDir()
	in := filepath.Join(dir, "loan.txt")
	if err := os.WriteFile(in, []byte("The borrower shall repay the principal with interest."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := app.Config{
		InputPath:   in,
		LLMBaseURL:  srv.URL + "/v1",
		LLMModel:    "test-model",
		LLMAPIKey:   "test-key",
		RPM:         6000,
		Burst:       10,
		CacheDir:    filepath.Join(dir, "cache"),
		AnalyticsDB: filepath.Join(dir, "analytics.db"),
		Format:      "markdown",
	}
	var out bytes.Buffer
	if err := run(context.Background(), app.CmdAnalyze, cfg, options{}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	md := out.String()
	for _, want := range []string{"Overall Risk Score: 8/10 (High Risk)", "Variable rate", "Prepayment penalty", "model=test-model"} {
		if !strings.Contains(md, want) {
			t.Fatalf("report missing %q:\n%s", want, md)
		}
	}

	out.Reset()
	cfg.Format = "json"
	if err := run(context.Background(), app.CmdStats, cfg, options{}, &out); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out.String(), `"total_documents": 1`) {
		t.Fatalf("stats not recorded: %s", out.String())
	}
}
