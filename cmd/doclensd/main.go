// Command doclensd serves the doclens JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/app"
	"github.com/hyperifyio/doclens/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server failed")
		stop()
		os.Exit(1)
	}
}

func loadConfig(args []string) (app.Config, error) {
	var (
		cfg        app.Config
		configPath string
		envFile    string
		flagCfg    app.Config
	)
	fs := flag.NewFlagSet("doclensd", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	fs.StringVar(&envFile, "env", ".env", "Path to a dotenv file (missing file is ignored)")
	fs.StringVar(&flagCfg.Addr, "addr", "", "Listen address (default "+app.DefaultAddr+")")
	fs.StringVar(&flagCfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	fs.StringVar(&flagCfg.LLMModel, "llm.model", "", "Model name")
	fs.StringVar(&flagCfg.LLMAPIKey, "llm.key", "", "API key for the model endpoint")
	fs.IntVar(&flagCfg.RPM, "llm.rpm", 0, "Model requests per minute")
	fs.StringVar(&flagCfg.Language, "lang", "", "Default document language")
	fs.StringVar(&flagCfg.CacheDir, "cache.dir", "", "Cache directory path")
	fs.StringVar(&flagCfg.AnalyticsDB, "analytics.db", "", "Analytics database path (\":memory:\" keeps it in memory)")
	fs.BoolVar(&flagCfg.NoAnalytics, "no-analytics", false, "Do not record analyses")
	fs.BoolVar(&flagCfg.ClampRisk, "clamp", false, "Clamp parsed risk scores into 1..10")
	fs.BoolVar(&flagCfg.Verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments %q", fs.Args())
	}

	if err := app.LoadEnvFiles(envFile); err != nil {
		return cfg, fmt.Errorf("load env file: %w", err)
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	overlay(&cfg, flagCfg)
	app.ApplyDefaults(&cfg)
	return cfg, app.ValidateConfig(cfg, app.CmdServe)
}

// overlay copies the flags that were given onto cfg.
func overlay(cfg *app.Config, f app.Config) {
	for _, p := range []struct {
		dst *string
		v   string
	}{
		{&cfg.Addr, f.Addr},
		{&cfg.LLMBaseURL, f.LLMBaseURL},
		{&cfg.LLMModel, f.LLMModel},
		{&cfg.LLMAPIKey, f.LLMAPIKey},
		{&cfg.Language, f.Language},
		{&cfg.CacheDir, f.CacheDir},
		{&cfg.AnalyticsDB, f.AnalyticsDB},
	} {
		if p.v != "" {
			*p.dst = p.v
		}
	}
	if f.RPM > 0 {
		cfg.RPM = f.RPM
	}
	cfg.NoAnalytics = cfg.NoAnalytics || f.NoAnalytics
	cfg.ClampRisk = cfg.ClampRisk || f.ClampRisk
	cfg.Verbose = cfg.Verbose || f.Verbose
}

func newServer(a *app.App, cfg app.Config) *http.Server {
	api := &server.Server{
		Analyzer: a.Analyzer,
		Store:    a.Store,
		Language: cfg.Language,
		Footer:   a.Footer(),
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.Preflight(ctx)

	srv := newServer(a, cfg)
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", cfg.LLMModel).Str("version", app.Version()).Msg("doclensd listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
