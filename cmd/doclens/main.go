package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doclens/internal/app"
)

const usage = `usage: doclens <command> [flags] [args]

commands:
  analyze   <file>               analyse a document and write a report
  compare   <fileA> <fileB>      compare two documents
  negotiate <file>               negotiation tips for a document
  ask       <file> <question>    ask a question about a document
  clauses   <file>               prioritise the flagged clauses
  glossary  <file>               explain the legal terms in a document
  parse     <file>               run the extractors over a saved model answer
  stats                          show analytics totals and trends
  export    [out.xlsx]           export the analytics history workbook
  version                        print build information

Run "doclens <command> -h" for the flags of a command.
`

// options are command flags that are not part of app.Config.
type options struct {
	configPath string
	envFile    string
	question   string
	kind       string
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd := os.Args[1]
	switch cmd {
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	case "version":
		fmt.Fprintln(os.Stdout, "doclens", app.Version())
		return
	}

	cfg, opts, err := loadConfig(cmd, os.Args[2:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("invalid arguments")
		os.Exit(2)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, cfg, opts, os.Stdout); err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("run failed")
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for a document with
// no text, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, app.ErrNoContent) {
		return 2
	}
	return 1
}

// bindFlags registers the flags of a command on fs. Current values of cfg and
// opts act as defaults, so binding after the config file and env have been
// applied gives flags the last word.
func bindFlags(fs *flag.FlagSet, cmd string, cfg *app.Config, opts *options) {
	fs.StringVar(&opts.configPath, "config", opts.configPath, "Path to a YAML or JSON config file")
	fs.StringVar(&opts.envFile, "env", opts.envFile, "Path to a dotenv file (missing file is ignored)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")

	switch cmd {
	case app.CmdStats, app.CmdExport:
		fs.StringVar(&cfg.AnalyticsDB, "analytics.db", cfg.AnalyticsDB, "Analytics database path (\":memory:\" keeps it in memory)")
		fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format for stats: text or json")
		return
	}

	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Output path; \"-\" or empty writes to stdout (pdf derives a name)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: markdown, html, pdf or json (default by -output extension)")
	fs.BoolVar(&cfg.ClampRisk, "clamp", cfg.ClampRisk, "Clamp parsed risk scores into 1..10")
	fs.BoolVar(&cfg.Manifest, "manifest", cfg.Manifest, "Write a <output>.manifest.json sidecar next to report files")

	if cmd == app.CmdParse {
		fs.StringVar(&opts.kind, "kind", opts.kind, "What the saved answer is: analysis or comparison")
		return
	}

	fs.StringVar(&cfg.LLMBaseURL, "llm.base", cfg.LLMBaseURL, "OpenAI-compatible base URL")
	fs.StringVar(&cfg.LLMModel, "llm.model", cfg.LLMModel, "Model name")
	fs.StringVar(&cfg.LLMAPIKey, "llm.key", cfg.LLMAPIKey, "API key for the model endpoint")
	fs.IntVar(&cfg.RPM, "llm.rpm", cfg.RPM, "Model requests per minute (0 uses the default)")
	fs.IntVar(&cfg.Burst, "llm.burst", cfg.Burst, "Model request burst")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "Document language, e.g. 'en' or 'Spanish' (detected when empty)")
	fs.StringVar(&cfg.DocumentType, "type", cfg.DocumentType, "Document type (detected when empty)")
	fs.StringVar(&cfg.CacheDir, "cache.dir", cfg.CacheDir, "Cache directory path")
	fs.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", cfg.CacheMaxAge, "Max age for cache entries; 0 disables")
	fs.IntVar(&cfg.CacheMaxCount, "cache.maxCount", cfg.CacheMaxCount, "Max number of cache entries; 0 uses the default")
	fs.BoolVar(&cfg.CacheClear, "cache.clear", cfg.CacheClear, "Clear cache directory before run")
	fs.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", cfg.CacheStrictPerms, "Restrict cache permissions (0700 dirs, 0600 files)")
	fs.BoolVar(&cfg.LLMCacheOnly, "cache.only", cfg.LLMCacheOnly, "Serve model answers from cache only; misses fail")

	switch cmd {
	case app.CmdAnalyze:
		fs.BoolVar(&cfg.WithClauses, "with.clauses", cfg.WithClauses, "Add clause priorities to the report")
		fs.BoolVar(&cfg.WithGlossary, "with.glossary", cfg.WithGlossary, "Add a glossary to the report")
		fs.BoolVar(&cfg.WithTips, "with.tips", cfg.WithTips, "Add negotiation tips to the report")
		fs.IntVar(&cfg.GlossaryTerms, "glossary.terms", cfg.GlossaryTerms, "Max glossary terms (0 uses the default)")
		fs.StringVar(&cfg.AnalyticsDB, "analytics.db", cfg.AnalyticsDB, "Analytics database path (\":memory:\" keeps it in memory)")
		fs.BoolVar(&cfg.NoAnalytics, "no-analytics", cfg.NoAnalytics, "Do not record this run in analytics")
	case app.CmdGlossary:
		fs.IntVar(&cfg.GlossaryTerms, "glossary.terms", cfg.GlossaryTerms, "Max glossary terms (0 uses the default)")
	case app.CmdAsk:
		fs.StringVar(&opts.question, "q", opts.question, "Question to ask (or pass it after the file)")
	}
}

// loadConfig resolves the configuration of cmd from args. Precedence is
// flags, then env, then config file, then defaults.
func loadConfig(cmd string, args []string) (app.Config, options, error) {
	// First pass only finds -config and -env.
	var scratch app.Config
	pre := options{envFile: ".env"}
	first := flag.NewFlagSet(cmd, flag.ContinueOnError)
	first.SetOutput(io.Discard)
	bindFlags(first, cmd, &scratch, &pre)
	_ = first.Parse(args)

	if err := app.LoadEnvFiles(pre.envFile); err != nil {
		return app.Config{}, options{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg app.Config
	if pre.configPath != "" {
		fc, err := app.LoadConfigFile(pre.configPath)
		if err != nil {
			return app.Config{}, options{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	opts := pre
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: doclens %s [flags] %s\n", cmd, positional(cmd))
		fs.PrintDefaults()
	}
	bindFlags(fs, cmd, &cfg, &opts)
	if err := fs.Parse(args); err != nil {
		return app.Config{}, options{}, err
	}
	if err := applyArgs(cmd, fs.Args(), &cfg, &opts); err != nil {
		return app.Config{}, options{}, err
	}
	app.ApplyDefaults(&cfg)
	if cmd == app.CmdStats || cmd == app.CmdExport {
		return cfg, opts, nil
	}
	if err := app.ValidateConfig(cfg, cmd); err != nil {
		return app.Config{}, options{}, err
	}
	return cfg, opts, nil
}

func positional(cmd string) string {
	switch cmd {
	case app.CmdCompare:
		return "<fileA> <fileB>"
	case app.CmdAsk:
		return "<file> <question>"
	case app.CmdExport:
		return "[out.xlsx]"
	case app.CmdStats:
		return ""
	}
	return "<file>"
}

// applyArgs assigns positional arguments. Positional files override -input
// style settings from the config file.
func applyArgs(cmd string, args []string, cfg *app.Config, opts *options) error {
	switch cmd {
	case app.CmdStats:
		if len(args) > 0 {
			return fmt.Errorf("stats takes no arguments, got %q", args)
		}
		return nil
	case app.CmdExport:
		if len(args) > 1 {
			return fmt.Errorf("export takes at most one path, got %q", args)
		}
		if len(args) == 1 {
			cfg.OutputPath = args[0]
		}
		return nil
	}
	if len(args) > 0 {
		cfg.InputPath = args[0]
		args = args[1:]
	}
	switch cmd {
	case app.CmdCompare:
		if len(args) > 0 {
			cfg.ComparePath = args[0]
			args = args[1:]
		}
	case app.CmdAsk:
		if len(args) > 0 {
			opts.question = strings.Join(args, " ")
			args = nil
		}
		if strings.TrimSpace(opts.question) == "" {
			return errors.New("ask needs a question")
		}
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments %q", args)
	}
	return nil
}

func run(ctx context.Context, cmd string, cfg app.Config, opts options, stdout io.Writer) error {
	if cmd != app.CmdAnalyze && cmd != app.CmdStats && cmd != app.CmdExport {
		// Only analyze records history.
		cfg.NoAnalytics = true
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.Stdout = stdout

	switch cmd {
	case app.CmdAnalyze:
		rep, err := a.Analyze(ctx)
		if err != nil {
			return err
		}
		dest, err := a.WriteReport(rep)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logWritten(dest)
	case app.CmdCompare:
		res, err := a.Compare(ctx)
		if err != nil {
			return err
		}
		dest, err := a.WriteComparison(res)
		if err != nil {
			return fmt.Errorf("write comparison: %w", err)
		}
		logWritten(dest)
	case app.CmdNegotiate:
		tips, err := a.Negotiate(ctx)
		if err != nil {
			return err
		}
		return writeTips(a, cfg.Format, tips)
	case app.CmdAsk:
		answer, err := a.Ask(ctx, opts.question)
		if err != nil {
			return err
		}
		if cfg.Format == "json" {
			return a.WriteJSON(map[string]string{"question": opts.question, "answer": answer})
		}
		_, err = fmt.Fprintln(stdout, answer)
		return err
	case app.CmdClauses:
		clauses, err := a.Clauses(ctx)
		if err != nil {
			return err
		}
		return writeClauses(a, cfg.Format, clauses)
	case app.CmdGlossary:
		terms, err := a.Glossary(ctx)
		if err != nil {
			return err
		}
		return writeGlossary(a, cfg.Format, terms)
	case app.CmdParse:
		v, err := a.ParseFile(opts.kind)
		if err != nil {
			return err
		}
		return a.WriteJSON(v)
	case app.CmdStats:
		sum, trends, err := a.Stats(ctx)
		if err != nil {
			return err
		}
		if cfg.Format == "json" {
			return a.WriteJSON(map[string]any{"summary": sum, "trends": trends.Last(10)})
		}
		return writeStats(stdout, sum, trends.Last(10))
	case app.CmdExport:
		path := cfg.OutputPath
		if path == "" {
			path = "doclens-history.xlsx"
		}
		if err := a.Export(ctx, path); err != nil {
			return err
		}
		logWritten(path)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func logWritten(dest string) {
	if dest != "" && dest != "-" {
		log.Info().Str("path", dest).Msg("written")
	}
}
