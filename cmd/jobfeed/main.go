package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/careerdeck/jobfeed/pkg/aggregator"
	"github.com/careerdeck/jobfeed/pkg/config"
	"github.com/careerdeck/jobfeed/pkg/domain"
	"github.com/careerdeck/jobfeed/pkg/feed"
	"github.com/careerdeck/jobfeed/pkg/fetch"
	"github.com/careerdeck/jobfeed/pkg/relay"
)

// Opts with all CLI options
type Opts struct {
	Config    string `short:"c" long:"config" env:"CONFIG" description:"optional yaml file with tunables"`
	Sources   string `short:"s" long:"sources" env:"FEEDS_FILE" default:"data/feeds.json" description:"json list of feed sources"`
	IngestURL string `short:"i" long:"ingest-url" env:"INGEST_URL" description:"ingestion endpoint, overrides ingest.url of the config; with neither set the run exits non-zero unless --dry-run"`
	DryRun    bool   `long:"dry-run" description:"log normalized jobs instead of posting them"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor

	// resolve configuration first, the ingestion url must be a log secret before anything is logged
	st, prepErr := prepare(opts)
	setupLog(opts.Debug, opts.IngestURL, st.ingestURL)

	log.Printf("[INFO] starting jobfeed version %s", revision)
	if prepErr != nil {
		log.Printf("[ERROR] %v", prepErr)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, st)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] done")
}

// setup is the resolved configuration of a run
type setup struct {
	cfg       *config.Config
	sources   []domain.Source
	ingestURL string // empty in dry run
	dryRun    bool
}

// prepare loads the config and the sources and resolves the ingestion endpoint.
// It never returns nil, the partial setup is returned together with the error.
func prepare(opts Opts) (*setup, error) {
	st := &setup{dryRun: opts.DryRun}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return st, fmt.Errorf("failed to load config: %w", err)
	}
	st.cfg = cfg

	if !opts.DryRun {
		ingestURL, err := cfg.IngestURL(opts.IngestURL)
		if err != nil {
			return st, fmt.Errorf("failed to resolve ingestion endpoint: %w", err)
		}
		st.ingestURL = ingestURL
	}

	sources, err := config.LoadSources(opts.Sources)
	if err != nil {
		return st, fmt.Errorf("failed to load sources: %w", err)
	}
	st.sources = sources
	return st, nil
}

// run walks all sources once. Errors are returned only for interruption,
// failed feeds and rejected jobs don't fail the run.
func run(ctx context.Context, st *setup) error {
	cfg := st.cfg
	fetcher := fetch.New(fetch.Options{
		Policy:      fetch.DefaultPolicy(!cfg.Fetch.DisableInsecureFallback),
		UserAgent:   cfg.Fetch.UserAgent,
		BackoffBase: cfg.Fetch.BackoffBase,
		BackoffStep: cfg.Fetch.BackoffStep,
	})
	if !cfg.Fetch.DisableInsecureFallback {
		log.Print("[DEBUG] insecure tls fallback enabled for feed fetching")
	}

	var relayer aggregator.Relayer = relay.DryRun{}
	if st.dryRun {
		log.Print("[INFO] dry run, jobs are not posted")
	} else {
		relayer = relay.New(fetcher, st.ingestURL, cfg.Ingest.Timeout)
	}

	agg := aggregator.New(aggregator.Config{
		Parser: feed.NewParser(feed.DefaultStrategies(fetcher, feed.Options{
			Timeout:         cfg.Fetch.Timeout,
			UserAgent:       cfg.Fetch.UserAgent,
			FallbackRetries: cfg.Feed.FallbackRetries,
			FallbackTimeout: cfg.Feed.FallbackTimeout,
		})...),
		Relayer:     relayer,
		MaxItems:    cfg.Feed.MaxItems,
		ItemDelay:   cfg.Pacing.ItemDelay,
		SourceDelay: cfg.Pacing.SourceDelay,
	})

	if _, err := agg.Run(ctx, st.sources); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}

func setupLog(dbg bool, secs ...string) {
	var logOpts []lgr.Option
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError, lgr.CallerFunc}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
