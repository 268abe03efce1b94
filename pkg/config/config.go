package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/careerdeck/jobfeed/pkg/domain"
)

// ErrConfigInvalid is matched by every error returned from Load, LoadSources and IngestURL
var ErrConfigInvalid = errors.New("config invalid")

// InvalidError describes why configuration can't be used
type InvalidError struct {
	Path string
	Err  error
}

func (e *InvalidError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid config: %v", e.Err)
	}
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// Is reports ErrConfigInvalid as a match
func (e *InvalidError) Is(target error) bool { return target == ErrConfigInvalid }

// Config holds tunables of the aggregation run. Every field is optional.
type Config struct {
	Fetch  FetchConfig  `yaml:"fetch" json:"fetch" jsonschema:"description=HTTP fetcher settings"`
	Feed   FeedConfig   `yaml:"feed" json:"feed" jsonschema:"description=Feed parsing settings"`
	Pacing PacingConfig `yaml:"pacing" json:"pacing" jsonschema:"description=Delays between requests"`
	Ingest IngestConfig `yaml:"ingest" json:"ingest" jsonschema:"description=Ingestion endpoint settings"`
}

// FetchConfig holds HTTP fetcher settings
type FetchConfig struct {
	Timeout                 time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Timeout of the direct feed parse"`
	BackoffBase             time.Duration `yaml:"backoff_base" json:"backoff_base" jsonschema:"default=500ms,description=First retry delay"`
	BackoffStep             time.Duration `yaml:"backoff_step" json:"backoff_step" jsonschema:"default=200ms,description=Delay added on every next retry"`
	UserAgent               string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent, browser-like by default"`
	DisableInsecureFallback bool          `yaml:"disable_insecure_fallback" json:"disable_insecure_fallback" jsonschema:"default=false,description=Never retry with TLS verification turned off"`
}

// FeedConfig holds feed parsing settings
type FeedConfig struct {
	FallbackRetries int           `yaml:"fallback_retries" json:"fallback_retries" jsonschema:"default=1,minimum=1,description=Attempts of the fetch-then-parse fallback"`
	FallbackTimeout time.Duration `yaml:"fallback_timeout" json:"fallback_timeout" jsonschema:"default=15s,description=Timeout of each fallback attempt"`
	MaxItems        int           `yaml:"max_items" json:"max_items" jsonschema:"default=200,minimum=1,description=Entries processed per source"`
}

// PacingConfig holds delays between requests
type PacingConfig struct {
	ItemDelay   time.Duration `yaml:"item_delay" json:"item_delay" jsonschema:"default=250ms,description=Pause after each relayed job"`
	SourceDelay time.Duration `yaml:"source_delay" json:"source_delay" jsonschema:"default=400ms,description=Pause between sources"`
}

// IngestConfig holds ingestion endpoint settings
type IngestConfig struct {
	URL     string        `yaml:"url" json:"url" jsonschema:"description=Ingestion endpoint, used if not set by flag or environment"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Timeout of each relay request"`
}

// Default returns configuration with all defaults set
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file. Empty path returns defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("read config file: %w", err)}
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("parse config: %w", err)}
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("validate config: %w", err)}
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.BackoffBase == 0 {
		cfg.Fetch.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Fetch.BackoffStep == 0 {
		cfg.Fetch.BackoffStep = 200 * time.Millisecond
	}

	if cfg.Feed.FallbackRetries == 0 {
		cfg.Feed.FallbackRetries = 1
	}
	if cfg.Feed.FallbackTimeout == 0 {
		cfg.Feed.FallbackTimeout = 15 * time.Second
	}
	if cfg.Feed.MaxItems == 0 {
		cfg.Feed.MaxItems = 200
	}

	if cfg.Pacing.ItemDelay == 0 {
		cfg.Pacing.ItemDelay = 250 * time.Millisecond
	}
	if cfg.Pacing.SourceDelay == 0 {
		cfg.Pacing.SourceDelay = 400 * time.Millisecond
	}

	if cfg.Ingest.Timeout == 0 {
		cfg.Ingest.Timeout = 15 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Fetch.Timeout < 0 || cfg.Feed.FallbackTimeout < 0 || cfg.Ingest.Timeout < 0 {
		return errors.New("timeouts must be positive")
	}
	if cfg.Fetch.BackoffBase < 0 || cfg.Fetch.BackoffStep < 0 {
		return errors.New("fetch backoff must be non-negative")
	}
	if cfg.Feed.FallbackRetries < 1 {
		return errors.New("feed.fallback_retries must be at least 1")
	}
	if cfg.Feed.MaxItems < 1 {
		return errors.New("feed.max_items must be at least 1")
	}
	if cfg.Pacing.ItemDelay < 0 || cfg.Pacing.SourceDelay < 0 {
		return errors.New("pacing delays must be non-negative")
	}
	if cfg.Ingest.URL != "" {
		if err := checkURL(cfg.Ingest.URL); err != nil {
			return fmt.Errorf("ingest.url: %w", err)
		}
	}
	return nil
}

// IngestURL resolves the ingestion endpoint: override (flag or environment) first,
// then ingest.url of the config file
func (c *Config) IngestURL(override string) (string, error) {
	u := override
	if u == "" {
		u = c.Ingest.URL
	}
	if u == "" {
		return "", &InvalidError{Err: errors.New("no ingestion url configured")}
	}
	if err := checkURL(u); err != nil {
		return "", &InvalidError{Err: fmt.Errorf("ingestion url: %w", err)}
	}
	return u, nil
}

// LoadSources reads the JSON list of feed sources. Name defaults to the url.
func LoadSources(path string) ([]domain.Source, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("read sources file: %w", err)}
	}

	var sources []domain.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, &InvalidError{Path: path, Err: fmt.Errorf("parse sources: %w", err)}
	}

	for i := range sources {
		if sources[i].URL == "" {
			return nil, &InvalidError{Path: path, Err: fmt.Errorf("source #%d has no url", i)}
		}
		if sources[i].Name == "" {
			sources[i].Name = sources[i].URL
		}
	}
	return sources, nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
