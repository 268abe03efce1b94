package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerdeck/jobfeed/pkg/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
fetch:
  timeout: 5s
  backoff_base: 100ms
  backoff_step: 50ms
  user_agent: jobfeed/1.0
  disable_insecure_fallback: true
feed:
  fallback_retries: 3
  fallback_timeout: 20s
  max_items: 50
pacing:
  item_delay: 1s
  source_delay: 2s
ingest:
  url: https://script.example.com/exec
  timeout: 10s
`
		cfg, err := Load(writeFile(t, "config.yml", configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 100*time.Millisecond, cfg.Fetch.BackoffBase)
		assert.Equal(t, 50*time.Millisecond, cfg.Fetch.BackoffStep)
		assert.Equal(t, "jobfeed/1.0", cfg.Fetch.UserAgent)
		assert.True(t, cfg.Fetch.DisableInsecureFallback)

		assert.Equal(t, 3, cfg.Feed.FallbackRetries)
		assert.Equal(t, 20*time.Second, cfg.Feed.FallbackTimeout)
		assert.Equal(t, 50, cfg.Feed.MaxItems)

		assert.Equal(t, time.Second, cfg.Pacing.ItemDelay)
		assert.Equal(t, 2*time.Second, cfg.Pacing.SourceDelay)

		assert.Equal(t, "https://script.example.com/exec", cfg.Ingest.URL)
		assert.Equal(t, 10*time.Second, cfg.Ingest.Timeout)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "config.yml", "pacing:\n  item_delay: 1s\n"))
		require.NoError(t, err)

		assert.Equal(t, time.Second, cfg.Pacing.ItemDelay)
		assert.Equal(t, 400*time.Millisecond, cfg.Pacing.SourceDelay)
		assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
		assert.Equal(t, 500*time.Millisecond, cfg.Fetch.BackoffBase)
		assert.Equal(t, 200*time.Millisecond, cfg.Fetch.BackoffStep)
		assert.False(t, cfg.Fetch.DisableInsecureFallback)
		assert.Equal(t, 1, cfg.Feed.FallbackRetries)
		assert.Equal(t, 15*time.Second, cfg.Feed.FallbackTimeout)
		assert.Equal(t, 200, cfg.Feed.MaxItems)
		assert.Equal(t, 15*time.Second, cfg.Ingest.Timeout)
		assert.Empty(t, cfg.Ingest.URL)
	})

	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Equal(t, 250*time.Millisecond, cfg.Pacing.ItemDelay)
	})

	t.Run("environment expanded", func(t *testing.T) {
		t.Setenv("TEST_INGEST_URL", "https://ingest.example.com/jobs")
		cfg, err := Load(writeFile(t, "config.yml", "ingest:\n  url: ${TEST_INGEST_URL}\n"))
		require.NoError(t, err)
		assert.Equal(t, "https://ingest.example.com/jobs", cfg.Ingest.URL)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		cfg, err := Load(writeFile(t, "invalid.yml", configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "negative fetch timeout", content: "fetch:\n  timeout: -1s\n", wantErr: "timeouts must be positive"},
		{name: "negative backoff", content: "fetch:\n  backoff_step: -5ms\n", wantErr: "fetch backoff must be non-negative"},
		{name: "bad fallback retries", content: "feed:\n  fallback_retries: -1\n", wantErr: "feed.fallback_retries must be at least 1"},
		{name: "bad max items", content: "feed:\n  max_items: -10\n", wantErr: "feed.max_items must be at least 1"},
		{name: "negative pacing", content: "pacing:\n  source_delay: -1s\n", wantErr: "pacing delays must be non-negative"},
		{name: "ingest url without scheme", content: "ingest:\n  url: script.example.com/exec\n", wantErr: "ingest.url"},
		{name: "ingest url with ftp scheme", content: "ingest:\n  url: ftp://files.example.com\n", wantErr: "unsupported scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, "config.yml", tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrConfigInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_IngestURL(t *testing.T) {
	cfg := Default()

	_, err := cfg.IngestURL("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)

	u, err := cfg.IngestURL("https://flag.example.com/ingest")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com/ingest", u)

	cfg.Ingest.URL = "https://file.example.com/ingest"
	u, err = cfg.IngestURL("")
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com/ingest", u)

	u, err = cfg.IngestURL("https://flag.example.com/ingest")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com/ingest", u, "override wins")

	_, err = cfg.IngestURL("not a url")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadSources(t *testing.T) {
	t.Run("valid list", func(t *testing.T) {
		path := writeFile(t, "feeds.json", `[
			{"source": "TestBoard", "url": "https://board.example.com/rss"},
			{"url": "https://jobs.example.com/atom"}
		]`)
		sources, err := LoadSources(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.Source{
			{Name: "TestBoard", URL: "https://board.example.com/rss"},
			{Name: "https://jobs.example.com/atom", URL: "https://jobs.example.com/atom"},
		}, sources)
	})

	t.Run("empty list", func(t *testing.T) {
		sources, err := LoadSources(writeFile(t, "feeds.json", `[]`))
		require.NoError(t, err)
		assert.Empty(t, sources)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSources(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.Contains(t, err.Error(), "read sources file")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := LoadSources(writeFile(t, "feeds.json", `[{"source": "x", "url": `))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.Contains(t, err.Error(), "parse sources")
	})

	t.Run("source without url", func(t *testing.T) {
		_, err := LoadSources(writeFile(t, "feeds.json", `[{"source": "x"}]`))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.Contains(t, err.Error(), "source #0 has no url")
	})
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "jobfeed configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"fetch", "feed", "pacing", "ingest"} {
		assert.Contains(t, props, key)
	}
}
