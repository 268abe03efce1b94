package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/careerdeck/jobfeed/pkg/fetch"
)

// Fetcher loads raw feed documents
type Fetcher interface {
	Fetch(ctx context.Context, url string, req fetch.Request, maxRetries int, timeout time.Duration) (*fetch.Response, error)
}

// Options configures the default strategies
type Options struct {
	Timeout         time.Duration // direct parse timeout, default 15s
	UserAgent       string        // default fetch.DefaultUserAgent
	Client          *http.Client  // client for direct parsing, default http.DefaultClient
	FallbackRetries int           // default 1
	FallbackTimeout time.Duration // default 15s
}

// DefaultStrategies returns direct URL parsing followed by fetch-then-parse
func DefaultStrategies(f Fetcher, opts Options) []Strategy {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fetch.DefaultUserAgent
	}
	if opts.FallbackRetries == 0 {
		opts.FallbackRetries = 1
	}
	if opts.FallbackTimeout == 0 {
		opts.FallbackTimeout = 15 * time.Second
	}
	return []Strategy{
		&DirectStrategy{Timeout: opts.Timeout, UserAgent: opts.UserAgent, Client: opts.Client},
		&FetchStrategy{Fetcher: f, Retries: opts.FallbackRetries, Timeout: opts.FallbackTimeout},
	}
}

// DirectStrategy lets gofeed request the URL itself, it handles redirects and content detection
type DirectStrategy struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// Name of the strategy
func (s *DirectStrategy) Name() string { return "direct" }

// Parse requests and parses the feed
func (s *DirectStrategy) Parse(ctx context.Context, url string) (*gofeed.Feed, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	parser := gofeed.NewParser()
	parser.UserAgent = s.UserAgent
	if s.Client != nil {
		parser.Client = s.Client
	}

	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	return feed, nil
}

// FetchStrategy downloads the document with the fetcher and parses the text
type FetchStrategy struct {
	Fetcher Fetcher
	Retries int
	Timeout time.Duration
}

// Name of the strategy
func (s *FetchStrategy) Name() string { return "fetch" }

// Parse fetches the body, checks the status and parses it as a feed
func (s *FetchStrategy) Parse(ctx context.Context, url string) (*gofeed.Feed, error) {
	resp, err := s.Fetcher.Fetch(ctx, url, fetch.Request{}, s.Retries, s.Timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().ParseString(string(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}
