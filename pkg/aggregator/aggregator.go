// Package aggregator walks the configured feed sources and relays their jobs to the
// ingestion endpoint. Sources and items are processed one by one with fixed pauses between
// requests; a failed feed or a rejected job is logged and skipped, never retried.
package aggregator

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"

	"github.com/careerdeck/jobfeed/pkg/domain"
	"github.com/careerdeck/jobfeed/pkg/job"
)

//go:generate moq -out mocks/parser.go -pkg mocks -skip-ensure -fmt goimports . Parser
//go:generate moq -out mocks/relayer.go -pkg mocks -skip-ensure -fmt goimports . Relayer

// DefaultMaxItems limits entries processed per source
const DefaultMaxItems = 200

const responseSnippet = 120

// Parser fetches and parses a feed
type Parser interface {
	Parse(ctx context.Context, url string) (*domain.ParsedFeed, error)
}

// Relayer delivers a job to the ingestion endpoint
type Relayer interface {
	Relay(ctx context.Context, job domain.Job) (domain.RelayResult, error)
}

// Aggregator runs the fetch-normalize-relay pipeline
type Aggregator struct {
	parser      Parser
	relayer     Relayer
	maxItems    int
	itemDelay   time.Duration
	sourceDelay time.Duration
}

// Config holds aggregator dependencies and pacing
type Config struct {
	Parser      Parser
	Relayer     Relayer
	MaxItems    int           // entries per source, default DefaultMaxItems
	ItemDelay   time.Duration // pause after each relayed job
	SourceDelay time.Duration // pause after each source but the last, parsed or not
}

// New creates an aggregator
func New(cfg Config) *Aggregator {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	return &Aggregator{
		parser:      cfg.Parser,
		relayer:     cfg.Relayer,
		maxItems:    cfg.MaxItems,
		itemDelay:   cfg.ItemDelay,
		sourceDelay: cfg.SourceDelay,
	}
}

// Run processes all sources in order and returns the run report.
// Feed and relay failures are recorded in the report, the only error returned is the
// context error if the run was interrupted.
func (a *Aggregator) Run(ctx context.Context, sources []domain.Source) (domain.Report, error) {
	report := domain.Report{Sources: make([]domain.SourceReport, 0, len(sources))}
	lgr.Printf("[INFO] processing %d feed sources", len(sources))

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sr, err := a.processSource(ctx, src)
		report.Sources = append(report.Sources, sr)
		if err != nil {
			return report, err
		}

		// a failed source still hit its host, so the pause applies to it as well
		if i < len(sources)-1 {
			if err := pause(ctx, a.sourceDelay); err != nil {
				return report, err
			}
		}
	}

	lgr.Printf("[INFO] run completed, sources: %d, failed: %d, relayed: %d, rejected: %d, dropped: %d",
		report.Attempted(), report.Failed(), report.Relayed(), report.Rejected(), report.Dropped())
	return report, nil
}

// processSource parses one feed and relays its entries. The returned error is set only
// if the context was canceled.
func (a *Aggregator) processSource(ctx context.Context, src domain.Source) (domain.SourceReport, error) {
	sr := domain.SourceReport{Source: src.Name}
	lgr.Printf("[DEBUG] fetching feed %s: %s", src.Name, src.URL)

	feed, err := a.parser.Parse(ctx, src.URL)
	if err != nil {
		lgr.Printf("[WARN] failed to parse feed %s: %v", src.Name, err)
		sr.Err = err
		return sr, ctx.Err()
	}

	sr.Found = len(feed.Items)
	items := feed.Items
	if len(items) > a.maxItems {
		lgr.Printf("[INFO] feed %s has %d items, only first %d processed", src.Name, len(items), a.maxItems)
		items = items[:a.maxItems]
	}
	lgr.Printf("[INFO] found %d items in %s", sr.Found, src.Name)

	for _, entry := range items {
		if err := ctx.Err(); err != nil {
			return sr, err
		}

		j, ok := job.Normalize(entry, src.Name)
		if !ok {
			lgr.Printf("[DEBUG] skipping entry without link in %s: %q", src.Name, entry.Title)
			sr.Dropped++
			continue
		}

		res, err := a.relayer.Relay(ctx, j)
		if err != nil {
			lgr.Printf("[WARN] failed to relay %q from %s: %v, response: %q", j.Title, src.Name, err, snippet(res.Body))
			sr.Rejected++
		} else {
			lgr.Printf("[INFO] relayed %q from %s, status %d, response: %q", j.Title, src.Name, res.StatusCode, snippet(res.Body))
			sr.Relayed++
		}

		if err := pause(ctx, a.itemDelay); err != nil {
			return sr, err
		}
	}

	return sr, nil
}

// pause waits for d or until the context is done
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func snippet(s string) string {
	if utf8.RuneCountInString(s) <= responseSnippet {
		return s
	}
	return job.Truncate(s, responseSnippet) + "..."
}
