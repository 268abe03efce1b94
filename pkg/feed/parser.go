// Package feed turns feed URLs into raw entries. Parsing goes through an ordered list of
// strategies, the first one to succeed wins.
package feed

import (
	"context"
	"sort"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/careerdeck/jobfeed/pkg/domain"
)

// Strategy is one way of getting a parsed feed for the URL
type Strategy interface {
	Name() string
	Parse(ctx context.Context, url string) (*gofeed.Feed, error)
}

// Parser parses RSS/Atom feeds trying each strategy in order
type Parser struct {
	strategies []Strategy
}

// NewParser creates a parser with the given strategies
func NewParser(strategies ...Strategy) *Parser {
	return &Parser{strategies: strategies}
}

// Parse returns the feed entries. A feed without entries is not an error.
// If no strategy succeeds, the error is *UnreachableError.
func (p *Parser) Parse(ctx context.Context, url string) (*domain.ParsedFeed, error) {
	errs := make([]error, 0, len(p.strategies))
	for _, s := range p.strategies {
		feed, err := s.Parse(ctx, url)
		if err != nil {
			lgr.Printf("[DEBUG] %s strategy failed for %s: %v", s.Name(), url, err)
			errs = append(errs, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(errs) > 0 {
			lgr.Printf("[DEBUG] %s parsed with %s strategy", url, s.Name())
		}
		return convert(feed), nil
	}
	return nil, &UnreachableError{URL: url, Err: informative(errs)}
}

// informative picks the latest error with a message, falls back to the first one
func informative(errs []error) error {
	for i := len(errs) - 1; i >= 0; i-- {
		if errs[i].Error() != "" {
			return errs[i]
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return errNoStrategies
}

func convert(feed *gofeed.Feed) *domain.ParsedFeed {
	res := &domain.ParsedFeed{Title: feed.Title, Items: make([]domain.Entry, 0, len(feed.Items))}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		res.Items = append(res.Items, toEntry(item))
	}
	return res
}

func toEntry(item *gofeed.Item) domain.Entry {
	entry := domain.Entry{
		Title:          item.Title,
		Link:           item.Link,
		GUID:           item.GUID,
		Categories:     item.Categories,
		Published:      item.Published,
		Content:        item.Content,
		ContentSnippet: item.Description,
		Location:       extensionValue(item.Extensions, "location"),
	}

	if item.Author != nil {
		entry.Author = item.Author.Name
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		entry.Creator = item.DublinCoreExt.Creator[0]
	}

	return entry
}

// extensionValue returns the first non-empty value of a namespaced element with the given name,
// e.g. <job:location>. Namespaces are checked in sorted order.
func extensionValue(exts ext.Extensions, name string) string {
	prefixes := make([]string, 0, len(exts))
	for prefix := range exts {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, prefix := range prefixes {
		for _, e := range exts[prefix][name] {
			if e.Value != "" {
				return e.Value
			}
		}
	}
	return ""
}
