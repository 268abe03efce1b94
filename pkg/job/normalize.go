// Package job maps raw feed entries to canonical job records.
package job

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/careerdeck/jobfeed/pkg/domain"
)

// MaxDescription is the description limit in characters
const MaxDescription = 1200

// strict policy allows no elements, so sanitizing drops every tag and keeps the text
var stripPolicy = bluemonday.StrictPolicy()

// Normalize makes a job record from the entry. It returns false if the entry has neither
// link nor guid, such entries can't be ingested.
func Normalize(entry domain.Entry, source string) (domain.Job, bool) {
	link := firstNonEmpty(entry.Link, entry.GUID)
	if link == "" {
		return domain.Job{}, false
	}

	location := strings.Join(entry.Categories, ", ")
	if len(entry.Categories) == 0 {
		location = entry.Location
	}

	return domain.Job{
		Title:       entry.Title,
		Company:     firstNonEmpty(entry.Creator, entry.Author),
		Location:    location,
		Source:      source,
		Link:        link,
		Description: Truncate(StripTags(firstNonEmpty(entry.ContentSnippet, entry.Content)), MaxDescription),
		DatePosted:  entry.Published,
	}, true
}

// StripTags removes all markup and returns plain text with entities decoded.
// Escaped markup (&lt;b&gt;) is stripped too, so the result is stable: stripping it again
// doesn't change it. Every pass that changes the text removes a tag or decodes an entity,
// so the loop ends.
func StripTags(s string) string {
	for strings.ContainsAny(s, "<&") {
		stripped := html.UnescapeString(stripPolicy.Sanitize(s))
		if stripped == s {
			break
		}
		s = stripped
	}
	return s
}

// Truncate returns the first limit characters of s
func Truncate(s string, limit int) string {
	if len(s) <= limit { // byte length bounds rune count
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
