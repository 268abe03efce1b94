package domain

// Source represents a configured job feed to poll
type Source struct {
	Name string `json:"source"`
	URL  string `json:"url"`
}

// ParsedFeed represents a parsed RSS/Atom feed
type ParsedFeed struct {
	Title string
	Items []Entry
}

// Entry represents one feed item before normalization.
// Any field may be empty, the shape depends on the feed dialect.
type Entry struct {
	Title          string
	Link           string
	GUID           string
	Author         string
	Creator        string
	Categories     []string
	Location       string
	Published      string // raw publish date as found in the feed
	Content        string
	ContentSnippet string
}
