package domain

// Job is the canonical job record sent to the ingestion endpoint
type Job struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Source      string `json:"source"`
	Link        string `json:"link"`
	Description string `json:"description"`
	DatePosted  string `json:"datePosted"`
}

// RelayResult is the outcome of posting a job to the ingestion endpoint
type RelayResult struct {
	Accepted   bool
	StatusCode int
	Body       string
}
