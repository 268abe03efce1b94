package domain

// SourceReport holds per-source counters of a run
type SourceReport struct {
	Source   string
	Found    int // entries returned by the feed, before the cap
	Dropped  int // entries without link or guid
	Relayed  int
	Rejected int
	Err      error // feed-level failure, nil if the feed was parsed
}

// Report summarizes an aggregation run
type Report struct {
	Sources []SourceReport
}

// Attempted returns the number of sources the run walked
func (r Report) Attempted() int {
	return len(r.Sources)
}

// Failed returns the number of sources which could not be parsed
func (r Report) Failed() int {
	res := 0
	for _, s := range r.Sources {
		if s.Err != nil {
			res++
		}
	}
	return res
}

// Relayed returns the number of jobs accepted by the ingestion endpoint
func (r Report) Relayed() int {
	res := 0
	for _, s := range r.Sources {
		res += s.Relayed
	}
	return res
}

// Rejected returns the number of jobs the ingestion endpoint did not accept
func (r Report) Rejected() int {
	res := 0
	for _, s := range r.Sources {
		res += s.Rejected
	}
	return res
}

// Dropped returns the number of entries skipped by normalization
func (r Report) Dropped() int {
	res := 0
	for _, s := range r.Sources {
		res += s.Dropped
	}
	return res
}
