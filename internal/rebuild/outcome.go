package rebuild

import (
	"feedrebuild/internal/registry"
)

// Status classifies what happened to one feed.
type Status string

const (
	StatusRecorded    Status = "recorded"
	StatusUnresolved  Status = "unresolved"
	StatusMalformed   Status = "malformed"
	StatusFetchFailed Status = "fetch_failed"
)

// Skipped reports whether the feed produced no record.
func (s Status) Skipped() bool {
	return s != StatusRecorded
}

// Outcome is the per-feed result.
type Outcome struct {
	URL          string   `json:"url"`
	Status       Status   `json:"status"`
	Folder       string   `json:"folder,omitempty"`
	Title        string   `json:"title,omitempty"`
	Messages     int      `json:"messages"`
	LastSeenTime int64    `json:"last_seen_time"`
	Candidates   []string `json:"candidates,omitempty"`
	Detail       string   `json:"detail,omitempty"`
}

// Stats summarises a run.
type Stats struct {
	Feeds       int   `json:"feeds"`
	Recorded    int   `json:"recorded"`
	Unresolved  int   `json:"unresolved"`
	Malformed   int   `json:"malformed"`
	FetchFailed int   `json:"fetch_failed"`
	MaxLastSeen int64 `json:"max_last_seen"`
}

// Skipped returns the number of feeds without a record.
func (s Stats) Skipped() int {
	return s.Unresolved + s.Malformed + s.FetchFailed
}

// Result is the ordered output of a run.
type Result struct {
	Records  []registry.Record
	Outcomes []Outcome
	Stats    Stats
}

func summarize(outcomes []Outcome, maxLastSeen int64) Stats {
	stats := Stats{Feeds: len(outcomes), MaxLastSeen: maxLastSeen}
	for _, o := range outcomes {
		switch o.Status {
		case StatusRecorded:
			stats.Recorded++
		case StatusUnresolved:
			stats.Unresolved++
		case StatusMalformed:
			stats.Malformed++
		case StatusFetchFailed:
			stats.FetchFailed++
		}
	}
	return stats
}
