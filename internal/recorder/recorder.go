package recorder

import "time"

// FetchEvent is one completed view fetch.
type FetchEvent struct {
	View      string        `json:"view"`
	Seq       uint64        `json:"seq"`
	Query     string        `json:"query"`
	Outcome   string        `json:"outcome"` // "ready", "failed" or "discarded"
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// FilterEvent is one change of the global filters.
type FilterEvent struct {
	Field  string
	Start  string
	End    string
	Region string
	Preset string
}

// Recorder persists fetch and filter history for later analysis.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecordFilterChange(evt *FilterEvent) error
	// RecentFetches returns the latest fetches of view, newest first.
	RecentFetches(view string, limit int) ([]FetchEvent, error)
	Close() error
}
