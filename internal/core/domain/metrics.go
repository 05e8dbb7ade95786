package domain

import "time"

// LiveMetrics is an append-only snapshot of viewer and engagement
// counters for a session. Latest sample = max SampledAt.
type LiveMetrics struct {
	SessionID SessionID `json:"session_id"`
	Viewers   int       `json:"viewers"`
	Reactions int       `json:"reactions"`
	Comments  int       `json:"comments"`
	SampledAt time.Time `json:"sampled_at"`
}

// LiveTarget is the remote platform's representation of an in-progress
// broadcast.
type LiveTarget struct {
	ID        string `json:"id"`
	IngestURL string `json:"ingest_url"`
}
