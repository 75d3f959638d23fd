// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// EntryEvent is published when a time log entry starts or stops.  It
// carries enough information for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type EntryEvent struct {
	Type       string   `json:"type"` // "entry.started" | "entry.stopped"
	EntryID    uint64   `json:"entry_id"`
	UserID     uint64   `json:"user_id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags,omitempty"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}

// Event type values.
const (
	EventEntryStarted = "entry.started"
	EventEntryStopped = "entry.stopped"
)
