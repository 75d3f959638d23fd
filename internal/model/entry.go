package model

import "time"

// TimeLogEntry mirrors the time_log_entries table.  An entry with a nil
// EndTime is "active"; the database guarantees at most one active entry
// per owner via a generated column under a unique key.  Entries move from
// active to closed exactly once and never back.
type TimeLogEntry struct {
	ID        uint64     `json:"id"`
	OwnerID   uint64     `json:"owner_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Title     string     `json:"title"`
	Tags      []string   `json:"tags"`
	Metadata  []string   `json:"metadata"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Active reports whether the entry is still running.
func (e *TimeLogEntry) Active() bool { return e.EndTime == nil }
