package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aionify/aionify/internal/model"
	"github.com/aionify/aionify/internal/repository"
)

// MaxTitleLen is the longest accepted entry title, in runes.
const MaxTitleLen = 1000

// MaxPageSize caps a single page of listed entries.
const MaxPageSize = 200

// EntryStore is the persistence contract the entry service runs against.
// repository.EntryRepo is the MySQL implementation; tests substitute an
// in-memory fake.
type EntryStore interface {
	Active(ctx context.Context, ownerID uint64) (*model.TimeLogEntry, error)
	StartNew(ctx context.Context, entry *model.TimeLogEntry) (*model.TimeLogEntry, error)
	StopActive(ctx context.Context, ownerID uint64, at time.Time) (*model.TimeLogEntry, error)
	ListRange(ctx context.Context, ownerID uint64, from, to time.Time, offset, limit int) ([]model.TimeLogEntry, int64, error)
	GetByID(ctx context.Context, ownerID, id uint64) (*model.TimeLogEntry, error)
	Update(ctx context.Context, entry *model.TimeLogEntry) error
	Delete(ctx context.Context, ownerID, id uint64) error
}

// EventSink receives entry lifecycle notifications.  The RabbitMQ
// publisher implements it; a nil sink disables events.
type EventSink interface {
	EntryStarted(ctx context.Context, e *model.TimeLogEntry)
	EntryStopped(ctx context.Context, e *model.TimeLogEntry)
}

// EntryService implements the time log entry state machine.  Every entry
// is either Active (nil end time) or Closed, and moves between the two
// exactly once.  The service guarantees that after any Start call exactly
// one active entry exists for the user: the store closes the previous
// entry and inserts the new one in a single transaction, and the unique
// database key backstops races the transaction cannot see.
type EntryService struct {
	store  EntryStore
	events EventSink
	now    func() time.Time
}

// NewEntryService wires an EntryService.  events may be nil.
func NewEntryService(store EntryStore, events EventSink) *EntryService {
	return &EntryService{
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ValidateTitle applies the title rules shared by Start and Update.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleBlank
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// Start begins a new active entry for the user.  If an entry is already
// running it is closed at the new entry's start instant, so the timeline
// has no overlap and no gap.  A duplicate-key conflict (two concurrent
// starts) is retried once, closing whatever entry won the race, and then
// surfaced as repository.ErrActiveEntryConflict.  Returns the new entry
// and the entry that was stopped, if any.
func (s *EntryService) Start(ctx context.Context, ownerID uint64, title string, tags, metadata []string) (*model.TimeLogEntry, *model.TimeLogEntry, error) {
	title, err := ValidateTitle(title)
	if err != nil {
		return nil, nil, err
	}

	var stopped *model.TimeLogEntry
	entry := &model.TimeLogEntry{
		OwnerID:   ownerID,
		StartTime: s.now(),
		Title:     title,
		Tags:      tags,
		Metadata:  metadata,
	}
	stopped, err = s.store.StartNew(ctx, entry)
	if errors.Is(err, repository.ErrActiveEntryConflict) {
		entry.ID = 0
		stopped, err = s.store.StartNew(ctx, entry)
	}
	if err != nil {
		return nil, nil, err
	}

	if s.events != nil {
		if stopped != nil {
			s.events.EntryStopped(ctx, stopped)
		}
		s.events.EntryStarted(ctx, entry)
	}
	return entry, stopped, nil
}

// Stop closes the user's active entry.  Idempotent: when nothing is
// running it reports stopped=false with no error.
func (s *EntryService) Stop(ctx context.Context, ownerID uint64) (*model.TimeLogEntry, bool, error) {
	e, err := s.store.StopActive(ctx, ownerID, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.events != nil {
		s.events.EntryStopped(ctx, e)
	}
	return e, true, nil
}

// Active returns the user's running entry, or repository.ErrNotFound.
func (s *EntryService) Active(ctx context.Context, ownerID uint64) (*model.TimeLogEntry, error) {
	return s.store.Active(ctx, ownerID)
}

// List returns entries with start time in [from, to), newest first,
// along with the total count.  Equal bounds are rejected: an empty range
// is a caller mistake, not an empty result.
func (s *EntryService) List(ctx context.Context, ownerID uint64, from, to time.Time, page, size int) ([]model.TimeLogEntry, int64, error) {
	if !from.Before(to) {
		return nil, 0, ErrInvalidRange
	}
	if page < 0 || size < 1 || size > MaxPageSize {
		return nil, 0, ErrInvalidPagination
	}
	return s.store.ListRange(ctx, ownerID, from, to, page*size, size)
}

// EntryPatch describes a partial update.  Nil fields are left untouched.
type EntryPatch struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Tags      *[]string
	Metadata  *[]string
}

// Update edits an owned entry.  The state machine stays one-way: a
// closed entry can have its end time moved but never cleared, and an end
// time may not precede the start time.
func (s *EntryService) Update(ctx context.Context, ownerID, id uint64, patch EntryPatch) (*model.TimeLogEntry, error) {
	e, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		title, err := ValidateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		e.Title = title
	}
	if patch.StartTime != nil {
		e.StartTime = patch.StartTime.UTC()
	}
	if patch.EndTime != nil {
		end := patch.EndTime.UTC()
		e.EndTime = &end
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return nil, ErrEndBeforeStart
	}
	if patch.Tags != nil {
		e.Tags = *patch.Tags
	}
	if patch.Metadata != nil {
		e.Metadata = *patch.Metadata
	}
	if err := s.store.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an owned entry.
func (s *EntryService) Delete(ctx context.Context, ownerID, id uint64) error {
	return s.store.Delete(ctx, ownerID, id)
}
