package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/aionify/aionify/internal/model"
)

// EntryRepo provides data access to the time_log_entries table.  All
// timestamps are stored and compared in UTC.  The generated `active`
// column under the unique (owner_id, active) key guarantees at most one
// running entry per owner; duplicate-key violations on insert are
// surfaced as ErrActiveEntryConflict so the service layer can retry.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

const entryColumns = "id, owner_id, start_time, end_time, title, tags, metadata, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.TimeLogEntry, error) {
	var (
		e          model.TimeLogEntry
		endTime    sql.NullTime
		tagsJSON   []byte
		metaJSON   []byte
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.StartTime, &endTime, &e.Title,
		&tagsJSON, &metaJSON, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, ErrNotFound
		}
		return e, err
	}
	if endTime.Valid {
		t := endTime.Time.UTC()
		e.EndTime = &t
	}
	e.StartTime = e.StartTime.UTC()
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &e.Tags); err != nil {
			return e, err
		}
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
			return e, err
		}
	}
	return e, nil
}

func marshalStrings(ss []string) (any, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ss)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Active returns the owner's running entry, or ErrNotFound when none exists.
func (r *EntryRepo) Active(ctx context.Context, ownerID uint64) (*model.TimeLogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM time_log_entries WHERE owner_id=? AND end_time IS NULL LIMIT 1",
		ownerID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// StartNew closes the owner's running entry (if any) at entry.StartTime
// and inserts entry as the new active one, inside a single transaction.
// The transaction avoids a window in which a concurrent reader observes
// zero active entries mid-switch; the unique key remains the backstop if
// two starts race anyway.  On a duplicate-key violation the transaction
// is rolled back and ErrActiveEntryConflict is returned.  On success the
// generated ID and timestamps are populated on entry and the previously
// active entry (now closed) is returned, or nil if none was running.
func (r *EntryRepo) StartNew(ctx context.Context, entry *model.TimeLogEntry) (*model.TimeLogEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM time_log_entries WHERE owner_id=? AND end_time IS NULL LIMIT 1 FOR UPDATE",
		entry.OwnerID)
	var stopped *model.TimeLogEntry
	prev, err := scanEntry(row)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			"UPDATE time_log_entries SET end_time=? WHERE id=? AND end_time IS NULL",
			entry.StartTime.UTC(), prev.ID); err != nil {
			return nil, err
		}
		end := entry.StartTime.UTC()
		prev.EndTime = &end
		stopped = &prev
	case errors.Is(err, ErrNotFound):
		// nothing running, insert directly
	default:
		return nil, err
	}

	tags, err := marshalStrings(entry.Tags)
	if err != nil {
		return nil, err
	}
	meta, err := marshalStrings(entry.Metadata)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO time_log_entries (owner_id, start_time, end_time, title, tags, metadata) VALUES (?,?,NULL,?,?,?)",
		entry.OwnerID, entry.StartTime.UTC(), entry.Title, tags, meta)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrActiveEntryConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	entry.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrActiveEntryConflict
		}
		return nil, err
	}
	return stopped, nil
}

// StopActive closes the owner's running entry at the given instant and
// returns it.  ErrNotFound means nothing was running; callers treat that
// as a no-op, not a failure.
func (r *EntryRepo) StopActive(ctx context.Context, ownerID uint64, at time.Time) (*model.TimeLogEntry, error) {
	e, err := r.Active(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE time_log_entries SET end_time=? WHERE id=? AND end_time IS NULL",
		at.UTC(), e.ID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// lost a race with another stop; nothing is active anymore
		return nil, ErrNotFound
	}
	end := at.UTC()
	e.EndTime = &end
	return e, nil
}

// ListRange returns the owner's entries with start_time in [from, to),
// newest first, offset/limit paginated, along with the total count of
// matching rows.
func (r *EntryRepo) ListRange(ctx context.Context, ownerID uint64, from, to time.Time, offset, limit int) ([]model.TimeLogEntry, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM time_log_entries WHERE owner_id=? AND start_time >= ? AND start_time < ?",
		ownerID, from.UTC(), to.UTC()).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+entryColumns+` FROM time_log_entries
		 WHERE owner_id=? AND start_time >= ? AND start_time < ?
		 ORDER BY start_time DESC LIMIT ? OFFSET ?`,
		ownerID, from.UTC(), to.UTC(), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	entries := make([]model.TimeLogEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// GetByID returns a single entry owned by ownerID.
func (r *EntryRepo) GetByID(ctx context.Context, ownerID, id uint64) (*model.TimeLogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM time_log_entries WHERE id=? AND owner_id=? LIMIT 1",
		id, ownerID)
	e, err := scanEntry(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update persists start_time, end_time, title, tags and metadata of an
// entry scoped to its owner.  Existence is the caller's concern (MySQL
// reports zero affected rows for value-identical updates, so RowsAffected
// cannot distinguish "missing" from "unchanged").
func (r *EntryRepo) Update(ctx context.Context, entry *model.TimeLogEntry) error {
	tags, err := marshalStrings(entry.Tags)
	if err != nil {
		return err
	}
	meta, err := marshalStrings(entry.Metadata)
	if err != nil {
		return err
	}
	var end any
	if entry.EndTime != nil {
		end = entry.EndTime.UTC()
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE time_log_entries SET start_time=?, end_time=?, title=?, tags=?, metadata=? WHERE id=? AND owner_id=?",
		entry.StartTime.UTC(), end, entry.Title, tags, meta, entry.ID, entry.OwnerID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrActiveEntryConflict
		}
		return err
	}
	return nil
}

// Delete removes an entry scoped to its owner.
func (r *EntryRepo) Delete(ctx context.Context, ownerID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM time_log_entries WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
