package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by the find-one accessors when no record
// matches. Callers distinguish "no record" (a normal lifecycle state)
// from real store failures with errors.Is.
var ErrNotFound = errors.New("record not found")

// PostRecord is the persisted lifecycle state for one submission.
//
// Flag transitions are monotonic: prompted and removed go false→true at
// most once, and replied may go true only while removed is true. The
// lifecycle engine owns those rules; the store just persists the row.
type PostRecord struct {
	RowID     int64  // internal row id, update/delete key
	PostID    string // platform submission id, unique
	User      string // author username, not unique at the store level
	CreatedAt time.Time
	Prompted  bool
	Removed   bool
	Replied   bool
}

// Age returns the elapsed time since the submission was created.
// This is the authoritative clock for all lifecycle timing decisions.
func (r PostRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// Insert adds a lifecycle record for a submission.
// Uses ON CONFLICT(post_id) DO NOTHING for idempotency: a re-admitted
// submission (crash mid-cycle, retried cycle) is silently ignored and
// inserted=false is returned. Other constraint violations still error.
func (s *Store) Insert(ctx context.Context, rec PostRecord) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (post_id, user, created, prompted, removed, replied)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id) DO NOTHING
	`,
		rec.PostID,
		rec.User,
		rec.CreatedAt.Unix(),
		rec.Prompted,
		rec.Removed,
		rec.Replied,
	)
	if err != nil {
		return false, fmt.Errorf("insert record %s: %w", rec.PostID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert record %s: rows affected: %w", rec.PostID, err)
	}
	return n > 0, nil
}

// FindByPostID retrieves the record for a submission id.
// Returns ErrNotFound if no record exists.
func (s *Store) FindByPostID(ctx context.Context, postID string) (PostRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, post_id, user, created, prompted, removed, replied
		FROM posts
		WHERE post_id = ?
	`, postID)

	return scanRecord(row)
}

// FindByUser retrieves the live record for an author.
// Returns ErrNotFound if the author has no record. When multiple rows
// exist for the author (transiently possible around admission), the
// oldest row wins for determinism.
func (s *Store) FindByUser(ctx context.Context, user string) (PostRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, post_id, user, created, prompted, removed, replied
		FROM posts
		WHERE user = ?
		ORDER BY id ASC
		LIMIT 1
	`, user)

	return scanRecord(row)
}

// All returns every lifecycle record, ordered by row id for
// deterministic sweep order.
func (s *Store) All(ctx context.Context) ([]PostRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, user, created, prompted, removed, replied
		FROM posts
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	defer rows.Close()

	var records []PostRecord
	for rows.Next() {
		rec, err := scanRecordRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return records, nil
}

// SetPrompted marks a record as prompted. Reports ErrNotFound when the
// row no longer exists (pruned between read and write).
func (s *Store) SetPrompted(ctx context.Context, rowID int64) error {
	return s.setFlag(ctx, rowID, "prompted")
}

// SetRemoved marks a record's submission as taken down.
func (s *Store) SetRemoved(ctx context.Context, rowID int64) error {
	return s.setFlag(ctx, rowID, "removed")
}

// SetReplied marks a record's answer as published.
func (s *Store) SetReplied(ctx context.Context, rowID int64) error {
	return s.setFlag(ctx, rowID, "replied")
}

func (s *Store) setFlag(ctx context.Context, rowID int64, column string) error {
	// column is always one of the three fixed names above, never input.
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE posts SET %s = 1 WHERE id = ?", column), rowID)
	if err != nil {
		return fmt.Errorf("set %s on row %d: %w", column, rowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s on row %d: rows affected: %w", column, rowID, err)
	}
	if n == 0 {
		return fmt.Errorf("set %s on row %d: %w", column, rowID, ErrNotFound)
	}
	return nil
}

// Delete removes a record by row id. Reports ErrNotFound when zero rows
// were deleted, which callers log as a warning and otherwise ignore.
func (s *Store) Delete(ctx context.Context, rowID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", rowID)
	if err != nil {
		return fmt.Errorf("delete row %d: %w", rowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete row %d: rows affected: %w", rowID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete row %d: %w", rowID, ErrNotFound)
	}
	return nil
}

// DeleteByUser removes all records belonging to an author and returns
// how many rows went away. Zero is not an error: most authors have no
// stale record at admission time.
func (s *Store) DeleteByUser(ctx context.Context, user string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE user = ?", user)
	if err != nil {
		return 0, fmt.Errorf("delete records for %s: %w", user, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete records for %s: rows affected: %w", user, err)
	}
	return n, nil
}

// scanRecord scans a single-row query result.
func scanRecord(row *sql.Row) (PostRecord, error) {
	var rec PostRecord
	var created int64
	err := row.Scan(&rec.RowID, &rec.PostID, &rec.User, &created,
		&rec.Prompted, &rec.Removed, &rec.Replied)
	if errors.Is(err, sql.ErrNoRows) {
		return PostRecord{}, ErrNotFound
	}
	if err != nil {
		return PostRecord{}, fmt.Errorf("scan record: %w", err)
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return rec, nil
}

// scanRecordRows scans the current row of a multi-row result.
func scanRecordRows(rows *sql.Rows) (PostRecord, error) {
	var rec PostRecord
	var created int64
	if err := rows.Scan(&rec.RowID, &rec.PostID, &rec.User, &created,
		&rec.Prompted, &rec.Removed, &rec.Replied); err != nil {
		return PostRecord{}, fmt.Errorf("scan record: %w", err)
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	return rec, nil
}
