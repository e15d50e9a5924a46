package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreated = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(postID, user string) PostRecord {
	return PostRecord{PostID: postID, User: user, CreatedAt: testCreated}
}

func TestInsertAndFind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	assert.True(t, inserted)

	rec, err := s.FindByPostID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.PostID)
	assert.Equal(t, "alice", rec.User)
	assert.Equal(t, testCreated, rec.CreatedAt)
	assert.False(t, rec.Prompted)
	assert.False(t, rec.Removed)
	assert.False(t, rec.Replied)
	assert.NotZero(t, rec.RowID)
}

// Re-inserting the same submission is a no-op, not an error: a crash
// between insert and cache update makes the next cycle retry.
func TestInsert_DuplicateIgnored(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	inserted, err := s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFind_NotFound(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.FindByPostID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.FindByUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByUser_OldestRowWins(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, record("s2", "alice"))
	require.NoError(t, err)

	rec, err := s.FindByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.PostID)
}

func TestAll_RowOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := s.Insert(ctx, record(id, "u-"+id))
		require.NoError(t, err)
	}

	records, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "s1", records[0].PostID)
	assert.Equal(t, "s2", records[1].PostID)
	assert.Equal(t, "s3", records[2].PostID)
}

func TestSetFlags(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	rec, err := s.FindByPostID(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, s.SetPrompted(ctx, rec.RowID))
	require.NoError(t, s.SetRemoved(ctx, rec.RowID))
	require.NoError(t, s.SetReplied(ctx, rec.RowID))

	rec, err = s.FindByPostID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, rec.Prompted)
	assert.True(t, rec.Removed)
	assert.True(t, rec.Replied)
}

func TestSetFlag_MissingRow(t *testing.T) {
	s := newStore(t)

	err := s.SetPrompted(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	rec, err := s.FindByPostID(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.RowID))

	_, err = s.FindByPostID(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, rec.RowID), ErrNotFound)
}

func TestDeleteByUser(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, record("s1", "alice"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, record("s2", "alice"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, record("s3", "bob"))
	require.NoError(t, err)

	n, err := s.DeleteByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.DeleteByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n, "no stale records is not an error")

	rec, err := s.FindByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "s3", rec.PostID)
}

func TestPostRecord_Age(t *testing.T) {
	rec := PostRecord{CreatedAt: testCreated}

	assert.Equal(t, 10*time.Minute, rec.Age(testCreated.Add(10*time.Minute)))
	assert.Equal(t, time.Duration(0), rec.Age(testCreated))
}

// Creation times round-trip through the store at second precision.
func TestCreatedAtRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	rec := record("s1", "alice")
	rec.CreatedAt = time.Date(2024, 6, 1, 12, 30, 45, 999, time.UTC)
	_, err := s.Insert(ctx, rec)
	require.NoError(t, err)

	got, err := s.FindByPostID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec.CreatedAt.Truncate(time.Second), got.CreatedAt)
}
