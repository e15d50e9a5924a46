// Package recency provides a bounded FIFO memory of recently handled
// submissions.
//
// The cache lets a polling cycle skip submissions it already admitted
// without a store round-trip. It is purely an optimization and never a
// source of truth: the lifecycle engine behaves correctly when the cache
// is empty, e.g. after a restart.
package recency

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 1000

// entry pairs a submission with its author so approved-post checks can
// walk the same window the dedup check uses.
type entry struct {
	postID string
	author string
}

// Cache is a fixed-capacity FIFO of (submission id, author) pairs.
// Eviction happens on insert: adding to a full cache drops the oldest
// entry.
//
// Not safe for concurrent use. The sweep scheduler owns the cache and is
// single-threaded, so no locking is provided.
type Cache struct {
	entries  []entry
	capacity int
}

// New creates a cache with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make([]entry, 0, capacity),
		capacity: capacity,
	}
}

// Add records a (submission id, author) pair, evicting the oldest entry
// if the cache is full. Duplicate ids are stored again rather than
// deduplicated - re-adding is harmless and keeps Add O(1).
func (c *Cache) Add(postID, author string) {
	if len(c.entries) == c.capacity {
		// Shift rather than reslice so the backing array is reused and
		// evicted strings are released promptly.
		copy(c.entries, c.entries[1:])
		c.entries = c.entries[:len(c.entries)-1]
	}
	c.entries = append(c.entries, entry{postID: postID, author: author})
}

// Seen reports whether the submission id is in the cache.
func (c *Cache) Seen(postID string) bool {
	for _, e := range c.entries {
		if e.postID == postID {
			return true
		}
	}
	return false
}

// PostsByAuthor returns the cached submission ids attributed to the
// author, oldest first. Used by the inbox fallback path to re-check
// whether an author already has an approved submission.
func (c *Cache) PostsByAuthor(author string) []string {
	var ids []string
	for _, e := range c.entries {
		if e.author == author {
			ids = append(ids, e.postID)
		}
	}
	return ids
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Capacity returns the configured maximum size.
func (c *Cache) Capacity() int {
	return c.capacity
}
