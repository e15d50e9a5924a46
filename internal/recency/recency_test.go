package recency

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_CapacityFallback(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Capacity())
	assert.Equal(t, DefaultCapacity, New(-5).Capacity())
	assert.Equal(t, 3, New(3).Capacity())
}

func TestCache_AddAndSeen(t *testing.T) {
	c := New(10)

	assert.False(t, c.Seen("p1"))

	c.Add("p1", "alice")
	assert.True(t, c.Seen("p1"))
	assert.False(t, c.Seen("p2"))
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := New(3)
	c.Add("p1", "alice")
	c.Add("p2", "bob")
	c.Add("p3", "carol")

	c.Add("p4", "dave")

	assert.False(t, c.Seen("p1"), "oldest entry evicted")
	assert.True(t, c.Seen("p2"))
	assert.True(t, c.Seen("p3"))
	assert.True(t, c.Seen("p4"))
	assert.Equal(t, 3, c.Len())
}

func TestCache_LenNeverExceedsCapacity(t *testing.T) {
	c := New(5)
	for i := 0; i < 100; i++ {
		c.Add(fmt.Sprintf("p%d", i), "alice")
	}

	assert.Equal(t, 5, c.Len())
	assert.True(t, c.Seen("p99"))
	assert.False(t, c.Seen("p94"))
}

func TestCache_PostsByAuthor(t *testing.T) {
	c := New(10)
	c.Add("p1", "alice")
	c.Add("p2", "bob")
	c.Add("p3", "alice")

	assert.Equal(t, []string{"p1", "p3"}, c.PostsByAuthor("alice"))
	assert.Equal(t, []string{"p2"}, c.PostsByAuthor("bob"))
	assert.Nil(t, c.PostsByAuthor("nobody"))
}

func TestCache_DuplicateAddsKept(t *testing.T) {
	c := New(10)
	c.Add("p1", "alice")
	c.Add("p1", "alice")

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Seen("p1"))
}
