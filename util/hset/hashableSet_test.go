package hset

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

// collidingHasher puts every string in the same bucket
type collidingHasher struct{}

func (collidingHasher) Hash(string) uint32     { return 7 }
func (collidingHasher) Equal(a, b string) bool { return a == b }

func TestHSetKeepsInsertionOrder(t *testing.T) {
	s := New[string](collidingHasher{}, "b", "a", "b", "c", "a")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"b", "a", "c"}, s.AsSlice())
	assert.Equal(t, []string{"b", "a", "c"}, slices.Collect(s.All()))
	assert.True(t, s.Contains("c"))
	assert.False(t, s.Contains("d"))
}
