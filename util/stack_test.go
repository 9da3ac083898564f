package util

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := Stack[int]{}
	_, ok := s.Peek()
	assert.False(t, ok)

	s.Push(1)
	s.Push(2)
	s.Push(3)
	top, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, 3, top)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(s.All()))
	assert.True(t, s.Contains(func(i int) bool { return i == 2 }))

	popped, ok := s.Pop()
	assert.True(t, ok)
	assert.Equal(t, 3, popped)
	assert.Equal(t, []int{2, 1}, slices.Collect(Reverse(s.PopAll())))
	assert.Equal(t, 0, s.Len())
}
