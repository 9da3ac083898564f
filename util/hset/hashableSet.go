// Package hset implements a set of hashable elements, JVM style
package hset

import (
	"iter"

	"github.com/benbjohnson/immutable"
)

// HSet is a shallow wrapper around a map which remembers insertion order.
// Elements with colliding hashes are told apart with the hasher's Equal.
//
// use immutable.Set if you are not going to be modifying this
// as it is more copy efficient
type HSet[A any] struct {
	hasher     immutable.Hasher[A]
	underlying map[uint32][]int
	elems      *[]A
}

func Empty[A any](hasher immutable.Hasher[A]) HSet[A] {
	return HSet[A]{
		hasher:     hasher,
		underlying: make(map[uint32][]int),
		elems:      new([]A),
	}
}

func New[A any](hasher immutable.Hasher[A], elems ...A) HSet[A] {
	n := Empty(hasher)
	n.Add(elems...)
	return n
}

// Add inserts elems which are not present yet, in order
func (s HSet[A]) Add(elems ...A) {
	for _, elem := range elems {
		if s.Contains(elem) {
			continue
		}
		h := s.hasher.Hash(elem)
		s.underlying[h] = append(s.underlying[h], len(*s.elems))
		*s.elems = append(*s.elems, elem)
	}
}

func (s HSet[A]) Contains(elem A) bool {
	for _, i := range s.underlying[s.hasher.Hash(elem)] {
		if s.hasher.Equal((*s.elems)[i], elem) {
			return true
		}
	}
	return false
}

func (s HSet[A]) Len() int {
	return len(*s.elems)
}

func (s HSet[A]) All() iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, elem := range *s.elems {
			if !yield(elem) {
				return
			}
		}
	}
}

func (s HSet[A]) AsSlice() []A {
	slice := make([]A, len(*s.elems))
	copy(slice, *s.elems)
	return slice
}
