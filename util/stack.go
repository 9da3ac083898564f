package util

import "iter"

type Stack[A any] struct {
	items []A
}

func (s *Stack[A]) Push(v A) {
	s.items = append(s.items, v)
}

func (s *Stack[A]) Pop() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	lastIndex := len(s.items) - 1
	defer func() {
		s.items = s.items[:lastIndex]
	}()
	return s.items[len(s.items)-1], true
}

// Peek returns the top of the stack without removing it
func (s *Stack[A]) Peek() (ret A, ok bool) {
	if len(s.items) <= 0 {
		return ret, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack[A]) Len() int {
	return len(s.items)
}

// Contains returns whether any element of the stack satisfies match
func (s *Stack[A]) Contains(match func(A) bool) bool {
	for _, item := range s.items {
		if match(item) {
			return true
		}
	}
	return false
}

// All iterates from the bottom of the stack to the top
func (s *Stack[A]) All() iter.Seq[A] {
	return func(yield func(A) bool) {
		for _, item := range s.items {
			if !yield(item) {
				return
			}
		}
	}
}

func (s *Stack[A]) PopAll() []A {
	defer func() {
		s.items = make([]A, 0)
	}()
	return s.items
}
