package types

import (
	"iter"

	"github.com/benbjohnson/immutable"
)

// TypeConstraints maps type variables to the types assigned to them.
//
// It is a persistent value: Add returns new TypeConstraints and leaves the receiver
// untouched, so that candidate typings explored by a disjunction can share
// the facts they have in common without copying them.
//
// The zero value holds no facts.
type TypeConstraints struct {
	facts *immutable.Map[VarID, Type]
}

type varIDHasher struct{}

func (varIDHasher) Hash(id VarID) uint32 { return uint32(id ^ (id >> 32)) }

func (varIDHasher) Equal(a, b VarID) bool { return a == b }

func NewTypeConstraints() TypeConstraints {
	return TypeConstraints{facts: immutable.NewMap[VarID, Type](varIDHasher{})}
}

func (c TypeConstraints) m() *immutable.Map[VarID, Type] {
	if c.facts == nil {
		return immutable.NewMap[VarID, Type](varIDHasher{})
	}
	return c.facts
}

func (c TypeConstraints) lookup(id VarID) (Type, bool) {
	if c.facts == nil {
		return nil, false
	}
	return c.facts.Get(id)
}

// Has returns whether a fact was recorded for v itself
func (c TypeConstraints) Has(v Variable) bool {
	_, ok := c.lookup(v.ID)
	return ok
}

func (c TypeConstraints) Len() int {
	if c.facts == nil {
		return 0
	}
	return c.facts.Len()
}

// Resolve follows chains of variable-to-variable facts until reaching
// a non-variable type or a variable with no fact recorded
func (c TypeConstraints) Resolve(v Variable) Type {
	current := v
	for range c.Len() + 1 {
		assigned, ok := c.lookup(current.ID)
		if !ok {
			return current
		}
		next, isVar := assigned.(Variable)
		if !isVar {
			return assigned
		}
		current = next
	}
	panic("cycle in type constraints while resolving " + v.String())
}

func (c TypeConstraints) resolveShallow(t Type) Type {
	if v, ok := t.(Variable); ok {
		return c.Resolve(v)
	}
	return t
}

// Add records that v denotes t.
//
// When v is already resolved, the existing resolution is unified against t
// instead of being overwritten, so repeated facts about a variable are checked
// for consistency.
func (c TypeConstraints) Add(v Variable, t Type) (TypeConstraints, error) {
	resolved := c.Resolve(v)
	if free, ok := resolved.(Variable); ok {
		return c.bind(free, t)
	}
	_, next, err := Unify(resolved, t, c)
	if err != nil {
		return c, err
	}
	return next, nil
}

// bind records v ↦ t where v has no fact recorded yet
func (c TypeConstraints) bind(v Variable, t Type) (TypeConstraints, error) {
	if c.Has(v) {
		panic("rebinding already resolved variable " + v.String())
	}
	t = c.resolveShallow(t)
	if tv, ok := t.(Variable); ok && tv.ID == v.ID {
		return c, nil
	}
	if Occurs(v.ID, Reduce(t, c)) {
		err := mismatch(v, t)
		err.Reason = "infinite type"
		return c, err
	}
	return TypeConstraints{facts: c.m().Set(v.ID, t)}, nil
}

// All iterates over the recorded facts
func (c TypeConstraints) All() iter.Seq2[VarID, Type] {
	return func(yield func(VarID, Type) bool) {
		if c.facts == nil {
			return
		}
		itr := c.facts.Iterator()
		for !itr.Done() {
			id, t, _ := itr.Next()
			if !yield(id, t) {
				return
			}
		}
	}
}
