package types

import "slices"

// Unify computes the most general type consistent with both left and right,
// threading c through every nested unification so that variables shared across
// parameters are resolved consistently.
//
// When left is a variable, it is recorded as left ↦ right and right is returned.
// When only right is a variable, it is recorded as right ↦ left and left is returned.
//
// On failure, the returned error is a *TypeMismatch and the returned constraints are c unchanged.
func Unify(left, right Type, c TypeConstraints) (Type, TypeConstraints, error) {
	left, right = c.resolveShallow(left), c.resolveShallow(right)

	if lv, ok := left.(Variable); ok {
		if rv, ok := right.(Variable); ok && rv.ID == lv.ID {
			return left, c, nil
		}
		next, err := c.bind(lv, right)
		if err != nil {
			return nil, c, err
		}
		return right, next, nil
	}
	if rv, ok := right.(Variable); ok {
		next, err := c.bind(rv, left)
		if err != nil {
			return nil, c, err
		}
		return left, next, nil
	}

	if lu, ok := left.(Union); ok {
		if ru, ok := right.(Union); ok {
			return unifyUnions(lu, ru, c)
		}
		return unifyWithMember(lu, right, c, false)
	}
	if ru, ok := right.(Union); ok {
		return unifyWithMember(ru, left, c, true)
	}

	switch l := left.(type) {
	case Parametric:
		r, ok := right.(Parametric)
		if !ok || l.Name != r.Name || len(l.Params) != len(r.Params) {
			return nil, c, mismatch(left, right)
		}
		if len(l.Params) == 0 {
			return l, c, nil
		}
		params, next, err := unifyPairwise(l.Params, r.Params, c)
		if err != nil {
			return nil, c, within(err, left, right)
		}
		return Parametric{Name: l.Name, Params: params}, next, nil

	case Curried:
		r, ok := right.(Curried)
		if !ok {
			return nil, c, mismatch(left, right)
		}
		lParams, rParams := dropVoid(l.Params), dropVoid(r.Params)
		if len(lParams) != len(rParams) {
			return nil, c, mismatch(left, right)
		}
		params, next, err := unifyPairwise(lParams, rParams, c)
		if err != nil {
			return nil, c, within(err, left, right)
		}
		return Curried{Params: params}, next, nil

	default:
		panic("unify: unexpected type " + left.String())
	}
}

func unifyPairwise(ls, rs []Type, c TypeConstraints) ([]Type, TypeConstraints, error) {
	unified := make([]Type, len(ls))
	next := c
	for i := range ls {
		t, nc, err := Unify(ls[i], rs[i], next)
		if err != nil {
			return nil, c, err
		}
		unified[i], next = t, nc
	}
	return unified, next, nil
}

// unifyWithMember succeeds on the first member of union which unifies with other,
// trying members in declaration order
func unifyWithMember(union Union, other Type, c TypeConstraints, unionOnRight bool) (Type, TypeConstraints, error) {
	for _, member := range union.Params {
		var t Type
		var next TypeConstraints
		var err error
		if unionOnRight {
			t, next, err = Unify(other, member, c)
		} else {
			t, next, err = Unify(member, other, c)
		}
		if err == nil {
			return t, next, nil
		}
	}
	if unionOnRight {
		return nil, c, mismatch(other, union)
	}
	return nil, c, mismatch(union, other)
}

// unifyUnions unifies every member of right with the first member of left it
// unifies with, and adds it as a new alternative when there is none
func unifyUnions(left, right Union, c TypeConstraints) (Type, TypeConstraints, error) {
	members := slices.Clone(left.Params)
	next := c
	for _, rm := range right.Params {
		matched := false
		for i, lm := range members {
			t, nc, err := Unify(lm, rm, next)
			if err == nil {
				members[i], next, matched = t, nc, true
				break
			}
		}
		if !matched {
			members = append(members, rm)
		}
	}
	return NewUnion(members...), next, nil
}
