package types

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeDiff(want, got Type) string {
	return cmp.Diff(want.String(), got.String())
}

func TestUnifyVariableRecordsLeft(t *testing.T) {
	f := NewFresher()
	a := f.Fresh("a")

	unified, c, err := Unify(a, Number, NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, Number, unified)
	assert.True(t, c.Has(a))
	assert.Equal(t, Number, c.Resolve(a))
}

func TestUnifyBothVariables(t *testing.T) {
	f := NewFresher()
	a, b := f.Fresh("a"), f.Fresh("b")

	unified, c, err := Unify(a, b, NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, b, unified)
	assert.Equal(t, b, c.Resolve(a))
	assert.False(t, c.Has(b))
}

func TestUnifyArityMismatchFails(t *testing.T) {
	f := NewFresher()
	elem, t1, t2 := f.Fresh("t"), f.Fresh("t"), f.Fresh("t")
	cases := map[string][2]Type{
		"list arity":   {Parametric{Name: ListName, Params: []Type{elem}}, Parametric{Name: ListName, Params: []Type{t1, t2}}},
		"name":         {NewList(elem), NewMap(t1, t2)},
		"primitive":    {Number, String},
		"curried size": {NewCurried(Number, Number), NewCurried(Number, Number, Number)},
		"shape":        {NewCurried(Number, Number), NewList(Number)},
	}
	for name, pair := range cases {
		t.Run(name, func(t *testing.T) {
			_, c, err := Unify(pair[0], pair[1], NewTypeConstraints())
			var asMismatch *TypeMismatch
			require.True(t, errors.As(err, &asMismatch), "expected a type mismatch, got %v", err)
			assert.Equal(t, 0, c.Len(), "failed unification must not record facts")
		})
	}
}

func TestUnifyMismatchTrace(t *testing.T) {
	expected := NewList(NewMap(String, Number))
	actual := NewList(NewMap(String, String))

	_, _, err := Unify(expected, actual, NewTypeConstraints())
	var asMismatch *TypeMismatch
	require.True(t, errors.As(err, &asMismatch))

	assert.Equal(t, Number, asMismatch.Expected)
	assert.Equal(t, String, asMismatch.Actual)
	require.Len(t, asMismatch.Trace, 2)
	assert.Equal(t, "", typeDiff(expected, asMismatch.Trace[0].Expected))
	assert.Equal(t, "", typeDiff(NewMap(String, String), asMismatch.Trace[1].Actual))
	assert.Contains(t, err.Error(), "while unifying 'List<Map<String, Number>>'")
}

func TestUnifySymmetricUnderRenaming(t *testing.T) {
	f := NewFresher()
	a, b := f.Fresh("a"), f.Fresh("b")
	x, y := f.Fresh("x"), f.Fresh("y")

	left := NewCurried(a, NewList(b), b)
	right := NewCurried(x, NewList(y), y)

	_, c, err := Unify(left, right, NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, "", typeDiff(Reduce(left, c), Reduce(right, c)))

	_, c, err = Unify(left, NewCurried(String, NewList(Number), Number), c)
	require.NoError(t, err)
	assert.Equal(t, "", typeDiff(Reduce(left, c), Reduce(right, c)))
	assert.Equal(t, "(String -> List<Number> -> Number)", Reduce(right, c).String())
}

func TestUnifySharedVariablesAcrossParameters(t *testing.T) {
	f := NewFresher()
	a := f.Fresh("a")

	_, _, err := Unify(NewTuple(a, a), NewTuple(Number, String), NewTypeConstraints())
	assert.Error(t, err)

	unified, c, err := Unify(NewTuple(a, a), NewTuple(Number, Number), NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, "Tuple<Number, Number>", Reduce(unified, c).String())
}

func TestUnifyVoidParameter(t *testing.T) {
	_, _, err := Unify(NewCurried(Void, Number), NewCurried(Number), NewTypeConstraints())
	assert.NoError(t, err)

	_, _, err = Unify(NewCurried(Void, Number), NewCurried(String), NewTypeConstraints())
	assert.Error(t, err)
}

func TestUnifyUnionWithMember(t *testing.T) {
	union := NewUnion(Number, String)

	unified, _, err := Unify(union, String, NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, String, unified)

	unified, _, err = Unify(Number, union, NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, Number, unified)

	_, _, err = Unify(union, Boolean, NewTypeConstraints())
	assert.Error(t, err)
}

func TestUnifyUnionFirstMemberWins(t *testing.T) {
	f := NewFresher()
	a := f.Fresh("a")
	union := NewUnion(NewCurried(Number, Number), NewCurried(String, String))

	_, c, err := Unify(union, NewCurried(a, a), NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, Number, Reduce(a, c))
}

func TestUnifyUnions(t *testing.T) {
	unified, _, err := Unify(NewUnion(Number, String), NewUnion(String, Boolean), NewTypeConstraints())
	require.NoError(t, err)
	assert.Equal(t, "Number | String | Boolean", unified.String())
}

func TestUnifyOccursCheck(t *testing.T) {
	f := NewFresher()
	a := f.Fresh("a")

	_, _, err := Unify(a, NewList(a), NewTypeConstraints())
	var asMismatch *TypeMismatch
	require.True(t, errors.As(err, &asMismatch))
	assert.Equal(t, "infinite type", asMismatch.Reason)
}

func TestConstraintsAddReunifies(t *testing.T) {
	f := NewFresher()
	a, b := f.Fresh("a"), f.Fresh("b")

	c, err := NewTypeConstraints().Add(a, NewList(b))
	require.NoError(t, err)
	c, err = c.Add(a, NewList(Number))
	require.NoError(t, err)
	assert.Equal(t, Number, c.Resolve(b))

	_, err = c.Add(a, NewList(String))
	assert.Error(t, err)
}

func TestConstraintsResolveChains(t *testing.T) {
	f := NewFresher()
	a, b, d := f.Fresh("a"), f.Fresh("b"), f.Fresh("d")

	c, err := NewTypeConstraints().Add(a, b)
	require.NoError(t, err)
	c, err = c.Add(b, d)
	require.NoError(t, err)
	assert.Equal(t, d, c.Resolve(a))

	c, err = c.Add(a, Boolean)
	require.NoError(t, err)
	assert.Equal(t, Boolean, c.Resolve(b))
	assert.Equal(t, Boolean, c.Resolve(d))
	assert.False(t, c.Has(Variable{ID: 1000}))
}

func TestConstraintsArePersistent(t *testing.T) {
	f := NewFresher()
	a := f.Fresh("a")

	base := NewTypeConstraints()
	withNumber, err := base.Add(a, Number)
	require.NoError(t, err)
	withString, err := base.Add(a, String)
	require.NoError(t, err)

	assert.Equal(t, a, base.Resolve(a))
	assert.Equal(t, Number, withNumber.Resolve(a))
	assert.Equal(t, String, withString.Resolve(a))
}

func TestNewUnionFlattens(t *testing.T) {
	inner := NewUnion(Number, String)
	assert.Equal(t, "Number | String | Boolean", NewUnion(inner, Boolean, Number).String())
	assert.Equal(t, Number, NewUnion(Number, Number))
	assert.Panics(t, func() { NewUnion() })
	assert.Panics(t, func() { NewCurried() })
}

func TestGeneralizeAndInstantiate(t *testing.T) {
	f := NewFresher()
	a, b := f.Fresh("a"), f.Fresh("b")
	identity := NewCurried(a, a)

	quantified := Generalize(identity, nil)
	assert.Equal(t, []VarID{a.ID}, quantified)

	first := Instantiate(identity, quantified, f)
	second := Instantiate(identity, quantified, f)
	assert.NotEqual(t, first.String(), second.String())
	assert.False(t, Occurs(a.ID, first))

	pair := NewCurried(a, b)
	assert.Equal(t, []Variable{a, b}, FreeVariables(pair))
}
