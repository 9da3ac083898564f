package types

import (
	"slices"

	"github.com/hashicorp/go-set/v3"
)

// Reduce replaces every variable occurring in t with its current resolution in c,
// so callers never see a variable whose value has since been pinned
func Reduce(t Type, c TypeConstraints) Type {
	switch t := t.(type) {
	case Variable:
		resolved := c.Resolve(t)
		if asVar, ok := resolved.(Variable); ok {
			return asVar
		}
		return Reduce(resolved, c)
	case Parametric:
		if len(t.Params) == 0 {
			return t
		}
		return Parametric{Name: t.Name, Params: reduceAll(t.Params, c)}
	case Curried:
		return Curried{Params: reduceAll(t.Params, c)}
	case Union:
		return NewUnion(reduceAll(t.Params, c)...)
	default:
		panic("reduce: unexpected type")
	}
}

func reduceAll(ts []Type, c TypeConstraints) []Type {
	reduced := make([]Type, len(ts))
	for i, t := range ts {
		reduced[i] = Reduce(t, c)
	}
	return reduced
}

// Occurs returns whether the variable id appears anywhere inside t
func Occurs(id VarID, t Type) bool {
	switch t := t.(type) {
	case Variable:
		return t.ID == id
	case Parametric:
		return slices.ContainsFunc(t.Params, func(p Type) bool { return Occurs(id, p) })
	case Curried:
		return slices.ContainsFunc(t.Params, func(p Type) bool { return Occurs(id, p) })
	case Union:
		return slices.ContainsFunc(t.Params, func(p Type) bool { return Occurs(id, p) })
	default:
		return false
	}
}

// Substitute replaces the variables in t which are keys of subs
func Substitute(t Type, subs map[VarID]Type) Type {
	if len(subs) == 0 {
		return t
	}
	switch t := t.(type) {
	case Variable:
		if replacement, ok := subs[t.ID]; ok {
			return replacement
		}
		return t
	case Parametric:
		if len(t.Params) == 0 {
			return t
		}
		return Parametric{Name: t.Name, Params: substituteAll(t.Params, subs)}
	case Curried:
		return Curried{Params: substituteAll(t.Params, subs)}
	case Union:
		return NewUnion(substituteAll(t.Params, subs)...)
	default:
		panic("substitute: unexpected type")
	}
}

func substituteAll(ts []Type, subs map[VarID]Type) []Type {
	substituted := make([]Type, len(ts))
	for i, t := range ts {
		substituted[i] = Substitute(t, subs)
	}
	return substituted
}

// FreeVariables lists the variables of t in order of first occurrence
func FreeVariables(t Type) []Variable {
	seen := set.New[VarID](0)
	var vars []Variable
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case Variable:
			if seen.Insert(t.ID) {
				vars = append(vars, t)
			}
		case Parametric:
			for _, p := range t.Params {
				walk(p)
			}
		case Curried:
			for _, p := range t.Params {
				walk(p)
			}
		case Union:
			for _, p := range t.Params {
				walk(p)
			}
		}
	}
	walk(t)
	return vars
}
