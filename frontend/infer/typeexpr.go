package infer

import (
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

func isTypeVariable(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLower(r)
}

// typeVariables lists the type variables named in exprs, in the order they first appear
func typeVariables(exprs ...*syntax.TypeExpr) []string {
	var names []string
	var walk func(*syntax.TypeExpr)
	walk = func(t *syntax.TypeExpr) {
		if t == nil {
			return
		}
		if isTypeVariable(t.Name) && !slices.Contains(names, t.Name) {
			names = append(names, t.Name)
		}
		for _, arg := range t.Args {
			walk(arg)
		}
	}
	for _, expr := range exprs {
		walk(expr)
	}
	return names
}

func (in *inferrer) arityMismatch(t *syntax.TypeExpr, expected types.Type, args int) ilerr.IleError {
	actual := make([]types.Type, args)
	for i := range actual {
		actual[i] = in.fresher.Fresh("_")
	}
	return ilerr.New(ilerr.NewTypeMismatch{
		Loc: in.at(t),
		Mismatch: &types.TypeMismatch{
			Mismatch: types.Mismatch{Expected: expected, Actual: types.Parametric{Name: t.Name, Params: actual}},
			Reason:   "wrong number of type arguments",
		},
	})
}

// typeExpr converts a type as written into a Type. Type variables with the same name
// share the variable in vars, which is added to as new names are found.
func (in *inferrer) typeExpr(t *syntax.TypeExpr, vars map[string]types.Variable) (types.Type, error) {
	if isTypeVariable(t.Name) {
		if len(t.Args) != 0 {
			return nil, in.arityMismatch(t, types.Parametric{Name: t.Name}, len(t.Args))
		}
		v, ok := vars[t.Name]
		if !ok {
			v = in.fresher.Fresh(t.Name)
			vars[t.Name] = v
		}
		return v, nil
	}

	args := make([]types.Type, len(t.Args))
	for i, arg := range t.Args {
		var err error
		if args[i], err = in.typeExpr(arg, vars); err != nil {
			return nil, err
		}
	}

	switch {
	case slices.Contains(types.PrimitiveNames, t.Name):
		if len(args) != 0 {
			return nil, in.arityMismatch(t, types.Parametric{Name: t.Name}, len(args))
		}
		return types.Parametric{Name: t.Name}, nil
	case t.Name == types.ListName:
		if len(args) != 1 {
			return nil, in.arityMismatch(t, types.NewList(in.fresher.Fresh("e")), len(args))
		}
		return types.NewList(args[0]), nil
	case t.Name == types.MapName:
		if len(args) != 2 {
			return nil, in.arityMismatch(t, types.NewMap(in.fresher.Fresh("k"), in.fresher.Fresh("v")), len(args))
		}
		return types.NewMap(args[0], args[1]), nil
	case t.Name == types.TupleName:
		return types.NewTuple(args...), nil
	case t.Name == "Function":
		if len(args) == 0 {
			return nil, in.arityMismatch(t, types.NewCurried(in.fresher.Fresh("r")), 0)
		}
		return types.NewCurried(args...), nil
	}

	decl, ok := in.table.ResolveType(t.Name)
	if !ok {
		return nil, ilerr.New(ilerr.NewMissingBinding{Loc: in.at(t), Name: t.Name})
	}
	if len(decl.Params) != len(args) {
		return nil, in.arityMismatch(t, decl.Type, len(args))
	}
	if len(args) == 0 {
		return decl.Type, nil
	}
	return types.Parametric{Name: decl.Type.Name, Params: args}, nil
}
