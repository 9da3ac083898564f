package infer

import (
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/types"
)

// Prelude returns the bindings every file starts with. Every call returns new
// bindings, with variables from fresher.
func Prelude(fresher *types.Fresher) []*scope.Binding {
	number, str, boolean := types.Number, types.String, types.Boolean
	binary := func(operand, result types.Type) types.Type {
		return types.NewCurried(operand, operand, result)
	}
	poly := func(name string, build func(a types.Variable) types.Type) *scope.Binding {
		a := fresher.Fresh("a")
		return &scope.Binding{Name: name, Type: build(a), Quantified: []types.VarID{a.ID}}
	}
	equality := func(a types.Variable) types.Type { return types.NewCurried(a, a, boolean) }

	return []*scope.Binding{
		{Name: "+", Type: types.NewUnion(binary(number, number), binary(str, str))},
		{Name: "-", Type: binary(number, number)},
		{Name: "*", Type: binary(number, number)},
		{Name: "/", Type: binary(number, number)},
		{Name: "%", Type: binary(number, number)},
		{Name: "<", Type: binary(number, boolean)},
		{Name: ">", Type: binary(number, boolean)},
		{Name: "<=", Type: binary(number, boolean)},
		{Name: ">=", Type: binary(number, boolean)},
		{Name: "&&", Type: binary(boolean, boolean)},
		{Name: "||", Type: binary(boolean, boolean)},
		{Name: "!", Type: types.NewCurried(boolean, boolean)},
		poly("==", equality),
		poly("!=", equality),
		poly("length", func(a types.Variable) types.Type {
			return types.NewCurried(types.NewList(a), number)
		}),
		poly("print", func(a types.Variable) types.Type {
			return types.NewCurried(a, types.Void)
		}),
		poly("++", func(a types.Variable) types.Type {
			return binary(types.NewList(a), types.NewList(a))
		}),
	}
}
