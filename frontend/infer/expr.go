package infer

import (
	"github.com/cottand/sema/frontend/disjunction"
	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

// identifier gives one answer per member when the binding has a union type,
// so that each can be checked against its use independently
func (in *inferrer) identifier(node *syntax.Identifier, g *types.TypeEqualityGraph) (Answers, error) {
	b, ok := in.table.Resolve(node.Name)
	if !ok {
		return Answers{}, in.fail(node, ilerr.New(ilerr.NewMissingBinding{Loc: in.at(node), Name: node.Name}))
	}
	t := types.Instantiate(b.Type, b.Quantified, in.fresher)
	union, isUnion := t.(types.Union)
	if !isUnion || b.Pending {
		return disjunction.Single(typed(node, t), t, g), nil
	}
	answers := make([]Answer, len(union.Params))
	for i, member := range union.Params {
		answers[i] = disjunction.NewAnswer(typed(node, member), member, g)
	}
	return disjunction.New(answers...)
}

// inferAll infers every node under g, left to right
func (in *inferrer) inferAll(nodes []syntax.Node, g *types.TypeEqualityGraph) ([]Answers, error) {
	all := make([]Answers, 0, len(nodes))
	var failed error
	for _, node := range nodes {
		d, err := in.infer(node, g)
		if err != nil {
			// keep going, so that errors in later siblings are reported too
			failed = err
			continue
		}
		all = append(all, d)
	}
	return all, failed
}

// equateAll equates every type of ts with t
func equateAll(g *types.TypeEqualityGraph, t types.Type, ts []types.Type) (*types.TypeEqualityGraph, error) {
	for _, other := range ts {
		var err error
		if g, err = g.Equate(t, other); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (in *inferrer) list(node *syntax.List, g *types.TypeEqualityGraph) (Answers, error) {
	elems, err := in.inferAll(node.Elements, g)
	if err != nil {
		return Answers{}, err
	}
	acc, err := disjunction.Distribute(elems, g)
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	elem := in.fresher.Fresh("e")
	d, err := disjunction.Collect(acc, func(a disjunction.AccumulatedAnswer[*Typed]) (Answer, error) {
		next, err := equateAll(a.Graph, elem, a.Types())
		if err != nil {
			return Answer{}, err
		}
		t := types.NewList(elem)
		return disjunction.NewAnswer(typed(node, t, a.Nodes()...), types.Type(t), next), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

func (in *inferrer) tuple(node *syntax.Tuple, g *types.TypeEqualityGraph) (Answers, error) {
	elems, err := in.inferAll(node.Elements, g)
	if err != nil {
		return Answers{}, err
	}
	acc, err := disjunction.Distribute(elems, g)
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	d, err := disjunction.Collect(acc, func(a disjunction.AccumulatedAnswer[*Typed]) (Answer, error) {
		t := types.NewTuple(a.Types()...)
		return disjunction.NewAnswer(typed(node, t, a.Nodes()...), types.Type(t), a.Graph), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

func (in *inferrer) mapLiteral(node *syntax.Map, g *types.TypeEqualityGraph) (Answers, error) {
	// keys and values alternate
	children := make([]syntax.Node, 0, 2*len(node.Entries))
	for _, entry := range node.Entries {
		children = append(children, entry.Key, entry.Value)
	}
	entries, err := in.inferAll(children, g)
	if err != nil {
		return Answers{}, err
	}
	acc, err := disjunction.Distribute(entries, g)
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	key, value := in.fresher.Fresh("k"), in.fresher.Fresh("v")
	d, err := disjunction.Collect(acc, func(a disjunction.AccumulatedAnswer[*Typed]) (Answer, error) {
		next := a.Graph
		for i, t := range a.Types() {
			target := types.Type(key)
			if i%2 == 1 {
				target = value
			}
			var err error
			if next, err = next.Equate(target, t); err != nil {
				return Answer{}, err
			}
		}
		t := types.NewMap(key, value)
		return disjunction.NewAnswer(typed(node, t, a.Nodes()...), types.Type(t), next), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

// apply computes the result of applying a function of type fn to an argument of type
// arg. A nil arg is a call with no arguments.
func (in *inferrer) apply(fn, arg types.Type, g *types.TypeEqualityGraph) (types.Type, *types.TypeEqualityGraph, error) {
	fn = g.Resolve(fn)
	if curried, ok := fn.(types.Curried); ok {
		switch {
		case arg == nil && len(curried.Params) == 1:
			return curried.Params[0], g, nil
		case arg == nil && len(curried.Params) == 2 && types.Equal(curried.Params[0], types.Void):
			return curried.Params[1], g, nil
		case arg != nil && len(curried.Params) >= 2:
			next, err := g.Equate(curried.Params[0], arg)
			if err != nil {
				return nil, g, err
			}
			rest := curried.Params[1:]
			if len(rest) == 1 {
				return rest[0], next, nil
			}
			return types.NewCurried(rest...), next, nil
		}
	}
	// not a function we can see through: require it to be one
	result := in.fresher.Fresh("r")
	expected := types.NewCurried(types.Void, result)
	if arg != nil {
		expected = types.NewCurried(arg, result)
	}
	next, err := g.Equate(expected, fn)
	if err != nil {
		return nil, g, err
	}
	return result, next, nil
}

func (in *inferrer) application(node *syntax.Application, g *types.TypeEqualityGraph) (Answers, error) {
	fn, fnErr := in.infer(node.Function, g)
	if node.Argument == nil {
		if fnErr != nil {
			return Answers{}, fnErr
		}
		d, err := disjunction.Map(fn, func(f Answer) (Answer, error) {
			result, next, err := in.apply(f.Type(), nil, f.Graph())
			if err != nil {
				return Answer{}, err
			}
			return disjunction.NewAnswer(typed(node, result, f.Node), result, next), nil
		})
		if err != nil {
			return Answers{}, in.fail(node, err)
		}
		return d, nil
	}

	arg, argErr := in.infer(node.Argument, g)
	if fnErr != nil {
		return Answers{}, fnErr
	}
	if argErr != nil {
		return Answers{}, argErr
	}
	d, err := disjunction.Merge(fn, arg, func(f, a Answer, merged *types.TypeEqualityGraph) (Answer, error) {
		result, next, err := in.apply(f.Type(), a.Type(), merged)
		if err != nil {
			return Answer{}, err
		}
		return disjunction.NewAnswer(typed(node, result, f.Node, a.Node), result, next), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

func (in *inferrer) access(node *syntax.Access, g *types.TypeEqualityGraph) (Answers, error) {
	target, err := in.infer(node.Target, g)
	if err != nil {
		return Answers{}, err
	}
	d, err := disjunction.Map(target, func(a Answer) (Answer, error) {
		targetType := a.Reduced()
		parametric, ok := targetType.(types.Parametric)
		if !ok {
			return Answer{}, ilerr.New(ilerr.NewIndeterminateType{Loc: in.at(node.Target), Candidates: []types.Type{targetType}})
		}
		decl, ok := in.table.ResolveType(parametric.Name)
		if !ok {
			return Answer{}, ilerr.New(ilerr.NewMissingBinding{Loc: in.at(node), Name: node.Member, Of: parametric.String()})
		}
		member, ok := decl.Member(node.Member, parametric.Params)
		if !ok {
			return Answer{}, ilerr.New(ilerr.NewMissingBinding{Loc: in.at(node), Name: node.Member, Of: parametric.String()})
		}
		t := types.Instantiate(member.Type, member.Quantified, in.fresher)
		return disjunction.NewAnswer(typed(node, t, a.Node), t, a.Graph()), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

func (in *inferrer) annotated(node *syntax.Annotated, g *types.TypeEqualityGraph) (Answers, error) {
	annotation, annotationErr := in.typeExpr(node.Type, make(map[string]types.Variable))
	if annotationErr != nil {
		return Answers{}, in.fail(node.Type, annotationErr)
	}
	value, err := in.infer(node.Value, g)
	if err != nil {
		return Answers{}, err
	}
	d, err := disjunction.Map(value, func(a Answer) (Answer, error) {
		unified, next, err := a.Graph().Unify(annotation, a.Type())
		if err != nil {
			return Answer{}, err
		}
		return disjunction.NewAnswer(typed(node, unified, a.Node), unified, next), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

func (in *inferrer) ifExpr(node *syntax.If, g *types.TypeEqualityGraph) (Answers, error) {
	children := []syntax.Node{node.Condition, node.Then}
	if node.Else != nil {
		children = append(children, node.Else)
	}
	branches, err := in.inferAll(children, g)
	if err != nil {
		return Answers{}, err
	}
	acc, err := disjunction.Distribute(branches, g)
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	d, err := disjunction.Collect(acc, func(a disjunction.AccumulatedAnswer[*Typed]) (Answer, error) {
		ts := a.Types()
		next, err := a.Graph.Equate(types.Boolean, ts[0])
		if err != nil {
			return Answer{}, err
		}
		if len(ts) == 2 {
			return disjunction.NewAnswer(typed(node, types.Void, a.Nodes()...), types.Type(types.Void), next), nil
		}
		unified, next, err := next.Unify(ts[1], ts[2])
		if err != nil {
			return Answer{}, err
		}
		return disjunction.NewAnswer(typed(node, unified, a.Nodes()...), unified, next), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}
