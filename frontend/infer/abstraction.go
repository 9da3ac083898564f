package infer

import (
	"github.com/cottand/sema/frontend/disjunction"
	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

// abstraction infers every branch of a function separately. Branches whose types
// unify give a single function type, the others a union of function types.
func (in *inferrer) abstraction(node *syntax.Abstraction, g *types.TypeEqualityGraph) (Answers, error) {
	var combined Answers
	for i, branch := range node.Branches {
		d, err := in.branch(node, branch, g)
		if err != nil {
			return Answers{}, err
		}
		if i == 0 {
			combined = d
			continue
		}
		combined, err = disjunction.Merge(combined, d, func(a, b Answer, merged *types.TypeEqualityGraph) (Answer, error) {
			children := append(append([]*Typed{}, a.Node.Children...), b.Node.Children...)
			if unified, next, err := merged.Unify(a.Type(), b.Type()); err == nil {
				return disjunction.NewAnswer(typed(node, unified, children...), unified, next), nil
			}
			union := types.NewUnion(a.Type(), b.Type())
			return disjunction.NewAnswer(typed(node, union, children...), union, merged), nil
		})
		if err != nil {
			return Answers{}, in.fail(node, err)
		}
	}
	return combined, nil
}

func (in *inferrer) branch(node *syntax.Abstraction, branch syntax.Branch, g *types.TypeEqualityGraph) (Answers, error) {
	in.table.EnterAbstraction(node)
	defer in.table.LeaveAbstraction()

	for _, param := range branch.Params {
		in.table.SetNextImplicit()
		_, errs := in.table.Templates(param, in.fresher)
		in.errs = in.errs.Merge(errs)
	}
	params := make([]types.Type, 0, len(branch.Params)+1)
	paramNodes := make([]*Typed, 0, len(branch.Params)+1)
	next := g
	for _, param := range branch.Params {
		paramNode, withParam, err := in.pattern(param, next)
		if err != nil {
			in.bindPending()
			in.table.EnterBlock(branch.Body)
			in.table.LeaveBlock()
			return Answers{}, in.fail(param, err)
		}
		params = append(params, paramNode.Type)
		paramNodes = append(paramNodes, paramNode)
		next = withParam
	}
	if len(params) == 0 {
		params = append(params, types.Void)
	}

	in.table.EnterBlock(branch.Body)
	var body Answers
	var err error
	if block, ok := branch.Body.(*syntax.Block); ok {
		// the block of a function shares the body scope
		body, err = in.statements(block, block.Statements, next)
	} else {
		body, err = in.infer(branch.Body, next)
	}
	in.bindPending()
	in.table.LeaveBlock()
	in.bindPending()
	if err != nil {
		return Answers{}, err
	}

	d, err := disjunction.Map(body, func(a Answer) (Answer, error) {
		t := types.NewCurried(append(append([]types.Type{}, params...), a.Type())...)
		children := append(append([]*Typed{}, paramNodes...), a.Node)
		return disjunction.NewAnswer(typed(node, t, children...), types.Type(t), a.Graph()), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

// bindPending commits every template left in the current scope with its working type
func (in *inferrer) bindPending() {
	current := in.table.Current()
	for _, tmpl := range append([]*scope.BindingTemplate{}, current.Templates()...) {
		in.table.Bind(tmpl, tmpl.Type, nil)
	}
}

// template finds the template for name in the current scope, or makes a throwaway
// variable when the name could not be declared
func (in *inferrer) template(name string) types.Type {
	if tmpl, ok := in.table.Current().Template(name); ok {
		return tmpl.Type
	}
	if b, ok := in.table.ResolveWithin(name, 0); ok {
		return b.Type
	}
	return in.fresher.Fresh(name)
}

// pattern returns the artifact of p, typed with the values it matches, checking every
// variable it binds against the templates of the current scope
func (in *inferrer) pattern(p syntax.Pattern, g *types.TypeEqualityGraph) (*Typed, *types.TypeEqualityGraph, error) {
	switch p := p.(type) {
	case *syntax.IdentifierPattern:
		t := in.template(p.Name)
		if p.Annotation == nil {
			return typed(p, t), g, nil
		}
		annotation, err := in.typeExpr(p.Annotation, make(map[string]types.Variable))
		if err != nil {
			return nil, g, err
		}
		unified, next, err := g.Unify(t, annotation)
		if err != nil {
			return nil, g, err
		}
		return typed(p, unified), next, nil

	case *syntax.WildcardPattern:
		return typed(p, in.fresher.Fresh("_")), g, nil

	case *syntax.LiteralPattern:
		var t types.Type
		switch p.Literal.(type) {
		case *syntax.Number:
			t = types.Number
		case *syntax.String:
			t = types.String
		default:
			t = types.Boolean
		}
		return typed(p, t, typed(p.Literal, t)), g, nil

	case *syntax.TuplePattern:
		elems := make([]types.Type, len(p.Elements))
		children := make([]*Typed, len(p.Elements))
		for i, elem := range p.Elements {
			var err error
			if children[i], g, err = in.pattern(elem, g); err != nil {
				return nil, g, err
			}
			elems[i] = children[i].Type
		}
		t := types.NewTuple(elems...)
		return typed(p, t, children...), g, nil

	case *syntax.ListPattern:
		elem := in.fresher.Fresh("e")
		children := make([]*Typed, 0, len(p.Elements)+1)
		for _, sub := range p.Elements {
			child, next, err := in.pattern(sub, g)
			if err != nil {
				return nil, g, err
			}
			if g, err = next.Equate(elem, child.Type); err != nil {
				return nil, g, err
			}
			children = append(children, child)
		}
		list := types.NewList(elem)
		if p.Rest != nil {
			rest, next, err := in.pattern(p.Rest, g)
			if err != nil {
				return nil, g, err
			}
			if g, err = next.Equate(list, rest.Type); err != nil {
				return nil, g, err
			}
			children = append(children, rest)
		}
		return typed(p, list, children...), g, nil

	case *syntax.ConstructorPattern:
		return in.constructorPattern(p, g)

	default:
		panic("unexpected pattern " + p.Kind().String())
	}
}

func (in *inferrer) constructorPattern(p *syntax.ConstructorPattern, g *types.TypeEqualityGraph) (*Typed, *types.TypeEqualityGraph, error) {
	b, ok := in.table.Resolve(p.Name)
	if !ok {
		return nil, g, ilerr.New(ilerr.NewMissingBinding{Loc: in.at(p), Name: p.Name})
	}
	constructor := types.Instantiate(b.Type, b.Quantified, in.fresher)
	curried, isFunction := constructor.(types.Curried)
	if !isFunction {
		if len(p.Args) == 0 {
			return typed(p, constructor), g, nil
		}
		curried = types.NewCurried(types.Void, constructor)
	}
	params := curried.Arguments()
	if len(params) != len(p.Args) {
		args := make([]types.Type, 0, len(p.Args)+1)
		for range p.Args {
			args = append(args, in.fresher.Fresh("_"))
		}
		args = append(args, curried.Result())
		return nil, g, &types.TypeMismatch{
			Mismatch: types.Mismatch{Expected: curried, Actual: types.NewCurried(args...)},
			Reason:   "wrong number of arguments in pattern",
		}
	}
	children := make([]*Typed, len(p.Args))
	for i, arg := range p.Args {
		child, next, err := in.pattern(arg, g)
		if err != nil {
			return nil, g, err
		}
		if g, err = next.Equate(params[i], child.Type); err != nil {
			return nil, g, err
		}
		children[i] = child
	}
	return typed(p, curried.Result(), children...), g, nil
}
