package infer

import (
	"slices"

	"github.com/cottand/sema/frontend/disjunction"
	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/cottand/sema/util"
	"github.com/hashicorp/go-set/v3"
)

func (in *inferrer) when(node *syntax.When, g *types.TypeEqualityGraph) (Answers, error) {
	subject, err := in.infer(node.Subject, g)
	if err != nil {
		return Answers{}, err
	}
	result := in.fresher.Fresh("r")

	cases := make([]Answers, 0, len(node.Cases))
	var failed error
	for _, c := range node.Cases {
		d, err := in.whenCase(node, c, subject, result, g)
		if err != nil {
			failed = err
			continue
		}
		cases = append(cases, d)
	}
	if failed != nil {
		return Answers{}, failed
	}

	acc, err := disjunction.Distribute(cases, g)
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	d, err := disjunction.Collect(acc, func(a disjunction.AccumulatedAnswer[*Typed]) (Answer, error) {
		return disjunction.NewAnswer(typed(node, result, a.Nodes()...), types.Type(result), a.Graph), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}

// checkAlternatives requires every alternative pattern of a case to bind the same names
// as the first one
func (in *inferrer) checkAlternatives(alternatives []syntax.Pattern) bool {
	names := func(p syntax.Pattern) *set.Set[string] {
		idents := slices.Values(syntax.PatternNames(p))
		return util.SetFromSeq(util.MapIter(idents, func(ident *syntax.IdentifierPattern) string { return ident.Name }), 0)
	}
	first := names(alternatives[0])
	ok := true
	for _, alt := range alternatives[1:] {
		other := names(alt)
		missing := first.Difference(other).Slice()
		if len(missing) == 0 {
			missing = other.Difference(first).Slice()
		}
		if len(missing) == 0 {
			continue
		}
		slices.Sort(missing)
		in.report(ilerr.New(ilerr.NewAlternativeBindings{Loc: in.at(alt), Name: missing[0]}))
		ok = false
	}
	return ok
}

func (in *inferrer) whenCase(node *syntax.When, c syntax.WhenCase, subject Answers, result types.Variable, g *types.TypeEqualityGraph) (Answers, error) {
	in.table.EnterBlock(c.Body)
	defer in.table.LeaveBlock()
	defer in.bindPending()

	_, errs := in.table.Templates(c.Patterns[0], in.fresher)
	in.errs = in.errs.Merge(errs)
	if !in.checkAlternatives(c.Patterns) {
		return Answers{}, errAlreadyReported
	}

	// every alternative which can match the subject is a way into the body
	matched, err := disjunction.FlatMap(subject, func(s Answer) (Answers, error) {
		var answers []Answer
		var cause error
		for _, alt := range c.Patterns {
			p, next, err := in.pattern(alt, s.Graph())
			if err == nil {
				next, err = next.Equate(s.Type(), p.Type)
			}
			if err != nil {
				cause = err
				continue
			}
			// the subject travels with the pattern it matched
			matchedNode := typed(node, result, s.Node, p)
			answers = append(answers, disjunction.NewAnswer(matchedNode, p.Type, next))
		}
		if len(answers) == 0 {
			return Answers{}, cause
		}
		return disjunction.New(answers...)
	})
	if err != nil {
		return Answers{}, in.fail(c.Patterns[0], err)
	}

	bodyGraph := g
	if matched.Len() == 1 {
		bodyGraph = matched.First().Graph()
	}
	body, err := in.infer(c.Body, bodyGraph)
	if err != nil {
		return Answers{}, err
	}

	d, err := disjunction.Merge(matched, body, func(p, b Answer, merged *types.TypeEqualityGraph) (Answer, error) {
		next, err := merged.Equate(result, b.Type())
		if err != nil {
			return Answer{}, err
		}
		children := append(slices.Clone(p.Node.Children), b.Node)
		return disjunction.NewAnswer(typed(node, result, children...), types.Type(result), next), nil
	})
	if err != nil {
		return Answers{}, in.fail(c.Body, err)
	}
	return d, nil
}

// forExpr is a list comprehension: every generator iterates over a list, and the
// result is the list of every value of the body
func (in *inferrer) forExpr(node *syntax.For, g *types.TypeEqualityGraph) (Answers, error) {
	in.table.EnterBlock(node)
	defer in.table.LeaveBlock()
	defer in.bindPending()

	iterables := make([]Answers, 0, len(node.Generators))
	var failed error
	for _, gen := range node.Generators {
		d, err := in.infer(gen.Iterable, g)
		if err != nil {
			failed = err
		} else {
			iterables = append(iterables, d)
		}
		// the iterable of a generator sees the variables of the previous ones
		in.table.SetNextImplicit()
		_, errs := in.table.Templates(gen.Pattern, in.fresher)
		in.errs = in.errs.Merge(errs)
	}
	if failed != nil {
		return Answers{}, failed
	}

	acc, err := disjunction.Distribute(iterables, g)
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	generators, err := disjunction.Collect(acc, func(a disjunction.AccumulatedAnswer[*Typed]) (Answer, error) {
		next := a.Graph
		var children []*Typed
		for i, iterable := range a.Types() {
			elem := in.fresher.Fresh("e")
			var err error
			if next, err = next.Equate(types.NewList(elem), iterable); err != nil {
				return Answer{}, err
			}
			p, withPattern, err := in.pattern(node.Generators[i].Pattern, next)
			if err != nil {
				return Answer{}, err
			}
			if next, err = withPattern.Equate(elem, p.Type); err != nil {
				return Answer{}, err
			}
			children = append(children, p)
		}
		return disjunction.NewAnswer(typed(node, types.Void, children...), types.Type(types.Void), next), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}

	body, err := in.infer(node.Body, g)
	if err != nil {
		return Answers{}, err
	}
	d, err := disjunction.Merge(generators, body, func(gen, b Answer, merged *types.TypeEqualityGraph) (Answer, error) {
		t := types.NewList(b.Type())
		children := append(append([]*Typed{}, gen.Node.Children...), b.Node)
		return disjunction.NewAnswer(typed(node, t, children...), types.Type(t), merged), nil
	})
	if err != nil {
		return Answers{}, in.fail(node, err)
	}
	return d, nil
}
