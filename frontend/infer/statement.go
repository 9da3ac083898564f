package infer

import (
	"slices"

	"github.com/cottand/sema/frontend/disjunction"
	"github.com/cottand/sema/frontend/ilerr"
	"github.com/cottand/sema/frontend/scope"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
	"github.com/cottand/sema/util/hset"
	"github.com/hashicorp/go-set/v3"
)

// statementResult is what inferring a statement produced, before its templates are
// bound
type statementResult struct {
	answers Answers
	// templates are the names bound by an assignment
	templates []*scope.BindingTemplate
	// expression is set for statements which are not declarations
	expression bool
	// generalize is set for assignments of functions
	generalize bool
}

func voidResult(node syntax.Node, g *types.TypeEqualityGraph) statementResult {
	return statementResult{answers: disjunction.Single(typed(node, types.Void), types.Type(types.Void), g)}
}

func (in *inferrer) statement(stmt syntax.Node, g *types.TypeEqualityGraph) (statementResult, error) {
	switch stmt := stmt.(type) {
	case *syntax.Assignment:
		return in.assignment(stmt, g)
	case *syntax.Import:
		in.importFile(stmt)
		return voidResult(stmt, g), nil
	case *syntax.Module:
		in.module(stmt)
		return voidResult(stmt, g), nil
	case *syntax.Class:
		in.class(stmt)
		return voidResult(stmt, g), nil
	case *syntax.Enum:
		in.enum(stmt)
		return voidResult(stmt, g), nil
	default:
		d, err := in.infer(stmt, g)
		return statementResult{answers: d, expression: true}, err
	}
}

func (in *inferrer) assignment(node *syntax.Assignment, g *types.TypeEqualityGraph) (statementResult, error) {
	if node.Exported {
		in.table.SetNextExported()
	}
	templates, errs := in.table.Templates(node.Pattern, in.fresher)
	in.errs = in.errs.Merge(errs)
	_, isFunction := node.Value.(*syntax.Abstraction)
	res := statementResult{templates: templates, generalize: isFunction}

	value, err := in.infer(node.Value, g)
	if err != nil {
		return res, err
	}
	res.answers, err = disjunction.Map(value, func(a Answer) (Answer, error) {
		var target *Typed
		var next *types.TypeEqualityGraph
		var err error
		if ident, ok := node.Pattern.(*syntax.IdentifierPattern); ok && ident.Annotation == nil && len(templates) == 1 {
			target = typed(ident, templates[0].Type)
			next, err = templates[0].Promote(a.Type(), a.Graph())
		} else {
			target, next, err = in.pattern(node.Pattern, a.Graph())
			if err == nil {
				next, err = next.Equate(target.Type, a.Type())
			}
		}
		if err != nil {
			return Answer{}, err
		}
		artifact := typed(node, types.Void, target, a.Node)
		return disjunction.NewAnswer(artifact, types.Type(types.Void), next), nil
	})
	if err != nil {
		return res, in.fail(node, err)
	}
	return res, nil
}

// unionOf is t reduced in the graph of every answer
func unionOf(t types.Type, answers []Answer) types.Type {
	if len(answers) == 0 {
		return t
	}
	reduced := make([]types.Type, len(answers))
	for i, a := range answers {
		reduced[i] = a.Graph().Reduce(t)
	}
	return types.NewUnion(reduced...)
}

// checkDeterminate reports an expression statement which still has answers of
// different types
func (in *inferrer) checkDeterminate(stmt syntax.Node, answers []Answer) {
	distinct := hset.Empty[types.Type](types.TypeHasher{})
	for _, a := range answers {
		distinct.Add(a.Reduced())
	}
	if distinct.Len() > 1 {
		in.report(ilerr.New(ilerr.NewIndeterminateType{Loc: in.at(stmt), Candidates: distinct.AsSlice()}))
	}
}

func (in *inferrer) block(node *syntax.Block, g *types.TypeEqualityGraph) (Answers, error) {
	in.table.EnterBlock(node)
	defer in.table.LeaveBlock()
	defer in.bindPending()
	return in.statements(node, node.Statements, g)
}

// statements infers the statements of a block in the current scope. Every answer of a
// statement is combined with every answer of the statements before it, and the
// combinations whose graphs contradict each other are dropped. Names bound in the
// block stay templates until its scope is left. The block evaluates to its last
// statement when it is an expression, and to Void otherwise.
func (in *inferrer) statements(node syntax.Node, stmts []syntax.Node, g *types.TypeEqualityGraph) (Answers, error) {
	state := disjunction.Single(typed(node, types.Void), types.Type(types.Void), g)
	for i, stmt := range stmts {
		last := i == len(stmts)-1
		// a statement only sees what the previous ones learnt while there is a single way to type them
		under := g
		if state.Len() == 1 {
			under = state.First().Graph()
		}
		res, err := in.statement(stmt, under)
		if err != nil {
			if last {
				return Answers{}, err
			}
			continue
		}
		next, err := disjunction.Merge(state, res.answers, func(s, a Answer, merged *types.TypeEqualityGraph) (Answer, error) {
			t := types.Type(types.Void)
			if last && res.expression {
				t = a.Type()
			}
			children := append(slices.Clone(s.Node.Children), a.Node)
			return disjunction.NewAnswer(typed(node, t, children...), t, merged), nil
		})
		if err != nil {
			return Answers{}, in.fail(stmt, err)
		}
		state = next
	}
	return state, nil
}

// units infers every statement as an independent unit
func (in *inferrer) units(stmts []syntax.Node) {
	for _, stmt := range stmts {
		in.unit(stmt)
	}
}

// envFree are the variables free in the types of the bindings visible from the current scope
func (in *inferrer) envFree() *set.Set[types.VarID] {
	free := set.New[types.VarID](0)
	for _, b := range in.table.Visible() {
		quantified := set.From(b.Quantified)
		for _, v := range types.FreeVariables(b.Type) {
			if !quantified.Contains(v.ID) {
				free.Insert(v.ID)
			}
		}
	}
	return free
}

// unit infers a top-level statement of a file or module in a graph of its own, then
// commits its bindings and the final type of each of its nodes
func (in *inferrer) unit(stmt syntax.Node) {
	firstScope := in.table.Len()
	res, err := in.statement(stmt, types.NewTypeEqualityGraph())
	if err != nil {
		in.bindPending()
		in.logger.Debug("failed to infer statement", "node", stmt)
		return
	}
	answers := res.answers.Answers()

	for _, tmpl := range res.templates {
		t := unionOf(tmpl.Type, answers)
		var quantified []types.VarID
		if res.generalize {
			quantified = types.Generalize(t, in.envFree())
		}
		in.table.Bind(tmpl, t, quantified)
	}
	// declarations nested in expressions of the statement
	for _, tmpl := range slices.Clone(in.table.Current().Templates()) {
		in.table.Bind(tmpl, unionOf(tmpl.Type, answers), nil)
	}
	if res.expression {
		in.checkDeterminate(stmt, answers)
	}
	for _, a := range answers {
		a.Node.record(in.file.Types, a.Graph())
	}
	for id := firstScope; id < in.table.Len(); id++ {
		for _, b := range in.table.Scope(scope.ScopeID(id)).Bindings() {
			b.Type = unionOf(b.Type, answers)
		}
	}
	in.logger.Debug("inferred statement", "node", stmt, "answers", len(answers))
}
