package disjunction

import (
	"github.com/cottand/sema/frontend/types"
)

// AccumulatedAnswer is one consistent choice of an answer for each of several sibling
// nodes, together with the graph that all of their graphs were built into
type AccumulatedAnswer[N any] struct {
	Answers []Answer[N]
	Graph   *types.TypeEqualityGraph
}

// Types lists the type of every sibling answer, in order
func (a AccumulatedAnswer[N]) Types() []types.Type {
	ts := make([]types.Type, len(a.Answers))
	for i, answer := range a.Answers {
		ts[i] = answer.Type()
	}
	return ts
}

// Nodes lists the node of every sibling answer, in order
func (a AccumulatedAnswer[N]) Nodes() []N {
	ns := make([]N, len(a.Answers))
	for i, answer := range a.Answers {
		ns[i] = answer.Node
	}
	return ns
}

// AccumulatedDisjunction is a non-empty list of AccumulatedAnswer
type AccumulatedDisjunction[N any] struct {
	answers []AccumulatedAnswer[N]
}

func (d AccumulatedDisjunction[N]) Answers() []AccumulatedAnswer[N] { return d.answers }
func (d AccumulatedDisjunction[N]) Len() int                        { return len(d.answers) }

// Unit is the AccumulatedDisjunction of zero siblings: a single empty combination in graph
func Unit[N any](graph *types.TypeEqualityGraph) AccumulatedDisjunction[N] {
	return AccumulatedDisjunction[N]{answers: []AccumulatedAnswer[N]{{Graph: graph}}}
}

// Lift turns every answer of d into a combination of a single sibling
func Lift[N any](d Disjunction[N]) AccumulatedDisjunction[N] {
	out := make([]AccumulatedAnswer[N], len(d.answers))
	for i, a := range d.answers {
		out[i] = AccumulatedAnswer[N]{Answers: []Answer[N]{a}, Graph: a.Graph()}
	}
	return AccumulatedDisjunction[N]{answers: out}
}

// Product combines every combination of x with every combination of y, keeping the
// siblings of x before those of y. Combinations whose graphs cannot be built together
// are pruned.
func Product[N any](x, y AccumulatedDisjunction[N]) (AccumulatedDisjunction[N], error) {
	var out []AccumulatedAnswer[N]
	var cause error
	pruned := 0
	for _, left := range x.answers {
		for _, right := range y.answers {
			graph, err := types.Build(left.Graph, right.Graph)
			if err != nil {
				logger.Debug("pruned sibling combination", "reason", err)
				if cause == nil {
					cause = err
				}
				pruned++
				continue
			}
			answers := make([]Answer[N], 0, len(left.Answers)+len(right.Answers))
			answers = append(answers, left.Answers...)
			answers = append(answers, right.Answers...)
			out = append(out, AccumulatedAnswer[N]{Answers: answers, Graph: graph})
		}
	}
	if len(out) == 0 {
		return AccumulatedDisjunction[N]{}, &NoConsistentTyping{Cause: cause, Pruned: pruned}
	}
	return AccumulatedDisjunction[N]{answers: out}, nil
}

// Distribute computes the consistent combinations of one answer per sibling disjunction,
// keeping the order of siblings. When there are no siblings, the single empty combination
// in base is returned.
func Distribute[N any](siblings []Disjunction[N], base *types.TypeEqualityGraph) (AccumulatedDisjunction[N], error) {
	if len(siblings) == 0 {
		return Unit[N](base), nil
	}
	acc := Lift(siblings[0])
	for _, sibling := range siblings[1:] {
		var err error
		acc, err = Product(acc, Lift(sibling))
		if err != nil {
			return AccumulatedDisjunction[N]{}, err
		}
	}
	return acc, nil
}

// Collect maps every combination of d into a single answer, pruning those for which f fails
func Collect[A, B any](d AccumulatedDisjunction[A], f func(AccumulatedAnswer[A]) (Answer[B], error)) (Disjunction[B], error) {
	out := survivors[B]{}
	for _, a := range d.answers {
		b, err := f(a)
		if err != nil {
			out.prune(err)
			continue
		}
		out.keep(b)
	}
	return out.disjunction()
}
