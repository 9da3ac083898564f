package disjunction

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/cottand/sema/frontend/types"
	"github.com/cottand/sema/internal/log"
)

var logger = log.Section(log.SectionInference)

// Answer is a node, or the artifact generated for it, together with the type derived for it
// and the graph that type was derived in.
type Answer[N any] struct {
	Node       N
	Constraint types.TypeConstraint
}

func NewAnswer[N any](node N, t types.Type, graph *types.TypeEqualityGraph) Answer[N] {
	return Answer[N]{Node: node, Constraint: types.TypeConstraint{Type: t, Graph: graph}}
}

func (a Answer[N]) Type() types.Type                { return a.Constraint.Type }
func (a Answer[N]) Graph() *types.TypeEqualityGraph { return a.Constraint.Graph }

// Reduced is the type of the answer with every fact of its graph applied
func (a Answer[N]) Reduced() types.Type { return a.Constraint.Reduced() }

// WithType returns a copy of a with a different type, derived in graph
func (a Answer[N]) WithType(t types.Type, graph *types.TypeEqualityGraph) Answer[N] {
	return NewAnswer(a.Node, t, graph)
}

func (a Answer[N]) LogValue() slog.Value {
	return slog.StringValue(a.Reduced().String())
}

// NoConsistentTyping is returned when every candidate answer of a node was pruned
type NoConsistentTyping struct {
	// Cause is the reason the first candidate was pruned, and may be nil
	Cause error
	// Pruned is how many candidates were discarded
	Pruned int
}

func (e *NoConsistentTyping) Error() string {
	if e.Cause == nil {
		return "no consistent typing exists"
	}
	return fmt.Sprintf("no consistent typing exists: %v", e.Cause)
}

func (e *NoConsistentTyping) Unwrap() error { return e.Cause }

// Disjunction is a non-empty, ordered list of alternative answers for the same node.
//
// The zero value is not a valid Disjunction: build one with New or Single.
type Disjunction[N any] struct {
	answers []Answer[N]
}

// New fails with a *NoConsistentTyping when answers is empty
func New[N any](answers ...Answer[N]) (Disjunction[N], error) {
	if len(answers) == 0 {
		return Disjunction[N]{}, &NoConsistentTyping{}
	}
	return Disjunction[N]{answers: answers}, nil
}

// Single is a Disjunction of a single answer
func Single[N any](node N, t types.Type, graph *types.TypeEqualityGraph) Disjunction[N] {
	return Disjunction[N]{answers: []Answer[N]{NewAnswer(node, t, graph)}}
}

func (d Disjunction[N]) Answers() []Answer[N] { return d.answers }
func (d Disjunction[N]) Len() int             { return len(d.answers) }

func (d Disjunction[N]) All() iter.Seq2[int, Answer[N]] {
	return func(yield func(int, Answer[N]) bool) {
		for i, a := range d.answers {
			if !yield(i, a) {
				return
			}
		}
	}
}

// First is the answer that came first in the search order
func (d Disjunction[N]) First() Answer[N] {
	if len(d.answers) == 0 {
		panic("empty disjunction")
	}
	return d.answers[0]
}

// Graphs lists the graph of every answer, in order
func (d Disjunction[N]) Graphs() []*types.TypeEqualityGraph {
	graphs := make([]*types.TypeEqualityGraph, len(d.answers))
	for i, a := range d.answers {
		graphs[i] = a.Graph()
	}
	return graphs
}

// survivors accumulates the answers which were not pruned, remembering the first pruning reason
type survivors[N any] struct {
	answers []Answer[N]
	cause   error
	pruned  int
}

func (s *survivors[N]) keep(a Answer[N]) {
	s.answers = append(s.answers, a)
}

func (s *survivors[N]) prune(err error) {
	logger.Debug("pruned candidate answer", "reason", err)
	if s.cause == nil {
		s.cause = err
	}
	s.pruned++
}

func (s *survivors[N]) disjunction() (Disjunction[N], error) {
	if len(s.answers) == 0 {
		return Disjunction[N]{}, &NoConsistentTyping{Cause: s.cause, Pruned: s.pruned}
	}
	return Disjunction[N]{answers: s.answers}, nil
}

// Map applies f to every answer of d, pruning the answers for which f fails
func Map[A, B any](d Disjunction[A], f func(Answer[A]) (Answer[B], error)) (Disjunction[B], error) {
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

// FlatMap applies f to every answer of d and concatenates the resulting disjunctions in order,
// pruning the answers for which f fails
func FlatMap[A, B any](d Disjunction[A], f func(Answer[A]) (Disjunction[B], error)) (Disjunction[B], error) {
	out := survivors[B]{}
	for _, a := range d.answers {
		bs, err := f(a)
		if err != nil {
			out.prune(err)
			continue
		}
		for _, b := range bs.answers {
			out.keep(b)
		}
	}
	return out.disjunction()
}

// Merge combines every pair of answers of a and b, in order. The graphs of each pair are
// built together first, and pairs whose graphs contradict each other are pruned, as are
// the pairs for which combine fails.
func Merge[A, B, C any](a Disjunction[A], b Disjunction[B], combine func(Answer[A], Answer[B], *types.TypeEqualityGraph) (Answer[C], error)) (Disjunction[C], error) {
	out := survivors[C]{}
	for _, left := range a.answers {
		for _, right := range b.answers {
			graph, err := types.Build(left.Graph(), right.Graph())
			if err != nil {
				out.prune(err)
				continue
			}
			c, err := combine(left, right, graph)
			if err != nil {
				out.prune(err)
				continue
			}
			out.keep(c)
		}
	}
	return out.disjunction()
}
