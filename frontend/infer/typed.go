package infer

import (
	"github.com/cottand/sema/frontend/disjunction"
	"github.com/cottand/sema/frontend/syntax"
	"github.com/cottand/sema/frontend/types"
)

// Typed is the artifact of an answer: the node that was inferred, the type it was
// given in that answer, and the artifacts of its children
type Typed struct {
	Node     syntax.Node
	Type     types.Type
	Children []*Typed
}

// Answers is what inferring a node produces
type Answers = disjunction.Disjunction[*Typed]

type Answer = disjunction.Answer[*Typed]

func typed(node syntax.Node, t types.Type, children ...*Typed) *Typed {
	return &Typed{Node: node, Type: t, Children: children}
}

// record stores the type of every node of the tree, reduced in g. A node already
// recorded by another surviving answer gets the union of both types.
func (t *Typed) record(into map[syntax.Node]types.Type, g *types.TypeEqualityGraph) {
	reduced := g.Reduce(t.Type)
	if existing, ok := into[t.Node]; ok {
		reduced = types.NewUnion(existing, reduced)
	}
	into[t.Node] = reduced
	for _, child := range t.Children {
		child.record(into, g)
	}
}
