package types

import (
	"maps"
	"slices"
)

// TypeEqualityGraph is a set of disjoint equivalence classes of types known to denote
// the same type. Each class groups variables (as a union-find with path compression)
// and keeps at most one concrete representative, obtained by unifying every concrete
// member of the class together.
//
// A TypeEqualityGraph is treated as a value: operations which add facts return a new graph.
type TypeEqualityGraph struct {
	parent map[VarID]VarID
	rank   map[VarID]int
	vars   map[VarID]Variable
	// concrete is keyed by class root
	concrete map[VarID]Type
	// order is the order in which variables joined the graph, for determinism
	order []VarID

	// cached is the TypeConstraints view of the graph, nil when stale
	cached *TypeConstraints
}

func NewTypeEqualityGraph() *TypeEqualityGraph {
	return &TypeEqualityGraph{
		parent:   make(map[VarID]VarID),
		rank:     make(map[VarID]int),
		vars:     make(map[VarID]Variable),
		concrete: make(map[VarID]Type),
	}
}

// GraphOf builds a graph from the facts in c
func GraphOf(c TypeConstraints) (*TypeEqualityGraph, error) {
	g := NewTypeEqualityGraph()
	if err := g.absorb(c, NewTypeConstraints()); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *TypeEqualityGraph) copy() *TypeEqualityGraph {
	return &TypeEqualityGraph{
		parent:   maps.Clone(g.parent),
		rank:     maps.Clone(g.rank),
		vars:     maps.Clone(g.vars),
		concrete: maps.Clone(g.concrete),
		order:    slices.Clone(g.order),
		cached:   g.cached,
	}
}

// Build merges the equivalence classes of every graph in graphs, joining classes which
// share a member. When two joined classes both have a concrete representative, these must
// unify, otherwise Build fails and the combination of graphs is inconsistent.
func Build(graphs ...*TypeEqualityGraph) (*TypeEqualityGraph, error) {
	var out *TypeEqualityGraph
	for _, in := range graphs {
		if in == nil {
			continue
		}
		if out == nil {
			out = in.copy()
			continue
		}
		for _, id := range in.order {
			out.addVar(in.vars[id])
			if root := in.find(id); root != id {
				if err := out.union(id, in.vars[root]); err != nil {
					return nil, err
				}
			}
		}
		for _, id := range in.order {
			if t, ok := in.concrete[id]; ok {
				if err := out.assign(id, t); err != nil {
					return nil, err
				}
			}
		}
	}
	if out == nil {
		return NewTypeEqualityGraph(), nil
	}
	return out, nil
}

// Unify returns a new graph where a and b are known to be equal, alongside their unified type
func (g *TypeEqualityGraph) Unify(a, b Type) (Type, *TypeEqualityGraph, error) {
	seed := g.Constraints()
	unified, c, err := Unify(a, b, seed)
	if err != nil {
		return nil, g, err
	}
	if c.Len() == seed.Len() {
		return unified, g, nil
	}
	next := g.copy()
	if err := next.absorb(c, seed); err != nil {
		return nil, g, err
	}
	return unified, next, nil
}

// Equate is Unify without the unified type
func (g *TypeEqualityGraph) Equate(a, b Type) (*TypeEqualityGraph, error) {
	_, next, err := g.Unify(a, b)
	return next, err
}

// Constraints is the TypeConstraints view of the graph: every variable resolves to its
// class root, and every root to its concrete representative, when there is one
func (g *TypeEqualityGraph) Constraints() TypeConstraints {
	if g.cached != nil {
		return *g.cached
	}
	c := NewTypeConstraints()
	facts := c.m()
	for _, id := range g.order {
		root := g.find(id)
		if root != id {
			facts = facts.Set(id, g.vars[root])
			continue
		}
		if t, ok := g.concrete[id]; ok {
			facts = facts.Set(id, t)
		}
	}
	c = TypeConstraints{facts: facts}
	g.cached = &c
	return c
}

// Reduce applies every fact in g to t
func (g *TypeEqualityGraph) Reduce(t Type) Type {
	return Reduce(t, g.Constraints())
}

// Representative returns the concrete type of the class of v or, if there is none,
// the variable at the root of the class
func (g *TypeEqualityGraph) Representative(v Variable) Type {
	if _, ok := g.vars[v.ID]; !ok {
		return v
	}
	root := g.find(v.ID)
	if t, ok := g.concrete[root]; ok {
		return t
	}
	return g.vars[root]
}

// Resolve is Representative for variables, and returns any other type unchanged
func (g *TypeEqualityGraph) Resolve(t Type) Type {
	if v, ok := t.(Variable); ok {
		return g.Representative(v)
	}
	return t
}

// Same returns whether a and b belong to the same class
func (g *TypeEqualityGraph) Same(a, b Variable) bool {
	if a.ID == b.ID {
		return true
	}
	_, okA := g.vars[a.ID]
	_, okB := g.vars[b.ID]
	return okA && okB && g.find(a.ID) == g.find(b.ID)
}

// Classes lists the equivalence classes of g: the variables of each class, in the order
// they joined the graph, followed by the concrete representative if there is one
func (g *TypeEqualityGraph) Classes() [][]Type {
	byRoot := make(map[VarID]int)
	var classes [][]Type
	for _, id := range g.order {
		root := g.find(id)
		i, ok := byRoot[root]
		if !ok {
			i = len(classes)
			byRoot[root] = i
			classes = append(classes, nil)
		}
		classes[i] = append(classes[i], g.vars[id])
	}
	for root, i := range byRoot {
		if t, ok := g.concrete[root]; ok {
			classes[i] = append(classes[i], t)
		}
	}
	return classes
}

func (g *TypeEqualityGraph) addVar(v Variable) {
	if _, ok := g.vars[v.ID]; ok {
		return
	}
	g.vars[v.ID] = v
	g.parent[v.ID] = v.ID
	g.order = append(g.order, v.ID)
	g.cached = nil
}

func (g *TypeEqualityGraph) find(id VarID) VarID {
	root := id
	for g.parent[root] != root {
		root = g.parent[root]
	}
	for id != root {
		next := g.parent[id]
		g.parent[id] = root
		id = next
	}
	return root
}

// absorb assigns every fact of c which is not in seed
func (g *TypeEqualityGraph) absorb(c, seed TypeConstraints) error {
	for id, t := range c.All() {
		if _, ok := seed.lookup(id); ok {
			continue
		}
		if err := g.assign(id, t); err != nil {
			return err
		}
	}
	return nil
}

func (g *TypeEqualityGraph) assign(id VarID, t Type) error {
	if _, ok := g.vars[id]; !ok {
		g.addVar(Variable{ID: id})
	}
	if v, ok := t.(Variable); ok {
		return g.union(id, v)
	}
	root := g.find(id)
	existing, ok := g.concrete[root]
	if !ok {
		if g.occursInClass(root, t, nil) {
			err := mismatch(g.vars[root], t)
			err.Reason = "infinite type"
			return err
		}
		g.concrete[root] = t
		g.cached = nil
		return nil
	}
	return g.unifyConcrete(root, existing, t)
}

func (g *TypeEqualityGraph) union(id VarID, other Variable) error {
	g.addVar(other)
	ra, rb := g.find(id), g.find(other.ID)
	if ra == rb {
		return nil
	}
	if g.rank[ra] < g.rank[rb] {
		ra, rb = rb, ra
	}
	ca, hasA := g.concrete[ra]
	cb, hasB := g.concrete[rb]
	g.parent[rb] = ra
	if g.rank[ra] == g.rank[rb] {
		g.rank[ra]++
	}
	delete(g.concrete, rb)
	g.cached = nil

	switch {
	case hasA && hasB:
		return g.unifyConcrete(ra, ca, cb)
	case hasA || hasB:
		t := ca
		if hasB {
			t = cb
		}
		if g.occursInClass(ra, t, nil) {
			err := mismatch(g.vars[ra], t)
			err.Reason = "infinite type"
			return err
		}
		g.concrete[ra] = t
	}
	return nil
}

// unifyConcrete sets the representative of root to the unification of existing and t,
// then absorbs the facts on nested variables which the unification produced
func (g *TypeEqualityGraph) unifyConcrete(root VarID, existing, t Type) error {
	seed := g.Constraints()
	unified, c, err := Unify(existing, t, seed)
	if err != nil {
		return err
	}
	g.concrete[root] = unified
	g.cached = nil
	return g.absorb(c, seed)
}

// occursInClass returns whether t mentions, directly or through the representatives
// of other classes, a variable of the class rooted at root
func (g *TypeEqualityGraph) occursInClass(root VarID, t Type, visited map[VarID]bool) bool {
	for _, v := range FreeVariables(t) {
		if _, ok := g.vars[v.ID]; !ok {
			continue
		}
		vRoot := g.find(v.ID)
		if vRoot == root {
			return true
		}
		if visited[vRoot] {
			continue
		}
		if visited == nil {
			visited = make(map[VarID]bool)
		}
		visited[vRoot] = true
		if rep, ok := g.concrete[vRoot]; ok && g.occursInClass(root, rep, visited) {
			return true
		}
	}
	return false
}

// TypeConstraint is a Type together with the graph it was derived in
type TypeConstraint struct {
	Type  Type
	Graph *TypeEqualityGraph
}

// Reduced returns Type with every fact of Graph applied
func (c TypeConstraint) Reduced() Type {
	if c.Graph == nil {
		return c.Type
	}
	return c.Graph.Reduce(c.Type)
}
