// Package modgraph orders the files of a program so that every file comes after
// the files it depends on.
package modgraph

import (
	"fmt"
	"strings"

	"github.com/cottand/sema/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.Section(log.SectionModGraph)

// CycleError is returned when From depends on To while To is one of the ancestors
// of From in the dependency walk
type CycleError[K comparable] struct {
	From, To K
	// Chain is the path of dependencies from To down to From, both included
	Chain []K
}

func (e *CycleError[K]) Error() string {
	chain := make([]string, 0, len(e.Chain)+1)
	for _, k := range e.Chain {
		chain = append(chain, fmt.Sprint(k))
	}
	chain = append(chain, fmt.Sprint(e.To))
	return fmt.Sprintf("dependency cycle: %s", strings.Join(chain, " -> "))
}

// UnknownDependencyError is returned when From depends on a node which is not part of the graph
type UnknownDependencyError[K comparable] struct {
	From, To K
}

func (e *UnknownDependencyError[K]) Error() string {
	return fmt.Sprintf("%v depends on unknown %v", e.From, e.To)
}

// Graph is an adjacency list of dependencies between nodes, addressed by index
type Graph[K comparable] struct {
	nodes []K
	index map[K]int
	deps  [][]int
}

// New resolves the dependencies of every node to other nodes of the graph
func New[K comparable](nodes []K, dependencies func(K) []K) (*Graph[K], error) {
	g := &Graph[K]{
		nodes: nodes,
		index: make(map[K]int, len(nodes)),
		deps:  make([][]int, len(nodes)),
	}
	for i, node := range nodes {
		g.index[node] = i
	}
	for i, node := range nodes {
		for _, dep := range dependencies(node) {
			j, ok := g.index[dep]
			if !ok {
				return nil, &UnknownDependencyError[K]{From: node, To: dep}
			}
			g.deps[i] = append(g.deps[i], j)
		}
	}
	return g, nil
}

type frame struct {
	node int
	next int
}

// Order returns the nodes of g with dependencies before their dependents. Nodes which
// do not depend on each other keep the order they were given in.
//
// A dependency on an ancestor of the current walk fails with a *CycleError.
func (g *Graph[K]) Order() ([]K, error) {
	done := set.New[int](len(g.nodes))
	onPath := set.New[int](len(g.nodes))
	ordered := make([]K, 0, len(g.nodes))

	for root := range g.nodes {
		if done.Contains(root) {
			continue
		}
		path := []frame{{node: root}}
		onPath.Insert(root)
		for len(path) > 0 {
			top := &path[len(path)-1]
			if top.next < len(g.deps[top.node]) {
				dep := g.deps[top.node][top.next]
				top.next++
				switch {
				case onPath.Contains(dep):
					return nil, g.cycle(path, dep)
				case done.Contains(dep):
					continue
				}
				onPath.Insert(dep)
				path = append(path, frame{node: dep})
				continue
			}
			path = path[:len(path)-1]
			onPath.Remove(top.node)
			done.Insert(top.node)
			ordered = append(ordered, g.nodes[top.node])
			logger.Debug("ordered", "node", g.nodes[top.node], "position", len(ordered)-1)
		}
	}
	return ordered, nil
}

func (g *Graph[K]) cycle(path []frame, to int) *CycleError[K] {
	start := 0
	for i, f := range path {
		if f.node == to {
			start = i
			break
		}
	}
	chain := make([]K, 0, len(path)-start)
	for _, f := range path[start:] {
		chain = append(chain, g.nodes[f.node])
	}
	err := &CycleError[K]{From: g.nodes[path[len(path)-1].node], To: g.nodes[to], Chain: chain}
	logger.Debug("found cycle", "chain", chain)
	return err
}

// Order is a shorthand for New followed by Graph.Order
func Order[K comparable](nodes []K, dependencies func(K) []K) ([]K, error) {
	g, err := New(nodes, dependencies)
	if err != nil {
		return nil, err
	}
	return g.Order()
}
