package workflow

import (
	"fmt"
	"sort"
)

// Node is one unit of work in a workflow graph: an id, its declared
// predecessors (edges point from predecessor to this node), and the
// action metadata/handler the runtime dispatches it through.
type Node struct {
	ID           string
	Predecessors []string
	AllowFailure bool
	Condition    func(outputs map[string]any) bool
}

// Graph is a validated, immutable workflow definition: every Node's
// Predecessors reference another Node in the same Graph, and the whole
// set is acyclic.
type Graph struct {
	nodes map[string]Node
	order []string // stable topological pre-order, computed once at Build
}

// Build validates nodes (no missing predecessor references, no
// cycles) and precomputes a stable topological pre-order used to
// break ties when multiple nodes become ready simultaneously (spec
// §4.7's determinism requirement).
func Build(nodes []Node) (*Graph, error) {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if _, exists := byID[n.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrInvalidGraph, n.ID)
		}
		byID[n.ID] = n
	}
	for _, n := range nodes {
		for _, p := range n.Predecessors {
			if _, ok := byID[p]; !ok {
				return nil, fmt.Errorf("%w: node %q references unknown predecessor %q", ErrInvalidGraph, n.ID, p)
			}
		}
	}

	order, err := topoOrder(byID)
	if err != nil {
		return nil, err
	}

	return &Graph{nodes: byID, order: order}, nil
}

// topoOrder computes a deterministic (alphabetical tie-break)
// topological pre-order over nodes via Kahn's algorithm, detecting
// cycles.
func topoOrder(nodes map[string]Node) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))
	for id, n := range nodes {
		inDegree[id] = len(n.Predecessors)
		for _, p := range n.Predecessors {
			successors[p] = append(successors[p], id)
		}
	}
	for _, list := range successors {
		sort.Strings(list)
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		for _, s := range successors[n] {
			inDegree[s]--
			if inDegree[s] == 0 {
				ready = append(ready, s)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, ErrCycle
	}
	return order, nil
}

// EntryNodes returns every in-degree-zero node id, in the graph's
// stable topological order. Each receives the workflow-level input.
func (g *Graph) EntryNodes() []string {
	var entries []string
	for _, id := range g.order {
		if len(g.nodes[id].Predecessors) == 0 {
			entries = append(entries, id)
		}
	}
	return entries
}

// Successors returns the ids of nodes that declare id as a predecessor,
// in the graph's stable topological order (a subsequence of g.order).
func (g *Graph) Successors(id string) []string {
	var out []string
	for _, candidateID := range g.order {
		for _, p := range g.nodes[candidateID].Predecessors {
			if p == id {
				out = append(out, candidateID)
				break
			}
		}
	}
	return out
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the total number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Order returns the graph's stable topological pre-order, used to
// break dispatch ties deterministically across runs.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
