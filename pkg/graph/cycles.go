package graph

import (
	"gonum.org/v1/gonum/graph"
)

// Cycle represents a circular parent chain in a document. Well-formed
// pipeline output never contains one; the detection exists so a
// corrupt document degrades to diagnostics instead of looping the
// visibility walk.
type Cycle struct {
	Nodes []string // Node ids participating in the cycle
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm
type tarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func newTarjanSCC(g graph.Directed) *tarjanSCC {
	return &tarjanSCC{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// findSCCs returns all strongly connected components with more than
// one member
func (t *tarjanSCC) findSCCs() [][]int64 {
	nodes := t.graph.Nodes()
	for nodes.Next() {
		node := nodes.Node()
		if _, visited := t.indices[node.ID()]; !visited {
			t.strongConnect(node.ID())
		}
	}
	return t.sccs
}

func (t *tarjanSCC) strongConnect(nodeID int64) {
	t.indices[nodeID] = t.index
	t.lowLink[nodeID] = t.index
	t.index++

	t.stack = append(t.stack, nodeID)
	t.onStack[nodeID] = true

	successors := t.graph.From(nodeID)
	for successors.Next() {
		successorID := successors.Node().ID()

		if _, visited := t.indices[successorID]; !visited {
			t.strongConnect(successorID)
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.lowLink[successorID])
		} else if t.onStack[successorID] {
			t.lowLink[nodeID] = min(t.lowLink[nodeID], t.indices[successorID])
		}
	}

	if t.lowLink[nodeID] == t.indices[nodeID] {
		var scc []int64
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == nodeID {
				break
			}
		}
		// A single node without a self loop is not a cycle
		if len(scc) > 1 {
			t.sccs = append(t.sccs, scc)
		}
	}
}

// FindCycles finds all circular parent chains in a hierarchy.
// Self-parent links never reach the graph (they are rejected during
// construction), so only multi-node chains can appear here.
func FindCycles(h *Hierarchy) []Cycle {
	tarjan := newTarjanSCC(h.Graph())
	sccs := tarjan.findSCCs()

	cycles := make([]Cycle, 0, len(sccs))
	for _, scc := range sccs {
		nodes := make([]string, 0, len(scc))
		for _, num := range scc {
			if id := h.NodeByNum(num); id != "" {
				nodes = append(nodes, id)
			}
		}
		if len(nodes) > 1 {
			cycles = append(cycles, Cycle{Nodes: nodes})
		}
	}

	return cycles
}
