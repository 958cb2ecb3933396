package graph

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/meetmap/pkg/model"
)

// Hierarchy is the full parent/child structure of a mindmap document,
// independent of any collapse state. Construction keeps the first
// occurrence of each node id and skips self-parent links (a simple
// directed graph cannot hold them); every other structural problem is
// resolved later, when visibility is computed.
type Hierarchy struct {
	graph    *simple.DirectedGraph
	nodes    map[string]*model.Node // Map from node id to document node
	ids      map[string]int64       // Map from node id to graph ID
	byNum    map[int64]string       // Reverse map from graph ID to node id
	parentOf map[string]string      // Raw parent id as written in the document
	children map[string][]string    // Child ids in document order
	order    []string               // Node ids in document order, root first
	rootID   string
	nextID   int64
}

// NewHierarchy builds the hierarchy for a document
func NewHierarchy(doc *model.Document) *Hierarchy {
	h := &Hierarchy{
		graph:    simple.NewDirectedGraph(),
		nodes:    make(map[string]*model.Node),
		ids:      make(map[string]int64),
		byNum:    make(map[int64]string),
		parentOf: make(map[string]string),
		children: make(map[string][]string),
		rootID:   doc.CenterNode.ID,
	}

	h.addNode(&doc.CenterNode)
	for i := range doc.Nodes {
		h.addNode(&doc.Nodes[i])
	}

	// Parent edges are resolved in a second pass so that forward
	// references (child listed before parent) work
	for _, id := range h.order {
		if id == h.rootID {
			continue
		}
		parent := h.parentOf[id]
		if parent == "" || parent == id {
			continue
		}
		if _, exists := h.nodes[parent]; !exists {
			continue
		}
		h.children[parent] = append(h.children[parent], id)
		h.addEdge(parent, id)
	}

	return h
}

// addNode registers a node, keeping the first occurrence of an id
func (h *Hierarchy) addNode(node *model.Node) {
	if node.ID == "" {
		return
	}
	if _, exists := h.nodes[node.ID]; exists {
		return
	}

	h.nodes[node.ID] = node
	h.ids[node.ID] = h.nextID
	h.byNum[h.nextID] = node.ID
	h.parentOf[node.ID] = node.ParentID
	h.order = append(h.order, node.ID)

	h.graph.AddNode(simple.Node(h.nextID))
	h.nextID++
}

// addEdge adds a parent -> child edge to the gonum graph
func (h *Hierarchy) addEdge(parent, child string) {
	parentID := h.ids[parent]
	childID := h.ids[child]
	if !h.graph.HasEdgeFromTo(parentID, childID) {
		edge := h.graph.NewEdge(h.graph.Node(parentID), h.graph.Node(childID))
		h.graph.SetEdge(edge)
	}
}

// RootID returns the center node's id
func (h *Hierarchy) RootID() string {
	return h.rootID
}

// Node returns a document node by id
func (h *Hierarchy) Node(id string) (*model.Node, bool) {
	node, exists := h.nodes[id]
	return node, exists
}

// NodeByNum returns a node id by its graph ID
func (h *Hierarchy) NodeByNum(num int64) string {
	return h.byNum[num]
}

// Parent returns the raw parent id a node declares. The second result
// is false when the declared parent does not exist in the document.
func (h *Hierarchy) Parent(id string) (string, bool) {
	parent := h.parentOf[id]
	if parent == "" {
		return "", false
	}
	_, exists := h.nodes[parent]
	return parent, exists
}

// Children returns the child ids of a node in document order
func (h *Hierarchy) Children(id string) []string {
	return h.children[id]
}

// HasChildren returns true if the node has at least one child
func (h *Hierarchy) HasChildren(id string) bool {
	return len(h.children[id]) > 0
}

// Len returns the number of nodes in the hierarchy
func (h *Hierarchy) Len() int {
	return len(h.order)
}

// Order returns all node ids in document order, root first
func (h *Hierarchy) Order() []string {
	return h.order
}

// Graph returns the underlying directed graph
func (h *Hierarchy) Graph() *simple.DirectedGraph {
	return h.graph
}

// DescendantCounts computes the number of descendants below every
// node. On an acyclic hierarchy this runs in one pass over the reverse
// topological order; in the degenerate cyclic case it falls back to a
// bounded walk per node.
func (h *Hierarchy) DescendantCounts() map[string]int {
	counts := make(map[string]int, len(h.order))

	sorted, err := topo.Sort(h.graph)
	if err != nil {
		return h.descendantCountsBounded()
	}

	// topo.Sort lists parents before children; walk it backwards so
	// every child's count is ready before its parent sums it
	for i := len(sorted) - 1; i >= 0; i-- {
		id := h.byNum[sorted[i].ID()]
		total := 0
		for _, child := range h.children[id] {
			total += 1 + counts[child]
		}
		counts[id] = total
	}

	return counts
}

// descendantCountsBounded counts descendants with an explicit visited
// set so a cyclic chain cannot loop
func (h *Hierarchy) descendantCountsBounded() map[string]int {
	counts := make(map[string]int, len(h.order))

	for _, id := range h.order {
		visited := map[string]bool{id: true}
		stack := append([]string(nil), h.children[id]...)
		total := 0
		for len(stack) > 0 && total <= len(h.order) {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[current] {
				continue
			}
			visited[current] = true
			total++
			stack = append(stack, h.children[current]...)
		}
		counts[id] = total
	}

	return counts
}
