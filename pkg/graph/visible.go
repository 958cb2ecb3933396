package graph

import (
	"github.com/ritzau/meetmap/pkg/logging"
	"github.com/ritzau/meetmap/pkg/model"
)

// Edge is a parent -> child link between two visible nodes
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Diagnostics reports what the builder had to drop to produce a
// renderable graph. Dropping is always per-node; a broken branch never
// prevents the rest of the document from rendering.
type Diagnostics struct {
	Dangling     []string `json:"dangling,omitempty"` // Nodes whose declared parent does not exist
	Cycles       []string `json:"cycles,omitempty"`   // Nodes on a circular parent chain
	Excluded     int      `json:"excluded"`           // Total nodes excluded for structural reasons
	DroppedEdges int      `json:"droppedEdges"`       // Parent links severed by those exclusions
}

// Empty returns true when nothing was dropped
func (d Diagnostics) Empty() bool {
	return d.Excluded == 0 && d.DroppedEdges == 0
}

// VisibleGraph is the subgraph of a document that should be drawn for
// one collapse state: the root, every node whose ancestor chain is
// intact and free of collapsed nodes, and the parent edges between
// them. Node order is document order with the root first, so two
// builds of the same inputs are structurally identical.
type VisibleGraph struct {
	Nodes []*model.Node
	Edges []Edge
	ByID  map[string]*model.Node

	// HasChildren marks nodes that can be toggled (structural
	// children, whether currently visible or not)
	HasChildren map[string]bool

	// HiddenDescendants counts the subtree hidden under each visible
	// collapsed node, for the collapse badge
	HiddenDescendants map[string]int

	Diagnostics Diagnostics
}

// Len returns the number of visible nodes
func (vg *VisibleGraph) Len() int {
	return len(vg.Nodes)
}

// Root returns the center node
func (vg *VisibleGraph) Root() *model.Node {
	if len(vg.Nodes) == 0 {
		return nil
	}
	return vg.Nodes[0]
}

// visibility classification for a single node
type nodeState int

const (
	stateVisible  nodeState = iota
	stateHidden             // An ancestor is collapsed
	stateDangling           // Own parent link is broken
	stateCycle              // On a circular chain
	stateOrphaned           // An ancestor was dropped
)

// Build computes the visible graph for a document and a set of
// collapsed node ids. It is a pure function of its inputs: the same
// document and collapse set always produce the same graph.
func Build(doc *model.Document, collapsed map[string]bool) *VisibleGraph {
	h := NewHierarchy(doc)

	cycleMember := make(map[string]bool)
	for _, cycle := range FindCycles(h) {
		for _, id := range cycle.Nodes {
			cycleMember[id] = true
		}
	}

	vg := &VisibleGraph{
		ByID:              make(map[string]*model.Node),
		HasChildren:       make(map[string]bool),
		HiddenDescendants: make(map[string]int),
	}

	var counts map[string]int // descendant counts, computed on first use

	for _, id := range h.Order() {
		state := classify(h, collapsed, cycleMember, id)

		switch state {
		case stateVisible:
			node, _ := h.Node(id)
			vg.Nodes = append(vg.Nodes, node)
			vg.ByID[id] = node
			vg.HasChildren[id] = h.HasChildren(id)
			if id != h.RootID() {
				parent, _ := h.Parent(id)
				vg.Edges = append(vg.Edges, Edge{From: parent, To: id})
			}
			if collapsed[id] && h.HasChildren(id) {
				if counts == nil {
					counts = h.DescendantCounts()
				}
				vg.HiddenDescendants[id] = counts[id]
			}

		case stateHidden:
			// Intentionally collapsed away, not a diagnostic

		case stateDangling:
			vg.Diagnostics.Dangling = append(vg.Diagnostics.Dangling, id)
			vg.Diagnostics.Excluded++
			vg.Diagnostics.DroppedEdges++

		case stateCycle:
			vg.Diagnostics.Cycles = append(vg.Diagnostics.Cycles, id)
			vg.Diagnostics.Excluded++
			vg.Diagnostics.DroppedEdges++

		case stateOrphaned:
			vg.Diagnostics.Excluded++
			vg.Diagnostics.DroppedEdges++
		}
	}

	if !vg.Diagnostics.Empty() {
		logging.Warn("Dropped unrenderable nodes",
			"dangling", len(vg.Diagnostics.Dangling),
			"cyclic", len(vg.Diagnostics.Cycles),
			"excluded", vg.Diagnostics.Excluded)
	}

	return vg
}

// classify walks a node's ancestor chain toward the root. The walk is
// bounded by the node count so that even a cycle the SCC pass somehow
// missed cannot loop forever.
func classify(h *Hierarchy, collapsed map[string]bool, cycleMember map[string]bool, id string) nodeState {
	if id == h.RootID() {
		return stateVisible
	}
	if cycleMember[id] {
		return stateCycle
	}

	node, _ := h.Node(id)
	if node.ParentID == "" || node.ParentID == id {
		// Parentless non-root nodes reference nothing that exists;
		// self-parents are a one-node cycle
		if node.ParentID == id {
			return stateCycle
		}
		return stateDangling
	}

	current := id
	for hops := 0; hops <= h.Len(); hops++ {
		parent, exists := h.Parent(current)
		if !exists {
			if current == id {
				return stateDangling
			}
			return stateOrphaned
		}
		if cycleMember[parent] {
			return stateOrphaned
		}
		if collapsed[parent] {
			return stateHidden
		}
		if parent == h.RootID() {
			return stateVisible
		}
		if parent == current {
			// Self-parent ancestor: broken chain
			return stateOrphaned
		}
		current = parent
	}

	// Walk exceeded the node count without reaching the root
	return stateCycle
}
