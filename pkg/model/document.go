package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Document is one complete mindmap as emitted by the meeting pipeline.
// The flat Nodes list plus ParentID references carries the hierarchy;
// CenterNode is the root and is not repeated in Nodes.
type Document struct {
	CenterNode Node            `json:"center_node"`     // Meeting root
	Nodes      []Node          `json:"nodes"`           // All non-root nodes, flat
	Edges      []Edge          `json:"edges"`           // Explicit cross-links, usually empty
	Meta       json.RawMessage `json:"meta,omitempty"`  // Pipeline metadata, passed through untouched

	// LoadID identifies this parse of the document. It keys layout
	// caches and log correlation and is never serialized.
	LoadID uuid.UUID `json:"-"`
}

// Stats summarizes a document for status lines and console output
type Stats struct {
	Total    int              `json:"total"`    // All nodes including the root
	ByType   map[NodeType]int `json:"byType"`   // Count per node type
	Outcomes int              `json:"outcomes"` // Count of outcome leaves
}

// Parse decodes a pipeline document and assigns a fresh LoadID.
// A missing or id-less center node is the only hard failure; every
// other structural problem is reported later by Validate and handled
// by the graph builder.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mindmap document: %w", err)
	}
	if doc.CenterNode.ID == "" {
		return nil, fmt.Errorf("mindmap document has no center node")
	}
	if doc.CenterNode.Type == "" {
		doc.CenterNode.Type = NodeTypeRoot
	}
	doc.LoadID = uuid.New()
	return &doc, nil
}

// Load reads and parses a document from disk
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return doc, nil
}

// Marshal serializes the document exactly as it would arrive from the
// pipeline, so Parse(Marshal(d)) reproduces d (LoadID aside).
func (d *Document) Marshal() ([]byte, error) {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing mindmap document: %w", err)
	}
	return data, nil
}

// Title returns the meeting title (the center node's label)
func (d *Document) Title() string {
	return d.CenterNode.Label
}

// Root returns the center node
func (d *Document) Root() *Node {
	return &d.CenterNode
}

// NodeMap builds an id -> node index over all nodes including the root
func (d *Document) NodeMap() map[string]*Node {
	nodes := make(map[string]*Node, len(d.Nodes)+1)
	nodes[d.CenterNode.ID] = &d.CenterNode
	for i := range d.Nodes {
		nodes[d.Nodes[i].ID] = &d.Nodes[i]
	}
	return nodes
}

// Stats counts nodes by type
func (d *Document) Stats() Stats {
	stats := Stats{
		Total:  len(d.Nodes) + 1,
		ByType: make(map[NodeType]int),
	}
	stats.ByType[d.CenterNode.Type]++
	for i := range d.Nodes {
		stats.ByType[d.Nodes[i].Type]++
		if d.Nodes[i].Type.IsOutcome() {
			stats.Outcomes++
		}
	}
	return stats
}

// Validate reports structural problems without failing the load.
// Dangling parents and cycles are not checked here; the graph builder
// detects those while building the visible graph.
func (d *Document) Validate() []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(d.Nodes)+1)
	seen[d.CenterNode.ID] = true

	if d.CenterNode.Type != NodeTypeRoot {
		issues = append(issues, Issue{
			NodeID:   d.CenterNode.ID,
			Problem:  "center-not-root",
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("center node has type %q, expected %q", d.CenterNode.Type, NodeTypeRoot),
		})
	}

	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.ID == "" {
			issues = append(issues, Issue{
				Problem:  "empty-id",
				Severity: SeverityError,
				Detail:   fmt.Sprintf("node %d has an empty id", i),
			})
			continue
		}
		if seen[n.ID] {
			issues = append(issues, Issue{
				NodeID:   n.ID,
				Problem:  "duplicate-id",
				Severity: SeverityError,
				Detail:   fmt.Sprintf("node id %q appears more than once; later occurrences are ignored", n.ID),
			})
		}
		seen[n.ID] = true
		if n.ParentID == n.ID {
			issues = append(issues, Issue{
				NodeID:   n.ID,
				Problem:  "self-parent",
				Severity: SeverityError,
				Detail:   fmt.Sprintf("node %q is its own parent", n.ID),
			})
		}
		if !n.Type.Known() {
			issues = append(issues, Issue{
				NodeID:   n.ID,
				Problem:  "unknown-type",
				Severity: SeverityWarning,
				Detail:   fmt.Sprintf("node %q has unknown type %q; it renders with the default style", n.ID, n.Type),
			})
		}
	}

	return issues
}
