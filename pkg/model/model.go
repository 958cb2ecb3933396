package model

// NodeType classifies a mindmap node within the meeting hierarchy
type NodeType string

const (
	NodeTypeRoot    NodeType = "root"    // Meeting title (center node)
	NodeTypeTheme   NodeType = "theme"   // Major discussion theme
	NodeTypeChapter NodeType = "chapter" // Chapter within a theme
	NodeTypeClaim   NodeType = "claim"   // Statement made during the chapter

	// Outcome leaves attached to claims
	NodeTypeAction      NodeType = "action"      // Agreed follow-up
	NodeTypeAchievement NodeType = "achievement" // Reported win
	NodeTypeBlocker     NodeType = "blocker"     // Raised impediment
	NodeTypeDecision    NodeType = "decision"    // Recorded decision
	NodeTypeConcern     NodeType = "concern"     // Open worry
)

// Known returns true if the type is one the pipeline emits today.
// Unknown types still render, with a default style.
func (t NodeType) Known() bool {
	switch t {
	case NodeTypeRoot, NodeTypeTheme, NodeTypeChapter, NodeTypeClaim,
		NodeTypeAction, NodeTypeAchievement, NodeTypeBlocker,
		NodeTypeDecision, NodeTypeConcern:
		return true
	}
	return false
}

// IsOutcome returns true for the leaf outcome types
func (t NodeType) IsOutcome() bool {
	switch t {
	case NodeTypeAction, NodeTypeAchievement, NodeTypeBlocker,
		NodeTypeDecision, NodeTypeConcern:
		return true
	}
	return false
}

// Node represents a single mindmap node as produced by the pipeline
type Node struct {
	ID          string   `json:"id"`                    // Stable node identifier (e.g., "theme_2")
	Label       string   `json:"label"`                 // Display label, pre-truncated upstream
	Type        NodeType `json:"type"`                  // Node classification
	ParentID    string   `json:"parent_id,omitempty"`   // ID of the parent node; empty for the center node
	Description string   `json:"description,omitempty"` // Longer text for the detail view
	Timestamp   string   `json:"timestamp,omitempty"`   // Meeting timestamp "HH:MM:SS"
	Confidence  float64  `json:"confidence,omitempty"`  // Extraction confidence in [0,1]
}

// Edge represents an explicit cross-link between two nodes.
// The hierarchy itself is carried by ParentID; explicit edges are
// preserved for export but do not affect visibility or layout.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation,omitempty"` // e.g., "references", "blocks"
}

// IssueSeverity grades document validation findings
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "warning"
	SeverityError   IssueSeverity = "error"
)

// Issue describes a structural problem found in a document.
// Issues never abort loading; the graph builder drops the affected
// nodes and the rest of the document still renders.
type Issue struct {
	NodeID   string        `json:"nodeId"`   // Offending node, empty for document-level issues
	Problem  string        `json:"problem"`  // Short machine-readable kind (e.g., "duplicate-id")
	Severity IssueSeverity `json:"severity"` // warning or error
	Detail   string        `json:"detail"`   // Human-readable explanation
}
