package view

import (
	"sort"

	"github.com/ritzau/meetmap/pkg/graph"
)

// VisibleDiff lists what changed between two visible graphs. The TUI
// uses Entering for the entrance highlight after an expand.
type VisibleDiff struct {
	Entering []string `json:"entering"` // Newly visible node ids, in document order
	Leaving  []string `json:"leaving"`  // Ids that disappeared
	Initial  bool     `json:"initial"`  // True when there was no previous graph to diff against
}

// diffVisible compares a previous visibility set against a new graph.
// A nil previous set means this is the first render; everything is
// technically new then, so nothing is reported as entering.
func diffVisible(previous map[string]bool, vg *graph.VisibleGraph) VisibleDiff {
	if previous == nil {
		return VisibleDiff{Initial: true}
	}

	diff := VisibleDiff{}
	for _, node := range vg.Nodes {
		if !previous[node.ID] {
			diff.Entering = append(diff.Entering, node.ID)
		}
	}

	current := make(map[string]bool, vg.Len())
	for _, node := range vg.Nodes {
		current[node.ID] = true
	}
	for id := range previous {
		if !current[id] {
			diff.Leaving = append(diff.Leaving, id)
		}
	}
	sort.Strings(diff.Leaving)

	return diff
}

// visibleSet extracts the id set of a visible graph
func visibleSet(vg *graph.VisibleGraph) map[string]bool {
	set := make(map[string]bool, vg.Len())
	for _, node := range vg.Nodes {
		set[node.ID] = true
	}
	return set
}
