package graph

import (
	"testing"

	"github.com/ritzau/meetmap/pkg/model"
)

func testDocument() *model.Document {
	// root -> theme_1 -> chapter_1 -> {claim_1, claim_2}
	//      -> theme_2
	return &model.Document{
		CenterNode: model.Node{ID: "root", Label: "Planning", Type: model.NodeTypeRoot},
		Nodes: []model.Node{
			{ID: "theme_1", Label: "Delivery", Type: model.NodeTypeTheme, ParentID: "root"},
			{ID: "chapter_1", Label: "Cutover", Type: model.NodeTypeChapter, ParentID: "theme_1"},
			{ID: "claim_1", Label: "Ship Friday", Type: model.NodeTypeClaim, ParentID: "chapter_1"},
			{ID: "claim_2", Label: "QA is green", Type: model.NodeTypeClaim, ParentID: "chapter_1"},
			{ID: "theme_2", Label: "Hiring", Type: model.NodeTypeTheme, ParentID: "root"},
		},
	}
}

func TestNewHierarchy_BuildsParentChildMaps(t *testing.T) {
	h := NewHierarchy(testDocument())

	if h.Len() != 6 {
		t.Errorf("Expected 6 nodes, got %d", h.Len())
	}
	if h.RootID() != "root" {
		t.Errorf("Expected root id root, got %q", h.RootID())
	}

	children := h.Children("chapter_1")
	if len(children) != 2 || children[0] != "claim_1" || children[1] != "claim_2" {
		t.Errorf("Expected chapter_1 children [claim_1 claim_2] in document order, got %v", children)
	}

	parent, exists := h.Parent("theme_2")
	if !exists || parent != "root" {
		t.Errorf("Expected theme_2 parent root, got %q (exists=%v)", parent, exists)
	}

	if h.HasChildren("claim_1") {
		t.Error("Expected claim_1 to be a leaf")
	}
}

func TestNewHierarchy_ForwardReference(t *testing.T) {
	// Child listed before its parent must still get wired up
	doc := &model.Document{
		CenterNode: model.Node{ID: "root", Label: "M", Type: model.NodeTypeRoot},
		Nodes: []model.Node{
			{ID: "chapter_1", Label: "C", Type: model.NodeTypeChapter, ParentID: "theme_1"},
			{ID: "theme_1", Label: "T", Type: model.NodeTypeTheme, ParentID: "root"},
		},
	}

	h := NewHierarchy(doc)

	if children := h.Children("theme_1"); len(children) != 1 || children[0] != "chapter_1" {
		t.Errorf("Expected theme_1 to have child chapter_1, got %v", children)
	}
}

func TestNewHierarchy_DuplicateKeepsFirst(t *testing.T) {
	doc := &model.Document{
		CenterNode: model.Node{ID: "root", Label: "M", Type: model.NodeTypeRoot},
		Nodes: []model.Node{
			{ID: "a", Label: "first", Type: model.NodeTypeTheme, ParentID: "root"},
			{ID: "a", Label: "second", Type: model.NodeTypeTheme, ParentID: "root"},
		},
	}

	h := NewHierarchy(doc)

	if h.Len() != 2 {
		t.Errorf("Expected duplicate to be dropped, got %d nodes", h.Len())
	}
	node, _ := h.Node("a")
	if node.Label != "first" {
		t.Errorf("Expected first occurrence to win, got label %q", node.Label)
	}
}

func TestDescendantCounts(t *testing.T) {
	h := NewHierarchy(testDocument())

	counts := h.DescendantCounts()

	expected := map[string]int{
		"root":      5,
		"theme_1":   3,
		"chapter_1": 2,
		"claim_1":   0,
		"claim_2":   0,
		"theme_2":   0,
	}
	for id, want := range expected {
		if counts[id] != want {
			t.Errorf("Expected %s to have %d descendants, got %d", id, want, counts[id])
		}
	}
}

func TestDescendantCounts_CyclicFallback(t *testing.T) {
	// a and b form a cycle; counts must still terminate and the
	// root-reachable part must be correct
	doc := &model.Document{
		CenterNode: model.Node{ID: "root", Label: "M", Type: model.NodeTypeRoot},
		Nodes: []model.Node{
			{ID: "theme_1", Label: "T", Type: model.NodeTypeTheme, ParentID: "root"},
			{ID: "a", Label: "A", Type: model.NodeTypeChapter, ParentID: "b"},
			{ID: "b", Label: "B", Type: model.NodeTypeChapter, ParentID: "a"},
		},
	}

	h := NewHierarchy(doc)
	counts := h.DescendantCounts()

	if counts["root"] != 1 {
		t.Errorf("Expected root to count only theme_1, got %d", counts["root"])
	}
	if counts["theme_1"] != 0 {
		t.Errorf("Expected theme_1 to have no descendants, got %d", counts["theme_1"])
	}
}

func TestFindCycles_CleanDocument(t *testing.T) {
	h := NewHierarchy(testDocument())

	cycles := FindCycles(h)
	if len(cycles) != 0 {
		t.Errorf("Expected no cycles, got %v", cycles)
	}
}

func TestFindCycles_TwoNodeCycle(t *testing.T) {
	doc := &model.Document{
		CenterNode: model.Node{ID: "root", Label: "M", Type: model.NodeTypeRoot},
		Nodes: []model.Node{
			{ID: "a", Label: "A", Type: model.NodeTypeChapter, ParentID: "b"},
			{ID: "b", Label: "B", Type: model.NodeTypeChapter, ParentID: "a"},
		},
	}

	cycles := FindCycles(NewHierarchy(doc))

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	members := make(map[string]bool)
	for _, id := range cycles[0].Nodes {
		members[id] = true
	}
	if !members["a"] || !members["b"] {
		t.Errorf("Expected cycle to contain a and b, got %v", cycles[0].Nodes)
	}
}

func TestFindCycles_ThreeNodeCycle(t *testing.T) {
	doc := &model.Document{
		CenterNode: model.Node{ID: "root", Label: "M", Type: model.NodeTypeRoot},
		Nodes: []model.Node{
			{ID: "a", Label: "A", Type: model.NodeTypeChapter, ParentID: "b"},
			{ID: "b", Label: "B", Type: model.NodeTypeChapter, ParentID: "c"},
			{ID: "c", Label: "C", Type: model.NodeTypeChapter, ParentID: "a"},
		},
	}

	cycles := FindCycles(NewHierarchy(doc))

	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0].Nodes) != 3 {
		t.Errorf("Expected cycle of length 3, got %d", len(cycles[0].Nodes))
	}
}
