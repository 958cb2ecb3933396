package main

import (
	"fmt"

	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/model"
)

func main() {
	document := "./example/meeting.json"

	doc, err := model.Load(document)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	h := graph.NewHierarchy(doc)
	counts := h.DescendantCounts()

	fmt.Printf("\n=== %s (%d nodes) ===\n", doc.Title(), h.Len())
	for _, id := range h.Order() {
		node, _ := h.Node(id)
		fmt.Printf("  %-14s %-12s %q\n", id, node.Type, node.Label)
		if n := counts[id]; n > 0 {
			fmt.Printf("    Descendants: %d\n", n)
		}
		if children := h.Children(id); len(children) > 0 {
			fmt.Printf("    Children: %v\n", children)
		}
	}

	if cycles := graph.FindCycles(h); len(cycles) > 0 {
		fmt.Printf("\nFound %d cycles:\n", len(cycles))
		for _, cycle := range cycles {
			fmt.Printf("  %v\n", cycle.Nodes)
		}
	}

	vg := graph.Build(doc, nil)
	fmt.Printf("\nVisible: %d nodes, %d edges\n", vg.Len(), len(vg.Edges))
	if !vg.Diagnostics.Empty() {
		fmt.Printf("Excluded: %d (%d dangling, %d cyclic)\n",
			vg.Diagnostics.Excluded,
			len(vg.Diagnostics.Dangling),
			len(vg.Diagnostics.Cycles))
	}
}
