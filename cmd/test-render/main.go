package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ritzau/meetmap/pkg/export"
	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/layout"
	"github.com/ritzau/meetmap/pkg/measure"
	"github.com/ritzau/meetmap/pkg/model"
	"github.com/ritzau/meetmap/pkg/render"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: test-render <document.json>")
	}
	path := os.Args[1]

	fmt.Println("Loading document...")
	start := time.Now()
	doc, err := model.Load(path)
	if err != nil {
		log.Fatalf("Failed to load document: %v", err)
	}
	stats := doc.Stats()
	fmt.Printf("  %q: %d nodes, %d outcome leaves (%s)\n",
		doc.Title(), stats.Total, stats.Outcomes, time.Since(start).Round(time.Microsecond))

	fmt.Println("Building visible graph...")
	start = time.Now()
	vg := graph.Build(doc, nil)
	fmt.Printf("  %d visible nodes, %d edges (%s)\n",
		vg.Len(), len(vg.Edges), time.Since(start).Round(time.Microsecond))

	if !vg.Diagnostics.Empty() {
		fmt.Printf("⚠️  %d nodes excluded (%d dangling, %d in cycles), %d edges dropped\n",
			vg.Diagnostics.Excluded, len(vg.Diagnostics.Dangling),
			len(vg.Diagnostics.Cycles), vg.Diagnostics.DroppedEdges)
	}

	fmt.Println("Estimating node sizes...")
	est := measure.NewEstimator()
	sizes := make(map[string]measure.Size, vg.Len())
	for _, node := range vg.Nodes {
		sizes[node.ID] = est.Estimate(node.Label, node.Type)
	}

	fmt.Println("Running layout...")
	start = time.Now()
	res, err := layout.Compute(context.Background(), layout.NewLayered(), vg, sizes)
	if err != nil {
		// The probe should still produce an image when the layered
		// engine rejects the graph
		fmt.Printf("Warning: layered engine failed (%v), using stacked fallback\n", err)
		res, err = layout.Compute(context.Background(), layout.NewStacked(), vg, sizes)
		if err != nil {
			log.Fatalf("Fallback layout failed: %v", err)
		}
	}
	fmt.Printf("  engine %s, bounds %.0fx%.0f (%s)\n",
		res.Engine, res.Bounds.W(), res.Bounds.H(), time.Since(start).Round(time.Microsecond))

	fmt.Println("Rendering PNG...")
	start = time.Now()
	scene := render.BuildScene(doc, vg, res, render.DefaultTheme())
	out, err := os.Create("mindmap.png")
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer out.Close()
	if err := export.PNG(scene, out); err != nil {
		log.Fatalf("Failed to render PNG: %v", err)
	}
	info, _ := out.Stat()
	fmt.Printf("  %d boxes, %d links (%s)\n",
		len(scene.Boxes), len(scene.Links), time.Since(start).Round(time.Millisecond))

	if info != nil {
		fmt.Printf("\n✓ Wrote mindmap.png (%d bytes)\n", info.Size())
	} else {
		fmt.Println("\n✓ Wrote mindmap.png")
	}
}
