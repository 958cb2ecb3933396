package layout

import (
	"context"
	"fmt"

	glayout "github.com/nikolaydubina/go-graph-layout/layout"

	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/measure"
)

// Layered positions nodes with the Sugiyama layered algorithm from
// go-graph-layout. The library lays layers out top to bottom; the
// adapter feeds it transposed node sizes and swaps coordinates back,
// which turns the result into the left-to-right fan the mindmap wants
// (root on the left, outcomes on the right).
type Layered struct {
	SiblingGap float64 // Gap between nodes within a level
	LevelGap   float64 // Gap between levels
	Epochs     int     // Ordering optimizer rounds
}

// NewLayered creates a layered engine with the default spacing
func NewLayered() *Layered {
	return &Layered{
		SiblingGap: 24,
		LevelGap:   56,
		Epochs:     10,
	}
}

// Name identifies the engine in results and logs
func (l *Layered) Name() string {
	return "layered"
}

// Layout runs the layered algorithm. The library reports broken
// invariants by panicking; the recover turns that into an error so
// the caller can fall back instead of crashing.
func (l *Layered) Layout(ctx context.Context, vg *graph.VisibleGraph, sizes map[string]measure.Size) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("sugiyama phases failed: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stable numbering by visible order keeps the layout deterministic
	num := make(map[string]uint64, vg.Len())
	ids := make([]string, vg.Len())
	for i, node := range vg.Nodes {
		num[node.ID] = uint64(i)
		ids[i] = node.ID
	}

	// Sibling spacing must clear the tallest node, because the
	// in-layer assigner spaces node centers uniformly
	maxExtent := 0.0
	for _, id := range ids {
		if h := sizes[id].H; h > maxExtent {
			maxExtent = h
		}
	}
	delta := int(maxExtent + l.SiblingGap)

	g := glayout.Graph{
		Nodes: make(map[uint64]glayout.Node, vg.Len()),
		Edges: make(map[[2]uint64]glayout.Edge, len(vg.Edges)),
	}
	for _, id := range ids {
		size := sizes[id]
		// Transposed: width runs down the layer axis
		g.Nodes[num[id]] = glayout.Node{W: int(size.H), H: int(size.W)}
	}
	for _, e := range vg.Edges {
		g.Edges[[2]uint64{num[e.From], num[e.To]}] = glayout.Edge{}
	}

	sugiyama := glayout.SugiyamaLayersStrategyGraphLayout{
		CycleRemover:   glayout.NewSimpleCycleRemover(),
		LevelsAssigner: glayout.NewLayeredGraph,
		OrderingAssigner: glayout.LBLOrderingOptimizer{
			Epochs: l.Epochs,
			LayerOrderingOptimizer: glayout.CompositeLayerOrderingOptimizer{
				Optimizers: []glayout.LayerOrderingOptimizer{
					glayout.WMedianOrderingOptimizer{},
					glayout.SwitchAdjacentOrderingOptimizer{},
				},
			},
		}.Optimize,
		NodesHorizontalCoordinatesAssigner: glayout.BrandesKopfLayersNodesHorizontalAssigner{
			Delta: delta,
		},
		NodesVerticalCoordinatesAssigner: glayout.BasicNodesVerticalCoordinatesAssigner{
			MarginLayers:   int(l.LevelGap),
			FakeNodeHeight: 25,
		},
		EdgePathAssigner: glayout.StraightEdgePathAssigner{
			MarginX:        int(l.SiblingGap),
			MarginY:        int(l.LevelGap),
			FakeNodeWidth:  25,
			FakeNodeHeight: 25,
		}.UpdateGraphLayout,
	}

	sugiyama.UpdateGraphLayout(g)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Swap coordinates back into left-to-right space
	result := &Result{
		Nodes:  make(map[string]NodeBox, vg.Len()),
		Engine: l.Name(),
	}
	for _, id := range ids {
		n := g.Nodes[num[id]]
		size := sizes[id]
		result.Nodes[id] = NodeBox{
			X: float64(n.Y),
			Y: float64(n.X),
			W: size.W,
			H: size.H,
		}
	}
	for _, e := range vg.Edges {
		path := g.Edges[[2]uint64{num[e.From], num[e.To]}]
		points := make([]Point, 0, len(path.Path))
		for _, p := range path.Path {
			points = append(points, Point{X: float64(p.Y), Y: float64(p.X)})
		}
		if len(points) == 0 {
			// Degenerate path: connect the box centers directly
			points = []Point{result.Nodes[e.From].Center(), result.Nodes[e.To].Center()}
		}
		result.Edges = append(result.Edges, EdgePath{From: e.From, To: e.To, Points: points})
	}

	result.Bounds = boundsOf(result.Nodes, result.Edges)
	return result, nil
}
