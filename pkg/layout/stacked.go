package layout

import (
	"context"

	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/measure"
)

// Stacked is the fallback engine: visible nodes in document order,
// one per row, in a single left-aligned column. It cannot fail, so a
// broken layered run always still leaves something on screen.
type Stacked struct {
	Gap float64 // Vertical gap between boxes
}

// NewStacked creates a stacked engine with the default gap
func NewStacked() *Stacked {
	return &Stacked{Gap: 16}
}

// Name identifies the engine in results and logs
func (s *Stacked) Name() string {
	return "stacked"
}

// Layout stacks nodes top to bottom and connects parents to children
// with direct segments
func (s *Stacked) Layout(ctx context.Context, vg *graph.VisibleGraph, sizes map[string]measure.Size) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		Nodes:  make(map[string]NodeBox, vg.Len()),
		Engine: s.Name(),
	}

	y := 0.0
	for _, node := range vg.Nodes {
		size := sizes[node.ID]
		result.Nodes[node.ID] = NodeBox{X: 0, Y: y, W: size.W, H: size.H}
		y += size.H + s.Gap
	}

	for _, e := range vg.Edges {
		result.Edges = append(result.Edges, EdgePath{
			From:   e.From,
			To:     e.To,
			Points: []Point{result.Nodes[e.From].Center(), result.Nodes[e.To].Center()},
		})
	}

	result.Bounds = boundsOf(result.Nodes, result.Edges)
	return result, nil
}
