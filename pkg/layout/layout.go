// Package layout positions visible mindmap nodes. The actual
// algorithm sits behind the Engine interface: the layered engine
// delegates to an off-the-shelf Sugiyama implementation, and the
// stacked engine is the deterministic fallback used when the layered
// one fails. Trivial graphs (zero or one node) are positioned
// directly, without invoking any engine.
package layout

import (
	"context"
	"fmt"

	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/measure"
)

// Point is a position in layout pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeBox is a positioned node: top-left corner plus the estimated size
type NodeBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the box's center point
func (b NodeBox) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// EdgePath is the polyline for one parent -> child edge
type EdgePath struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Points []Point `json:"points"`
}

// Rect is an axis-aligned bounding box
type Rect struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// W returns the rect width
func (r Rect) W() float64 { return r.MaxX - r.MinX }

// H returns the rect height
func (r Rect) H() float64 { return r.MaxY - r.MinY }

// grow expands the rect to include a point
func (r *Rect) grow(x, y float64) {
	if x < r.MinX {
		r.MinX = x
	}
	if x > r.MaxX {
		r.MaxX = x
	}
	if y < r.MinY {
		r.MinY = y
	}
	if y > r.MaxY {
		r.MaxY = y
	}
}

// Result is a complete layout for one visible graph
type Result struct {
	Nodes  map[string]NodeBox `json:"nodes"`
	Edges  []EdgePath         `json:"edges"`
	Bounds Rect               `json:"bounds"`
	Engine string             `json:"engine"` // Name of the engine that produced it
}

// Empty returns true when the result positions nothing
func (r *Result) Empty() bool {
	return r == nil || len(r.Nodes) == 0
}

// Engine computes node positions and edge paths for a visible graph.
// Implementations must be pure: the same graph and sizes always yield
// the same result. Blocking engines should honor ctx, though the
// caller's generation check is what actually discards stale work.
type Engine interface {
	Name() string
	Layout(ctx context.Context, vg *graph.VisibleGraph, sizes map[string]measure.Size) (*Result, error)
}

// Compute runs an engine on a visible graph, short-circuiting the
// trivial cases: an empty graph yields an empty result and a single
// node is anchored at the origin. Engines only ever see two or more
// nodes.
func Compute(ctx context.Context, engine Engine, vg *graph.VisibleGraph, sizes map[string]measure.Size) (*Result, error) {
	if vg == nil || vg.Len() == 0 {
		return &Result{Nodes: map[string]NodeBox{}, Engine: "none"}, nil
	}

	if vg.Len() == 1 {
		id := vg.Nodes[0].ID
		size := sizes[id]
		box := NodeBox{X: 0, Y: 0, W: size.W, H: size.H}
		return &Result{
			Nodes:  map[string]NodeBox{id: box},
			Bounds: Rect{MaxX: size.W, MaxY: size.H},
			Engine: "none",
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := engine.Layout(ctx, vg, sizes)
	if err != nil {
		return nil, fmt.Errorf("%s engine: %w", engine.Name(), err)
	}
	return res, nil
}

// boundsOf computes the bounding box over node boxes and edge points
func boundsOf(nodes map[string]NodeBox, edges []EdgePath) Rect {
	bounds := Rect{}
	first := true
	for _, box := range nodes {
		if first {
			bounds = Rect{MinX: box.X, MinY: box.Y, MaxX: box.X, MaxY: box.Y}
			first = false
		}
		bounds.grow(box.X, box.Y)
		bounds.grow(box.X+box.W, box.Y+box.H)
	}
	for _, edge := range edges {
		for _, p := range edge.Points {
			bounds.grow(p.X, p.Y)
		}
	}
	return bounds
}
