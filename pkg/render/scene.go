// Package render turns a visible graph plus a layout result into a
// paintable scene, and rasterizes scenes to RGBA images. Scenes live in
// world coordinates (the layout's coordinate space); the Viewport maps
// world space to screen pixels for interactive panning and zooming.
package render

import (
	"fmt"
	"image/color"

	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/layout"
	"github.com/ritzau/meetmap/pkg/measure"
	"github.com/ritzau/meetmap/pkg/model"
)

// Emphasis marks a box for special treatment by the rasterizer
type Emphasis int

const (
	EmphasisNone     Emphasis = iota
	EmphasisSelected          // the node the user has focused
	EmphasisEntering          // the node just became visible after an expand
)

// NodeStyle is the color pair for one node type
type NodeStyle struct {
	Fill   color.RGBA
	Border color.RGBA
}

// Theme holds every color the rasterizer needs
type Theme struct {
	Background color.RGBA
	Edge       color.RGBA
	Text       color.RGBA
	BadgeFill  color.RGBA
	BadgeText  color.RGBA
	Accent     color.RGBA // emphasis border

	Nodes   map[model.NodeType]NodeStyle
	Default NodeStyle

	CornerRadius float64
}

// Colors used in rendering
var (
	colorWhite     = color.RGBA{255, 255, 255, 255}
	colorInk       = color.RGBA{51, 51, 51, 255}    // #333
	colorEdge      = color.RGBA{144, 164, 174, 255} // #90a4ae
	colorAccent    = color.RGBA{255, 111, 0, 255}   // #ff6f00
	colorBadge     = color.RGBA{69, 90, 100, 255}   // #455a64
	colorRoot      = color.RGBA{232, 234, 246, 255} // #e8eaf6
	colorRootBdr   = color.RGBA{57, 73, 171, 255}   // #3949ab
	colorTheme     = color.RGBA{227, 242, 253, 255} // #e3f2fd
	colorThemeBdr  = color.RGBA{21, 101, 192, 255}  // #1565c0
	colorChap      = color.RGBA{224, 242, 241, 255} // #e0f2f1
	colorChapBdr   = color.RGBA{0, 105, 92, 255}    // #00695c
	colorClaim     = color.RGBA{250, 250, 250, 255} // #fafafa
	colorClaimBdr  = color.RGBA{97, 97, 97, 255}    // #616161
	colorAction    = color.RGBA{232, 245, 233, 255} // #e8f5e9
	colorActionBdr = color.RGBA{46, 125, 50, 255}   // #2e7d32
	colorAchv      = color.RGBA{241, 248, 233, 255} // #f1f8e9
	colorAchvBdr   = color.RGBA{85, 139, 47, 255}   // #558b2f
	colorBlock     = color.RGBA{255, 235, 238, 255} // #ffebee
	colorBlockBdr  = color.RGBA{198, 40, 40, 255}   // #c62828
	colorDecide    = color.RGBA{255, 243, 224, 255} // #fff3e0
	colorDecideBdr = color.RGBA{230, 81, 0, 255}    // #e65100
	colorConcern   = color.RGBA{255, 248, 225, 255} // #fff8e1
	colorConcBdr   = color.RGBA{249, 168, 37, 255}  // #f9a825
	colorOther     = color.RGBA{245, 245, 245, 255} // #f5f5f5
	colorOtherBdr  = color.RGBA{117, 117, 117, 255} // #757575
)

// DefaultTheme returns the standard light theme: cool colors for the
// structural types, outcome leaves tinted by sentiment.
func DefaultTheme() Theme {
	return Theme{
		Background: colorWhite,
		Edge:       colorEdge,
		Text:       colorInk,
		BadgeFill:  colorBadge,
		BadgeText:  colorWhite,
		Accent:     colorAccent,
		Nodes: map[model.NodeType]NodeStyle{
			model.NodeTypeRoot:        {Fill: colorRoot, Border: colorRootBdr},
			model.NodeTypeTheme:       {Fill: colorTheme, Border: colorThemeBdr},
			model.NodeTypeChapter:     {Fill: colorChap, Border: colorChapBdr},
			model.NodeTypeClaim:       {Fill: colorClaim, Border: colorClaimBdr},
			model.NodeTypeAction:      {Fill: colorAction, Border: colorActionBdr},
			model.NodeTypeAchievement: {Fill: colorAchv, Border: colorAchvBdr},
			model.NodeTypeBlocker:     {Fill: colorBlock, Border: colorBlockBdr},
			model.NodeTypeDecision:    {Fill: colorDecide, Border: colorDecideBdr},
			model.NodeTypeConcern:     {Fill: colorConcern, Border: colorConcBdr},
		},
		Default:      NodeStyle{Fill: colorOther, Border: colorOtherBdr},
		CornerRadius: 8,
	}
}

// Style returns the node style for a type, falling back to Default
func (t Theme) Style(nt model.NodeType) NodeStyle {
	if s, exists := t.Nodes[nt]; exists {
		return s
	}
	return t.Default
}

// Box is one node ready to paint: position and size from the layout,
// label lines pre-wrapped, colors resolved from the theme.
type Box struct {
	ID       string
	Type     model.NodeType
	X, Y     float64 // top-left corner in world coordinates
	W, H     float64
	Lines    []string
	Style    NodeStyle
	Badge    string // "+N" hidden descendants, empty when expanded
	Emphasis Emphasis
}

// Contains reports whether a world point falls inside the box
func (b Box) Contains(wx, wy float64) bool {
	return wx >= b.X && wx <= b.X+b.W && wy >= b.Y && wy <= b.Y+b.H
}

// Link is one parent→child connector as a world-space polyline. The
// first point sits on the parent's right edge and the last on the
// child's left edge; any intermediate points come from the layout's
// edge routing.
type Link struct {
	From, To string
	Points   []layout.Point
}

// Scene is everything the rasterizer needs, in world coordinates
type Scene struct {
	Title  string
	Boxes  []Box
	Links  []Link
	Bounds layout.Rect
	Theme  Theme

	byID map[string]int
}

// BuildScene assembles a scene from the visible graph and its layout.
// Nodes present in the graph but missing from the layout are skipped;
// a well-formed layout covers every visible node.
func BuildScene(doc *model.Document, vg *graph.VisibleGraph, res *layout.Result, theme Theme) *Scene {
	scene := &Scene{
		Bounds: res.Bounds,
		Theme:  theme,
		byID:   make(map[string]int),
	}
	if doc != nil {
		scene.Title = doc.Title()
	}
	if vg == nil || res == nil {
		return scene
	}

	est := measure.NewEstimator()
	for _, node := range vg.Nodes {
		nb, exists := res.Nodes[node.ID]
		if !exists {
			continue
		}
		box := Box{
			ID:    node.ID,
			Type:  node.Type,
			X:     nb.X,
			Y:     nb.Y,
			W:     nb.W,
			H:     nb.H,
			Lines: est.Wrap(node.Label, node.Type),
			Style: theme.Style(node.Type),
		}
		if hidden := vg.HiddenDescendants[node.ID]; hidden > 0 {
			box.Badge = fmt.Sprintf("+%d", hidden)
		}
		scene.byID[node.ID] = len(scene.Boxes)
		scene.Boxes = append(scene.Boxes, box)
	}

	for _, ep := range res.Edges {
		from, fromOK := scene.Box(ep.From)
		to, toOK := scene.Box(ep.To)
		if !fromOK || !toOK {
			continue
		}
		scene.Links = append(scene.Links, Link{
			From:   ep.From,
			To:     ep.To,
			Points: anchorPath(ep.Points, from, to),
		})
	}
	return scene
}

// Box looks up a node's box by id
func (s *Scene) Box(id string) (Box, bool) {
	idx, exists := s.byID[id]
	if !exists {
		return Box{}, false
	}
	return s.Boxes[idx], true
}

// SetEmphasis marks one box; pass EmphasisNone to clear
func (s *Scene) SetEmphasis(id string, e Emphasis) {
	if idx, exists := s.byID[id]; exists {
		s.Boxes[idx].Emphasis = e
	}
}

// HitTest returns the id of the box containing a world point
func (s *Scene) HitTest(wx, wy float64) (string, bool) {
	for i := len(s.Boxes) - 1; i >= 0; i-- {
		if s.Boxes[i].Contains(wx, wy) {
			return s.Boxes[i].ID, true
		}
	}
	return "", false
}

// Clone returns an independent copy. Box and link slices are copied so
// the original can keep changing emphasis while the copy is rasterized
// on another goroutine.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return nil
	}
	clone := &Scene{
		Title:  s.Title,
		Boxes:  make([]Box, len(s.Boxes)),
		Links:  make([]Link, len(s.Links)),
		Bounds: s.Bounds,
		Theme:  s.Theme,
		byID:   make(map[string]int, len(s.byID)),
	}
	copy(clone.Boxes, s.Boxes)
	copy(clone.Links, s.Links)
	for id, idx := range s.byID {
		clone.byID[id] = idx
	}
	return clone
}

// anchorPath pins a routed edge path to the facing edges of its boxes.
// The map reads left to right, so connectors leave the parent's right
// side and arrive at the child's left side regardless of how the
// router placed the endpoints.
func anchorPath(routed []layout.Point, from, to Box) []layout.Point {
	start := layout.Point{X: from.X + from.W, Y: from.Y + from.H/2}
	end := layout.Point{X: to.X, Y: to.Y + to.H/2}

	points := make([]layout.Point, 0, len(routed))
	points = append(points, start)
	if len(routed) > 2 {
		points = append(points, routed[1:len(routed)-1]...)
	}
	points = append(points, end)
	return points
}
