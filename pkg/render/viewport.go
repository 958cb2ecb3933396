package render

import "github.com/ritzau/meetmap/pkg/layout"

// Zoom limits when the caller does not override them
const (
	DefaultMinZoom = 0.25
	DefaultMaxZoom = 4.0
)

// Viewport maps world coordinates to screen pixels. X and Y are the
// world point shown at the top-left pixel; Zoom is pixels per world
// unit; W and H are the output size in pixels.
type Viewport struct {
	X, Y    float64
	Zoom    float64
	W, H    int
	MinZoom float64
	MaxZoom float64
}

// NewViewport returns a viewport at zoom 1 with the default limits
func NewViewport(w, h int) Viewport {
	return Viewport{
		Zoom:    1,
		W:       w,
		H:       h,
		MinZoom: DefaultMinZoom,
		MaxZoom: DefaultMaxZoom,
	}
}

// SetZoomBounds overrides the zoom limits and re-clamps the current
// zoom. Nonsense bounds (min <= 0 or max < min) fall back to defaults.
func (v *Viewport) SetZoomBounds(min, max float64) {
	if min <= 0 || max < min {
		min, max = DefaultMinZoom, DefaultMaxZoom
	}
	v.MinZoom = min
	v.MaxZoom = max
	v.Zoom = v.ClampZoom(v.Zoom)
}

// ClampZoom clamps a zoom factor to the viewport's limits
func (v *Viewport) ClampZoom(z float64) float64 {
	min, max := v.MinZoom, v.MaxZoom
	if min <= 0 {
		min = DefaultMinZoom
	}
	if max < min {
		max = DefaultMaxZoom
	}
	if z < min {
		return min
	}
	if z > max {
		return max
	}
	return z
}

// Resize changes the output size, keeping the world point at the
// viewport centre fixed
func (v *Viewport) Resize(w, h int) {
	if v.Zoom > 0 {
		v.X += (float64(v.W) - float64(w)) / (2 * v.Zoom)
		v.Y += (float64(v.H) - float64(h)) / (2 * v.Zoom)
	}
	v.W = w
	v.H = h
}

// Pan shifts the view by a screen-space delta: positive dx moves the
// view right, revealing content further along the x axis.
func (v *Viewport) Pan(dx, dy float64) {
	if v.Zoom <= 0 {
		return
	}
	v.X += dx / v.Zoom
	v.Y += dy / v.Zoom
}

// ZoomAt multiplies the zoom by factor, keeping the world point under
// the screen position (sx, sy) stationary
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	if v.Zoom <= 0 || factor <= 0 {
		return
	}
	wx, wy := v.Unproject(sx, sy)
	next := v.ClampZoom(v.Zoom * factor)
	v.X = wx - sx/next
	v.Y = wy - sy/next
	v.Zoom = next
}

// Fit positions and zooms the viewport so the given world rectangle is
// fully visible and centred, with padding world units of breathing
// room on every side. Degenerate rectangles get a minimum extent so a
// single node still fits sensibly.
func (v *Viewport) Fit(b layout.Rect, padding float64) {
	if v.W <= 0 || v.H <= 0 {
		return
	}
	bw := b.W() + 2*padding
	bh := b.H() + 2*padding
	if bw < 1 {
		bw = 1
	}
	if bh < 1 {
		bh = 1
	}

	zx := float64(v.W) / bw
	zy := float64(v.H) / bh
	zoom := zx
	if zy < zoom {
		zoom = zy
	}
	v.Zoom = v.ClampZoom(zoom)

	visW := float64(v.W) / v.Zoom
	visH := float64(v.H) / v.Zoom
	v.X = b.MinX - padding - (visW-bw)/2
	v.Y = b.MinY - padding - (visH-bh)/2
}

// Project converts a world point to screen pixels
func (v Viewport) Project(wx, wy float64) (float64, float64) {
	return (wx - v.X) * v.Zoom, (wy - v.Y) * v.Zoom
}

// Unproject converts screen pixels back to a world point
func (v Viewport) Unproject(sx, sy float64) (float64, float64) {
	if v.Zoom <= 0 {
		return v.X, v.Y
	}
	return v.X + sx/v.Zoom, v.Y + sy/v.Zoom
}

// WorldRect returns the world rectangle currently visible
func (v Viewport) WorldRect() layout.Rect {
	if v.Zoom <= 0 {
		return layout.Rect{MinX: v.X, MinY: v.Y, MaxX: v.X, MaxY: v.Y}
	}
	return layout.Rect{
		MinX: v.X,
		MinY: v.Y,
		MaxX: v.X + float64(v.W)/v.Zoom,
		MaxY: v.Y + float64(v.H)/v.Zoom,
	}
}
