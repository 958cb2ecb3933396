package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ritzau/meetmap/pkg/layout"
)

// ErrEmptyScene is returned when there is nothing to paint
var ErrEmptyScene = errors.New("empty scene: nothing to render")

// maxRasterPixels bounds the supersampled working image; the
// supersample factor is reduced before the output size is.
const maxRasterPixels = 80 << 20

// Options configures rasterization
type Options struct {
	Scale       float64 // world units to output pixels, default 1
	Supersample int     // oversampling factor, default 2, clamped to [1, 4]
	FontSize    float64 // label size in world units, default 13
	Padding     float64 // world units around the scene in full renders, default 32
	MaxDim      int     // cap on either output dimension, default 4096
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Supersample < 1 {
		o.Supersample = 2
	}
	if o.Supersample > 4 {
		o.Supersample = 4
	}
	if o.FontSize <= 0 {
		o.FontSize = 13
	}
	if o.Padding <= 0 {
		o.Padding = 32
	}
	if o.MaxDim <= 0 {
		o.MaxDim = 4096
	}
	return o
}

// Rasterize paints the whole scene with padding around its bounds and
// a title banner. Output size follows the scene bounds at opts.Scale;
// when that would exceed opts.MaxDim on either side the scale is
// reduced proportionally, never the aspect ratio.
func Rasterize(scene *Scene, opts Options) (*image.RGBA, error) {
	if scene == nil || len(scene.Boxes) == 0 {
		return nil, ErrEmptyScene
	}
	opts = opts.withDefaults()

	worldW := scene.Bounds.W() + 2*opts.Padding
	worldH := scene.Bounds.H() + 2*opts.Padding
	scale := opts.Scale
	if w := worldW * scale; w > float64(opts.MaxDim) {
		scale = float64(opts.MaxDim) / worldW
	}
	if h := worldH * scale; h > float64(opts.MaxDim) {
		scale = float64(opts.MaxDim) / worldH
	}

	w := int(math.Ceil(worldW * scale))
	h := int(math.Ceil(worldH * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	vp := Viewport{
		X:    scene.Bounds.MinX - opts.Padding,
		Y:    scene.Bounds.MinY - opts.Padding,
		Zoom: scale,
		W:    w,
		H:    h,
	}
	return rasterize(scene, vp, opts, true)
}

// RasterizeViewport paints exactly the world rectangle the viewport
// shows, at the viewport's zoom. This is the "what you see" raster for
// interactive exports; no title banner is drawn.
func RasterizeViewport(scene *Scene, vp Viewport, opts Options) (*image.RGBA, error) {
	if scene == nil || len(scene.Boxes) == 0 {
		return nil, ErrEmptyScene
	}
	if vp.W <= 0 || vp.H <= 0 {
		return nil, fmt.Errorf("viewport %dx%d has no pixels", vp.W, vp.H)
	}
	if vp.Zoom <= 0 {
		return nil, fmt.Errorf("viewport zoom %v is not positive", vp.Zoom)
	}
	return rasterize(scene, vp, opts.withDefaults(), false)
}

func rasterize(scene *Scene, vp Viewport, opts Options, withTitle bool) (*image.RGBA, error) {
	ss := opts.Supersample
	for ss > 1 && vp.W*ss*vp.H*ss > maxRasterPixels {
		ss--
	}

	theme := scene.Theme
	if theme.Background.A == 0 {
		theme = DefaultTheme()
	}

	img := image.NewRGBA(image.Rect(0, 0, vp.W*ss, vp.H*ss))
	draw.Draw(img, img.Bounds(), image.NewUniform(theme.Background), image.Point{}, draw.Src)

	p := &painter{
		img:    img,
		scale:  vp.Zoom * float64(ss),
		origin: layout.Point{X: vp.X, Y: vp.Y},
		stroke: math.Max(1, 1.5*vp.Zoom*float64(ss)),
		theme:  theme,
	}

	// Text below ~5px is noise; paint boxes only at extreme zoom-out
	fontPx := opts.FontSize * vp.Zoom * float64(ss)
	if fontPx >= 5 {
		var err error
		if p.face, err = newFace(fontPx); err != nil {
			return nil, fmt.Errorf("label font: %w", err)
		}
		if p.badge, err = newFace(math.Max(fontPx*0.85, 5)); err != nil {
			return nil, fmt.Errorf("badge font: %w", err)
		}
	}

	for _, link := range scene.Links {
		p.drawLink(link)
	}
	for _, box := range scene.Boxes {
		p.drawBox(box)
	}

	if withTitle && scene.Title != "" {
		titleFace, err := newFace(math.Max(fontPx*1.25, 12))
		if err != nil {
			return nil, fmt.Errorf("title font: %w", err)
		}
		margin := 10 * ss
		p.drawTextLeft(margin, margin+titleFace.Metrics().Ascent.Ceil(), scene.Title, theme.Text, titleFace)
	}

	if ss == 1 {
		return img, nil
	}
	final := image.NewRGBA(image.Rect(0, 0, vp.W, vp.H))
	draw.CatmullRom.Scale(final, final.Bounds(), img, img.Bounds(), draw.Over, nil)
	return final, nil
}

// Go Regular is parsed once and shared; faces are cheap per render
var (
	fontOnce sync.Once
	baseFont *opentype.Font
	fontErr  error
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		baseFont, fontErr = opentype.Parse(goregular.TTF)
	})
	return baseFont, fontErr
}

func newFace(sizePx float64) (font.Face, error) {
	fnt, err := loadFont()
	if err != nil {
		return nil, err
	}
	// At 72 DPI one point is one pixel; hinting off because the
	// supersample pass smooths the result anyway
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// painter draws world-space shapes onto the supersampled image
type painter struct {
	img    *image.RGBA
	scale  float64      // world units to image pixels
	origin layout.Point // world coordinate at pixel (0, 0)
	stroke float64
	face   font.Face // nil when the zoom is too small for text
	badge  font.Face
	theme  Theme
}

func (p *painter) px(wx, wy float64) (float64, float64) {
	return (wx - p.origin.X) * p.scale, (wy - p.origin.Y) * p.scale
}

func (p *painter) drawBox(b Box) {
	x, y := p.px(b.X, b.Y)
	w := b.W * p.scale
	h := b.H * p.scale

	bounds := p.img.Bounds()
	if x > float64(bounds.Max.X) || y > float64(bounds.Max.Y) || x+w < 0 || y+h < 0 {
		return
	}

	r := p.theme.CornerRadius * p.scale
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}

	border := b.Style.Border
	strokeW := p.stroke
	switch b.Emphasis {
	case EmphasisSelected:
		border = p.theme.Accent
		strokeW = p.stroke * 2
	case EmphasisEntering:
		border = p.theme.Accent
	}
	p.fillRoundedRect(x, y, w, h, r, b.Style.Fill, border, strokeW)

	if p.face != nil && len(b.Lines) > 0 {
		lineH := p.face.Metrics().Height.Ceil()
		ascent := p.face.Metrics().Ascent.Ceil()
		top := y + h/2 - float64(lineH*len(b.Lines))/2
		for i, line := range b.Lines {
			baseline := int(top) + i*lineH + ascent
			p.drawTextCentered(int(x+w/2), baseline, line, p.theme.Text, p.face)
		}
	}

	if b.Badge != "" && p.badge != nil {
		p.drawBadge(b.Badge, x+w, y)
	}
}

// drawBadge paints the hidden-descendant count as a pill straddling
// the box's top-right corner
func (p *painter) drawBadge(text string, cx, cy float64) {
	tw := float64(font.MeasureString(p.badge, text).Ceil())
	m := p.badge.Metrics()
	th := float64(m.Height.Ceil())
	bw := tw + th
	bh := th * 1.3

	p.fillRoundedRect(cx-bw/2, cy-bh/2, bw, bh, bh/2, p.theme.BadgeFill, p.theme.BadgeFill, 1)
	baseline := int(cy-th/2) + m.Ascent.Ceil()
	p.drawTextCentered(int(cx), baseline, text, p.theme.BadgeText, p.badge)
}

func (p *painter) drawLink(l Link) {
	if len(l.Points) < 2 {
		return
	}
	pts := make([]layout.Point, len(l.Points))
	for i, pt := range l.Points {
		x, y := p.px(pt.X, pt.Y)
		pts[i] = layout.Point{X: x, Y: y}
	}

	if len(pts) == 2 {
		// Direct connectors get the classic mindmap S-curve
		midX := (pts[0].X + pts[1].X) / 2
		p.drawCubicBezier(pts[0].X, pts[0].Y, midX, pts[0].Y, midX, pts[1].Y, pts[1].X, pts[1].Y, p.theme.Edge)
		return
	}
	for i := 1; i < len(pts); i++ {
		p.drawLine(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, p.theme.Edge)
	}
}

// fillRoundedRect fills a rounded rectangle and strokes its border.
// Uses the signed distance to the rounded boundary: negative is
// inside, the band (-strokeW, 0] is the border.
func (p *painter) fillRoundedRect(x, y, w, h, r float64, fill, border color.RGBA, strokeW float64) {
	bounds := p.img.Bounds()
	x0 := clampInt(int(math.Floor(x))-1, bounds.Min.X, bounds.Max.X)
	y0 := clampInt(int(math.Floor(y))-1, bounds.Min.Y, bounds.Max.Y)
	x1 := clampInt(int(math.Ceil(x+w))+1, bounds.Min.X, bounds.Max.X)
	y1 := clampInt(int(math.Ceil(y+h))+1, bounds.Min.Y, bounds.Max.Y)

	cx := x + w/2
	cy := y + h/2
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			d := roundedDist(float64(px)+0.5-cx, float64(py)+0.5-cy, w/2, h/2, r)
			switch {
			case d <= -strokeW:
				p.img.SetRGBA(px, py, fill)
			case d <= 0:
				p.img.SetRGBA(px, py, border)
			}
		}
	}
}

// roundedDist is the signed distance from a point (relative to the
// rectangle centre) to the boundary of a rounded rectangle with half
// extents hw, hh and corner radius r
func roundedDist(dx, dy, hw, hh, r float64) float64 {
	qx := math.Abs(dx) - (hw - r)
	qy := math.Abs(dy) - (hh - r)
	ax := math.Max(qx, 0)
	ay := math.Max(qy, 0)
	return math.Hypot(ax, ay) + math.Min(math.Max(qx, qy), 0) - r
}

// drawLine draws a line between two points with the painter's stroke
// width, stepping perpendicular offsets for thickness
func (p *painter) drawLine(x1, y1, x2, y2 float64, c color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}

	halfThick := p.stroke / 2
	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				p.img.SetRGBA(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			p.img.SetRGBA(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawCubicBezier approximates the curve with short line segments
func (p *painter) drawCubicBezier(x1, y1, cx1, cy1, cx2, cy2, x2, y2 float64, c color.RGBA) {
	steps := 48.0
	var prevX, prevY float64
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		u := 1 - t
		x := u*u*u*x1 + 3*u*u*t*cx1 + 3*u*t*t*cx2 + t*t*t*x2
		y := u*u*u*y1 + 3*u*u*t*cy1 + 3*u*t*t*cy2 + t*t*t*y2
		if i > 0 {
			p.drawLine(prevX, prevY, x, y, c)
		}
		prevX, prevY = x, y
	}
}

// drawTextCentered draws text horizontally centred on x at the given
// baseline
func (p *painter) drawTextCentered(x, baseline int, text string, c color.RGBA, face font.Face) {
	width := font.MeasureString(face, text).Ceil()
	p.drawTextLeft(x-width/2, baseline, text, c, face)
}

func (p *painter) drawTextLeft(x, baseline int, text string, c color.RGBA, face font.Face) {
	d := &font.Drawer{
		Dst:  p.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)},
	}
	d.DrawString(text)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
