package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ritzau/meetmap/pkg/render"
)

// One terminal cell covers one estimator character cell: 8 world units
// wide and 18 tall. At zoom 1 a wrapped label line therefore fits its
// box row for row.
const (
	cellPxW = 8.0
	cellPxH = 18.0
)

// cellCanvas is a rune grid with a style per cell. Boxes overdraw
// links, so links are painted first.
type cellCanvas struct {
	w, h   int
	runes  []rune
	styles []*lipgloss.Style
}

func newCellCanvas(w, h int) *cellCanvas {
	c := &cellCanvas{
		w:      w,
		h:      h,
		runes:  make([]rune, w*h),
		styles: make([]*lipgloss.Style, w*h),
	}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

func (c *cellCanvas) set(x, y int, r rune, st *lipgloss.Style) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	i := y*c.w + x
	c.runes[i] = r
	c.styles[i] = st
}

// String renders the grid, batching runs of equally-styled cells so
// each row emits a handful of escape sequences instead of one per cell.
func (c *cellCanvas) String() string {
	if c.w == 0 || c.h == 0 {
		return ""
	}
	var sb strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := y * c.w
		runStart := 0
		runStyle := c.styles[row]
		flush := func(end int) {
			text := string(c.runes[row+runStart : row+end])
			if runStyle != nil {
				text = runStyle.Render(text)
			}
			sb.WriteString(text)
		}
		for x := 1; x < c.w; x++ {
			if c.styles[row+x] != runStyle {
				flush(x)
				runStart = x
				runStyle = c.styles[row+x]
			}
		}
		flush(c.w)
	}
	return sb.String()
}

// worldToCell converts a world point to a cell coordinate under vp
func worldToCell(vp render.Viewport, wx, wy float64) (int, int) {
	sx, sy := vp.Project(wx, wy)
	return int(sx / cellPxW), int(sy / cellPxH)
}

// cellToWorld converts a cell (its centre) back to a world point
func cellToWorld(vp render.Viewport, cx, cy int) (float64, float64) {
	return vp.Unproject(float64(cx)*cellPxW+cellPxW/2, float64(cy)*cellPxH+cellPxH/2)
}

// drawScene paints the visible part of a scene onto the canvas
func drawScene(c *cellCanvas, scene *render.Scene, vp render.Viewport) {
	if scene == nil {
		return
	}
	for _, link := range scene.Links {
		drawLink(c, vp, link)
	}
	for _, box := range scene.Boxes {
		drawBox(c, vp, box)
	}
}

// drawLink draws a parent→child connector as an elbow: out of the
// parent, a vertical run at the midpoint, then into the child. Curves
// do not survive a character grid, so the elbow stands in for them.
func drawLink(c *cellCanvas, vp render.Viewport, link render.Link) {
	if len(link.Points) < 2 {
		return
	}
	first := link.Points[0]
	last := link.Points[len(link.Points)-1]
	x1, y1 := worldToCell(vp, first.X, first.Y)
	x2, y2 := worldToCell(vp, last.X, last.Y)
	if x2 <= x1 {
		x2 = x1 + 1
	}
	midX := (x1 + x2) / 2

	for x := x1; x < midX; x++ {
		c.set(x, y1, '─', &edgeStyle)
	}
	for x := midX + 1; x <= x2; x++ {
		c.set(x, y2, '─', &edgeStyle)
	}
	switch {
	case y1 == y2:
		c.set(midX, y1, '─', &edgeStyle)
	case y1 < y2: // child sits below the parent
		c.set(midX, y1, '╮', &edgeStyle)
		for y := y1 + 1; y < y2; y++ {
			c.set(midX, y, '│', &edgeStyle)
		}
		c.set(midX, y2, '╰', &edgeStyle)
	default:
		c.set(midX, y1, '╯', &edgeStyle)
		for y := y2 + 1; y < y1; y++ {
			c.set(midX, y, '│', &edgeStyle)
		}
		c.set(midX, y2, '╭', &edgeStyle)
	}
}

func drawBox(c *cellCanvas, vp render.Viewport, box render.Box) {
	x0, y0 := worldToCell(vp, box.X, box.Y)
	x1, y1 := worldToCell(vp, box.X+box.W, box.Y+box.H)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	if x1 < 0 || y1 < 0 || x0 >= c.w || y0 >= c.h {
		return
	}

	st := styleFor(box.Type,
		box.Emphasis == render.EmphasisSelected,
		box.Emphasis == render.EmphasisEntering)

	// Too small for a border at this zoom: a single marker keeps the
	// node clickable and colored.
	if x1-x0 < 3 || y1-y0 < 2 {
		c.set((x0+x1)/2, (y0+y1)/2, '▪', st)
		return
	}

	c.set(x0, y0, '╭', st)
	c.set(x1, y0, '╮', st)
	c.set(x0, y1, '╰', st)
	c.set(x1, y1, '╯', st)
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─', st)
		c.set(x, y1, '─', st)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│', st)
		c.set(x1, y, '│', st)
		for x := x0 + 1; x < x1; x++ {
			c.set(x, y, ' ', st)
		}
	}

	// Label lines, centred inside the border with one cell of padding
	textW := x1 - x0 - 3
	rows := y1 - y0 - 1
	if textW > 0 && rows > 0 {
		visible := box.Lines
		if len(visible) > rows {
			visible = visible[:rows]
		}
		startY := y0 + 1 + (rows-len(visible))/2
		for i, line := range visible {
			text := truncate(line, textW)
			pad := (textW - len([]rune(text))) / 2
			for j, r := range []rune(text) {
				c.set(x0+2+pad+j, startY+i, r, st)
			}
		}
	}

	// Collapse badge sits on the top border near the right corner
	if box.Badge != "" {
		badge := []rune(box.Badge)
		bx := x1 - len(badge) - 1
		if bx > x0 {
			for j, r := range badge {
				c.set(bx+j, y0, r, &badgeStyle)
			}
		}
	}
}
