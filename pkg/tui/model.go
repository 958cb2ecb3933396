// Package tui is the interactive terminal front end: the mindmap drawn
// on a character canvas with pan, zoom, collapse toggling, a detail
// panel, and an export menu. Layout runs off the update loop; results
// carry generation tags so stale ones are dropped, never applied.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ritzau/meetmap/pkg/model"
	"github.com/ritzau/meetmap/pkg/render"
	"github.com/ritzau/meetmap/pkg/view"
	"github.com/ritzau/meetmap/pkg/watcher"
)

// mode controls which input map is active
type mode int

const (
	modeMap    mode = iota
	modeExport      // export menu popup is open
)

// Fit animation and entrance highlight timing
const (
	fitFrames      = 12
	enteringFrames = 12
	fitPadding     = 40.0 // world units around the bounds when fitting
)

// Options configures a TUI session
type Options struct {
	Document     *model.Document
	DocumentPath string                     // for reloads; empty disables reloading
	OutDir       string                     // where exports land
	MinZoom      float64                    // 0 keeps the default
	MaxZoom      float64                    // 0 keeps the default
	Changes      <-chan watcher.ChangeEvent // nil when not watching
}

// viewportAnim interpolates the viewport between two placements
type viewportAnim struct {
	active   bool
	frame    int
	from, to render.Viewport
}

// Model holds the Bubble Tea state for the mindmap viewer
type Model struct {
	opts  Options
	view  *view.View
	theme render.Theme

	// Current drawable state
	scene *render.Scene
	vp    render.Viewport

	// Layout bookkeeping: pendingGen guards against stale results
	computing  bool
	pendingGen uint64

	// Selection and highlights
	selected string
	entering map[string]int // id → highlight frames remaining
	anim     viewportAnim

	// Mouse drag state
	panning    bool
	dragMoved  bool
	lastMouseX int
	lastMouseY int

	// Layout sizing
	width   int
	height  int
	mapCols int
	mapRows int

	mode    mode
	status  string
	spinner spinner.Model
}

// New prepares the initial model. The first layout is kicked off by
// Init.
func New(opts Options) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Line

	vp := render.NewViewport(0, 0)
	vp.SetZoomBounds(opts.MinZoom, opts.MaxZoom)

	v := view.New()
	if opts.Document != nil {
		v.SetDocument(opts.Document)
	}

	return &Model{
		opts:     opts,
		view:     v,
		theme:    render.DefaultTheme(),
		vp:       vp,
		entering: make(map[string]int),
		mode:     modeMap,
		status:   "Ready",
		spinner:  spin,
	}
}

// Init starts the spinner, the first layout, and the reload listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRebuild(), waitForChangeCmd(m.opts.Changes))
}

// Update is the Bubble Tea update loop: handle events and emit commands.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		if m.scene != nil {
			m.cancelFitAnimation()
			m.vp.Fit(m.scene.Bounds, fitPadding)
		}
		return m, nil

	case layoutDoneMsg:
		return m, m.handleLayoutDone(msg)

	case animTickMsg:
		return m, m.stepAnimation()

	case documentChangedMsg:
		return m, m.handleDocumentChanged(msg)

	case documentLoadedMsg:
		return m, m.handleDocumentLoaded(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Export failed: " + msg.err.Error())
		} else {
			m.status = "Wrote " + msg.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m, nil
}

// updateLayout splits the terminal into map, detail panel, and status
// line, and resizes the viewport to the map pane.
func (m *Model) updateLayout() {
	m.mapRows = max(0, m.height-1)
	detail := detailWidth
	if m.width < minWidthForDetail {
		detail = 0
	}
	m.mapCols = max(0, m.width-detail)
	m.vp.Resize(int(float64(m.mapCols)*cellPxW), int(float64(m.mapRows)*cellPxH))
}

// startRebuild recomputes the visible graph. Cache hits install
// immediately; misses run the layout engine off the update loop.
func (m *Model) startRebuild() tea.Cmd {
	req := m.view.Rebuild()
	if req == nil {
		m.computing = false
		m.noteEntering()
		m.installScene()
		return m.startFitAnimation()
	}
	m.computing = true
	m.pendingGen = req.Gen
	return computeLayoutCmd(m.view, req)
}

func (m *Model) handleLayoutDone(msg layoutDoneMsg) tea.Cmd {
	if msg.out == nil {
		return nil
	}
	status := m.view.Apply(msg.out)
	if status == view.StatusStale {
		// A newer request is still in flight; keep waiting for it
		return nil
	}
	if msg.out.Gen == m.pendingGen {
		m.computing = false
	}
	if status == view.StatusKeptPrevious {
		m.status = errorStyle.Render("Layout failed, showing previous map")
		return nil
	}

	m.noteEntering()
	m.installScene()
	return m.startFitAnimation()
}

// noteEntering arms entrance highlights for nodes the last rebuild
// made visible. The initial build highlights nothing.
func (m *Model) noteEntering() {
	diff := m.view.LastDiff()
	if diff.Initial {
		return
	}
	for _, id := range diff.Entering {
		m.entering[id] = enteringFrames
	}
}

// installScene rebuilds the drawable scene from the installed layout
func (m *Model) installScene() {
	doc := m.view.Document()
	vg, res := m.view.Current()
	if doc == nil || vg == nil || res == nil {
		m.scene = nil
		return
	}
	m.scene = render.BuildScene(doc, vg, res, m.theme)
	if m.selected != "" {
		if _, ok := m.scene.Box(m.selected); !ok {
			m.selected = ""
		}
	}
	m.applyEmphasis()
}

// applyEmphasis re-marks entrance highlights and the selection on the
// current scene. Selection wins when both apply to the same node.
func (m *Model) applyEmphasis() {
	if m.scene == nil {
		return
	}
	for _, box := range m.scene.Boxes {
		m.scene.SetEmphasis(box.ID, render.EmphasisNone)
	}
	for id, frames := range m.entering {
		if frames > 0 {
			m.scene.SetEmphasis(id, render.EmphasisEntering)
		}
	}
	if m.selected != "" {
		m.scene.SetEmphasis(m.selected, render.EmphasisSelected)
	}
}

// startFitAnimation animates the viewport towards a full fit of the
// scene bounds. Returns nil when there is nothing to animate towards.
func (m *Model) startFitAnimation() tea.Cmd {
	if m.scene == nil || m.vp.W <= 0 || m.vp.H <= 0 {
		return nil
	}
	target := m.vp
	target.Fit(m.scene.Bounds, fitPadding)
	m.anim = viewportAnim{active: true, from: m.vp, to: target}
	return animTick()
}

func (m *Model) cancelFitAnimation() {
	m.anim.active = false
}

// stepAnimation advances the fit animation and entrance highlights one
// frame, scheduling the next tick while either is still running.
func (m *Model) stepAnimation() tea.Cmd {
	if m.anim.active {
		m.anim.frame++
		if m.anim.frame >= fitFrames {
			m.vp = m.anim.to
			m.anim.active = false
		} else {
			t := float64(m.anim.frame) / float64(fitFrames)
			eased := t * t * (3 - 2*t)
			m.vp.X = lerp(m.anim.from.X, m.anim.to.X, eased)
			m.vp.Y = lerp(m.anim.from.Y, m.anim.to.Y, eased)
			m.vp.Zoom = lerp(m.anim.from.Zoom, m.anim.to.Zoom, eased)
		}
	}

	fading := false
	for id, frames := range m.entering {
		if frames <= 1 {
			delete(m.entering, id)
			continue
		}
		m.entering[id] = frames - 1
		fading = true
	}
	m.applyEmphasis()

	if m.anim.active || fading {
		return animTick()
	}
	return nil
}

func (m *Model) handleDocumentChanged(msg documentChangedMsg) tea.Cmd {
	rearm := waitForChangeCmd(m.opts.Changes)
	plan := watcher.PlanReload(msg.event)
	if !plan.Reload {
		m.status = plan.Reason
		return rearm
	}
	if m.opts.DocumentPath == "" {
		return rearm
	}
	m.status = "Reloading " + m.opts.DocumentPath
	return tea.Batch(rearm, loadDocumentCmd(m.opts.DocumentPath))
}

func (m *Model) handleDocumentLoaded(msg documentLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.status = errorStyle.Render("Reload failed: " + msg.err.Error())
		return nil
	}
	// A fresh document resets collapse state and selection
	m.view.SetDocument(msg.doc)
	m.selected = ""
	m.entering = make(map[string]int)
	m.status = "Reloaded " + msg.doc.Title()
	return m.startRebuild()
}

// toggleSelected collapses or expands the selected node. Leaves and
// empty selections are no-ops.
func (m *Model) toggleSelected() tea.Cmd {
	if m.selected == "" {
		return nil
	}
	if !m.view.Toggle(m.selected) {
		m.status = "Nothing to collapse there"
		return nil
	}
	return m.startRebuild()
}

// cycleSelection moves the selection to the next box in scene order
func (m *Model) cycleSelection() {
	if m.scene == nil || len(m.scene.Boxes) == 0 {
		return
	}
	next := 0
	if m.selected != "" {
		for i, box := range m.scene.Boxes {
			if box.ID == m.selected {
				next = (i + 1) % len(m.scene.Boxes)
				break
			}
		}
	}
	m.selected = m.scene.Boxes[next].ID
	m.applyEmphasis()
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
