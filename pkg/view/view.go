// Package view owns the mutable state between a loaded document and
// the screen: the collapse set, the current layout, and the pipeline
// state machine. Layout itself may run on another goroutine; every
// result carries the generation it was requested under, and results
// from superseded generations are discarded on arrival. Stale work is
// thrown away rather than interrupted.
package view

import (
	"context"
	"sync"

	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/layout"
	"github.com/ritzau/meetmap/pkg/logging"
	"github.com/ritzau/meetmap/pkg/measure"
	"github.com/ritzau/meetmap/pkg/model"
)

// State is the pipeline state visible to status lines
type State int

const (
	StateIdle      State = iota // No document, or nothing computed yet
	StateComputing              // A layout request is in flight
	StateRendered               // Current layout is on screen
	StateDegraded               // Rendered, but by the fallback engine
)

// String returns the state name for logs and status endpoints
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputing:
		return "computing-layout"
	case StateRendered:
		return "rendered"
	case StateDegraded:
		return "degraded"
	}
	return "unknown"
}

// LayoutRequest is one unit of layout work, tagged with the
// generation it belongs to
type LayoutRequest struct {
	Gen   uint64
	Key   string // Cache fingerprint of (document, collapse set)
	Graph *graph.VisibleGraph
	Sizes map[string]measure.Size
}

// Outcome is what Execute hands back for Apply to judge
type Outcome struct {
	Gen      uint64
	Key      string
	Graph    *graph.VisibleGraph
	Result   *layout.Result // Primary engine result, nil on failure
	Fallback *layout.Result // Stacked result, set only when the primary failed
	Err      error          // Primary engine error, if any
}

// ApplyStatus reports what Apply did with an outcome
type ApplyStatus int

const (
	StatusApplied      ApplyStatus = iota // Result installed
	StatusFellBack                        // Stacked fallback installed
	StatusKeptPrevious                    // Primary failed, previous layout retained
	StatusStale                           // Outcome belonged to a superseded generation
)

// View is the single owner of collapse and layout state for one
// document at a time. All methods are safe for concurrent use; the
// web server calls them from request handlers while the TUI loop
// drives them from its own goroutine.
type View struct {
	mu sync.Mutex

	doc      *model.Document
	collapse *CollapseSet

	engine    layout.Engine
	fallback  layout.Engine
	estimator *measure.Estimator

	generation  uint64
	state       State
	current     *layout.Result
	currentVG   *graph.VisibleGraph
	prevVisible map[string]bool
	lastDiff    VisibleDiff

	cache *resultCache
}

// New creates a view with the layered engine, the stacked fallback,
// and the standard estimator
func New() *View {
	return &View{
		collapse:  NewCollapseSet(),
		engine:    layout.NewLayered(),
		fallback:  layout.NewStacked(),
		estimator: measure.NewEstimator(),
		state:     StateIdle,
		cache:     newResultCache(32),
	}
}

// NewWithEngine creates a view with a specific primary engine
func NewWithEngine(engine layout.Engine) *View {
	v := New()
	v.engine = engine
	return v
}

// SetDocument installs a new document. The collapse set resets, the
// cache empties, and any in-flight layout becomes stale.
func (v *View) SetDocument(doc *model.Document) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.doc = doc
	v.collapse.Reset()
	v.cache.reset()
	v.generation++
	v.state = StateIdle
	v.current = nil
	v.currentVG = nil
	v.prevVisible = nil
	v.lastDiff = VisibleDiff{}

	if doc != nil {
		logging.Info("Document installed",
			"title", doc.Title(),
			"loadId", doc.LoadID.String(),
			"nodes", len(doc.Nodes))
	}
}

// Document returns the current document, or nil
func (v *View) Document() *model.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc
}

// State returns the pipeline state
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Generation returns the latest issued generation
func (v *View) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}

// Current returns the visible graph and layout on screen. Either may
// be nil before the first rebuild completes.
func (v *View) Current() (*graph.VisibleGraph, *layout.Result) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentVG, v.current
}

// LastDiff returns what changed in the most recent applied rebuild
func (v *View) LastDiff() VisibleDiff {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastDiff
}

// Diagnostics returns the builder diagnostics of the current graph
func (v *View) Diagnostics() graph.Diagnostics {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.currentVG == nil {
		return graph.Diagnostics{}
	}
	return v.currentVG.Diagnostics
}

// Collapsed returns whether a node is currently collapsed
func (v *View) Collapsed(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.collapse.Contains(id)
}

// CollapsedIDs returns all collapsed node ids, sorted
func (v *View) CollapsedIDs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.collapse.IDs()
}

// Toggle flips a node's collapse state. Toggling a leaf is recorded
// as a no-op and returns false: nothing changed, no rebuild needed.
func (v *View) Toggle(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.currentVG != nil {
		if node, exists := v.currentVG.ByID[id]; !exists || !v.currentVG.HasChildren[node.ID] {
			logging.Debug("Toggle ignored", "node", id, "reason", "leaf or not visible")
			return false
		}
	}

	collapsed := v.collapse.Toggle(id)
	logging.Debug("Toggled node", "node", id, "collapsed", collapsed)
	return true
}

// Rebuild recomputes the visible graph for the current document and
// collapse set. Trivial graphs and cache hits are installed
// immediately and return nil; otherwise the caller receives a request
// to pass to Execute, typically on another goroutine.
func (v *View) Rebuild() *LayoutRequest {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.doc == nil {
		return nil
	}

	snapshot := v.collapse.Snapshot()
	vg := graph.Build(v.doc, snapshot)
	v.generation++

	sizes := make(map[string]measure.Size, vg.Len())
	for _, node := range vg.Nodes {
		sizes[node.ID] = v.estimator.Estimate(node.Label, node.Type)
	}

	// Root-only graphs render without any engine involvement
	if vg.Len() <= 1 {
		res, _ := layout.Compute(context.Background(), v.engine, vg, sizes)
		v.install(vg, res, StateRendered)
		return nil
	}

	key := Fingerprint(v.doc.LoadID, snapshot)
	if cached, hit := v.cache.get(key); hit {
		logging.Debug("Layout cache hit", "key", key[:12], "generation", v.generation)
		v.install(vg, cached, StateRendered)
		return nil
	}

	v.state = StateComputing
	return &LayoutRequest{Gen: v.generation, Key: key, Graph: vg, Sizes: sizes}
}

// Execute runs the layout engines for a request. It takes no lock and
// can run on any goroutine; when the primary engine fails it also
// prepares the stacked fallback so Apply can choose.
func (v *View) Execute(ctx context.Context, req *LayoutRequest) *Outcome {
	out := &Outcome{Gen: req.Gen, Key: req.Key, Graph: req.Graph}

	res, err := layout.Compute(ctx, v.engine, req.Graph, req.Sizes)
	if err == nil {
		out.Result = res
		return out
	}
	out.Err = err

	fallback, fbErr := layout.Compute(ctx, v.fallback, req.Graph, req.Sizes)
	if fbErr == nil {
		out.Fallback = fallback
	}
	return out
}

// Apply installs an outcome if its generation is still current.
// Failed primaries keep the previous layout when one exists, and
// degrade to the stacked fallback otherwise.
func (v *View) Apply(out *Outcome) ApplyStatus {
	v.mu.Lock()
	defer v.mu.Unlock()

	if out.Gen != v.generation {
		logging.Debug("Discarding stale layout",
			"resultGeneration", out.Gen,
			"currentGeneration", v.generation)
		return StatusStale
	}

	if out.Result != nil {
		v.cache.put(out.Key, out.Result)
		v.install(out.Graph, out.Result, StateRendered)
		return StatusApplied
	}

	if v.current != nil {
		logging.Warn("Layout failed, keeping previous layout", "error", out.Err)
		v.state = StateRendered
		return StatusKeptPrevious
	}

	logging.Warn("Layout failed with no previous layout, using stacked fallback", "error", out.Err)
	v.install(out.Graph, out.Fallback, StateDegraded)
	return StatusFellBack
}

// install records a new current graph and layout. Caller holds the lock.
func (v *View) install(vg *graph.VisibleGraph, res *layout.Result, state State) {
	v.lastDiff = diffVisible(v.prevVisible, vg)
	v.prevVisible = visibleSet(vg)
	v.currentVG = vg
	v.current = res
	v.state = state
}

// CacheLen reports how many layouts are cached, for status output
func (v *View) CacheLen() int {
	return v.cache.len()
}
