package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ritzau/meetmap/pkg/export"
	"github.com/ritzau/meetmap/pkg/model"
	"github.com/ritzau/meetmap/pkg/view"
	"github.com/ritzau/meetmap/pkg/watcher"
)

// layoutDoneMsg carries a finished layout back to the update loop. The
// outcome's generation decides whether it still applies.
type layoutDoneMsg struct {
	out *view.Outcome
}

// animTickMsg drives the fit animation and entrance highlight decay
type animTickMsg struct{}

// documentChangedMsg reports a debounced change to the watched file
type documentChangedMsg struct {
	event watcher.ChangeEvent
}

// documentLoadedMsg carries a reloaded document, or the load error
type documentLoadedMsg struct {
	doc *model.Document
	err error
}

// exportDoneMsg reports a finished export
type exportDoneMsg struct {
	path    string
	size    int64
	elapsed time.Duration
	err     error
}

const animFrameInterval = 50 * time.Millisecond

func animTick() tea.Cmd {
	return tea.Tick(animFrameInterval, func(time.Time) tea.Msg {
		return animTickMsg{}
	})
}

// computeLayoutCmd runs the layout engine on a background goroutine so
// pan and zoom stay responsive while it works
func computeLayoutCmd(v *view.View, req *view.LayoutRequest) tea.Cmd {
	return func() tea.Msg {
		return layoutDoneMsg{out: v.Execute(context.Background(), req)}
	}
}

// waitForChangeCmd blocks on the watcher channel until the next
// debounced change. Re-armed by the handler after every delivery.
func waitForChangeCmd(ch <-chan watcher.ChangeEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return documentChangedMsg{event: event}
	}
}

func loadDocumentCmd(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := model.Load(path)
		return documentLoadedMsg{doc: doc, err: err}
	}
}

// exportKind names one entry of the export menu
type exportKind int

const (
	exportJSON exportKind = iota
	exportPNG
	exportPDF
)

func (k exportKind) ext() string {
	switch k {
	case exportPNG:
		return "png"
	case exportPDF:
		return "pdf"
	}
	return "json"
}

// exportCmd writes one export file under outDir. The scene is cloned
// up front so the running UI cannot mutate it mid-raster.
func (m *Model) exportCmd(kind exportKind) tea.Cmd {
	doc := m.view.Document()
	scene := m.scene.Clone()
	vp := m.vp
	outDir := m.opts.OutDir
	if outDir == "" {
		outDir = "."
	}

	title := ""
	if doc != nil {
		title = doc.Title()
	}
	path := filepath.Join(outDir, export.Filename(title, kind.ext()))

	return func() tea.Msg {
		start := time.Now()

		var buf bytes.Buffer
		var err error
		switch kind {
		case exportJSON:
			err = export.JSON(doc, &buf)
		case exportPNG:
			err = export.PNGViewport(scene, vp, &buf)
		case exportPDF:
			err = export.PDF(scene, &buf)
		}
		if err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("write %s: %w", path, err)}
		}
		return exportDoneMsg{path: path, size: int64(buf.Len()), elapsed: time.Since(start)}
	}
}
