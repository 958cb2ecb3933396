package tui

import tea "github.com/charmbracelet/bubbletea"

const wheelZoomFactor = 1.15

// handleMouse implements drag panning, wheel zoom, and click selection
// on the map pane. Events on the detail pane are ignored.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeMap {
		return m, nil
	}
	if msg.X >= m.mapCols || msg.Y >= m.mapRows {
		if msg.Action == tea.MouseActionRelease {
			m.panning = false
		}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.cancelFitAnimation()
			m.vp.ZoomAt(wheelZoomFactor, cellCenterX(msg.X), cellCenterY(msg.Y))
		case tea.MouseButtonWheelDown:
			m.cancelFitAnimation()
			m.vp.ZoomAt(1/wheelZoomFactor, cellCenterX(msg.X), cellCenterY(msg.Y))
		case tea.MouseButtonLeft:
			m.panning = true
			m.dragMoved = false
			m.lastMouseX = msg.X
			m.lastMouseY = msg.Y
		}

	case tea.MouseActionMotion:
		if !m.panning {
			return m, nil
		}
		dx := msg.X - m.lastMouseX
		dy := msg.Y - m.lastMouseY
		if dx != 0 || dy != 0 {
			m.cancelFitAnimation()
			// Dragging right moves the world right, so the viewport pans left.
			m.vp.Pan(-float64(dx)*cellPxW, -float64(dy)*cellPxH)
			m.dragMoved = true
			m.lastMouseX = msg.X
			m.lastMouseY = msg.Y
		}

	case tea.MouseActionRelease:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		wasDrag := m.dragMoved
		m.panning = false
		m.dragMoved = false
		if !wasDrag {
			return m, m.handleClick(msg.X, msg.Y)
		}
	}

	return m, nil
}

// handleClick selects the box under the cell, toggling collapse when
// the node has hidden children to reveal or a subtree to fold.
func (m *Model) handleClick(cx, cy int) tea.Cmd {
	if m.scene == nil {
		return nil
	}
	wx, wy := cellToWorld(m.vp, cx, cy)
	id, hit := m.scene.HitTest(wx, wy)
	if !hit {
		m.selected = ""
		m.applyEmphasis()
		return nil
	}
	m.selected = id
	m.applyEmphasis()
	if m.view.Toggle(id) {
		return m.startRebuild()
	}
	return nil
}

func cellCenterX(cx int) float64 { return (float64(cx) + 0.5) * cellPxW }
func cellCenterY(cy int) float64 { return (float64(cy) + 0.5) * cellPxH }
