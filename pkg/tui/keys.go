package tui

import tea "github.com/charmbracelet/bubbletea"

// Pan step per key press, in screen pixels (6 cells across, 2 down)
const (
	panStepX = 6 * cellPxW
	panStepY = 2 * cellPxH
)

const keyZoomFactor = 1.2

// handleKey routes key presses based on the current mode
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.mode {
	case modeExport:
		switch key {
		case "j":
			m.mode = modeMap
			m.status = "Exporting JSON..."
			return m, m.exportCmd(exportJSON)
		case "p":
			m.mode = modeMap
			m.status = "Exporting PNG..."
			return m, m.exportCmd(exportPNG)
		case "d":
			m.mode = modeMap
			m.status = "Exporting PDF..."
			return m, m.exportCmd(exportPDF)
		case "esc", "q":
			m.mode = modeMap
			m.status = "Export cancelled"
			return m, nil
		}
		return m, nil

	case modeMap:
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			m.cancelFitAnimation()
			m.vp.Pan(-panStepX, 0)
			return m, nil
		case "right", "l":
			m.cancelFitAnimation()
			m.vp.Pan(panStepX, 0)
			return m, nil
		case "up", "k":
			m.cancelFitAnimation()
			m.vp.Pan(0, -panStepY)
			return m, nil
		case "down", "j":
			m.cancelFitAnimation()
			m.vp.Pan(0, panStepY)
			return m, nil
		case "+", "=":
			m.cancelFitAnimation()
			m.vp.ZoomAt(keyZoomFactor, float64(m.vp.W)/2, float64(m.vp.H)/2)
			return m, nil
		case "-", "_":
			m.cancelFitAnimation()
			m.vp.ZoomAt(1/keyZoomFactor, float64(m.vp.W)/2, float64(m.vp.H)/2)
			return m, nil
		case "f":
			return m, m.startFitAnimation()
		case "tab", "n":
			m.cycleSelection()
			return m, nil
		case "enter":
			return m, m.toggleSelected()
		case "e":
			if m.scene != nil {
				m.mode = modeExport
			}
			return m, nil
		case "esc":
			m.selected = ""
			m.applyEmphasis()
			return m, nil
		}
	}

	return m, nil
}
