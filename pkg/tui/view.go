package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ritzau/meetmap/pkg/model"
)

const (
	// Width of the detail pane including its border
	detailWidth = 34
	// Below this terminal width the detail pane is dropped entirely
	minWidthForDetail = 90
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	main := m.renderMap()
	if m.mapCols < m.width {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, m.renderDetail())
	}
	if m.mode == modeExport {
		main = m.renderExportMenu()
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatus())
}

func (m *Model) renderMap() string {
	if m.scene == nil || len(m.scene.Boxes) == 0 {
		message := "No document loaded"
		if m.computing {
			message = "Computing layout..."
		}
		return lipgloss.Place(m.mapCols, m.mapRows,
			lipgloss.Center, lipgloss.Center, mutedStyle.Render(message))
	}
	canvas := newCellCanvas(m.mapCols, m.mapRows)
	drawScene(canvas, m.scene, m.vp)
	return canvas.String()
}

func (m *Model) renderDetail() string {
	innerWidth := detailWidth - 4 // border and padding on both sides
	var lines []string

	node := m.selectedNode()
	if node == nil {
		lines = append(lines, titleStyle.Render(truncate(m.mapTitle(), innerWidth)))
		lines = append(lines, "")
		if m.scene != nil {
			lines = append(lines, fmt.Sprintf("%d nodes shown", len(m.scene.Boxes)))
		}
		lines = append(lines, fmt.Sprintf("zoom %.0f%%", m.vp.Zoom*100))
		lines = append(lines, "")
		lines = append(lines, mutedStyle.Render("tab/n  select node"))
		lines = append(lines, mutedStyle.Render("enter  collapse/expand"))
		lines = append(lines, mutedStyle.Render("arrows pan, +/- zoom"))
		lines = append(lines, mutedStyle.Render("f      fit to screen"))
		lines = append(lines, mutedStyle.Render("e      export"))
		lines = append(lines, mutedStyle.Render("q      quit"))
	} else {
		for _, l := range wrapText(node.Label, innerWidth) {
			lines = append(lines, titleStyle.Render(l))
		}
		lines = append(lines, mutedStyle.Render(string(node.Type)))
		lines = append(lines, "")
		if node.Timestamp != "" {
			lines = append(lines, fmt.Sprintf("at %s", node.Timestamp))
		}
		if node.Confidence > 0 {
			lines = append(lines, fmt.Sprintf("confidence %.2f", node.Confidence))
		}
		if box, exists := m.scene.Box(node.ID); exists && box.Badge != "" {
			lines = append(lines, fmt.Sprintf("collapsed (%s hidden)", box.Badge))
		}
		if node.Description != "" {
			lines = append(lines, "")
			lines = append(lines, wrapText(node.Description, innerWidth)...)
		}
	}

	return detailPane.
		Width(detailWidth - 2).
		Height(m.mapRows - 2).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	left := m.status
	if m.computing {
		left = m.spinner.View() + " Computing layout..."
	}
	if left == "" {
		left = m.mapTitle()
	}

	right := fmt.Sprintf("%s · %.0f%%", m.view.State(), m.vp.Zoom*100)
	if m.selected != "" {
		right = m.selected + " · " + right
	}

	maxLeft := m.width - lipgloss.Width(right) - 3
	if maxLeft > 0 {
		left = truncate(left, maxLeft)
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return statusStyle.Render(" " + left + strings.Repeat(" ", gap) + right + " ")
}

func (m *Model) renderExportMenu() string {
	body := strings.Join([]string{
		titleStyle.Render("Export"),
		"",
		"j  JSON document",
		"p  PNG image",
		"d  PDF document",
		"",
		mutedStyle.Render("esc  cancel"),
	}, "\n")
	popup := popupStyle.Render(body)
	return lipgloss.Place(m.width, m.mapRows, lipgloss.Center, lipgloss.Center, popup)
}

// selectedNode resolves the selection to its document node
func (m *Model) selectedNode() *model.Node {
	if m.selected == "" {
		return nil
	}
	doc := m.view.Document()
	if doc == nil {
		return nil
	}
	return doc.NodeMap()[m.selected]
}

func (m *Model) mapTitle() string {
	if m.scene != nil && m.scene.Title != "" {
		return m.scene.Title
	}
	return "meetmap"
}
