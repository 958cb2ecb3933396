package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ritzau/meetmap/pkg/model"
)

var (
	detailPane    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("62"))
	popupStyle    = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)

	// Canvas styles. Hues mirror the raster theme's border colors so
	// the terminal map and the PNG read the same.
	edgeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#90a4ae"))
	enteringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6f00")).Bold(true)
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb74d"))

	nodeStyles = map[model.NodeType]*lipgloss.Style{
		model.NodeTypeRoot:        stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#7986cb")).Bold(true)),
		model.NodeTypeTheme:       stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#42a5f5"))),
		model.NodeTypeChapter:     stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#26a69a"))),
		model.NodeTypeClaim:       stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#bdbdbd"))),
		model.NodeTypeAction:      stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#66bb6a"))),
		model.NodeTypeAchievement: stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#9ccc65"))),
		model.NodeTypeBlocker:     stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#ef5350"))),
		model.NodeTypeDecision:    stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#ffa726"))),
		model.NodeTypeConcern:     stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#ffee58"))),
	}
	defaultNodeStyle = stylePtr(lipgloss.NewStyle().Foreground(lipgloss.Color("#bdbdbd")))
)

func stylePtr(s lipgloss.Style) *lipgloss.Style { return &s }

// styleFor resolves the canvas style for a node, honoring emphasis.
// Pointers are stable so the canvas can batch same-styled runs.
func styleFor(nt model.NodeType, selected, entering bool) *lipgloss.Style {
	if selected {
		return &selectedStyle
	}
	if entering {
		return &enteringStyle
	}
	if st, ok := nodeStyles[nt]; ok {
		return st
	}
	return defaultNodeStyle
}
