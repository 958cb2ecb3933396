// Package measure estimates pixel dimensions for mindmap nodes before
// layout. Estimates are derived from the label text alone, so the
// layout engine can size boxes without touching a font. The renderer
// wraps labels with the same Wrap call, which keeps painted text and
// estimated boxes in agreement.
package measure

import (
	"strings"
	"unicode/utf8"

	"github.com/ritzau/meetmap/pkg/model"
)

// Size is a node's estimated box in pixels
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Band is the width range allowed for a node type
type Band struct {
	MinWidth float64
	MaxWidth float64
}

// Estimator computes node sizes from label text. The zero value is
// not usable; call NewEstimator.
type Estimator struct {
	CharWidth  float64 // Average glyph advance at the base font size
	LineHeight float64
	PadX       float64 // Horizontal padding inside the box, per side
	PadY       float64

	bands map[model.NodeType]Band
}

// defaultBand is used for unknown node types
var defaultBand = Band{MinWidth: 100, MaxWidth: 240}

// NewEstimator creates an estimator with the standard type bands:
// the root is widest, outcome leaves narrowest.
func NewEstimator() *Estimator {
	return &Estimator{
		CharWidth:  8,
		LineHeight: 18,
		PadX:       14,
		PadY:       10,
		bands: map[model.NodeType]Band{
			model.NodeTypeRoot:        {MinWidth: 180, MaxWidth: 360},
			model.NodeTypeTheme:       {MinWidth: 140, MaxWidth: 300},
			model.NodeTypeChapter:     {MinWidth: 120, MaxWidth: 280},
			model.NodeTypeClaim:       {MinWidth: 110, MaxWidth: 260},
			model.NodeTypeAction:      {MinWidth: 100, MaxWidth: 240},
			model.NodeTypeAchievement: {MinWidth: 100, MaxWidth: 240},
			model.NodeTypeBlocker:     {MinWidth: 100, MaxWidth: 240},
			model.NodeTypeDecision:    {MinWidth: 100, MaxWidth: 240},
			model.NodeTypeConcern:     {MinWidth: 100, MaxWidth: 240},
		},
	}
}

// band returns the width band for a type
func (e *Estimator) band(t model.NodeType) Band {
	if band, exists := e.bands[t]; exists {
		return band
	}
	return defaultBand
}

// MaxLineChars returns how many characters fit on one line inside a
// box of the type's maximum width
func (e *Estimator) MaxLineChars(t model.NodeType) int {
	band := e.band(t)
	chars := int((band.MaxWidth - 2*e.PadX) / e.CharWidth)
	if chars < 1 {
		return 1
	}
	return chars
}

// Estimate computes the box size for a label. Width grows with label
// length until the type's maximum; past that point the label wraps
// and the box grows downward instead.
func (e *Estimator) Estimate(label string, t model.NodeType) Size {
	band := e.band(t)

	natural := float64(utf8.RuneCountInString(label))*e.CharWidth + 2*e.PadX
	width := natural
	if width < band.MinWidth {
		width = band.MinWidth
	}
	if width > band.MaxWidth {
		width = band.MaxWidth
	}

	lines := len(e.Wrap(label, t))
	height := float64(lines)*e.LineHeight + 2*e.PadY

	return Size{W: width, H: height}
}

// Wrap breaks a label into the lines the renderer will paint, each at
// most MaxLineChars characters. Words longer than a line are split
// hard so a pathological token cannot widen the box.
func (e *Estimator) Wrap(label string, t model.NodeType) []string {
	maxChars := e.MaxLineChars(t)

	words := strings.Fields(label)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for utf8.RuneCountInString(word) > maxChars {
			// Hard-split an oversized word
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:maxChars]))
			word = string(runes[maxChars:])
		}
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= maxChars:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}

	return lines
}
