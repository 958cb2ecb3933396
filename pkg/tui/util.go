package tui

import "strings"

// truncate shortens a string to width runes, marking the cut with an
// ellipsis
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// wrapText greedily wraps words to the given width. Words longer than
// a full line are hard-split.
func wrapText(s string, width int) []string {
	if width <= 0 || s == "" {
		return nil
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(s) {
		for len([]rune(word)) > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case len([]rune(current.String()))+1+len([]rune(word)) <= width:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
