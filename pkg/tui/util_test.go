package tui

import "testing"

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected short strings untouched, got %q", got)
	}
	if got := truncate("a longer label", 8); got != "a longe…" {
		t.Errorf("Expected an ellipsis cut at 8 runes, got %q", got)
	}
	if got := truncate("anything", 0); got != "" {
		t.Errorf("Expected an empty result for zero width, got %q", got)
	}
	if got := truncate("ab", 1); got != "…" {
		t.Errorf("Expected a bare ellipsis at width 1, got %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("freeze lands thursday night", 13)
	want := []string{"freeze lands", "thursday", "night"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Expected line %d to be %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestWrapText_HardSplitsLongWords(t *testing.T) {
	lines := wrapText("incomprehensibilities", 8)
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "incompre" || lines[1] != "hensibil" {
		t.Errorf("Expected 8-rune hard splits, got %v", lines)
	}
}

func TestWrapText_Empty(t *testing.T) {
	if lines := wrapText("", 10); lines != nil {
		t.Errorf("Expected nil for empty text, got %v", lines)
	}
}
