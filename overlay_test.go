package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlayAtSplicesRectangle(t *testing.T) {
	base := strings.Join([]string{
		"..........",
		"..........",
		"..........",
		"..........",
	}, "\n")

	got := overlayAt(base, "XX\nXX", point{X: 3, Y: 1})
	want := strings.Join([]string{
		"..........",
		"...XX.....",
		"...XX.....",
		"..........",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestOverlayAtPadsShortBaseLines(t *testing.T) {
	got := overlayAt("ab\ncd", "ZZ", point{X: 5, Y: 0})
	lines := strings.Split(got, "\n")
	assert.Equal(t, "ab   ZZ", lines[0])
	assert.Equal(t, "cd", lines[1])
}

func TestOverlayAtExtendsBaseDownward(t *testing.T) {
	got := overlayAt("top", "AA\nBB", point{X: 0, Y: 2})
	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "AA", lines[2])
	assert.Equal(t, "BB", lines[3])
}

func TestOverlayAtPadsNarrowOverlayLines(t *testing.T) {
	// the overlay is opaque at its widest line, so the short line blanks
	// out base content beneath it
	got := overlayAt("0123456789", "WWWW\nW", point{X: 2, Y: 0})
	lines := strings.Split(got, "\n")
	assert.Equal(t, "01WWWW6789", lines[0])
	assert.Equal(t, "  W   ", lines[1])
}

func TestCutFromColumn(t *testing.T) {
	assert.Equal(t, "6789", cutFromColumn("0123456789", 6))
	assert.Equal(t, "", cutFromColumn("0123", 6))
	assert.Equal(t, "0123", cutFromColumn("0123", 0))
}

func TestCutFromColumnKeepsEscapeSequences(t *testing.T) {
	styled := "\x1b[31mred\x1b[0mplain"
	got := cutFromColumn(styled, 3)
	assert.Contains(t, got, "\x1b[31m", "styling state survives the cut")
	assert.Contains(t, got, "plain")
	assert.NotContains(t, got, "red")
}
