package main

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// overlayAt composites the rendered popover on top of the base view with
// its top-left corner at pos. The overlay is treated as an opaque
// rectangle of its widest line; base content resumes to its right.
func overlayAt(base, overlay string, pos point) string {
	baseLines := strings.Split(base, "\n")
	overLines := strings.Split(overlay, "\n")
	overWidth := widestLine(overLines)

	for i, overLine := range overLines {
		y := pos.Y + i
		if y < 0 {
			continue
		}
		for y >= len(baseLines) {
			baseLines = append(baseLines, "")
		}
		line := baseLines[y]
		left := truncate.String(line, uint(pos.X))
		leftPad := strings.Repeat(" ", maxInt(0, pos.X-ansi.PrintableRuneWidth(left)))
		overPad := strings.Repeat(" ", maxInt(0, overWidth-ansi.PrintableRuneWidth(overLine)))
		right := cutFromColumn(line, pos.X+overWidth)
		baseLines[y] = left + leftPad + overLine + overPad + right
	}
	return strings.Join(baseLines, "\n")
}

// cutFromColumn returns the tail of line starting at the given printable
// column. Escape sequences before the cut are carried through so styling
// state survives into the tail.
func cutFromColumn(line string, col int) string {
	if ansi.PrintableRuneWidth(line) <= col {
		return ""
	}
	var b strings.Builder
	width := 0
	inEscape := false
	for _, r := range line {
		if inEscape {
			b.WriteRune(r)
			if ansi.IsTerminator(r) {
				inEscape = false
			}
			continue
		}
		if r == ansi.Marker {
			inEscape = true
			b.WriteRune(r)
			continue
		}
		if width >= col {
			b.WriteRune(r)
		}
		width += runewidth.RuneWidth(r)
	}
	return b.String()
}

func widestLine(lines []string) int {
	widest := 0
	for _, line := range lines {
		if w := ansi.PrintableRuneWidth(line); w > widest {
			widest = w
		}
	}
	return widest
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
