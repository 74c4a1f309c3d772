package main

// Screen-space geometry for anchored popovers. All coordinates are cell
// offsets from the top-left of the viewport.

type size struct {
	Width  int
	Height int
}

type point struct {
	X int
	Y int
}

type rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// popoverGap is the fixed padding between a popover and its anchor.
const popoverGap = 2

// computePosition picks where a popover of the given content size opens
// relative to its anchor: left of the anchor when there is room, else
// right of it, else horizontally centered above it. The result is clamped
// so the popover never extends past a viewport edge.
func computePosition(anchor rect, content size, viewport size) point {
	leftEdge := anchor.X - popoverGap - content.Width
	rightEdge := anchor.X + anchor.Width + popoverGap

	var pos point
	switch {
	case leftEdge >= 0:
		pos = point{X: leftEdge, Y: anchor.Y}
	case rightEdge+content.Width <= viewport.Width:
		pos = point{X: rightEdge, Y: anchor.Y}
	default:
		pos = point{
			X: (viewport.Width - content.Width) / 2,
			Y: anchor.Y - popoverGap - content.Height,
		}
	}
	return clampToViewport(pos, content, viewport)
}

func clampToViewport(pos point, content size, viewport size) point {
	maxX := viewport.Width - content.Width
	maxY := viewport.Height - content.Height
	if pos.X > maxX {
		pos.X = maxX
	}
	if pos.Y > maxY {
		pos.Y = maxY
	}
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos
}
