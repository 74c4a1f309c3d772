package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePositionPrefersLeft(t *testing.T) {
	viewport := size{Width: 120, Height: 40}
	anchor := rect{X: 80, Y: 10, Width: 8, Height: 1}
	content := size{Width: 40, Height: 12}

	pos := computePosition(anchor, content, viewport)

	assert.Equal(t, 80-popoverGap-40, pos.X)
	assert.Equal(t, 10, pos.Y)
	assertInsideViewport(t, pos, content, viewport)
}

func TestComputePositionFallsBackToRight(t *testing.T) {
	viewport := size{Width: 120, Height: 40}
	anchor := rect{X: 4, Y: 5, Width: 8, Height: 1}
	content := size{Width: 40, Height: 12}

	pos := computePosition(anchor, content, viewport)

	assert.Equal(t, 4+8+popoverGap, pos.X)
	assert.Equal(t, 5, pos.Y)
	assertInsideViewport(t, pos, content, viewport)
}

func TestComputePositionAnchorNearRightEdgeOpensLeft(t *testing.T) {
	viewport := size{Width: 120, Height: 40}
	anchor := rect{X: 110, Y: 20, Width: 8, Height: 1}
	content := size{Width: 40, Height: 12}

	pos := computePosition(anchor, content, viewport)

	assert.Less(t, pos.X, anchor.X)
	assertInsideViewport(t, pos, content, viewport)
}

func TestComputePositionCentersAboveWhenNeitherSideFits(t *testing.T) {
	viewport := size{Width: 60, Height: 40}
	anchor := rect{X: 20, Y: 30, Width: 8, Height: 1}
	content := size{Width: 50, Height: 10}

	pos := computePosition(anchor, content, viewport)

	assert.Equal(t, (60-50)/2, pos.X)
	assert.Equal(t, 30-popoverGap-10, pos.Y)
	assertInsideViewport(t, pos, content, viewport)
}

func TestComputePositionClampsToEveryEdge(t *testing.T) {
	viewport := size{Width: 80, Height: 24}
	content := size{Width: 30, Height: 10}

	anchors := []rect{
		{X: 0, Y: 0, Width: 4, Height: 1},
		{X: 76, Y: 0, Width: 4, Height: 1},
		{X: 0, Y: 23, Width: 4, Height: 1},
		{X: 76, Y: 23, Width: 4, Height: 1},
	}
	for _, anchor := range anchors {
		pos := computePosition(anchor, content, viewport)
		assertInsideViewport(t, pos, content, viewport)
	}
}

func TestComputePositionYClampedWhenAnchorNearBottom(t *testing.T) {
	viewport := size{Width: 120, Height: 24}
	anchor := rect{X: 80, Y: 22, Width: 8, Height: 1}
	content := size{Width: 40, Height: 12}

	pos := computePosition(anchor, content, viewport)

	assert.Equal(t, 24-12, pos.Y)
	assertInsideViewport(t, pos, content, viewport)
}

func assertInsideViewport(t *testing.T, pos point, content size, viewport size) {
	t.Helper()
	assert.GreaterOrEqual(t, pos.X, 0)
	assert.GreaterOrEqual(t, pos.Y, 0)
	assert.LessOrEqual(t, pos.X+content.Width, viewport.Width)
	assert.LessOrEqual(t, pos.Y+content.Height, viewport.Height)
}
