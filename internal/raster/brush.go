// Package raster computes the cell sets painted by the brush and the shape
// tools. Every function is pure: it returns cells and leaves applying them to
// the caller, so a shape is always computed in full before the grid changes.
package raster

import (
	"image"

	"github.com/example/maskpaint/internal/grid"
)

// Canvas is the write side of a grid.
type Canvas interface {
	Set(x, y int, c grid.Color)
}

var brushes = [...][]image.Point{
	1: square(0, 0),
	2: square(0, 1),
	3: square(-1, 1),
	4: square(-1, 2),
}

func square(lo, hi int) []image.Point {
	var pts []image.Point
	for dy := lo; dy <= hi; dy++ {
		for dx := lo; dx <= hi; dx++ {
			pts = append(pts, image.Pt(dx, dy))
		}
	}
	return pts
}

// BrushOffsets returns the footprint of a brush relative to its hot spot.
// Even sizes grow toward +x/+y. Sizes outside 1..4 are clamped.
func BrushOffsets(size int) []image.Point {
	size = clampBrush(size)
	out := make([]image.Point, len(brushes[size]))
	copy(out, brushes[size])
	return out
}

func clampBrush(size int) int {
	if size < 1 {
		return 1
	}
	if size > 4 {
		return 4
	}
	return size
}

// Stamp returns the absolute cells covered by a brush of size at center.
func Stamp(center image.Point, size int) []image.Point {
	offs := brushes[clampBrush(size)]
	out := make([]image.Point, len(offs))
	for i, o := range offs {
		out[i] = center.Add(o)
	}
	return out
}

// Apply writes c to every cell. Cells outside the canvas are left to the
// canvas to discard.
func Apply(dst Canvas, cells []image.Point, c grid.Color) {
	for _, p := range cells {
		dst.Set(p.X, p.Y, c)
	}
}

// cellSet collects unique cells in first-seen order.
type cellSet struct {
	seen map[image.Point]struct{}
	pts  []image.Point
}

func newCellSet() *cellSet {
	return &cellSet{seen: make(map[image.Point]struct{})}
}

func (s *cellSet) add(pts ...image.Point) {
	for _, p := range pts {
		if _, ok := s.seen[p]; ok {
			continue
		}
		s.seen[p] = struct{}{}
		s.pts = append(s.pts, p)
	}
}
