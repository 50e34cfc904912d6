package raster

import (
	"image"
	"math"
)

// Box is an inclusive cell rectangle.
type Box struct {
	X0, Y0, X1, Y1 int
}

// Width returns the number of columns covered.
func (b Box) Width() int { return b.X1 - b.X0 + 1 }

// Height returns the number of rows covered.
func (b Box) Height() int { return b.Y1 - b.Y0 + 1 }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

// ConstrainSquare moves target so it lies max(|dx|,|dy|) from anchor on both
// axes, keeping the direction of each axis.
func ConstrainSquare(anchor, target image.Point) image.Point {
	dx := target.X - anchor.X
	dy := target.Y - anchor.Y
	m := abs(dx)
	if abs(dy) > m {
		m = abs(dy)
	}
	return image.Pt(anchor.X+sign(dx)*m, anchor.Y+sign(dy)*m)
}

// BoxFor computes the bounding box of a rectangle or ellipse gesture.
func BoxFor(anchor, target image.Point, centered, constrained bool) Box {
	if constrained {
		target = ConstrainSquare(anchor, target)
	}
	if centered {
		hx := abs(target.X - anchor.X)
		hy := abs(target.Y - anchor.Y)
		return Box{anchor.X - hx, anchor.Y - hy, anchor.X + hx, anchor.Y + hy}
	}
	return Box{
		X0: min(anchor.X, target.X), Y0: min(anchor.Y, target.Y),
		X1: max(anchor.X, target.X), Y1: max(anchor.Y, target.Y),
	}
}

// Rect returns the cells of a rectangle: every cell of the box when filled,
// otherwise the single-pixel border.
func Rect(b Box, filled bool) []image.Point {
	out := make([]image.Point, 0, b.Width()*b.Height())
	for y := b.Y0; y <= b.Y1; y++ {
		for x := b.X0; x <= b.X1; x++ {
			if filled || x == b.X0 || x == b.X1 || y == b.Y0 || y == b.Y1 {
				out = append(out, image.Pt(x, y))
			}
		}
	}
	return out
}

// Ellipse band limits on the normalized ellipse equation.
const (
	EllipseFillMax   = 1.05
	EllipseBorderMin = 0.85
	EllipseBorderMax = 1.15
)

// Ellipse returns the cells of an ellipse inscribed in the gesture box. In
// centered mode the radii are the half-extents from the anchor. A radius
// below one half collapses the shape to its center cell. Cells just outside
// the box are included when they fall within the band.
func Ellipse(anchor, target image.Point, centered, constrained, filled bool) []image.Point {
	b := BoxFor(anchor, target, centered, constrained)
	var cx, cy, rx, ry float64
	if centered {
		cx, cy = float64(anchor.X), float64(anchor.Y)
		rx = float64(b.X1 - anchor.X)
		ry = float64(b.Y1 - anchor.Y)
	} else {
		cx = float64(b.X0+b.X1) / 2
		cy = float64(b.Y0+b.Y1) / 2
		rx = float64(b.X1-b.X0) / 2
		ry = float64(b.Y1-b.Y0) / 2
	}
	if rx < 0.5 || ry < 0.5 {
		return []image.Point{image.Pt(int(math.Floor(cx+0.5)), int(math.Floor(cy+0.5)))}
	}
	limit := EllipseBorderMax
	if filled {
		limit = EllipseFillMax
	}
	// Band cells can lie outside the gesture box at large radii.
	ext := math.Sqrt(limit)
	x0, x1 := int(math.Floor(cx-rx*ext)), int(math.Ceil(cx+rx*ext))
	y0, y1 := int(math.Floor(cy-ry*ext)), int(math.Ceil(cy+ry*ext))
	var out []image.Point
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			nx := (float64(x) - cx) / rx
			ny := (float64(y) - cy) / ry
			v := nx*nx + ny*ny
			if filled {
				if v <= EllipseFillMax {
					out = append(out, image.Pt(x, y))
				}
			} else if v >= EllipseBorderMin && v <= EllipseBorderMax {
				out = append(out, image.Pt(x, y))
			}
		}
	}
	return out
}

// ConstrainLine snaps target so the line from anchor is horizontal, vertical
// or a 45 degree diagonal.
func ConstrainLine(anchor, target image.Point) image.Point {
	dx := target.X - anchor.X
	dy := target.Y - anchor.Y
	adx, ady := abs(dx), abs(dy)
	switch {
	case 2*ady < adx:
		return image.Pt(target.X, anchor.Y)
	case 2*adx < ady:
		return image.Pt(anchor.X, target.Y)
	}
	m := max(adx, ady)
	return image.Pt(anchor.X+sign(dx)*m, anchor.Y+sign(dy)*m)
}

// Line walks from a to b with Bresenham's algorithm and stamps the brush at
// every step.
func Line(a, b image.Point, brush int) []image.Point {
	set := newCellSet()
	x0, y0 := a.X, a.Y
	dx := abs(b.X - x0)
	dy := abs(b.Y - y0)
	sx := -1
	if x0 < b.X {
		sx = 1
	}
	sy := -1
	if y0 < b.Y {
		sy = 1
	}
	err := dx - dy
	for {
		set.add(Stamp(image.Pt(x0, y0), brush)...)
		if x0 == b.X && y0 == b.Y {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
	return set.pts
}

