package raster

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/maskpaint/internal/grid"
)

func TestBrushOffsets(t *testing.T) {
	assert.Equal(t, []image.Point{{0, 0}}, BrushOffsets(1))
	assert.ElementsMatch(t, []image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, BrushOffsets(2))
	assert.Len(t, BrushOffsets(3), 9)
	assert.Contains(t, BrushOffsets(3), image.Pt(-1, -1))

	four := BrushOffsets(4)
	assert.Len(t, four, 16)
	assert.Contains(t, four, image.Pt(2, 2))
	assert.Contains(t, four, image.Pt(-1, -1))
	assert.NotContains(t, four, image.Pt(-2, 0))

	assert.Equal(t, BrushOffsets(4), BrushOffsets(10))
	assert.Equal(t, BrushOffsets(1), BrushOffsets(0))
}

func TestStampIsAbsolute(t *testing.T) {
	assert.ElementsMatch(t,
		[]image.Point{{10, 20}, {11, 20}, {10, 21}, {11, 21}},
		Stamp(image.Pt(10, 20), 2))
}

func TestRectCornerMode(t *testing.T) {
	b := BoxFor(image.Pt(5, 5), image.Pt(10, 8), false, false)
	assert.Equal(t, Box{5, 5, 10, 8}, b)
	cells := Rect(b, true)
	assert.Len(t, cells, 24)
	for _, p := range cells {
		assert.True(t, p.X >= 5 && p.X <= 10 && p.Y >= 5 && p.Y <= 8)
	}
}

func TestRectConstrained(t *testing.T) {
	b := BoxFor(image.Pt(5, 5), image.Pt(10, 8), false, true)
	assert.Equal(t, Box{5, 5, 10, 10}, b)
	assert.Len(t, Rect(b, true), 36)
}

func TestRectConstrainedKeepsSigns(t *testing.T) {
	assert.Equal(t, image.Pt(-2, 12), ConstrainSquare(image.Pt(5, 5), image.Pt(2, 12)))
	assert.Equal(t, image.Pt(0, 0), ConstrainSquare(image.Pt(5, 5), image.Pt(3, 0)))
}

func TestRectCentered(t *testing.T) {
	b := BoxFor(image.Pt(10, 10), image.Pt(12, 7), true, false)
	assert.Equal(t, Box{8, 7, 12, 13}, b)
}

func TestRectBorder(t *testing.T) {
	cells := Rect(Box{0, 0, 3, 2}, false)
	assert.Len(t, cells, 10)
	assert.NotContains(t, cells, image.Pt(1, 1))
}

func TestEllipseDegenerate(t *testing.T) {
	cells := Ellipse(image.Pt(20, 28), image.Pt(25, 28), true, false, true)
	assert.Equal(t, []image.Point{{20, 28}}, cells)
}

func TestEllipseFilledContainsCenterAndAxes(t *testing.T) {
	cells := Ellipse(image.Pt(20, 20), image.Pt(25, 23), true, false, true)
	assert.Contains(t, cells, image.Pt(20, 20))
	assert.Contains(t, cells, image.Pt(25, 20))
	assert.Contains(t, cells, image.Pt(20, 23))
	assert.NotContains(t, cells, image.Pt(25, 23))
}

func TestEllipseBorderHollow(t *testing.T) {
	cells := Ellipse(image.Pt(20, 20), image.Pt(26, 26), true, false, false)
	assert.NotContains(t, cells, image.Pt(20, 20))
	assert.Contains(t, cells, image.Pt(26, 20))
	assert.Contains(t, cells, image.Pt(20, 14))
}

// span lists the cells x0..x1 of row y.
func span(y, x0, x1 int) []image.Point {
	var out []image.Point
	for x := x0; x <= x1; x++ {
		out = append(out, image.Pt(x, y))
	}
	return out
}

func concat(parts ...[]image.Point) []image.Point {
	var out []image.Point
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestEllipseCornerMode(t *testing.T) {
	tests := []struct {
		name        string
		constrained bool
		filled      bool
		want        []image.Point
		center      image.Point
		extremes    []image.Point
	}{
		{
			name:   "filled",
			filled: true,
			want: concat(
				span(0, 3, 3), span(1, 1, 5), span(2, 0, 6), span(3, 1, 5), span(4, 3, 3),
			),
			center:   image.Pt(3, 2),
			extremes: []image.Point{{0, 2}, {6, 2}, {3, 0}, {3, 4}},
		},
		{
			name: "border",
			want: concat(
				span(0, 2, 4), span(2, 0, 0), span(2, 6, 6), span(4, 2, 4),
			),
			center:   image.Pt(3, 2),
			extremes: []image.Point{{0, 2}, {6, 2}, {3, 0}, {3, 4}},
		},
		{
			name:        "constrained filled",
			constrained: true,
			filled:      true,
			want: concat(
				span(0, 3, 3), span(1, 1, 5), span(2, 1, 5), span(3, 0, 6),
				span(4, 1, 5), span(5, 1, 5), span(6, 3, 3),
			),
			center:   image.Pt(3, 3),
			extremes: []image.Point{{0, 3}, {6, 3}, {3, 0}, {3, 6}},
		},
		{
			name:        "constrained border",
			constrained: true,
			want: []image.Point{
				{2, 0}, {3, 0}, {4, 0},
				{1, 1}, {5, 1},
				{0, 2}, {6, 2},
				{0, 3}, {6, 3},
				{0, 4}, {6, 4},
				{1, 5}, {5, 5},
				{2, 6}, {3, 6}, {4, 6},
			},
			center:   image.Pt(3, 3),
			extremes: []image.Point{{0, 3}, {6, 3}, {3, 0}, {3, 6}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := Ellipse(image.Pt(0, 0), image.Pt(6, 4), false, tt.constrained, tt.filled)
			assert.ElementsMatch(t, tt.want, cells)
			if tt.filled {
				assert.Contains(t, cells, tt.center)
			} else {
				assert.NotContains(t, cells, tt.center)
			}
			for _, p := range tt.extremes {
				assert.Contains(t, cells, p)
			}
		})
	}
}

func TestEllipseCornerModeIgnoresDragDirection(t *testing.T) {
	want := Ellipse(image.Pt(0, 0), image.Pt(6, 4), false, false, true)
	assert.ElementsMatch(t, want, Ellipse(image.Pt(6, 4), image.Pt(0, 0), false, false, true))
	assert.ElementsMatch(t, want, Ellipse(image.Pt(6, 0), image.Pt(0, 4), false, false, true))
}

func TestEllipseBorderReachesPastBox(t *testing.T) {
	// rx=18, ry=20: (39,28) scores (19/18)^2, inside the border band.
	cells := Ellipse(image.Pt(20, 28), image.Pt(38, 48), true, false, false)
	assert.Contains(t, cells, image.Pt(39, 28))
	assert.Contains(t, cells, image.Pt(1, 28))
	assert.NotContains(t, cells, image.Pt(40, 28))
	for _, p := range cells {
		nx := float64(p.X-20) / 18
		ny := float64(p.Y-28) / 20
		v := nx*nx + ny*ny
		require.True(t, v >= EllipseBorderMin && v <= EllipseBorderMax, "%v scores %.3f", p, v)
	}
}

func TestConstrainLine(t *testing.T) {
	assert.Equal(t, image.Pt(3, 0), ConstrainLine(image.Pt(0, 0), image.Pt(3, 1)))
	assert.Equal(t, image.Pt(0, 5), ConstrainLine(image.Pt(0, 0), image.Pt(1, 5)))
	assert.Equal(t, image.Pt(-4, 4), ConstrainLine(image.Pt(0, 0), image.Pt(-4, 3)))
}

func TestLineBrushed(t *testing.T) {
	assert.Equal(t, []image.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, Line(image.Pt(0, 0), image.Pt(3, 0), 1))

	cells := Line(image.Pt(0, 0), image.Pt(3, 0), 2)
	assert.Len(t, cells, 10)
	assert.Contains(t, cells, image.Pt(4, 1))

	diag := Line(image.Pt(0, 0), image.Pt(3, 3), 1)
	assert.Equal(t, []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, diag)
}

func TestApplyGoesThroughMask(t *testing.T) {
	g := grid.New(grid.NewMask([]int{0}))
	Apply(g, Rect(Box{0, 0, 1, 0}, true), grid.Color{R: 1})
	c, _ := g.Get(0, 0)
	require.Equal(t, grid.Color{R: 1}, c)
	c, _ = g.Get(1, 0)
	assert.Equal(t, grid.Off, c)
}
