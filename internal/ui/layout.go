package ui

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/example/maskpaint/internal/grid"
)

const (
	paletteHeight = 24
	statusHeight  = 24
	buttonHeight  = 24
	margin        = 8
	minCellSize   = 4
)

// Layout places the palette strip on top, the toolbar on the left, the
// status line at the bottom and the grid in the remaining space.
type Layout struct {
	Window   image.Point
	Toolbar  int
	CellSize int
}

func toolbarWidth(labels []string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := 48
	for _, l := range labels {
		if n := d.MeasureString(l).Ceil() + 8; n > w {
			w = n
		}
	}
	return w
}

// windowSize is the window needed to show the grid at cellSize.
func windowSize(toolbar, cellSize int) image.Point {
	return image.Pt(
		toolbar+2*margin+grid.Width*cellSize,
		paletteHeight+statusHeight+2*margin+grid.Height*cellSize,
	)
}

// Fit picks the largest cell size that shows the whole grid.
func (l *Layout) Fit() {
	availW := l.Window.X - l.Toolbar - 2*margin
	availH := l.Window.Y - paletteHeight - statusHeight - 2*margin
	cs := min(availW/grid.Width, availH/grid.Height)
	l.CellSize = max(cs, minCellSize)
}

// Origin is the window position of cell (0, 0).
func (l Layout) Origin() image.Point {
	return image.Pt(l.Toolbar+margin, paletteHeight+margin)
}

// GridRect is the pixel area covered by cells.
func (l Layout) GridRect() image.Rectangle {
	o := l.Origin()
	return image.Rectangle{Min: o, Max: o.Add(image.Pt(grid.Width*l.CellSize, grid.Height*l.CellSize))}
}

// CellAt maps a window position to cell coordinates. The coordinates are
// computed for positions outside the grid too; ok reports whether p lies on
// the grid.
func (l Layout) CellAt(p image.Point) (cell image.Point, ok bool) {
	o := l.Origin()
	cs := max(l.CellSize, 1)
	cell = image.Pt(floorDiv(p.X-o.X, cs), floorDiv(p.Y-o.Y, cs))
	return cell, grid.InBounds(cell.X, cell.Y)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

// ToolbarRect is the left button column.
func (l Layout) ToolbarRect() image.Rectangle {
	return image.Rect(0, paletteHeight, l.Toolbar, l.Window.Y-statusHeight)
}

// PaletteRect is the color strip along the top.
func (l Layout) PaletteRect() image.Rectangle {
	return image.Rect(0, 0, l.Window.X, paletteHeight)
}

// StatusRect is the status line along the bottom.
func (l Layout) StatusRect() image.Rectangle {
	return image.Rect(0, l.Window.Y-statusHeight, l.Window.X, l.Window.Y)
}

// placeButtons stacks buttons in the toolbar and swatches in the palette.
func (l Layout) placeButtons(tools []Button, swatches []Button) {
	y := paletteHeight
	for _, b := range tools {
		b.SetRect(image.Rect(0, y, l.Toolbar, y+buttonHeight))
		y += buttonHeight
	}
	x := l.Toolbar
	for _, s := range swatches {
		s.SetRect(image.Rect(x, 2, x+paletteHeight-4, paletteHeight-2))
		x += paletteHeight
	}
}
