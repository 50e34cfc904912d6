// Package render draws the grid for people: scaled PNG previews with the
// device silhouette, and a colored terminal view.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/theme"
)

// Options configures Preview.
type Options struct {
	// CellSize is the edge length of one cell in pixels.
	CellSize int
	// GridLines separates cells with a one pixel line.
	GridLines bool
	Theme     *theme.Theme
}

// DefaultOptions returns a 12 pixel grid with separators.
func DefaultOptions() Options {
	return Options{CellSize: 12, GridLines: true, Theme: theme.Default()}
}

// Size returns the pixel size of a preview rendered with opts.
func (o Options) Size() image.Point {
	cs := o.cellSize()
	return image.Pt(grid.Width*cs, grid.Height*cs)
}

func (o Options) cellSize() int {
	if o.CellSize < 1 {
		return 1
	}
	return o.CellSize
}

// CellRect returns the pixel rectangle of cell (x, y) relative to origin.
func (o Options) CellRect(origin image.Point, x, y int) image.Rectangle {
	cs := o.cellSize()
	tl := origin.Add(image.Pt(x*cs, y*cs))
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(cs, cs))}
}

// Preview renders colors at CellSize pixels per cell. Cells outside mask
// show a checkerboard.
func Preview(colors []grid.Color, mask *grid.Mask, opts Options) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: opts.Size()})
	DrawGrid(dst, image.Point{}, colors, mask, opts)
	return dst
}

// DrawGrid draws the grid onto dst with its top-left corner at origin.
func DrawGrid(dst draw.Image, origin image.Point, colors []grid.Color, mask *grid.Mask, opts Options) {
	th := opts.Theme
	if th == nil {
		th = theme.Default()
	}
	cs := opts.cellSize()
	checker := cs / 3
	if checker < 2 {
		checker = 2
	}
	lines := opts.GridLines && cs >= 4
	for i := 0; i < grid.Size; i++ {
		x, y, _ := grid.Coords(i)
		r := opts.CellRect(origin, x, y)
		if !mask.Contains(i) {
			DrawCheckerboard(dst, r, checker, th.MaskedLight, th.MaskedDark)
			continue
		}
		var c grid.Color
		if i < len(colors) {
			c = colors[i]
		}
		draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
		if lines {
			line := image.NewUniform(th.GridLine)
			draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), line, image.Point{}, draw.Src)
			draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), line, image.Point{}, draw.Src)
		}
	}
}

// DrawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func DrawCheckerboard(dst draw.Image, rect image.Rectangle, size int, light, dark color.Color) {
	if size < 1 {
		size = 1
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
