package persist

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/maskpaint/internal/grid"
)

// DecodeImage reads an image in any registered format and returns it as
// grid cells.
func DecodeImage(ctx context.Context, r io.Reader) ([]grid.Color, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return ImageCells(img), format, nil
}

// ImageCells stretches img to exactly the grid size, ignoring aspect ratio,
// and returns its pixels in index order. Transparency is flattened onto black.
func ImageCells(img image.Image) []grid.Color {
	dst := image.NewRGBA(grid.Bounds)
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	b := img.Bounds()
	if b.Dx() == grid.Width && b.Dy() == grid.Height {
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	}
	cells := make([]grid.Color, grid.Size)
	for i := range cells {
		off := i * 4
		cells[i] = grid.Color{R: dst.Pix[off], G: dst.Pix[off+1], B: dst.Pix[off+2]}
	}
	return cells
}
