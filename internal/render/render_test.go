package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/theme"
)

func TestPreviewPaintsCellsAndChecker(t *testing.T) {
	colors := make([]grid.Color, grid.Size)
	colors[0] = grid.Color{R: 255}
	mask := grid.NewMask([]int{0})
	opts := Options{CellSize: 6, GridLines: true, Theme: theme.Default()}
	img := Preview(colors, mask, opts)

	if got := img.Bounds(); !got.Eq(image.Rect(0, 0, grid.Width*6, grid.Height*6)) {
		t.Fatalf("unexpected bounds %v", got)
	}
	if got := img.RGBAAt(2, 2); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("cell 0 should be red, got %+v", got)
	}
	if got := img.RGBAAt(5, 2); got != opts.Theme.GridLine {
		t.Fatalf("expected grid line at cell edge, got %+v", got)
	}
	// cell (1,0) is outside the mask and shows the checker colors
	got := img.RGBAAt(7, 1)
	if got != opts.Theme.MaskedLight && got != opts.Theme.MaskedDark {
		t.Fatalf("masked cell should use checker colors, got %+v", got)
	}
}

func TestPreviewWithoutGridLines(t *testing.T) {
	colors := make([]grid.Color, grid.Size)
	for i := range colors {
		colors[i] = grid.Color{B: 200}
	}
	img := Preview(colors, nil, Options{CellSize: 4})
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := img.RGBAAt(x, y); got != (color.RGBA{0, 0, 200, 255}) {
				t.Fatalf("pixel (%d,%d) = %+v", x, y, got)
			}
		}
	}
}

func TestDrawCheckerboard(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	light := color.RGBA{255, 255, 255, 255}
	dark := color.RGBA{0, 0, 0, 255}
	DrawCheckerboard(img, img.Bounds(), 2, light, dark)
	if img.RGBAAt(0, 0) != light || img.RGBAAt(2, 0) != dark || img.RGBAAt(2, 2) != light {
		t.Fatal("unexpected checker pattern")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, Preview(nil, nil, Options{CellSize: 1})); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != grid.Width || img.Bounds().Dy() != grid.Height {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
}

func TestTerminalRowCount(t *testing.T) {
	out := Terminal(make([]grid.Color, grid.Size), nil, nil)
	lines := strings.Split(out, "\n")
	if len(lines) != grid.Height/2 {
		t.Fatalf("expected %d lines, got %d", grid.Height/2, len(lines))
	}
	if !strings.Contains(out, halfBlock) {
		t.Fatal("expected half blocks in output")
	}
}
