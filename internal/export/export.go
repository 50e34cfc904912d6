// Package export converts the committed grid into the formats consumed by the
// device and by external tools.
package export

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"

	"github.com/example/maskpaint/internal/grid"
)

// Source is anything holding a grid buffer and its mask.
type Source interface {
	Cells() []grid.Color
	Mask() *grid.Mask
}

// ToWireFormat returns every cell in index order. Cells outside the mask are
// reported as Off.
func ToWireFormat(src Source) []grid.Color {
	cells := src.Cells()
	mask := src.Mask()
	out := make([]grid.Color, grid.Size)
	for i := range out {
		if i < len(cells) && mask.Contains(i) {
			out[i] = cells[i]
		}
	}
	return out
}

// Options adjusts the JSON payload.
type Options struct {
	// OmitMasked sends an empty string for cells outside Mask.
	OmitMasked bool
	Mask       *grid.Mask
}

// Body is the upload request document.
type Body struct {
	Pixels []string `json:"pixels"`
}

// Payload encodes colors as the upload body {"pixels": ["#rrggbb", ...]}.
func Payload(colors []grid.Color, opts Options) ([]byte, error) {
	body := Body{Pixels: make([]string, len(colors))}
	for i, c := range colors {
		if opts.OmitMasked && !opts.Mask.Contains(i) {
			continue
		}
		body.Pixels[i] = c.Hex()
	}
	return json.Marshal(body)
}

// ParsePixels converts payload pixel strings back into colors. Empty,
// transparent or unparseable entries are Off; missing trailing entries are
// Off and entries past the grid are ignored.
func ParsePixels(pixels []string) []grid.Color {
	out := make([]grid.Color, grid.Size)
	for i, s := range pixels {
		if i >= grid.Size {
			break
		}
		if s == "" {
			continue
		}
		c, err := grid.ParseColor(s)
		if err != nil {
			continue
		}
		out[i] = c
	}
	return out
}

// Image renders colors onto a grid-sized RGBA image.
func Image(colors []grid.Color) *image.RGBA {
	img := image.NewRGBA(grid.Bounds)
	for i := 0; i < grid.Size; i++ {
		var c grid.Color
		if i < len(colors) {
			c = colors[i]
		}
		off := i * 4
		img.Pix[off] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = 0xFF
	}
	return img
}

// Device frame geometry.
const (
	FrameWidth  = 46
	FrameHeight = 58
	FrameSize   = FrameWidth * FrameHeight * 3
)

// DeviceFrame resamples colors to the panel resolution and packs them as RGB
// triples in column-major order.
func DeviceFrame(colors []grid.Color) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), Image(colors), grid.Bounds, xdraw.Src, nil)
	out := make([]byte, 0, FrameSize)
	for x := 0; x < FrameWidth; x++ {
		for y := 0; y < FrameHeight; y++ {
			off := dst.PixOffset(x, y)
			out = append(out, dst.Pix[off], dst.Pix[off+1], dst.Pix[off+2])
		}
	}
	return out
}

// FrameImage unpacks a device frame into an image.
func FrameImage(frame []byte) (*image.RGBA, error) {
	if len(frame) != FrameSize {
		return nil, fmt.Errorf("frame is %d bytes, want %d", len(frame), FrameSize)
	}
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	i := 0
	for x := 0; x < FrameWidth; x++ {
		for y := 0; y < FrameHeight; y++ {
			off := img.PixOffset(x, y)
			img.Pix[off] = frame[i]
			img.Pix[off+1] = frame[i+1]
			img.Pix[off+2] = frame[i+2]
			img.Pix[off+3] = 0xFF
			i += 3
		}
	}
	return img, nil
}

// WriteHex writes one grid row per line as space separated "#rrggbb" values.
func WriteHex(w io.Writer, colors []grid.Color) error {
	var sb strings.Builder
	for y := 0; y < grid.Height; y++ {
		sb.Reset()
		for x := 0; x < grid.Width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			i := y*grid.Width + x
			var c grid.Color
			if i < len(colors) {
				c = colors[i]
			}
			sb.WriteString(c.Hex())
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
