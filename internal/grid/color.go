package grid

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a 24-bit RGB cell value. The zero value is Off.
type Color struct {
	R, G, B uint8
}

// Off is the color of an unlit cell.
var Off = Color{}

var _ color.Color = Color{}

// RGBA implements color.Color so cells can be drawn with the image packages.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}.RGBA()
}

// Hex returns the color as a lower-case "#rrggbb" string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// IsOff reports whether the cell is unlit.
func (c Color) IsOff() bool { return c == Off }

// FromColor converts any color.Color, dropping alpha after flattening onto black.
func FromColor(c color.Color) Color {
	if c == nil {
		return Off
	}
	if rc, ok := c.(Color); ok {
		return rc
	}
	r, g, b, _ := c.RGBA()
	return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

// ParseColor accepts "#rrggbb", "#rgb", "rrggbb", "rgb(r, g, b)", "rgba(r, g, b, a)" and
// CSS color names. Fully transparent rgba values parse as Off.
func ParseColor(s string) (Color, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return Off, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return Color{R: c.R, G: c.G, B: c.B}, nil
	}
	if strings.HasPrefix(spec, "rgb") {
		return parseFunctional(spec)
	}
	hex := strings.TrimPrefix(spec, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Off, fmt.Errorf("invalid color %q", s)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Off, fmt.Errorf("invalid color %q", s)
	}
	return Color{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val)}, nil
}

func parseFunctional(spec string) (Color, error) {
	open := strings.IndexByte(spec, '(')
	if open < 0 || !strings.HasSuffix(spec, ")") {
		return Off, fmt.Errorf("invalid color %q", spec)
	}
	parts := strings.Split(spec[open+1:len(spec)-1], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Off, fmt.Errorf("invalid color %q", spec)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return Off, fmt.Errorf("invalid color %q", spec)
		}
		ch[i] = uint8(v)
	}
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return Off, fmt.Errorf("invalid color %q", spec)
		}
		if a == 0 {
			return Off, nil
		}
	}
	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}
