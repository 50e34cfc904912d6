// Package clipboard moves frames between the editor and the desktop
// clipboard. Images travel as PNG; text travels as UTF-8.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

type format int

const (
	formatText format = iota
	formatPNG
)

var (
	ErrNoDisplay   = errors.New("clipboard: DISPLAY or WAYLAND_DISPLAY is required")
	ErrEmpty       = errors.New("clipboard: no matching data")
	ErrUnsupported = errors.New("clipboard: not supported on this platform")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WriteImage publishes img as PNG.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("clipboard: encode png: %w", err)
	}
	return write(formatPNG, buf.Bytes())
}

// ImageReader returns the PNG currently on the clipboard, undecoded.
func ImageReader() (io.Reader, error) {
	data, err := read(formatPNG)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return bytes.NewReader(data), nil
}

// ReadImage decodes the PNG currently on the clipboard.
func ReadImage() (image.Image, error) {
	r, err := ImageReader()
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("clipboard: decode png: %w", err)
	}
	return img, nil
}

// WriteText publishes text.
func WriteText(text string) error {
	return write(formatText, []byte(text))
}

// ReadText returns the text on the clipboard.
func ReadText() (string, error) {
	data, err := read(formatText)
	if err != nil {
		return "", err
	}
	// STRING replies from some owners carry a trailing NUL.
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}
