//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func resetInit() {
	initOnce = sync.Once{}
	initErr = nil
}

func TestWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	resetInit()
	t.Cleanup(resetInit)

	if err := WriteText("#ff0000"); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("WriteText: expected ErrNoDisplay, got %v", err)
	}
	if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 2, 2))); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("WriteImage: expected ErrNoDisplay, got %v", err)
	}
	if _, err := ImageReader(); !errors.Is(err, ErrNoDisplay) {
		t.Fatalf("ImageReader: expected ErrNoDisplay, got %v", err)
	}
}
