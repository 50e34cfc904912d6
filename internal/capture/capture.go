// Package capture grabs the desktop as an import source for the editor.
// X11 is read directly; Wayland sessions go through the screenshot portal.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type platformBackend interface {
	Monitors() ([]Monitor, error)
	GrabRoot() (*image.RGBA, error)
	Portal(interactive bool) (*image.RGBA, error)
	Wayland() bool
}

var backend = newBackend()

var errNoMonitors = errors.New("capture: no monitors available")

// Monitor is one output of the display layout.
type Monitor struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// Options selects what part of the desktop is returned.
type Options struct {
	// Monitor crops to a monitor selector: "primary", an index, or a
	// substring of the output name.
	Monitor string
	// Region crops to a rectangle in desktop coordinates.
	Region image.Rectangle
	// Interactive lets the portal ask the user for the area.
	Interactive bool
}

// Screen captures the desktop and crops it per opts.
func Screen(opts Options) (*image.RGBA, error) {
	img, err := grab(opts.Interactive)
	if err != nil {
		return nil, err
	}
	if opts.Monitor != "" {
		mons, err := backend.Monitors()
		if err != nil {
			return nil, fmt.Errorf("capture: list monitors: %w", err)
		}
		mon, err := FindMonitor(mons, opts.Monitor)
		if err != nil {
			return nil, err
		}
		if img, err = crop(img, mon.Rect); err != nil {
			return nil, err
		}
	}
	if !opts.Region.Empty() {
		return crop(img, opts.Region)
	}
	return img, nil
}

// Monitors lists the outputs of the current display.
func Monitors() ([]Monitor, error) {
	return backend.Monitors()
}

func grab(interactive bool) (*image.RGBA, error) {
	if interactive || backend.Wayland() {
		return backend.Portal(interactive)
	}
	img, err := backend.GrabRoot()
	if err == nil {
		return img, nil
	}
	logrus.Debugf("x11 grab failed, trying portal: %v", err)
	shot, perr := backend.Portal(false)
	if perr != nil {
		return nil, fmt.Errorf("capture: x11: %v; portal: %w", err, perr)
	}
	return shot, nil
}

func crop(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("capture: region outside the captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}

// ParseRegion reads "x,y,w,h".
func ParseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// FindMonitor resolves a monitor selector.
func FindMonitor(monitors []Monitor, selector string) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	switch sel {
	case "":
		return monitors[0], nil
	case "primary":
		for _, m := range monitors {
			if m.Primary {
				return m, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(sel, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return Monitor{}, fmt.Errorf("capture: monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, m := range monitors {
		if strings.Contains(strings.ToLower(m.Name), sel) {
			return m, nil
		}
	}
	return Monitor{}, fmt.Errorf("capture: monitor %q not found", selector)
}
