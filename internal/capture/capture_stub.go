//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("capture: not supported on this platform")

type unsupportedBackend struct{}

func newBackend() platformBackend { return unsupportedBackend{} }

func (unsupportedBackend) Monitors() ([]Monitor, error)     { return nil, errUnsupported }
func (unsupportedBackend) GrabRoot() (*image.RGBA, error)   { return nil, errUnsupported }
func (unsupportedBackend) Portal(bool) (*image.RGBA, error) { return nil, errUnsupported }
func (unsupportedBackend) Wayland() bool                    { return false }
