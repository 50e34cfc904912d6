//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = ErrNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

func nativeFormat(f format) clipboard.Format {
	if f == formatPNG {
		return clipboard.FmtImage
	}
	return clipboard.FmtText
}

func write(f format, data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(nativeFormat(f), data)
	return nil
}

func read(f format) ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	return clipboard.Read(nativeFormat(f)), nil
}
