package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/capture"
	"github.com/example/maskpaint/internal/clipboard"
	"github.com/example/maskpaint/internal/device"
	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/render"
)

// captureScreenFn is replaced in tests.
var captureScreenFn = capture.Screen

// clipboardImageFn is replaced in tests.
var clipboardImageFn = clipboard.ImageReader

func (r *root) previewOptions(cellSize int) render.Options {
	opts := render.DefaultOptions()
	opts.Theme = r.activeTheme
	if cellSize > 0 {
		opts.CellSize = cellSize
	}
	return opts
}

// upload sends the visible grid through dev, or the session's client when
// dev is nil.
func (r *root) upload(ctx context.Context, env *sessionEnv, dev *device.Client, opts export.Options) (string, error) {
	if dev == nil {
		dev = env.device
	}
	colors := export.ToWireFormat(env.session)
	if opts.OmitMasked && opts.Mask == nil {
		opts.Mask = env.session.Mask()
	}
	if err := dev.Upload(ctx, colors, opts); err != nil {
		if errors.Is(err, device.ErrCoolingDown) {
			return "", fmt.Errorf("upload: wait %s before sending again", dev.Remaining().Round(100*time.Millisecond))
		}
		return "", fmt.Errorf("upload: %w", err)
	}
	if r.notifier != nil {
		r.notifier.Upload(dev.URL(), export.Image(colors))
	}
	return fmt.Sprintf("uploaded to %s", dev.URL()), nil
}

func (r *root) importFrom(ctx context.Context, env *sessionEnv, src io.Reader, source string) (string, error) {
	if err := env.session.Import(ctx, src); err != nil {
		return "", fmt.Errorf("import %s: %w", source, err)
	}
	if r.notifier != nil {
		r.notifier.Import(source)
	}
	return "imported " + source, nil
}

func (r *root) importFile(ctx context.Context, env *sessionEnv, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}
	defer f.Close()
	return r.importFrom(ctx, env, f, filepath.Base(path))
}

func (r *root) importClipboard(ctx context.Context, env *sessionEnv) (string, error) {
	src, err := clipboardImageFn()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return r.importFrom(ctx, env, src, "clipboard")
}

func (r *root) importCapture(ctx context.Context, env *sessionEnv, opts capture.Options) (string, error) {
	img, err := captureScreenFn(opts)
	if err != nil {
		return "", fmt.Errorf("failed to capture screen: %w", err)
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, img); err != nil {
		return "", err
	}
	return r.importFrom(ctx, env, &buf, "screen")
}

// copyPreview places the rendered preview on the clipboard as PNG.
func (r *root) copyPreview(env *sessionEnv, cellSize int) (string, error) {
	img := render.Preview(export.ToWireFormat(env.session), env.session.Mask(), r.previewOptions(cellSize))
	if err := clipboard.WriteImage(img); err != nil {
		return "", fmt.Errorf("copy to clipboard: %w", err)
	}
	return "copied preview", nil
}

// defaultExportPath names a timestamped file in the export directory.
func (r *root) defaultExportPath(ext string) string {
	dir := r.config.ExportDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("maskpaint-%s.%s", time.Now().Format("20060102-150405"), ext))
}

// writeFile writes data to path, creating parent directories.
func (r *root) writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logrus.WithField("bytes", len(data)).Debugf("wrote %s", path)
	if r.notifier != nil {
		r.notifier.Save(path)
	}
	return nil
}

func (r *root) savePreview(env *sessionEnv, cellSize int) (string, error) {
	img := render.Preview(export.ToWireFormat(env.session), env.session.Mask(), r.previewOptions(cellSize))
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, img); err != nil {
		return "", err
	}
	path := r.defaultExportPath("png")
	if err := r.writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return "saved " + path, nil
}
