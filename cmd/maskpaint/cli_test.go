package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/maskpaint/internal/capture"
	"github.com/example/maskpaint/internal/config"
	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/simulator"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Store.Path = t.TempDir()
	cfg.ExportDir = t.TempDir()
	cfg.Notify = config.Notify{}
	return cfg
}

func newTestRoot(cfg *config.Config) (*root, *bytes.Buffer) {
	r := newRoot(cfg)
	var out bytes.Buffer
	r.stdout = &out
	r.stderr = &bytes.Buffer{}
	return r, &out
}

func exportJSON(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"export", "-format", "json"}); err != nil {
		t.Fatalf("export: %v", err)
	}
	var body export.Body
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("decode export %q: %v", out.String(), err)
	}
	if len(body.Pixels) != grid.Size {
		t.Fatalf("expected %d pixels, got %d", grid.Size, len(body.Pixels))
	}
	return body.Pixels
}

func countColor(pixels []string, hex string) int {
	n := 0
	for _, p := range pixels {
		if p == hex {
			n++
		}
	}
	return n
}

func TestRootWithoutCommandShowsHelp(t *testing.T) {
	r, _ := newTestRoot(testConfig(t))
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	help := uerr.Error()
	for _, want := range []string{"Usage: maskpaint", "-mask", "simulate"} {
		if !strings.Contains(help, want) {
			t.Fatalf("expected help to contain %q, got:\n%s", want, help)
		}
	}
}

func TestCommandHelp(t *testing.T) {
	for _, name := range []string{"edit", "draw", "fill", "clear", "tool", "import", "export", "upload", "show", "simulate", "interactive", "config"} {
		t.Run(name, func(t *testing.T) {
			r, _ := newTestRoot(testConfig(t))
			err := r.Run([]string{name, "-h"})
			var uerr *UsageError
			if !errors.As(err, &uerr) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if want := "Usage: maskpaint " + name; !strings.HasPrefix(uerr.Error(), want) {
				t.Fatalf("expected help to start with %q, got:\n%s", want, uerr.Error())
			}
		})
	}
}

func TestParseDrawErrors(t *testing.T) {
	cases := map[string][]string{
		"requires 4 integer arguments": {"rect", "1", "2"},
		"unsupported shape":            {"spray", "1", "1"},
		"invalid integer":              {"line", "1", "a", "2", "3"},
		"one or more x y pairs":        {"paint", "1"},
		"brush must be between":        {"-brush", "7", "paint", "1", "1"},
	}
	for want, args := range cases {
		if _, err := parseDrawCmd(args, nil); err == nil {
			t.Fatalf("%v: expected error", args)
		} else if !strings.Contains(err.Error(), want) {
			t.Fatalf("%v: expected error to mention %q, got %v", args, want, err)
		}
	}
}

func TestParseDrawFlagsAfterShape(t *testing.T) {
	d, err := parseDrawCmd([]string{"circle", "20", "28", "-centered", "26", "34", "--filled"}, &root{program: "maskpaint"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.centered || !d.filled {
		t.Fatalf("expected flags to be parsed, got centered=%t filled=%t", d.centered, d.filled)
	}
	want := []image.Point{{20, 28}, {26, 34}}
	if len(d.points) != 2 || d.points[0] != want[0] || d.points[1] != want[1] {
		t.Fatalf("expected points %v, got %v", want, d.points)
	}
}

func TestSplitDrawArgsKeepsNegativeCoordinates(t *testing.T) {
	d, err := parseDrawCmd([]string{"line", "-3", "0", "4", "0"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.points[0] != image.Pt(-3, 0) {
		t.Fatalf("expected first point (-3,0), got %v", d.points[0])
	}
}

func TestDrawPersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)
	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"draw", "-filled", "-color", "#ff0000", "rect", "5", "5", "10", "8"}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !strings.Contains(out.String(), "drew rect") {
		t.Fatalf("unexpected output %q", out.String())
	}

	pixels := exportJSON(t, cfg)
	if got := countColor(pixels, "#ff0000"); got != 24 {
		t.Fatalf("expected 24 red cells, got %d", got)
	}
	if pixels[5*grid.Width+5] != "#ff0000" || pixels[4*grid.Width+5] != "#000000" {
		t.Fatalf("rectangle misplaced")
	}

	r, out = newTestRoot(cfg)
	if err := r.Run([]string{"tool"}); err != nil {
		t.Fatalf("tool: %v", err)
	}
	if want := "tool=rect color=#ff0000 brush=1 filled=true"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected persisted tool %q, got %q", want, out.String())
	}
}

func TestMaskHidesCellsOnExport(t *testing.T) {
	cfg := testConfig(t)
	maskPath := filepath.Join(t.TempDir(), "layout.json")
	if err := os.WriteFile(maskPath, []byte("[0, 1, 2]"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.MaskLayout = maskPath

	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"fill", "-color", "white"}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if !strings.Contains(out.String(), "filled 3 cells") {
		t.Fatalf("unexpected output %q", out.String())
	}
	pixels := exportJSON(t, cfg)
	if got := countColor(pixels, "#ffffff"); got != 3 {
		t.Fatalf("expected 3 lit cells, got %d", got)
	}
}

func TestFailClosedRejectsPainting(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaskLayout = filepath.Join(t.TempDir(), "missing.json")
	r, _ := newTestRoot(cfg)
	if err := r.Run([]string{"-fail-closed", "fill"}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	r, _ = newTestRoot(cfg)
	if err := r.Run([]string{"-fail-closed", "draw", "paint", "1", "1"}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if got := countColor(exportJSON(t, cfg), "#000000"); got != grid.Size {
		t.Fatalf("expected every cell off, got %d off", got)
	}
}

func TestExportFormats(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRoot(cfg)
	if err := r.Run([]string{"fill", "-color", "#00ff00"}); err != nil {
		t.Fatalf("fill: %v", err)
	}

	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"export", "-format", "hex"}); err != nil {
		t.Fatalf("export hex: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != grid.Height {
		t.Fatalf("expected %d hex rows, got %d", grid.Height, len(lines))
	}
	if !strings.HasPrefix(lines[0], "#00ff00 #00ff00") {
		t.Fatalf("unexpected hex row %q", lines[0])
	}

	dir := t.TempDir()
	framePath := filepath.Join(dir, "frame.bin")
	r, _ = newTestRoot(cfg)
	if err := r.Run([]string{"export", "-format", "frame", "-output", framePath}); err != nil {
		t.Fatalf("export frame: %v", err)
	}
	data, err := os.ReadFile(framePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != export.FrameSize {
		t.Fatalf("expected %d frame bytes, got %d", export.FrameSize, len(data))
	}

	pngPath := filepath.Join(dir, "preview.png")
	r, _ = newTestRoot(cfg)
	if err := r.Run([]string{"export", "-format", "png", "-scale", "4", "-output", pngPath}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(grid.Width*4, grid.Height*4) {
		t.Fatalf("unexpected preview size %v", got)
	}
}

func TestExportDefaultsToExportDir(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRoot(cfg)
	if err := r.Run([]string{"export", "-format", "raw"}); err != nil {
		t.Fatalf("export raw: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(cfg.ExportDir, "maskpaint-*.png"))
	if len(matches) != 1 {
		t.Fatalf("expected one png in export dir, got %v", matches)
	}
}

func TestParseExportErrors(t *testing.T) {
	r := &root{program: "maskpaint", config: config.New()}
	for want, args := range map[string][]string{
		"unknown export format": {"-format", "bmp"},
		"scale must be positive": {"-scale", "0"},
		"cannot be copied":       {"-format", "frame", "-to-clipboard"},
	} {
		if _, err := parseExportCmd(args, r); err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%v: expected error mentioning %q, got %v", args, want, err)
		}
	}
}

func TestUploadToSimulator(t *testing.T) {
	sim := simulator.New()
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Device.URL = srv.URL + "/preview"
	r, _ := newTestRoot(cfg)
	if err := r.Run([]string{"fill", "-color", "#0000ff"}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"upload"}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out.String(), "uploaded to "+srv.URL) {
		t.Fatalf("unexpected output %q", out.String())
	}
	colors, seq := sim.Latest()
	if seq != 1 {
		t.Fatalf("expected one frame, got %d", seq)
	}
	if colors[0] != (grid.Color{B: 0xff}) {
		t.Fatalf("expected blue first cell, got %v", colors[0])
	}
}

func TestInteractiveSharesSessionAndCooldown(t *testing.T) {
	sim := simulator.New()
	srv := httptest.NewServer(sim.Handler())
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Device.URL = srv.URL + "/preview"
	cfg.Device.Cooldown = time.Hour
	r, out := newTestRoot(cfg)
	r.ephemeral = true

	cmd, err := parseInteractiveCmd([]string{
		"-e", "fill -color #ff00ff",
		"-e", "export -format hex",
		"-e", "upload",
		"-e", "upload",
	}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if err == nil || !strings.Contains(err.Error(), "wait") {
		t.Fatalf("expected cool-down error from the second upload, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "filled") || !strings.Contains(out.String(), "#ff00ff #ff00ff") {
		t.Fatalf("expected the fill to be visible to export, got %q", out.String())
	}
	if _, seq := sim.Latest(); seq != 1 {
		t.Fatalf("expected exactly one accepted frame, got %d", seq)
	}
	if r.env != nil {
		t.Fatalf("expected the shared session to be closed")
	}
}

func TestUploadURLOverrideKeepsSessionClient(t *testing.T) {
	home := simulator.New()
	homeSrv := httptest.NewServer(home.Handler())
	defer homeSrv.Close()
	other := simulator.New()
	otherSrv := httptest.NewServer(other.Handler())
	defer otherSrv.Close()

	cfg := testConfig(t)
	cfg.Device.URL = homeSrv.URL + "/preview"
	cfg.Device.Cooldown = time.Hour
	r, out := newTestRoot(cfg)
	r.ephemeral = true

	cmd, err := parseInteractiveCmd([]string{
		"-e", "upload -url " + otherSrv.URL + "/preview",
		"-e", "upload",
		"-e", "upload",
	}, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	err = cmd.Run()
	if err == nil || !strings.Contains(err.Error(), "wait") {
		t.Fatalf("expected the configured client to cool down after its own upload, got %v", err)
	}
	if !strings.Contains(out.String(), "uploaded to "+otherSrv.URL) || !strings.Contains(out.String(), "uploaded to "+homeSrv.URL) {
		t.Fatalf("expected one upload to each endpoint, got %q", out.String())
	}
	if _, seq := other.Latest(); seq != 1 {
		t.Fatalf("expected one frame at the override url, got %d", seq)
	}
	if _, seq := home.Latest(); seq != 1 {
		t.Fatalf("expected one frame at the configured url, got %d", seq)
	}
}

func TestInteractiveReadsLines(t *testing.T) {
	r, out := newTestRoot(testConfig(t))
	r.ephemeral = true
	cmd, err := parseInteractiveCmd(nil, r)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmd.in = strings.NewReader("# comment\ntool -brush 3\n\nexit\ntool -brush 1\n")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "brush=3") || strings.Contains(out.String(), "brush=1") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestToolColorWhileErasingSelectsPaint(t *testing.T) {
	cfg := testConfig(t)
	r, _ := newTestRoot(cfg)
	if err := r.Run([]string{"tool", "-tool", "erase"}); err != nil {
		t.Fatalf("tool: %v", err)
	}
	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"tool", "-color", "blue"}); err != nil {
		t.Fatalf("tool: %v", err)
	}
	if !strings.Contains(out.String(), "tool=paint color=#0000ff") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestImportFileAndSources(t *testing.T) {
	cfg := testConfig(t)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i-3] = 0xff
		src.Pix[i] = 0xff
	}
	path := filepath.Join(t.TempDir(), "red.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, src); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"import", path}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported red.png") {
		t.Fatalf("unexpected output %q", out.String())
	}
	if got := countColor(exportJSON(t, cfg), "#ff0000"); got != grid.Size {
		t.Fatalf("expected every cell red, got %d", got)
	}

	r = &root{program: "maskpaint", config: cfg}
	if _, err := parseImportCmd([]string{"-file", path, "-from-clipboard"}, r); err == nil {
		t.Fatalf("expected error for two sources")
	}
	if _, err := parseImportCmd([]string{"-file", path, "-region", "0,0,2,2"}, r); err == nil {
		t.Fatalf("expected error for -region without -capture")
	}
	var uerr *UsageError
	if _, err := parseImportCmd(nil, r); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error without a source, got %v", err)
	}
}

func TestImportCaptureError(t *testing.T) {
	original := captureScreenFn
	sentinel := errors.New("denied")
	captureScreenFn = func(capture.Options) (*image.RGBA, error) { return nil, sentinel }
	t.Cleanup(func() { captureScreenFn = original })

	r, _ := newTestRoot(testConfig(t))
	err := r.Run([]string{"import", "-capture", "-region", "0,0,10,10"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if want := "failed to capture screen"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to contain %q, got %v", want, err)
	}
}

func TestImportCaptureStretchesGrab(t *testing.T) {
	original := captureScreenFn
	var got capture.Options
	captureScreenFn = func(opts capture.Options) (*image.RGBA, error) {
		got = opts
		img := image.NewRGBA(image.Rect(0, 0, 84, 112))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i+1] = 0xff
			img.Pix[i+3] = 0xff
		}
		return img, nil
	}
	t.Cleanup(func() { captureScreenFn = original })

	cfg := testConfig(t)
	r, _ := newTestRoot(cfg)
	if err := r.Run([]string{"import", "-capture", "-monitor", "primary"}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Monitor != "primary" {
		t.Fatalf("expected monitor selector to be passed through, got %+v", got)
	}
	if n := countColor(exportJSON(t, cfg), "#00ff00"); n != grid.Size {
		t.Fatalf("expected every cell green, got %d", n)
	}
}

func TestShowRendersEveryRowPair(t *testing.T) {
	r, out := newTestRoot(testConfig(t))
	if err := r.Run([]string{"show", "-plain"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if got := strings.Count(strings.TrimRight(out.String(), "\n"), "\n") + 1; got != grid.Height/2 {
		t.Fatalf("expected %d lines, got %d", grid.Height/2, got)
	}
}

func TestConfigPrintAndSave(t *testing.T) {
	cfg := testConfig(t)
	r, out := newTestRoot(cfg)
	if err := r.Run([]string{"config", "print"}); err != nil {
		t.Fatalf("config print: %v", err)
	}
	if !strings.Contains(out.String(), "[device]") {
		t.Fatalf("expected device section, got %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "saved.rc")
	r, _ = newTestRoot(cfg)
	if err := r.Run([]string{"config", "-path", path, "save"}); err != nil {
		t.Fatalf("config save: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	saved, err := config.Parse(f)
	if err != nil {
		t.Fatalf("parse saved config: %v", err)
	}
	if saved.Device.URL != cfg.Device.URL {
		t.Fatalf("expected device url %q, got %q", cfg.Device.URL, saved.Device.URL)
	}

	r, _ = newTestRoot(cfg)
	if err := r.Run([]string{"config", "reset"}); err == nil {
		t.Fatalf("expected unknown config command error")
	}
}

func TestVersion(t *testing.T) {
	r, out := newTestRoot(testConfig(t))
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if want := "maskpaint version dev"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}
