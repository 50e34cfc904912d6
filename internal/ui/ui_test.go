package ui

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/maskpaint/internal/editor"
	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/tool"
)

func newApp(t *testing.T, opts ...Option) (*App, *editor.Session) {
	t.Helper()
	app := New(opts...)
	sess := editor.New(grid.New(nil), editor.WithOnChange(app.NotifyChanged))
	app.Bind(sess)
	return app, sess
}

func cellCenter(l Layout, x, y int) (float32, float32) {
	o := l.Origin()
	return float32(o.X + x*l.CellSize + l.CellSize/2), float32(o.Y + y*l.CellSize + l.CellSize/2)
}

func press(l Layout, x, y int, mods key.Modifiers) mouse.Event {
	px, py := cellCenter(l, x, y)
	return mouse.Event{X: px, Y: py, Button: mouse.ButtonLeft, Direction: mouse.DirPress, Modifiers: mods}
}

func move(l Layout, x, y int, mods key.Modifiers) mouse.Event {
	px, py := cellCenter(l, x, y)
	return mouse.Event{X: px, Y: py, Direction: mouse.DirNone, Modifiers: mods}
}

func release(l Layout, x, y int, mods key.Modifiers) mouse.Event {
	px, py := cellCenter(l, x, y)
	return mouse.Event{X: px, Y: py, Button: mouse.ButtonLeft, Direction: mouse.DirRelease, Modifiers: mods}
}

func TestCellAt(t *testing.T) {
	l := Layout{Toolbar: 60, CellSize: 10}
	o := l.Origin()
	c, ok := l.CellAt(o)
	assert.True(t, ok)
	assert.Equal(t, image.Pt(0, 0), c)

	c, ok = l.CellAt(o.Add(image.Pt(10*41+9, 10*55+9)))
	assert.True(t, ok)
	assert.Equal(t, image.Pt(41, 55), c)

	c, ok = l.CellAt(o.Add(image.Pt(-1, 5)))
	assert.False(t, ok)
	assert.Equal(t, image.Pt(-1, 0), c)

	_, ok = l.CellAt(o.Add(image.Pt(420, 0)))
	assert.False(t, ok)
}

func TestFitKeepsWholeGridVisible(t *testing.T) {
	l := Layout{Window: image.Pt(800, 900), Toolbar: 80}
	l.Fit()
	assert.Greater(t, l.CellSize, minCellSize)
	assert.True(t, l.GridRect().In(image.Rect(0, 0, 800, 900)))

	l.Window = image.Pt(10, 10)
	l.Fit()
	assert.Equal(t, minCellSize, l.CellSize)
}

func TestRectangleGestureThroughPointer(t *testing.T) {
	app, sess := newApp(t)
	sess.Tools().SelectTool(tool.Rect)
	sess.Tools().SetFilled(true)
	l := app.Layout()

	app.OnMouse(press(l, 5, 5, 0))
	require.True(t, sess.Active())
	app.OnMouse(move(l, 8, 6, 0))
	app.OnMouse(move(l, 10, 8, 0))
	app.OnMouse(release(l, 10, 8, 0))
	assert.False(t, sess.Active())

	painted := 0
	for _, c := range sess.Cells() {
		if !c.IsOff() {
			painted++
		}
	}
	assert.Equal(t, 24, painted)
}

func TestShiftConstrainsShape(t *testing.T) {
	app, sess := newApp(t)
	sess.Tools().SelectTool(tool.Rect)
	sess.Tools().SetFilled(true)
	l := app.Layout()

	app.OnMouse(press(l, 5, 5, 0))
	app.OnMouse(release(l, 10, 8, key.ModShift))

	painted := 0
	for _, c := range sess.Cells() {
		if !c.IsOff() {
			painted++
		}
	}
	assert.Equal(t, 36, painted)
}

func TestFreehandDragPaintsEachReportedCell(t *testing.T) {
	app, sess := newApp(t)
	sess.Tools().SetColor(grid.Color{R: 255})
	l := app.Layout()

	app.OnMouse(press(l, 1, 1, 0))
	app.OnMouse(move(l, 2, 1, 0))
	app.OnMouse(release(l, 3, 1, 0))
	for x := 1; x <= 3; x++ {
		c, _ := sess.Get(x, 1)
		assert.Equal(t, grid.Color{R: 255}, c, "x=%d", x)
	}
}

func TestPressOutsideGridDoesNotBegin(t *testing.T) {
	app, sess := newApp(t)
	assert.False(t, app.OnMouse(mouse.Event{X: 2000, Y: 2000, Button: mouse.ButtonLeft, Direction: mouse.DirPress}))
	assert.False(t, sess.Active())
}

func TestToolbarButtonsSelectTools(t *testing.T) {
	app, sess := newApp(t)
	var line Button
	for _, b := range app.tools {
		if lb, ok := b.(*labelButton); ok && lb.label == "L:Line" {
			line = b
		}
	}
	require.NotNil(t, line)
	c := line.Rect().Min.Add(image.Pt(3, 3))
	app.OnMouse(mouse.Event{X: float32(c.X), Y: float32(c.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	assert.Equal(t, tool.Line, sess.Tools().Tool())
}

func TestSwatchSetsColorAndLeavesErase(t *testing.T) {
	app, sess := newApp(t)
	sess.Tools().SelectTool(tool.Erase)
	sw := app.swatches[1]
	c := sw.Rect().Min.Add(image.Pt(2, 2))
	app.OnMouse(mouse.Event{X: float32(c.X), Y: float32(c.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	assert.Equal(t, tool.Paint, sess.Tools().Tool())
	assert.Equal(t, grid.Color{R: 255}, sess.Tools().Settings().Color)
}

func TestKeyboardShortcuts(t *testing.T) {
	app, sess := newApp(t)
	keyPress := func(r rune, code key.Code, mods key.Modifiers) (bool, bool) {
		return app.OnKey(key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress})
	}

	repaint, quit := keyPress('o', key.CodeO, 0)
	assert.True(t, repaint)
	assert.False(t, quit)
	assert.Equal(t, tool.Circle, sess.Tools().Tool())

	keyPress('3', key.Code3, 0)
	assert.Equal(t, 3, sess.Tools().Settings().BrushSize)

	keyPress('f', key.CodeF, 0)
	assert.True(t, sess.Tools().Settings().Filled)

	keyPress('E', key.CodeE, key.ModShift)
	assert.Equal(t, tool.Erase, sess.Tools().Tool())

	_, quit = keyPress('q', key.CodeQ, 0)
	assert.True(t, quit)

	repaint, _ = keyPress('z', key.CodeZ, 0)
	assert.False(t, repaint)
}

func TestEscapeCancelsShapePreview(t *testing.T) {
	app, sess := newApp(t)
	sess.Tools().SelectTool(tool.Rect)
	l := app.Layout()
	app.OnMouse(press(l, 2, 2, 0))
	app.OnMouse(move(l, 6, 6, 0))
	app.OnKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress})
	assert.False(t, sess.Active())
	for _, c := range sess.Cells() {
		require.True(t, c.IsOff())
	}
}

func TestExtraActionReportsMessage(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	upload := func(context.Context) (string, error) { return "", errors.New("device: upload cooling down") }
	app, _ := newApp(t,
		WithClock(func() time.Time { return now }),
		WithAction("upload", "U:Upload", upload, KeyShortcut{Rune: 'u', Modifiers: key.ModControl}),
	)
	app.OnKey(key.Event{Rune: 'u', Code: key.CodeU, Modifiers: key.ModControl, Direction: key.DirPress})
	assert.Contains(t, app.status(), "cooling down")

	now = now.Add(3 * time.Second)
	assert.NotContains(t, app.status(), "cooling down")
}

func TestStatusShowsHoveredCell(t *testing.T) {
	app := New()
	sess := editor.New(grid.New(grid.NewMask([]int{43})))
	app.Bind(sess)
	l := app.Layout()
	app.OnMouse(move(l, 1, 1, 0))
	assert.Contains(t, app.status(), "(1,1) #43")
	app.OnMouse(move(l, 2, 1, 0))
	assert.Contains(t, app.status(), "(2,1) off-device")
}

func TestRenderDrawsCells(t *testing.T) {
	app, sess := newApp(t)
	require.NoError(t, sess.FillAll(grid.Color{B: 200}))
	l := app.Layout()
	dst := image.NewRGBA(image.Rectangle{Max: l.Window})
	app.Render(dst)
	x, y := cellCenter(l, 20, 20)
	got := dst.RGBAAt(int(x), int(y))
	assert.Equal(t, uint8(200), got.B)
	assert.Equal(t, uint8(0), got.R)
}

func TestNotifyChangedNeverBlocks(t *testing.T) {
	app := New()
	for i := 0; i < 5; i++ {
		app.NotifyChanged()
	}
	assert.Len(t, app.updateCh, 1)
}
