// Package ui is the interactive editor window. One pointer listener maps
// window coordinates to cells and drives the session's gesture cycle; the
// toolbar and keyboard shortcuts change the tool state.
package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/maskpaint/internal/editor"
	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/render"
	"github.com/example/maskpaint/internal/theme"
	"github.com/example/maskpaint/internal/tool"
)

const messageDuration = 2 * time.Second

// Session is the part of editor.Session the window drives.
type Session interface {
	Begin(anchor image.Point) error
	Update(current image.Point, constrained bool)
	End()
	Cancel()
	Active() bool
	Cells() []grid.Color
	Mask() *grid.Mask
	Tools() *tool.State
	FillAll(c grid.Color) error
	ClearAll() error
}

var _ Session = (*editor.Session)(nil)

// Action runs a named command and returns a status message.
type Action func(ctx context.Context) (string, error)

// KeyShortcut is a keyboard combination bound to an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// Palette is the default swatch strip.
var Palette = []color.RGBA{
	{255, 255, 255, 255},
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{255, 0, 255, 255},
	{255, 128, 0, 255},
	{128, 0, 255, 255},
	{255, 105, 180, 255},
	{128, 128, 128, 255},
}

// App holds the window state that does not depend on a screen.
type App struct {
	sess   Session
	theme  *theme.Theme
	layout Layout

	mu       sync.Mutex
	tools    []Button
	swatches []Button
	actions  map[string]Action
	keys     map[KeyShortcut]string
	extra    []namedAction

	hover      image.Point
	hoverOK    bool
	hoverBtn   int
	hoverSw    int
	dragging   bool
	message    string
	messageTil time.Time
	now        func() time.Time

	updateCh  chan struct{}
	closeFn   func()
	closeOnce sync.Once
}

type namedAction struct {
	name, label string
	keys        []KeyShortcut
	fn          Action
}

// Option configures an App.
type Option func(*App)

// WithTheme sets the window colors.
func WithTheme(th *theme.Theme) Option { return func(a *App) { a.theme = th } }

// WithCellSize sets the initial cell size in pixels.
func WithCellSize(n int) Option { return func(a *App) { a.layout.CellSize = n } }

// WithAction adds a toolbar button and keyboard shortcuts for fn.
func WithAction(name, label string, fn Action, keys ...KeyShortcut) Option {
	return func(a *App) { a.extra = append(a.extra, namedAction{name, label, keys, fn}) }
}

// WithOnClose registers a callback run once when the window closes.
func WithOnClose(fn func()) Option { return func(a *App) { a.closeFn = fn } }

// WithClock replaces time.Now for message expiry.
func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// New creates an App. Attach a session with Bind before running.
func New(opts ...Option) *App {
	a := &App{
		theme:    theme.Default(),
		layout:   Layout{CellSize: 12},
		hoverBtn: -1,
		hoverSw:  -1,
		now:      time.Now,
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.layout.CellSize < minCellSize {
		a.layout.CellSize = minCellSize
	}
	return a
}

// NotifyChanged requests a repaint. It never blocks and is meant to be
// passed to editor.WithOnChange.
func (a *App) NotifyChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

// Bind attaches the session and builds the toolbar.
func (a *App) Bind(s Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sess = s
	a.buildControls()
	labels := make([]string, 0, len(a.tools))
	for _, b := range a.tools {
		if lb, ok := b.(*labelButton); ok {
			labels = append(labels, lb.label)
		}
	}
	a.layout.Toolbar = toolbarWidth(labels)
	a.layout.Window = windowSize(a.layout.Toolbar, a.layout.CellSize)
	a.layout.placeButtons(a.tools, a.swatches)
}

func (a *App) buildControls() {
	st := a.sess.Tools()
	a.actions = map[string]Action{}
	a.keys = map[KeyShortcut]string{}
	a.tools = nil
	a.swatches = nil

	register := func(name string, fn Action, keys ...KeyShortcut) {
		a.actions[name] = fn
		for _, k := range keys {
			a.keys[k] = name
		}
	}
	button := func(label string, active func() bool, name string) {
		a.tools = append(a.tools, &labelButton{label: label, active: active, onActivate: func() { a.run(name) }})
	}

	toolKeys := map[tool.Kind]rune{tool.Paint: 'p', tool.Erase: 'e', tool.Rect: 'r', tool.Circle: 'o', tool.Line: 'l'}
	for _, k := range tool.Kinds() {
		k := k
		name := "tool:" + k.String()
		register(name, func(context.Context) (string, error) {
			st.SelectTool(k)
			return "", nil
		}, KeyShortcut{Rune: toolKeys[k]})
		button(fmt.Sprintf("%c:%s", unicode.ToUpper(toolKeys[k]), titleCase(k.String())),
			func() bool { return st.Tool() == k }, name)
	}
	for size := tool.MinBrush; size <= tool.MaxBrush; size++ {
		size := size
		name := fmt.Sprintf("brush:%d", size)
		register(name, func(context.Context) (string, error) {
			st.SetBrushSize(size)
			return "", nil
		}, KeyShortcut{Rune: rune('0' + size)})
		button(fmt.Sprintf("%d:Brush %d", size, size), func() bool { return st.Settings().BrushSize == size }, name)
	}
	register("filled", func(context.Context) (string, error) {
		st.SetFilled(!st.Settings().Filled)
		return "", nil
	}, KeyShortcut{Rune: 'f'})
	button("F:Filled", func() bool { return st.Settings().Filled }, "filled")
	register("centered", func(context.Context) (string, error) {
		st.SetCentered(!st.Settings().Centered)
		return "", nil
	}, KeyShortcut{Rune: 'c'})
	button("C:Centered", func() bool { return st.Settings().Centered }, "centered")

	register("fill", func(context.Context) (string, error) {
		if err := a.sess.FillAll(st.Settings().Color); err != nil {
			return "", err
		}
		return "filled grid", nil
	}, KeyShortcut{Rune: 'a', Modifiers: key.ModControl})
	button("Fill", nil, "fill")
	register("clear", func(context.Context) (string, error) {
		if err := a.sess.ClearAll(); err != nil {
			return "", err
		}
		return "cleared grid", nil
	}, KeyShortcut{Code: key.CodeDeleteBackspace, Modifiers: key.ModControl})
	button("Clear", nil, "clear")

	for _, x := range a.extra {
		register(x.name, x.fn, x.keys...)
		button(x.label, nil, x.name)
	}

	register("cancel", func(context.Context) (string, error) {
		a.sess.Cancel()
		a.dragging = false
		return "", nil
	}, KeyShortcut{Code: key.CodeEscape})

	for _, c := range Palette {
		a.swatches = append(a.swatches, &swatch{
			col:      c,
			selected: func() bool { return st.Settings().Color == grid.FromColor(c) && st.Tool() != tool.Erase },
			onPick:   func(c color.RGBA) { st.SetColor(grid.FromColor(c)) },
		})
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// run executes a named action with a.mu held.
func (a *App) run(name string) {
	fn, ok := a.actions[name]
	if !ok {
		return
	}
	msg, err := fn(context.Background())
	switch {
	case err != nil:
		logrus.Warnf("%s: %v", name, err)
		a.setMessage(err.Error())
	case msg != "":
		logrus.Info(msg)
		a.setMessage(msg)
	}
}

func (a *App) setMessage(msg string) {
	a.message = msg
	a.messageTil = a.now().Add(messageDuration)
}

// Resize records a new window size and refits the grid.
func (a *App) Resize(w, h int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.layout.Window = image.Pt(w, h)
	a.layout.Fit()
	a.layout.placeButtons(a.tools, a.swatches)
}

// Layout returns the current layout.
func (a *App) Layout() Layout {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.layout
}

// OnMouse is the single pointer listener. It reports whether the window
// needs a repaint.
func (a *App) OnMouse(e mouse.Event) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p := image.Pt(int(e.X), int(e.Y))
	cell, onGrid := a.layout.CellAt(p)
	constrained := e.Modifiers&key.ModShift != 0
	repaint := cell != a.hover || onGrid != a.hoverOK
	a.hover, a.hoverOK = cell, onGrid

	if a.dragging {
		switch {
		case e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft:
			a.sess.Update(cell, constrained)
			a.sess.End()
			a.dragging = false
			return true
		case e.Direction == mouse.DirNone:
			a.sess.Update(cell, constrained)
			return true
		}
		return repaint
	}

	hb, hs := hitTest(a.tools, p), hitTest(a.swatches, p)
	if hb != a.hoverBtn || hs != a.hoverSw {
		a.hoverBtn, a.hoverSw = hb, hs
		repaint = true
	}
	if e.Direction != mouse.DirPress || e.Button != mouse.ButtonLeft {
		return repaint
	}
	switch {
	case hb >= 0:
		a.tools[hb].Activate()
		return true
	case hs >= 0:
		a.swatches[hs].Activate()
		return true
	case onGrid:
		if err := a.sess.Begin(cell); err != nil {
			a.setMessage(err.Error())
			return true
		}
		a.dragging = true
		a.sess.Update(cell, constrained)
		return true
	}
	return repaint
}

// OnKey handles a key press. It reports whether the window needs a repaint
// and whether the window should close.
func (a *App) OnKey(e key.Event) (repaint, quit bool) {
	if e.Direction != key.DirPress {
		return false, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	mods := e.Modifiers &^ key.ModShift
	if e.Rune == 'q' && mods == 0 {
		return false, true
	}
	ks := KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}
	if e.Code == key.CodeEscape || e.Code == key.CodeDeleteBackspace {
		ks = KeyShortcut{Code: e.Code, Modifiers: mods}
	}
	name, ok := a.keys[ks]
	if !ok {
		return false, false
	}
	a.run(name)
	return true, false
}

// status is the text of the bottom line.
func (a *App) status() string {
	s := a.sess.Tools().Settings()
	parts := []string{
		titleCase(s.Tool.String()),
		s.Color.Hex(),
		fmt.Sprintf("brush %d", s.BrushSize),
	}
	if s.Filled {
		parts = append(parts, "filled")
	}
	if s.Centered {
		parts = append(parts, "centered")
	}
	if a.hoverOK {
		idx, _ := grid.Index(a.hover.X, a.hover.Y)
		state := "off-device"
		if a.sess.Mask().Contains(idx) {
			state = "#" + fmt.Sprint(idx)
		}
		parts = append(parts, fmt.Sprintf("(%d,%d) %s", a.hover.X, a.hover.Y, state))
	}
	if a.message != "" && a.now().Before(a.messageTil) {
		parts = append(parts, a.message)
	}
	return strings.Join(parts, "  ")
}

// Render draws the whole window into dst.
func (a *App) Render(dst *image.RGBA) {
	a.mu.Lock()
	defer a.mu.Unlock()
	drawFrame(dst, frameState{
		layout:   a.layout,
		theme:    a.theme,
		cells:    a.sess.Cells(),
		mask:     a.sess.Mask(),
		tools:    a.tools,
		swatches: a.swatches,
		hoverBtn: a.hoverBtn,
		hoverSw:  a.hoverSw,
		hover:    a.hover,
		hoverOK:  a.hoverOK,
		status:   a.status(),
		preview:  render.Options{CellSize: a.layout.CellSize, GridLines: true, Theme: a.theme},
	})
}

func (a *App) notifyClose() {
	a.closeOnce.Do(func() {
		if a.closeFn != nil {
			a.closeFn()
		}
	})
}
