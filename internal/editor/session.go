// Package editor drives the grid from pointer gestures: freehand tools stamp
// the brush directly while shape tools preview against a snapshot until the
// gesture ends.
package editor

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/persist"
	"github.com/example/maskpaint/internal/raster"
	"github.com/example/maskpaint/internal/tool"
)

var (
	// ErrGestureActive is returned by Begin while another gesture is running.
	ErrGestureActive = errors.New("editor: gesture already in progress")
	// ErrBusy is returned by bulk operations while a gesture or import runs.
	ErrBusy = errors.New("editor: session busy")
)

// Persister receives the session state after every commit.
type Persister interface {
	Persist(cells []grid.Color, s tool.Settings)
	PersistTool(s tool.Settings)
}

type gesture struct {
	anchor   image.Point
	settings tool.Settings
	snapshot grid.Snapshot
}

// Session owns one grid and its tool state. All methods are safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	grid      *grid.Grid
	tools     *tool.State
	active    *gesture
	importing bool

	persister Persister
	changeFn  func()
}

// Option configures a Session.
type Option func(*Session)

// WithTools uses st instead of a default tool state.
func WithTools(st *tool.State) Option { return func(s *Session) { s.tools = st } }

// WithPersister saves the session after each commit and tool change.
func WithPersister(p Persister) Option { return func(s *Session) { s.persister = p } }

// WithOnChange registers a callback invoked after the grid changes.
func WithOnChange(fn func()) Option { return func(s *Session) { s.changeFn = fn } }

// New creates a session editing g.
func New(g *grid.Grid, opts ...Option) *Session {
	s := &Session{grid: g}
	for _, o := range opts {
		o(s)
	}
	if s.tools == nil {
		s.tools = tool.New()
	}
	if s.persister != nil {
		s.tools.SetListener(s.persister.PersistTool)
	}
	return s
}

// Tools returns the session's tool state.
func (s *Session) Tools() *tool.State { return s.tools }

// Mask returns the validity mask of the grid.
func (s *Session) Mask() *grid.Mask { return s.grid.Mask() }

// Cells returns a copy of the grid in index order.
func (s *Session) Cells() []grid.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Cells()
}

// Get returns the stored color at (x, y).
func (s *Session) Get(x, y int) (grid.Color, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Get(x, y)
}

// Active reports whether a gesture is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// Begin starts a gesture at anchor with the current tool. Freehand tools
// stamp immediately; shape tools snapshot the grid.
func (s *Session) Begin(anchor image.Point) error {
	settings := s.tools.Settings()
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return ErrGestureActive
	}
	if s.importing {
		s.mu.Unlock()
		return ErrBusy
	}
	g := &gesture{anchor: anchor, settings: settings}
	if settings.Tool.Freehand() {
		s.stamp(settings, anchor)
	} else {
		g.snapshot = s.grid.Snapshot()
	}
	s.active = g
	s.mu.Unlock()
	s.changed()
	return nil
}

// Update moves the live point of the gesture. Shape tools restore the
// snapshot and redraw, so repeated calls with the same input leave the same
// grid. Without an active gesture Update does nothing.
func (s *Session) Update(current image.Point, constrained bool) {
	s.mu.Lock()
	g := s.active
	if g == nil {
		s.mu.Unlock()
		return
	}
	if g.settings.Tool.Freehand() {
		s.stamp(g.settings, current)
	} else {
		cells := ShapeCells(g.settings, g.anchor, current, constrained)
		s.grid.Restore(g.snapshot)
		raster.Apply(s.grid, cells, g.settings.Color)
	}
	s.mu.Unlock()
	s.changed()
}

// End commits the gesture and persists the session.
func (s *Session) End() {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return
	}
	s.active = nil
	cells := s.grid.Cells()
	s.mu.Unlock()
	s.persist(cells)
}

// Cancel drops the gesture. Shape previews are reverted; freehand stamps
// already applied are kept and persisted.
func (s *Session) Cancel() {
	s.mu.Lock()
	g := s.active
	if g == nil {
		s.mu.Unlock()
		return
	}
	s.active = nil
	if g.settings.Tool.Freehand() {
		cells := s.grid.Cells()
		s.mu.Unlock()
		s.persist(cells)
		return
	}
	s.grid.Restore(g.snapshot)
	s.mu.Unlock()
	s.changed()
}

func (s *Session) stamp(settings tool.Settings, at image.Point) {
	c := settings.Color
	if settings.Tool == tool.Erase {
		c = grid.Off
	}
	raster.Apply(s.grid, raster.Stamp(at, settings.BrushSize), c)
}

// ShapeCells computes the cells a shape tool paints for a gesture from
// anchor to current.
func ShapeCells(settings tool.Settings, anchor, current image.Point, constrained bool) []image.Point {
	switch settings.Tool {
	case tool.Rect:
		return raster.Rect(raster.BoxFor(anchor, current, settings.Centered, constrained), settings.Filled)
	case tool.Circle:
		return raster.Ellipse(anchor, current, settings.Centered, constrained, settings.Filled)
	case tool.Line:
		if constrained {
			current = raster.ConstrainLine(anchor, current)
		}
		return raster.Line(anchor, current, settings.BrushSize)
	}
	return raster.Stamp(current, settings.BrushSize)
}

// FillAll paints every valid cell with c and persists.
func (s *Session) FillAll(c grid.Color) error {
	return s.bulk(func(g *grid.Grid) { g.FillAll(c) })
}

// ClearAll turns every valid cell off and persists.
func (s *Session) ClearAll() error {
	return s.bulk(func(g *grid.Grid) { g.ClearAll() })
}

// Replace loads a full buffer, typically restored from storage. It does not
// persist.
func (s *Session) Replace(cells []grid.Color) error {
	s.mu.Lock()
	if s.active != nil || s.importing {
		s.mu.Unlock()
		return ErrBusy
	}
	ok := s.grid.Load(cells)
	s.mu.Unlock()
	if !ok {
		logrus.Debugf("replace: ignoring buffer of %d cells", len(cells))
		return nil
	}
	s.changed()
	return nil
}

func (s *Session) bulk(fn func(*grid.Grid)) error {
	s.mu.Lock()
	if s.active != nil || s.importing {
		s.mu.Unlock()
		return ErrBusy
	}
	fn(s.grid)
	cells := s.grid.Cells()
	s.mu.Unlock()
	s.persist(cells)
	return nil
}

// Import decodes an image, stretches it over the grid and persists. Every
// cell is written, including masked-out ones. A decode failure leaves the
// grid unchanged.
func (s *Session) Import(ctx context.Context, r io.Reader) error {
	s.mu.Lock()
	if s.active != nil || s.importing {
		s.mu.Unlock()
		return ErrBusy
	}
	s.importing = true
	s.mu.Unlock()

	cells, format, err := persist.DecodeImage(ctx, r)

	s.mu.Lock()
	s.importing = false
	if err != nil {
		s.mu.Unlock()
		return err
	}
	for i, c := range cells {
		s.grid.SetRaw(i, c)
	}
	out := s.grid.Cells()
	s.mu.Unlock()
	logrus.WithField("format", format).Debug("imported image")
	s.persist(out)
	return nil
}

func (s *Session) persist(cells []grid.Color) {
	if s.persister != nil {
		s.persister.Persist(cells, s.tools.Settings())
	}
	s.changed()
}

// SetOnChange replaces the change callback.
func (s *Session) SetOnChange(fn func()) {
	s.mu.Lock()
	s.changeFn = fn
	s.mu.Unlock()
}

func (s *Session) changed() {
	s.mu.Lock()
	fn := s.changeFn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
