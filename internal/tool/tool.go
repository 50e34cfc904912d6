// Package tool holds the persisted drawing tool selection.
package tool

import (
	"fmt"
	"strings"
	"sync"

	"github.com/example/maskpaint/internal/grid"
)

// Kind identifies a drawing tool.
type Kind int

const (
	Paint Kind = iota
	Erase
	Rect
	Circle
	Line
)

var kindNames = []string{"paint", "erase", "rect", "circle", "line"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Freehand reports whether the tool stamps directly instead of previewing a shape.
func (k Kind) Freehand() bool { return k == Paint || k == Erase }

// Kinds returns every tool in toolbar order.
func Kinds() []Kind { return []Kind{Paint, Erase, Rect, Circle, Line} }

// ParseKind converts a tool name into a Kind. "ellipse" is accepted for Circle.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "ellipse":
		return Circle, nil
	case "rectangle":
		return Rect, nil
	case "brush", "draw":
		return Paint, nil
	}
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return Paint, fmt.Errorf("unknown tool %q", s)
}

const (
	MinBrush = 1
	MaxBrush = 4
)

// DefaultColor is the color selected on a fresh session.
var DefaultColor = grid.Color{R: 0xFF, G: 0xFF, B: 0xFF}

// Settings is a point-in-time copy of the tool state.
type Settings struct {
	Tool      Kind
	Color     grid.Color
	BrushSize int
	Filled    bool
	Centered  bool
}

// DefaultSettings returns the selection of a fresh session.
func DefaultSettings() Settings {
	return Settings{Tool: Paint, Color: DefaultColor, BrushSize: MinBrush}
}

// ClampBrush limits n to the supported brush sizes.
func ClampBrush(n int) int {
	if n < MinBrush {
		return MinBrush
	}
	if n > MaxBrush {
		return MaxBrush
	}
	return n
}

// State is the mutable tool selection. Every mutation notifies the listener
// with the resulting settings.
type State struct {
	mu         sync.Mutex
	s          Settings
	listenerFn func(Settings)
}

// Option modifies a State during creation.
type Option func(*State)

// WithTool sets the initial tool.
func WithTool(k Kind) Option { return func(st *State) { st.s.Tool = k } }

// WithColor sets the initial paint color.
func WithColor(c grid.Color) Option { return func(st *State) { st.s.Color = c } }

// WithBrushSize sets the initial brush size.
func WithBrushSize(n int) Option { return func(st *State) { st.s.BrushSize = n } }

// WithFilled sets whether rectangles and ellipses are filled.
func WithFilled(v bool) Option { return func(st *State) { st.s.Filled = v } }

// WithCentered sets whether shapes grow from their anchor as the center.
func WithCentered(v bool) Option { return func(st *State) { st.s.Centered = v } }

// WithSettings replaces the whole initial selection.
func WithSettings(s Settings) Option { return func(st *State) { st.s = s } }

// WithListener registers a callback invoked after every change.
func WithListener(fn func(Settings)) Option { return func(st *State) { st.listenerFn = fn } }

// New creates a State with the provided options.
func New(opts ...Option) *State {
	st := &State{s: DefaultSettings()}
	for _, o := range opts {
		o(st)
	}
	st.s.BrushSize = ClampBrush(st.s.BrushSize)
	if st.s.Tool < Paint || st.s.Tool > Line {
		st.s.Tool = Paint
	}
	return st
}

// SetListener replaces the change listener.
func (st *State) SetListener(fn func(Settings)) {
	st.mu.Lock()
	st.listenerFn = fn
	st.mu.Unlock()
}

// Settings returns the current selection.
func (st *State) Settings() Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// Tool returns the active tool.
func (st *State) Tool() Kind { return st.Settings().Tool }

// SelectTool activates k. Selecting Erase keeps the stored color.
func (st *State) SelectTool(k Kind) {
	st.update(func(s *Settings) {
		if k >= Paint && k <= Line {
			s.Tool = k
		}
	})
}

// SetColor stores c. While Erase is active it switches back to Paint.
func (st *State) SetColor(c grid.Color) {
	st.update(func(s *Settings) {
		s.Color = c
		if s.Tool == Erase {
			s.Tool = Paint
		}
	})
}

// SetBrushSize stores n clamped to 1..4.
func (st *State) SetBrushSize(n int) {
	st.update(func(s *Settings) { s.BrushSize = ClampBrush(n) })
}

// SetFilled toggles filled shapes.
func (st *State) SetFilled(v bool) {
	st.update(func(s *Settings) { s.Filled = v })
}

// SetCentered toggles center-anchored shapes.
func (st *State) SetCentered(v bool) {
	st.update(func(s *Settings) { s.Centered = v })
}

// Apply replaces the selection, clamping the brush size.
func (st *State) Apply(n Settings) {
	st.update(func(s *Settings) {
		*s = n
		s.BrushSize = ClampBrush(n.BrushSize)
		if s.Tool < Paint || s.Tool > Line {
			s.Tool = Paint
		}
	})
}

func (st *State) update(fn func(*Settings)) {
	st.mu.Lock()
	fn(&st.s)
	out := st.s
	listener := st.listenerFn
	st.mu.Unlock()

	if listener != nil {
		listener(out)
	}
}
