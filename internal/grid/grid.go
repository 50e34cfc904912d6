// Package grid holds the fixed-size pixel buffer of the mask and the validity
// mask describing which cells exist on the physical device.
package grid

import "image"

const (
	// Width is the number of cell columns.
	Width = 42
	// Height is the number of cell rows.
	Height = 56
	// Size is the total number of cells.
	Size = Width * Height
)

// Bounds is the grid extent in cell coordinates.
var Bounds = image.Rect(0, 0, Width, Height)

// Index converts a cell coordinate into its flat index.
func Index(x, y int) (int, bool) {
	if !InBounds(x, y) {
		return 0, false
	}
	return y*Width + x, true
}

// Coords converts a flat index back into a cell coordinate.
func Coords(i int) (x, y int, ok bool) {
	if i < 0 || i >= Size {
		return 0, 0, false
	}
	return i % Width, i / Width, true
}

// InBounds reports whether (x, y) lies inside the grid.
func InBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// Grid is the editable color buffer. Writes through Set are clipped to the
// grid extent and to the validity mask.
type Grid struct {
	cells [Size]Color
	mask  *Mask
}

// New creates a grid with every cell Off. A nil mask accepts every cell.
func New(mask *Mask) *Grid {
	return &Grid{mask: mask}
}

// Mask returns the validity mask the grid was created with.
func (g *Grid) Mask() *Mask { return g.mask }

// Get returns the stored color at (x, y). ok is false outside the grid.
func (g *Grid) Get(x, y int) (Color, bool) {
	i, ok := Index(x, y)
	if !ok {
		return Off, false
	}
	return g.cells[i], true
}

// At returns the stored color at index i, or Off when i is out of range.
func (g *Grid) At(i int) Color {
	if i < 0 || i >= Size {
		return Off
	}
	return g.cells[i]
}

// Paintable reports whether a tool may write to (x, y).
func (g *Grid) Paintable(x, y int) bool {
	i, ok := Index(x, y)
	return ok && g.mask.Contains(i)
}

// Set writes c at (x, y). It is a no-op outside the grid or the mask.
func (g *Grid) Set(x, y int, c Color) {
	i, ok := Index(x, y)
	if !ok || !g.mask.Contains(i) {
		return
	}
	g.cells[i] = c
}

// SetRaw writes c at index i ignoring the mask. Image import uses it so that
// the internal buffer mirrors the source image cell for cell.
func (g *Grid) SetRaw(i int, c Color) {
	if i < 0 || i >= Size {
		return
	}
	g.cells[i] = c
}

// FillAll sets every paintable cell to c.
func (g *Grid) FillAll(c Color) {
	for i := range g.cells {
		if g.mask.Contains(i) {
			g.cells[i] = c
		}
	}
}

// ClearAll turns every paintable cell Off.
func (g *Grid) ClearAll() { g.FillAll(Off) }

// Visible returns the device-visible color at index i: masked-out cells are
// always Off regardless of what the buffer holds.
func (g *Grid) Visible(i int) Color {
	if i < 0 || i >= Size || !g.mask.Contains(i) {
		return Off
	}
	return g.cells[i]
}

// Cells returns a copy of the buffer in index order.
func (g *Grid) Cells() []Color {
	out := make([]Color, Size)
	copy(out, g.cells[:])
	return out
}

// Load replaces the buffer with cells. It returns false, leaving the grid
// untouched, when len(cells) != Size.
func (g *Grid) Load(cells []Color) bool {
	if len(cells) != Size {
		return false
	}
	copy(g.cells[:], cells)
	return true
}

// Snapshot is an opaque copy of the grid's colors.
type Snapshot struct {
	cells [Size]Color
	valid bool
}

// Valid reports whether the snapshot was taken from a grid.
func (s Snapshot) Valid() bool { return s.valid }

// Snapshot captures the current buffer.
func (g *Grid) Snapshot() Snapshot {
	return Snapshot{cells: g.cells, valid: true}
}

// Restore replaces the buffer with a snapshot. Zero snapshots are ignored.
func (g *Grid) Restore(s Snapshot) {
	if !s.valid {
		return
	}
	g.cells = s.cells
}
