package editor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/persist"
	"github.com/example/maskpaint/internal/store"
	"github.com/example/maskpaint/internal/tool"
)

type recorder struct {
	mu    sync.Mutex
	saves int
	tools int
	last  []grid.Color
}

func (r *recorder) Persist(cells []grid.Color, _ tool.Settings) {
	r.mu.Lock()
	r.saves++
	r.last = cells
	r.mu.Unlock()
}

func (r *recorder) PersistTool(tool.Settings) {
	r.mu.Lock()
	r.tools++
	r.mu.Unlock()
}

var red = grid.Color{R: 255}

func newSession(t *testing.T, opts ...tool.Option) (*Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	st := tool.New(append([]tool.Option{tool.WithColor(red)}, opts...)...)
	return New(grid.New(nil), WithTools(st), WithPersister(rec)), rec
}

func count(cells []grid.Color, c grid.Color) int {
	n := 0
	for _, v := range cells {
		if v == c {
			n++
		}
	}
	return n
}

func TestRectanglePreviewIsIdempotent(t *testing.T) {
	s, rec := newSession(t, tool.WithTool(tool.Rect), tool.WithFilled(true))
	require.NoError(t, s.Begin(image.Pt(5, 5)))
	s.Update(image.Pt(10, 8), false)
	first := s.Cells()
	s.Update(image.Pt(10, 8), false)
	assert.Equal(t, first, s.Cells())
	assert.Equal(t, 24, count(first, red))

	s.Update(image.Pt(20, 20), false)
	s.Update(image.Pt(10, 8), true)
	assert.Equal(t, 36, count(s.Cells(), red), "previous preview is erased")

	assert.Equal(t, 0, rec.saves)
	s.End()
	assert.Equal(t, 1, rec.saves)
	assert.Equal(t, 36, count(rec.last, red))
	assert.False(t, s.Active())
}

func TestCircleCornerModeGesture(t *testing.T) {
	s, rec := newSession(t, tool.WithTool(tool.Circle), tool.WithFilled(true))
	require.NoError(t, s.Begin(image.Pt(10, 10)))
	s.Update(image.Pt(30, 30), false)
	s.Update(image.Pt(16, 14), false)
	s.End()

	assert.Equal(t, 19, count(s.Cells(), red), "earlier preview is replaced")
	for _, p := range []image.Point{{13, 12}, {10, 12}, {16, 12}, {13, 10}, {13, 14}} {
		c, _ := s.Get(p.X, p.Y)
		assert.Equal(t, red, c, "cell %v", p)
	}
	for _, p := range []image.Point{{10, 10}, {16, 14}, {12, 10}} {
		c, _ := s.Get(p.X, p.Y)
		assert.Equal(t, grid.Off, c, "cell %v", p)
	}
	assert.Equal(t, 1, rec.saves)

	s.Tools().SetFilled(false)
	require.NoError(t, s.ClearAll())
	require.NoError(t, s.Begin(image.Pt(10, 10)))
	s.Update(image.Pt(16, 14), true)
	s.End()
	assert.Equal(t, 16, count(s.Cells(), red))
	c, _ := s.Get(13, 13)
	assert.Equal(t, grid.Off, c, "border leaves the center empty")
	c, _ = s.Get(16, 13)
	assert.Equal(t, red, c)
}

func TestSecondBeginRejected(t *testing.T) {
	s, _ := newSession(t, tool.WithTool(tool.Line))
	require.NoError(t, s.Begin(image.Pt(0, 0)))
	assert.ErrorIs(t, s.Begin(image.Pt(3, 3)), ErrGestureActive)
	s.Update(image.Pt(3, 1), true)
	s.End()
	cells := s.Cells()
	for x := 0; x <= 3; x++ {
		i, _ := grid.Index(x, 0)
		assert.Equal(t, red, cells[i])
	}
	i, _ := grid.Index(3, 1)
	assert.Equal(t, grid.Off, cells[i])
}

func TestBulkOpsBusyDuringGesture(t *testing.T) {
	s, rec := newSession(t, tool.WithTool(tool.Rect))
	require.NoError(t, s.Begin(image.Pt(1, 1)))
	assert.ErrorIs(t, s.FillAll(red), ErrBusy)
	assert.ErrorIs(t, s.ClearAll(), ErrBusy)
	assert.ErrorIs(t, s.Import(context.Background(), bytes.NewReader(nil)), ErrBusy)
	s.Cancel()
	assert.Equal(t, 0, count(s.Cells(), red))
	assert.Equal(t, 0, rec.saves)

	require.NoError(t, s.FillAll(red))
	assert.Equal(t, grid.Size, count(s.Cells(), red))
	require.NoError(t, s.ClearAll())
	assert.Equal(t, grid.Size, count(s.Cells(), grid.Off))
	assert.Equal(t, 2, rec.saves)
}

func TestFreehandPaintAndErase(t *testing.T) {
	s, rec := newSession(t, tool.WithBrushSize(2))
	require.NoError(t, s.Begin(image.Pt(0, 0)))
	s.Update(image.Pt(4, 0), false)
	s.End()
	assert.Equal(t, 8, count(s.Cells(), red))
	assert.Equal(t, 1, rec.saves)

	s.Tools().SelectTool(tool.Erase)
	s.Tools().SetBrushSize(1)
	require.NoError(t, s.Begin(image.Pt(0, 0)))
	s.End()
	c, _ := s.Get(0, 0)
	assert.Equal(t, grid.Off, c)
	c, _ = s.Get(1, 0)
	assert.Equal(t, red, c)
	assert.Equal(t, 2, rec.tools, "tool changes are persisted")
}

func TestMaskedCellsNeverPainted(t *testing.T) {
	mask := grid.NewMask([]int{0, 1, 2})
	s := New(grid.New(mask), WithTools(tool.New(tool.WithTool(tool.Rect), tool.WithFilled(true), tool.WithColor(red))))
	require.NoError(t, s.Begin(image.Pt(0, 0)))
	s.Update(image.Pt(10, 10), false)
	s.End()
	cells := s.Cells()
	assert.Equal(t, 3, count(cells, red))
	for i := 3; i < grid.Size; i++ {
		require.Equal(t, grid.Off, cells[i])
	}
}

func TestUpdateWithoutGestureIgnored(t *testing.T) {
	s, rec := newSession(t)
	s.Update(image.Pt(1, 1), false)
	s.End()
	s.Cancel()
	assert.Equal(t, 0, count(s.Cells(), red))
	assert.Equal(t, 0, rec.saves)
}

func uniformPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b, a := c.RGBA()
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImportUniformImage(t *testing.T) {
	mask := grid.NewMask([]int{10, 20, 30})
	rec := &recorder{}
	s := New(grid.New(mask), WithPersister(rec))
	want := grid.Color{R: 10, G: 20, B: 30}
	require.NoError(t, s.Import(context.Background(), bytes.NewReader(uniformPNG(t, want))))
	cells := s.Cells()
	for _, i := range mask.Indices() {
		assert.Equal(t, want, cells[i])
	}
	assert.Equal(t, want, cells[0], "masked-out cells still receive values")
	assert.Equal(t, 1, rec.saves)
}

func TestImportFailureLeavesGrid(t *testing.T) {
	s, rec := newSession(t)
	require.NoError(t, s.FillAll(red))
	err := s.Import(context.Background(), bytes.NewReader([]byte("garbage")))
	require.Error(t, err)
	assert.Equal(t, grid.Size, count(s.Cells(), red))
	assert.Equal(t, 1, rec.saves)
	require.NoError(t, s.Begin(image.Pt(0, 0)), "import flag is cleared after failure")
}

func TestSessionRoundTripThroughStore(t *testing.T) {
	mem := store.NewMemory()
	adapter := persist.New(mem)
	s := New(grid.New(nil), WithPersister(adapter), WithTools(tool.New(tool.WithTool(tool.Circle), tool.WithColor(red), tool.WithFilled(true))))
	require.NoError(t, s.Begin(image.Pt(20, 20)))
	s.Update(image.Pt(26, 30), false)
	s.End()

	cells, settings := persist.New(mem).Load(context.Background())
	require.NotNil(t, cells)
	fresh := New(grid.New(nil), WithTools(tool.New(tool.WithSettings(settings))))
	require.NoError(t, fresh.Replace(cells))
	assert.Equal(t, s.Cells(), fresh.Cells())
	assert.Equal(t, s.Tools().Settings(), fresh.Tools().Settings())
}
