package ui

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/maskpaint/internal/theme"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button is a clickable toolbar element.
type Button interface {
	Draw(dst *image.RGBA, th *theme.Theme, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// labelButton shows a text label. active reports a latched state such as
// the selected tool; it is drawn as pressed.
type labelButton struct {
	label      string
	rect       image.Rectangle
	active     func() bool
	onActivate func()
}

func (b *labelButton) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	bg, fg := th.ButtonBackground, th.ButtonText
	switch {
	case state == StatePressed || (b.active != nil && b.active()):
		bg, fg = th.ButtonBackgroundActive, th.ButtonTextActive
	case state == StateHover:
		bg = th.ButtonBackgroundHover
	}
	draw.Draw(dst, b.rect, image.NewUniform(bg), image.Point{}, draw.Src)
	strokeRect(dst, b.rect, th.ButtonBorder)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: basicfont.Face7x13,
		Dot: fixed.P(b.rect.Min.X+4, b.rect.Min.Y+16)}
	d.DrawString(b.label)
}

func (b *labelButton) Rect() image.Rectangle     { return b.rect }
func (b *labelButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *labelButton) Activate() {
	if b.onActivate != nil {
		b.onActivate()
	}
}

// swatch is a palette entry.
type swatch struct {
	col      color.RGBA
	rect     image.Rectangle
	selected func() bool
	onPick   func(color.RGBA)
}

func (s *swatch) Draw(dst *image.RGBA, th *theme.Theme, state ButtonState) {
	draw.Draw(dst, s.rect, image.NewUniform(s.col), image.Point{}, draw.Src)
	border := th.ButtonBorder
	if state == StateHover {
		border = th.Hover
	}
	strokeRect(dst, s.rect, border)
	if s.selected != nil && s.selected() {
		strokeRect(dst, s.rect.Inset(2), th.Hover)
	}
}

func (s *swatch) Rect() image.Rectangle     { return s.rect }
func (s *swatch) SetRect(r image.Rectangle) { s.rect = r }

func (s *swatch) Activate() {
	if s.onPick != nil {
		s.onPick(s.col)
	}
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	if r.Empty() {
		return
	}
	u := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

func hitTest(buttons []Button, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.Rect()) {
			return i
		}
	}
	return -1
}
