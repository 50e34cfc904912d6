package ui

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/render"
	"github.com/example/maskpaint/internal/theme"
)

type frameState struct {
	layout   Layout
	theme    *theme.Theme
	cells    []grid.Color
	mask     *grid.Mask
	tools    []Button
	swatches []Button
	hoverBtn int
	hoverSw  int
	hover    image.Point
	hoverOK  bool
	status   string
	preview  render.Options
}

func drawFrame(dst *image.RGBA, st frameState) {
	th := st.theme
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Background), image.Point{}, draw.Src)
	draw.Draw(dst, st.layout.PaletteRect(), image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	draw.Draw(dst, st.layout.ToolbarRect(), image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)

	render.DrawGrid(dst, st.layout.Origin(), st.cells, st.mask, st.preview)
	if st.hoverOK {
		strokeRect(dst, st.preview.CellRect(st.layout.Origin(), st.hover.X, st.hover.Y), th.Hover)
	}

	for i, b := range st.tools {
		state := StateDefault
		if i == st.hoverBtn {
			state = StateHover
		}
		b.Draw(dst, th, state)
	}
	for i, s := range st.swatches {
		state := StateDefault
		if i == st.hoverSw {
			state = StateHover
		}
		s.Draw(dst, th, state)
	}

	sr := st.layout.StatusRect()
	draw.Draw(dst, sr, image.NewUniform(th.ToolbarBackground), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(sr.Min.X+4, sr.Min.Y+16)}
	d.DrawString(st.status)
}
