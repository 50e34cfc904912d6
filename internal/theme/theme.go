package theme

import (
	"image/color"
)

// Theme defines the colors used by the editor window and rendered previews.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the grid
	Foreground color.RGBA // Status line text

	// Toolbar
	ToolbarBackground      color.RGBA
	ButtonBackground       color.RGBA
	ButtonBackgroundHover  color.RGBA
	ButtonBackgroundActive color.RGBA
	ButtonText             color.RGBA
	ButtonTextActive       color.RGBA
	ButtonBorder           color.RGBA

	// Grid
	GridLine    color.RGBA // Separator between cells
	MaskedLight color.RGBA // Checker colors for cells outside the device
	MaskedDark  color.RGBA
	Hover       color.RGBA // Outline of the cell under the pointer
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:                   "Default",
		Background:             color.RGBA{220, 220, 220, 255},
		Foreground:             color.RGBA{0, 0, 0, 255},
		ToolbarBackground:      color.RGBA{220, 220, 220, 255},
		ButtonBackground:       color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover:  color.RGBA{180, 180, 180, 255},
		ButtonBackgroundActive: color.RGBA{150, 150, 150, 255},
		ButtonText:             color.RGBA{0, 0, 0, 255},
		ButtonTextActive:       color.RGBA{0, 0, 0, 255},
		ButtonBorder:           color.RGBA{0, 0, 0, 255},
		GridLine:               color.RGBA{40, 40, 40, 255},
		MaskedLight:            color.RGBA{220, 220, 220, 255},
		MaskedDark:             color.RGBA{192, 192, 192, 255},
		Hover:                  color.RGBA{255, 255, 0, 255},
	}
}
