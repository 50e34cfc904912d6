package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/theme"
)

const halfBlock = "▀"

// Terminal renders the grid with two cells per character: the upper cell as
// the foreground of a half block and the lower cell as its background.
// Cells outside mask use the theme's masked color.
func Terminal(colors []grid.Color, mask *grid.Mask, th *theme.Theme) string {
	if th == nil {
		th = theme.Default()
	}
	masked := lipgloss.Color(theme.Hex(th.MaskedDark)[:7])
	cellColor := func(x, y int) lipgloss.Color {
		i, ok := grid.Index(x, y)
		if !ok || !mask.Contains(i) {
			return masked
		}
		var c grid.Color
		if i < len(colors) {
			c = colors[i]
		}
		return lipgloss.Color(c.Hex())
	}

	var sb strings.Builder
	for y := 0; y < grid.Height; y += 2 {
		for x := 0; x < grid.Width; x++ {
			style := lipgloss.NewStyle().Foreground(cellColor(x, y)).Background(cellColor(x, y+1))
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < grid.Height {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Frame wraps a rendered grid in a rounded border with a title line.
func Frame(title, body string) string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), box.Render(body))
}
