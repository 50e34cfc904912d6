package persist

import (
	"encoding/json"
	"fmt"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/tool"
)

// EncodeGrid renders cells as a JSON array of "#rrggbb" strings.
func EncodeGrid(cells []grid.Color) ([]byte, error) {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Hex()
	}
	return json.Marshal(out)
}

// DecodeGrid parses a stored grid. It fails unless exactly grid.Size
// parseable colors are present.
func DecodeGrid(data []byte) ([]grid.Color, error) {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode grid: %w", err)
	}
	if len(raw) != grid.Size {
		return nil, fmt.Errorf("decode grid: %d cells, want %d", len(raw), grid.Size)
	}
	cells := make([]grid.Color, len(raw))
	for i, s := range raw {
		c, err := grid.ParseColor(s)
		if err != nil {
			return nil, fmt.Errorf("decode grid: cell %d: %w", i, err)
		}
		cells[i] = c
	}
	return cells, nil
}

type toolRecord struct {
	Tool      string `json:"tool"`
	Color     string `json:"color"`
	BrushSize int    `json:"brushSize"`
	Filled    bool   `json:"filled"`
	Centered  bool   `json:"centered"`
}

// EncodeTool renders the tool selection as a JSON record.
func EncodeTool(s tool.Settings) ([]byte, error) {
	return json.Marshal(toolRecord{
		Tool:      s.Tool.String(),
		Color:     s.Color.Hex(),
		BrushSize: s.BrushSize,
		Filled:    s.Filled,
		Centered:  s.Centered,
	})
}

// DecodeTool parses a stored tool record. Missing fields keep their defaults;
// the brush size is clamped.
func DecodeTool(data []byte) (tool.Settings, error) {
	def := tool.DefaultSettings()
	rec := toolRecord{
		Tool:      def.Tool.String(),
		Color:     def.Color.Hex(),
		BrushSize: def.BrushSize,
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return def, fmt.Errorf("decode tool: %w", err)
	}
	k, err := tool.ParseKind(rec.Tool)
	if err != nil {
		return def, fmt.Errorf("decode tool: %w", err)
	}
	c, err := grid.ParseColor(rec.Color)
	if err != nil {
		return def, fmt.Errorf("decode tool: %w", err)
	}
	return tool.Settings{
		Tool:      k,
		Color:     c,
		BrushSize: tool.ClampBrush(rec.BrushSize),
		Filled:    rec.Filled,
		Centered:  rec.Centered,
	}, nil
}
