package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/tool"
)

// toolCmd prints the persisted tool state and changes the fields given.
type toolCmd struct {
	*root
	fs        *flag.FlagSet
	kind      string
	colorSpec string
	brush     int
	filled    bool
	centered  bool
}

func parseToolCmd(args []string, r *root) (*toolCmd, error) {
	fs := flag.NewFlagSet("tool", flag.ContinueOnError)
	c := &toolCmd{root: r, fs: fs}
	fs.StringVar(&c.kind, "tool", "", "active tool (paint, erase, rect, circle, line)")
	fs.StringVar(&c.colorSpec, "color", "", "tool color")
	fs.IntVar(&c.brush, "brush", 0, "brush size 1-4")
	fs.BoolVar(&c.filled, "filled", false, "fill rectangles and ellipses")
	fs.BoolVar(&c.centered, "centered", false, "grow shapes from the anchor")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if c.kind != "" {
		if _, err := tool.ParseKind(c.kind); err != nil {
			return nil, err
		}
	}
	if c.colorSpec != "" {
		if _, err := grid.ParseColor(c.colorSpec); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *toolCmd) Program() string        { return c.root.subcommand("tool") }
func (c *toolCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *toolCmd) Run() error {
	env, err := c.openSession(context.Background())
	if err != nil {
		return err
	}
	defer c.release(env)

	st := env.session.Tools()
	// Color first: setting it while erasing selects paint, and an explicit
	// -tool should win.
	c.fs.Visit(func(f *flag.Flag) {
		if f.Name == "color" {
			col, _ := grid.ParseColor(c.colorSpec)
			st.SetColor(col)
		}
	})
	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tool":
			k, _ := tool.ParseKind(c.kind)
			st.SelectTool(k)
		case "brush":
			st.SetBrushSize(c.brush)
		case "filled":
			st.SetFilled(c.filled)
		case "centered":
			st.SetCentered(c.centered)
		}
	})
	s := st.Settings()
	fmt.Fprintf(c.out(), "tool=%s color=%s brush=%d filled=%t centered=%t\n",
		s.Tool, s.Color.Hex(), s.BrushSize, s.Filled, s.Centered)
	return nil
}
