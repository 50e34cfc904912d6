package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/tool"
)

// drawCmd replays one pointer gesture against the persisted session.
type drawCmd struct {
	*root
	fs          *flag.FlagSet
	kind        tool.Kind
	points      []image.Point
	colorSpec   string
	brush       int
	filled      bool
	centered    bool
	constrained bool
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.StringVar(&d.colorSpec, "color", "", "stroke color (#rrggbb, rgb(), or a color name)")
	fs.IntVar(&d.brush, "brush", 0, "brush size 1-4")
	fs.BoolVar(&d.filled, "filled", false, "fill rectangles and ellipses")
	fs.BoolVar(&d.centered, "centered", false, "grow rectangles and ellipses from the first point")
	fs.BoolVar(&d.constrained, "constrained", false, "square the box or snap the line to 45 degrees")
	fs.Usage = usageFunc(d)

	flagArgs, positionals, err := splitDrawArgs(fs, args)
	if err != nil {
		return nil, err
	}
	if err := parseFlags(fs, flagArgs, d); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}
	shape := strings.ToLower(positionals[0])
	if d.kind, err = tool.ParseKind(shape); err != nil {
		return nil, fmt.Errorf("unsupported shape %q", shape)
	}
	remaining := positionals[1:]
	var coords []int
	if d.kind.Freehand() {
		if len(remaining) < 2 || len(remaining)%2 != 0 {
			return nil, fmt.Errorf("%s requires one or more x y pairs", shape)
		}
		coords, err = expectInts(remaining, len(remaining), shape)
	} else {
		coords, err = expectInts(remaining, 4, shape)
	}
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(coords); i += 2 {
		d.points = append(d.points, image.Pt(coords[i], coords[i+1]))
	}
	if d.colorSpec != "" {
		if _, err := grid.ParseColor(d.colorSpec); err != nil {
			return nil, err
		}
	}
	if d.brush != 0 && (d.brush < tool.MinBrush || d.brush > tool.MaxBrush) {
		return nil, fmt.Errorf("brush must be between %d and %d", tool.MinBrush, tool.MaxBrush)
	}
	return d, nil
}

func (d *drawCmd) Program() string        { return d.root.subcommand("draw") }
func (d *drawCmd) FlagSet() *flag.FlagSet { return d.fs }

// apply copies the explicitly set flags onto the tool state. The changes are
// persisted like selections made in the window.
func (d *drawCmd) apply(st *tool.State) {
	st.SelectTool(d.kind)
	d.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "color":
			c, _ := grid.ParseColor(d.colorSpec)
			st.SetColor(c)
			if d.kind == tool.Erase {
				st.SelectTool(tool.Erase)
			}
		case "brush":
			st.SetBrushSize(d.brush)
		case "filled":
			st.SetFilled(d.filled)
		case "centered":
			st.SetCentered(d.centered)
		}
	})
}

func (d *drawCmd) Run() error {
	env, err := d.openSession(context.Background())
	if err != nil {
		return err
	}
	defer d.release(env)

	d.apply(env.session.Tools())
	if err := env.session.Begin(d.points[0]); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	for _, p := range d.points[1:] {
		env.session.Update(p, d.constrained)
	}
	env.session.End()
	fmt.Fprintf(d.out(), "drew %s\n", d.kind)
	return nil
}

// splitDrawArgs separates flags from positionals so flags may follow the
// shape name. Negative coordinates are kept as positionals.
func splitDrawArgs(fs *flag.FlagSet, args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		f := fs.Lookup(base)
		if f == nil {
			if base == "h" || base == "help" {
				flags = append(flags, "-"+base)
				continue
			}
			positionals = append(positionals, arg)
			continue
		}
		// Normalise to single dash form for the flag parser.
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}

func expectInts(args []string, n int, shape string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d integer arguments", shape, n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}
