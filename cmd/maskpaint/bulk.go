package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/maskpaint/internal/grid"
)

type fillCmd struct {
	*root
	fs        *flag.FlagSet
	colorSpec string
}

func parseFillCmd(args []string, r *root) (*fillCmd, error) {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	c := &fillCmd{root: r, fs: fs}
	fs.StringVar(&c.colorSpec, "color", "", "fill color; defaults to the current tool color")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if c.colorSpec != "" {
		if _, err := grid.ParseColor(c.colorSpec); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *fillCmd) Program() string        { return c.root.subcommand("fill") }
func (c *fillCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *fillCmd) Run() error {
	env, err := c.openSession(context.Background())
	if err != nil {
		return err
	}
	defer c.release(env)
	col := env.session.Tools().Settings().Color
	if c.colorSpec != "" {
		col, _ = grid.ParseColor(c.colorSpec)
	}
	if err := env.session.FillAll(col); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	fmt.Fprintf(c.out(), "filled %d cells with %s\n", env.session.Mask().Len(), col.Hex())
	return nil
}

type clearCmd struct {
	*root
	fs *flag.FlagSet
}

func parseClearCmd(args []string, r *root) (*clearCmd, error) {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	c := &clearCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *clearCmd) Program() string        { return c.root.subcommand("clear") }
func (c *clearCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *clearCmd) Run() error {
	env, err := c.openSession(context.Background())
	if err != nil {
		return err
	}
	defer c.release(env)
	if err := env.session.ClearAll(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	fmt.Fprintln(c.out(), "cleared grid")
	return nil
}
