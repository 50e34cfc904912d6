package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/render"
)

type showCmd struct {
	*root
	fs    *flag.FlagSet
	plain bool
}

func parseShowCmd(args []string, r *root) (*showCmd, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	c := &showCmd{root: r, fs: fs}
	fs.BoolVar(&c.plain, "plain", false, "omit the border and title")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *showCmd) Program() string        { return c.root.subcommand("show") }
func (c *showCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *showCmd) Run() error {
	env, err := c.openSession(context.Background())
	if err != nil {
		return err
	}
	defer c.release(env)

	body := render.Terminal(export.ToWireFormat(env.session), env.session.Mask(), c.activeTheme)
	if !c.plain {
		s := env.session.Tools().Settings()
		title := fmt.Sprintf("maskpaint  %s %s brush %d", s.Tool, s.Color.Hex(), s.BrushSize)
		body = render.Frame(title, body)
	}
	fmt.Fprintln(c.out(), body)
	return nil
}
