package main

import (
	"context"
	"flag"

	"golang.org/x/mobile/event/key"

	"github.com/example/maskpaint/internal/capture"
	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/ui"
)

type editCmd struct {
	*root
	fs       *flag.FlagSet
	cellSize int
	capture  bool
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	c := &editCmd{root: r, fs: fs}
	fs.IntVar(&c.cellSize, "cell-size", r.config.Editor.CellSize, "initial size of one cell in pixels")
	fs.BoolVar(&c.capture, "capture-button", true, "show a button that imports a screen grab")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *editCmd) Program() string        { return c.root.subcommand("edit") }
func (c *editCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *editCmd) Run() error {
	ctx := context.Background()
	env, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer c.release(env)

	opts := []ui.Option{
		ui.WithTheme(c.activeTheme),
		ui.WithCellSize(c.cellSize),
		ui.WithAction("upload", "Upload", func(ctx context.Context) (string, error) {
			return c.upload(ctx, env, nil, export.Options{})
		}, ui.KeyShortcut{Rune: 'u', Modifiers: key.ModControl}),
		ui.WithAction("paste", "Paste", func(ctx context.Context) (string, error) {
			return c.importClipboard(ctx, env)
		}, ui.KeyShortcut{Rune: 'v', Modifiers: key.ModControl}),
		ui.WithAction("copy", "Copy", func(context.Context) (string, error) {
			return c.copyPreview(env, 0)
		}, ui.KeyShortcut{Rune: 'c', Modifiers: key.ModControl}),
		ui.WithAction("save", "Save", func(context.Context) (string, error) {
			return c.savePreview(env, 0)
		}, ui.KeyShortcut{Rune: 's', Modifiers: key.ModControl}),
	}
	if c.capture {
		opts = append(opts, ui.WithAction("grab", "Grab", func(ctx context.Context) (string, error) {
			return c.importCapture(ctx, env, capture.Options{Interactive: true})
		}, ui.KeyShortcut{Rune: 'g', Modifiers: key.ModControl}))
	}

	app := ui.New(opts...)
	env.session.SetOnChange(app.NotifyChanged)
	defer env.session.SetOnChange(nil)
	app.Bind(env.session)
	return app.Run()
}
