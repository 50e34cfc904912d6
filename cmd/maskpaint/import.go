package main

import (
	"context"
	"flag"
	"fmt"
	"image"

	"github.com/example/maskpaint/internal/capture"
)

type importCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	fromClipboard bool
	fromCapture   bool
	regionSpec    string
	monitor       string
	interactive   bool
	region        image.Rectangle
}

func parseImportCmd(args []string, r *root) (*importCmd, error) {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	c := &importCmd{root: r, fs: fs}
	fs.StringVar(&c.file, "file", "", "image file to import (png, jpeg, gif, bmp, webp)")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "import the image on the clipboard")
	fs.BoolVar(&c.fromCapture, "capture", false, "import a screen grab")
	fs.StringVar(&c.regionSpec, "region", "", "crop the screen grab to x,y,w,h")
	fs.StringVar(&c.monitor, "monitor", "", "crop the screen grab to a monitor (primary, index or name)")
	fs.BoolVar(&c.interactive, "interactive", false, "let the desktop portal ask for the area")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if c.file == "" && fs.NArg() == 1 {
		c.file = fs.Arg(0)
	}
	sources := 0
	for _, set := range []bool{c.file != "", c.fromClipboard, c.fromCapture} {
		if set {
			sources++
		}
	}
	if sources == 0 {
		return nil, &UsageError{of: c}
	}
	if sources > 1 {
		return nil, fmt.Errorf("choose one of -file, -from-clipboard or -capture")
	}
	if !c.fromCapture && (c.regionSpec != "" || c.monitor != "" || c.interactive) {
		return nil, fmt.Errorf("-region, -monitor and -interactive require -capture")
	}
	if c.regionSpec != "" {
		rect, err := capture.ParseRegion(c.regionSpec)
		if err != nil {
			return nil, err
		}
		c.region = rect
	}
	return c, nil
}

func (c *importCmd) Program() string        { return c.root.subcommand("import") }
func (c *importCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *importCmd) Run() error {
	ctx := context.Background()
	env, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer c.release(env)

	var msg string
	switch {
	case c.fromClipboard:
		msg, err = c.importClipboard(ctx, env)
	case c.fromCapture:
		msg, err = c.importCapture(ctx, env, capture.Options{
			Monitor:     c.monitor,
			Region:      c.region,
			Interactive: c.interactive,
		})
	default:
		msg, err = c.importFile(ctx, env, c.file)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out(), msg)
	return nil
}
