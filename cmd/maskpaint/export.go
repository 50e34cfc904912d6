package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"strings"

	"github.com/example/maskpaint/internal/clipboard"
	"github.com/example/maskpaint/internal/export"
	"github.com/example/maskpaint/internal/render"
)

var exportFormats = map[string]string{
	"json":  "json",
	"hex":   "txt",
	"png":   "png",
	"raw":   "png",
	"frame": "bin",
}

type exportCmd struct {
	*root
	fs          *flag.FlagSet
	format      string
	output      string
	omitMasked  bool
	scale       int
	toClipboard bool
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	c := &exportCmd{root: r, fs: fs}
	fs.StringVar(&c.format, "format", "json", "output format: json, hex, png (preview), raw (42x56 png) or frame (device bytes)")
	fs.StringVar(&c.output, "output", "", "output file; - for stdout")
	fs.BoolVar(&c.omitMasked, "omit-masked", false, "send empty strings for cells outside the mask (json)")
	fs.IntVar(&c.scale, "scale", 12, "cell size in pixels for the png preview")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the export to the clipboard instead of writing it")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	c.format = strings.ToLower(c.format)
	if _, ok := exportFormats[c.format]; !ok {
		return nil, fmt.Errorf("unknown export format %q", c.format)
	}
	if c.scale < 1 {
		return nil, fmt.Errorf("scale must be positive")
	}
	if c.toClipboard && c.format == "frame" {
		return nil, fmt.Errorf("frame export cannot be copied to the clipboard")
	}
	if c.toClipboard && c.output != "" {
		return nil, fmt.Errorf("-to-clipboard cannot be combined with -output")
	}
	return c, nil
}

func (c *exportCmd) Program() string        { return c.root.subcommand("export") }
func (c *exportCmd) FlagSet() *flag.FlagSet { return c.fs }

// binary reports whether the format should not go to a terminal by default.
func (c *exportCmd) binary() bool {
	return c.format == "png" || c.format == "raw" || c.format == "frame"
}

func (c *exportCmd) encode(env *sessionEnv) ([]byte, image.Image, error) {
	colors := export.ToWireFormat(env.session)
	var buf bytes.Buffer
	switch c.format {
	case "json":
		data, err := export.Payload(colors, export.Options{OmitMasked: c.omitMasked, Mask: env.session.Mask()})
		if err != nil {
			return nil, nil, err
		}
		return append(data, '\n'), nil, nil
	case "hex":
		if err := export.WriteHex(&buf, colors); err != nil {
			return nil, nil, err
		}
		return buf.Bytes(), nil, nil
	case "frame":
		return export.DeviceFrame(colors), nil, nil
	}
	var img image.Image
	if c.format == "raw" {
		img = export.Image(colors)
	} else {
		img = render.Preview(colors, env.session.Mask(), c.previewOptions(c.scale))
	}
	if err := render.WritePNG(&buf, img); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), img, nil
}

func (c *exportCmd) Run() error {
	env, err := c.openSession(context.Background())
	if err != nil {
		return err
	}
	defer c.release(env)

	data, img, err := c.encode(env)
	if err != nil {
		return fmt.Errorf("export %s: %w", c.format, err)
	}

	if c.toClipboard {
		if img != nil {
			err = clipboard.WriteImage(img)
		} else {
			err = clipboard.WriteText(string(data))
		}
		if err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintf(c.errOut(), "copied %s export to clipboard\n", c.format)
		return nil
	}

	path := c.output
	if path == "" && c.binary() {
		path = c.defaultExportPath(exportFormats[c.format])
	}
	if path == "" || path == "-" {
		_, err := c.out().Write(data)
		return err
	}
	if err := c.writeFile(path, data); err != nil {
		return err
	}
	fmt.Fprintf(c.errOut(), "saved %s\n", path)
	return nil
}
