package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/maskpaint/internal/device"
	"github.com/example/maskpaint/internal/export"
)

type uploadCmd struct {
	*root
	fs         *flag.FlagSet
	url        string
	omitMasked bool
}

func parseUploadCmd(args []string, r *root) (*uploadCmd, error) {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	c := &uploadCmd{root: r, fs: fs}
	fs.StringVar(&c.url, "url", "", "upload endpoint; defaults to the configured device url")
	fs.BoolVar(&c.omitMasked, "omit-masked", false, "send empty strings for cells outside the mask")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *uploadCmd) Program() string        { return c.root.subcommand("upload") }
func (c *uploadCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *uploadCmd) Run() error {
	ctx := context.Background()
	env, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer c.release(env)

	// An explicit url gets a one-off client; the session keeps its own
	// client and cool-down.
	var dev *device.Client
	if c.url != "" && c.url != env.device.URL() {
		dev = c.newDevice(c.url)
	}
	msg, err := c.upload(ctx, env, dev, export.Options{OmitMasked: c.omitMasked})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out(), msg)
	return nil
}
