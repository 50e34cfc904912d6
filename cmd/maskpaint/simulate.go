package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/maskpaint/internal/simulator"
)

type simulateCmd struct {
	*root
	fs       *flag.FlagSet
	addr     string
	outDir   string
	cellSize int
}

func parseSimulateCmd(args []string, r *root) (*simulateCmd, error) {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	c := &simulateCmd{root: r, fs: fs}
	fs.StringVar(&c.addr, "addr", "127.0.0.1:5001", "listen address")
	fs.StringVar(&c.outDir, "out", "", "directory receiving one PNG per accepted frame")
	fs.IntVar(&c.cellSize, "cell-size", 12, "cell size of /frame.png")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *simulateCmd) Program() string        { return c.root.subcommand("simulate") }
func (c *simulateCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *simulateCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := simulator.New(
		simulator.WithOutputDir(c.outDir),
		simulator.WithPreviewOptions(c.previewOptions(c.cellSize)),
	)
	return srv.Run(ctx, c.addr)
}
