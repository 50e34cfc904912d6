package main

import (
	"flag"
	"fmt"

	"github.com/example/maskpaint/internal/config"
)

type configCmd struct {
	*root
	fs   *flag.FlagSet
	path string
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	c := &configCmd{root: r, fs: fs}
	fs.StringVar(&c.path, "path", "", "file written by save; defaults to the loaded config or "+config.DefaultPath())
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Program() string        { return c.root.subcommand("config") }
func (c *configCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		fmt.Fprint(c.out(), c.root.config.String())
		return nil
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) runSave() error {
	path := c.path
	if path == "" {
		// Save over the file that was loaded, if any.
		path = config.NewLoader(version, configPathOverride).GetConfigPath()
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(path, c.root.config); err != nil {
		return err
	}
	fmt.Fprintf(c.errOut(), "Configuration saved to %s\n", path)
	return nil
}
