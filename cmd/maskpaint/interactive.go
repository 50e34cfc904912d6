package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd reads commands line by line and runs them against one
// shared session.
type interactiveCmd struct {
	r     *root
	fs    *flag.FlagSet
	in    io.Reader
	execs commandList
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	c := &interactiveCmd{r: r, fs: fs, in: os.Stdin}
	fs.Var(&c.execs, "e", "execute a command and exit (may be specified multiple times)")
	fs.Usage = usageFunc(c)
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *interactiveCmd) Program() string        { return c.r.subcommand("interactive") }
func (c *interactiveCmd) FlagSet() *flag.FlagSet { return c.fs }

// executeLine runs one command. It reports true when the session should end.
func (c *interactiveCmd) executeLine(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	if line == "exit" || line == "quit" {
		return true, nil
	}
	args := strings.Fields(line)
	if args[0] == "interactive" {
		return false, nil
	}
	return false, c.r.Run(args)
}

func (c *interactiveCmd) Run() error {
	c.r.shared = true
	defer func() {
		c.r.closeSession()
		c.r.shared = false
	}()

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	out := c.r.out()
	fmt.Fprintln(out, "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(c.r.errOut(), err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
