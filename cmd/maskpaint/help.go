package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"sync"
	"text/template"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	if err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of); err != nil {
		logrus.Errorf("render help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

// usageFunc prints help to the flag set's output, which is discarded for
// every command: help reaches the user through UsageError instead.
func usageFunc(h HelpData) func() {
	return func() {
		fs := h.FlagSet()
		if fs == nil {
			return
		}
		fmt.Fprint(fs.Output(), (&UsageError{of: h}).Error())
	}
}

func (r *root) Template() string {
	return "root.txt"
}

func (c *editCmd) Template() string {
	return "edit.txt"
}

func (d *drawCmd) Template() string {
	return "draw.txt"
}

func (c *fillCmd) Template() string     { return "fill.txt" }
func (c *clearCmd) Template() string    { return "clear.txt" }
func (c *toolCmd) Template() string     { return "tool.txt" }
func (c *importCmd) Template() string   { return "import.txt" }
func (c *exportCmd) Template() string   { return "export.txt" }
func (c *uploadCmd) Template() string   { return "upload.txt" }
func (c *showCmd) Template() string     { return "show.txt" }
func (c *simulateCmd) Template() string { return "simulate.txt" }

func (c *interactiveCmd) Template() string {
	return "interactive.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}

func (v *versionCmd) Template() string {
	return "version.txt"
}
