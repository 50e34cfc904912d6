package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/config"
	"github.com/example/maskpaint/internal/notify"
	"github.com/example/maskpaint/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs       *flag.FlagSet
	program  string
	config   *config.Config
	notifier *notify.Notifier
	stdout   io.Writer
	stderr   io.Writer

	maskPath     string
	failClosed   bool
	storeBackend string
	storePath    string
	themeName    string
	logLevel     string
	ephemeral    bool
	uploadAlerts bool
	importAlerts bool
	saveAlerts   bool

	activeTheme *theme.Theme
	// shared keeps one session open across commands in interactive mode.
	shared bool
	env    *sessionEnv
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func (r *root) subcommand(name string) string {
	return strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
}

func (r *root) out() io.Writer {
	if r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

func loadConfig() *config.Config {
	if err := config.LoadDotEnv(".env"); err != nil {
		logrus.Warnf("load .env: %v", err)
	}
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring environment: %v\n", err)
	}
	return cfg
}

func newRoot(cfg *config.Config) *root {
	r := &root{
		fs:       flag.NewFlagSet("maskpaint", flag.ContinueOnError),
		program:  "maskpaint",
		notifier: notify.New(notify.LoadPreferences(os.LookupEnv)),
		config:   cfg,
	}
	r.fs.SetOutput(io.Discard)

	// Precedence: CLI > Env > Config > Default. The environment has already
	// been folded into cfg, so cfg values are the flag defaults.
	r.fs.StringVar(&r.maskPath, "mask", cfg.MaskLayout, "mask layout file (JSON index array or plain list)")
	r.fs.BoolVar(&r.failClosed, "fail-closed", cfg.FailClosed, "reject every cell when the mask layout cannot be loaded")
	r.fs.StringVar(&r.storeBackend, "store", cfg.Store.Backend, "persistence backend (file, memory, redis, mysql)")
	r.fs.StringVar(&r.storePath, "store-path", cfg.Store.Path, "directory of the file store")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark)")
	r.fs.StringVar(&r.logLevel, "log-level", envOr(config.EnvLogLevel, "info"), "log level (debug, info, warn, error)")
	r.fs.BoolVar(&r.ephemeral, "ephemeral", false, "keep the session in memory only")
	r.fs.BoolVar(&r.uploadAlerts, "notify-upload", cfg.Notify.Upload, "show a desktop notification after an upload")
	r.fs.BoolVar(&r.importAlerts, "notify-import", cfg.Notify.Import, "show a desktop notification after an import")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an export")
	r.fs.Usage = usageFunc(r)
	return r
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

func configureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetOutput(os.Stderr)
	return nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := configureLogging(r.logLevel); err != nil {
		return err
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventUpload, r.uploadAlerts)
		r.notifier.Enable(notify.EventImport, r.importAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
	}

	t, err := r.config.LoadTheme(theme.NewLoader(), r.themeName)
	if err != nil {
		if r.themeName != "" && r.themeName != "default" {
			fmt.Fprintf(r.errOut(), "warning: failed to load theme '%s': %v. using default.\n", r.themeName, err)
		}
		t = theme.Default()
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "fill":
		cmd, err = parseFillCmd(subArgs, r)
	case "clear":
		cmd, err = parseClearCmd(subArgs, r)
	case "tool":
		cmd, err = parseToolCmd(subArgs, r)
	case "import":
		cmd, err = parseImportCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "upload":
		cmd, err = parseUploadCmd(subArgs, r)
	case "show":
		cmd, err = parseShowCmd(subArgs, r)
	case "simulate":
		cmd, err = parseSimulateCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot(loadConfig())
	err := r.Run(os.Args[1:])
	r.closeSession()
	if err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

// parseFlags parses a subcommand's flags, turning -h into a UsageError.
func parseFlags(fs *flag.FlagSet, args []string, of HelpData) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: of}
		}
		return err
	}
	return nil
}
