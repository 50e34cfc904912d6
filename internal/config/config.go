package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/maskpaint/internal/theme"
)

// Editor holds the initial tool selection and window geometry.
type Editor struct {
	Tool     string
	Color    string
	Brush    int
	Filled   bool
	Centered bool
	CellSize int
}

// Store selects the persistence backend.
type Store struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	MySQLDSN      string
}

// Device configures the upload endpoint.
type Device struct {
	URL      string
	Timeout  time.Duration
	Cooldown time.Duration
}

// Notify holds notification settings.
type Notify struct {
	Upload bool
	Import bool
	Save   bool
}

// Config holds the application configuration.
type Config struct {
	Theme      string
	MaskLayout string
	FailClosed bool
	ExportDir  string
	Editor     Editor
	Store      Store
	Device     Device
	Notify     Notify
	Themes     map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Editor: Editor{
			Tool:     "paint",
			Color:    "#ffffff",
			Brush:    1,
			CellSize: 12,
		},
		Store: Store{
			Backend: "file",
			Prefix:  "maskpaint:",
		},
		Device: Device{
			URL:      "http://127.0.0.1:5001/preview",
			Timeout:  60 * time.Second,
			Cooldown: 2 * time.Second,
		},
		Notify: Notify{Upload: true},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.MaskLayout != "" {
		fmt.Fprintf(&sb, "mask_layout = %s\n", c.MaskLayout)
	}
	fmt.Fprintf(&sb, "fail_closed = %v\n", c.FailClosed)
	if c.ExportDir != "" {
		fmt.Fprintf(&sb, "export_dir = %s\n", c.ExportDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "tool = %s\n", c.Editor.Tool)
	fmt.Fprintf(&sb, "color = %s\n", c.Editor.Color)
	fmt.Fprintf(&sb, "brush = %d\n", c.Editor.Brush)
	fmt.Fprintf(&sb, "filled = %v\n", c.Editor.Filled)
	fmt.Fprintf(&sb, "centered = %v\n", c.Editor.Centered)
	fmt.Fprintf(&sb, "cell_size = %d\n", c.Editor.CellSize)
	sb.WriteString("\n")

	sb.WriteString("[store]\n")
	fmt.Fprintf(&sb, "backend = %s\n", c.Store.Backend)
	if c.Store.Path != "" {
		fmt.Fprintf(&sb, "path = %s\n", c.Store.Path)
	}
	if c.Store.RedisAddr != "" {
		fmt.Fprintf(&sb, "redis_addr = %s\n", c.Store.RedisAddr)
	}
	if c.Store.RedisPassword != "" {
		fmt.Fprintf(&sb, "redis_password = %q\n", c.Store.RedisPassword)
	}
	fmt.Fprintf(&sb, "redis_db = %d\n", c.Store.RedisDB)
	fmt.Fprintf(&sb, "prefix = %s\n", c.Store.Prefix)
	if c.Store.MySQLDSN != "" {
		fmt.Fprintf(&sb, "mysql_dsn = %q\n", c.Store.MySQLDSN)
	}
	sb.WriteString("\n")

	sb.WriteString("[device]\n")
	fmt.Fprintf(&sb, "url = %s\n", c.Device.URL)
	fmt.Fprintf(&sb, "timeout = %s\n", c.Device.Timeout)
	fmt.Fprintf(&sb, "cooldown = %s\n", c.Device.Cooldown)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "upload = %v\n", c.Notify.Upload)
	fmt.Fprintf(&sb, "import = %v\n", c.Notify.Import)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)
	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = theme.Format(&sb, c.Themes[name])
		sb.WriteString("\n")
	}

	return sb.String()
}

// LoadTheme resolves a theme name against the config's inline themes
// first, then the theme loader search path.
func (c *Config) LoadTheme(l *theme.Loader, name string) (*theme.Theme, error) {
	if name == "" {
		name = c.Theme
	}
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	return l.Load(name)
}
