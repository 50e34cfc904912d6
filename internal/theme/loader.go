package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const ext = ".theme"

// SearchPathEnv names extra theme directories, separated like PATH. They are
// searched before the user's config directory.
const SearchPathEnv = "MASKPAINT_THEME_PATH"

// Loader resolves theme names for the editor window and the terminal view.
// A name that looks like a path is read directly. Other names are looked up
// in the embedded themes and then in Dirs, in order.
type Loader struct {
	Dirs []string
}

// NewLoader searches $MASKPAINT_THEME_PATH and then <user config>/maskpaint/themes.
func NewLoader() *Loader {
	var dirs []string
	if v := os.Getenv(SearchPathEnv); v != "" {
		dirs = append(dirs, filepath.SplitList(v)...)
	}
	if d, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(d, "maskpaint", "themes"))
	}
	return &Loader{Dirs: dirs}
}

// Load returns the named theme. The empty name is the built-in default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if strings.ContainsRune(name, filepath.Separator) || strings.HasSuffix(name, ext) {
		t, err := parseFile(name)
		if !errors.Is(err, fs.ErrNotExist) {
			return t, err
		}
	}
	key := strings.TrimSuffix(filepath.Base(name), ext)
	if f, err := EmbeddedThemes.Open("defaults/" + key + ext); err == nil {
		defer f.Close()
		return Parse(f)
	}
	for _, dir := range l.Dirs {
		t, err := parseFile(filepath.Join(dir, key+ext))
		if !errors.Is(err, fs.ErrNotExist) {
			return t, err
		}
	}
	return nil, fmt.Errorf("theme %q not found (available: %s)", name, strings.Join(l.Available(), ", "))
}

// Available lists the names Load resolves without a path, sorted.
func (l *Loader) Available() []string {
	seen := map[string]bool{}
	for _, n := range Names() {
		seen[n] = true
	}
	for _, dir := range l.Dirs {
		matches, _ := filepath.Glob(filepath.Join(dir, "*"+ext))
		for _, m := range matches {
			seen[strings.TrimSuffix(filepath.Base(m), ext)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	return t, nil
}
