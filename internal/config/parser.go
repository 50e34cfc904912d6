package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/maskpaint/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				themeName := strings.TrimPrefix(currentSection, "theme.")
				currentTheme = theme.Default()
				currentTheme.Name = themeName
				cfg.Themes[themeName] = currentTheme
			}
			continue
		}

		// Key = Value, or Key: Value inside themes
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if uq, err := strconv.Unquote(value); err == nil && strings.HasPrefix(value, "\"") {
			value = uq
		}

		var err error
		switch {
		case currentTheme != nil:
			err = theme.SetField(currentTheme, key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case currentSection == "store":
			err = setStoreField(&cfg.Store, key, value)
		case currentSection == "device":
			err = setDeviceField(&cfg.Device, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	return b, nil
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for key %s: %w", key, err)
	}
	return n, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for key %s: %w", key, err)
	}
	return d, nil
}

func setRootField(cfg *Config, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "mask_layout":
		cfg.MaskLayout = value
	case "fail_closed":
		cfg.FailClosed, err = parseBool(key, value)
	case "export_dir":
		cfg.ExportDir = value
	}
	return err
}

func setEditorField(e *Editor, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "tool":
		e.Tool = value
	case "color":
		e.Color = value
	case "brush":
		e.Brush, err = parseInt(key, value)
	case "filled":
		e.Filled, err = parseBool(key, value)
	case "centered":
		e.Centered, err = parseBool(key, value)
	case "cell_size":
		e.CellSize, err = parseInt(key, value)
	}
	return err
}

func setStoreField(s *Store, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "backend":
		s.Backend = value
	case "path":
		s.Path = value
	case "redis_addr":
		s.RedisAddr = value
	case "redis_password":
		s.RedisPassword = value
	case "redis_db":
		s.RedisDB, err = parseInt(key, value)
	case "prefix":
		s.Prefix = value
	case "mysql_dsn":
		s.MySQLDSN = value
	}
	return err
}

func setDeviceField(d *Device, key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "url":
		d.URL = value
	case "timeout":
		d.Timeout, err = parseDuration(key, value)
	case "cooldown":
		d.Cooldown, err = parseDuration(key, value)
	}
	return err
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch strings.ToLower(key) {
	case "upload":
		n.Upload = b
	case "import":
		n.Import = b
	case "save":
		n.Save = b
	}
	return nil
}
