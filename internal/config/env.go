package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names. Values override the config file.
const (
	EnvTheme         = "MASKPAINT_THEME"
	EnvMask          = "MASKPAINT_MASK"
	EnvFailClosed    = "MASKPAINT_FAIL_CLOSED"
	EnvExportDir     = "MASKPAINT_EXPORT_DIR"
	EnvStore         = "MASKPAINT_STORE"
	EnvStorePath     = "MASKPAINT_STORE_PATH"
	EnvRedisAddr     = "MASKPAINT_REDIS_ADDR"
	EnvRedisPassword = "MASKPAINT_REDIS_PASSWORD"
	EnvRedisDB       = "MASKPAINT_REDIS_DB"
	EnvMySQLDSN      = "MASKPAINT_MYSQL_DSN"
	EnvDeviceURL     = "MASKPAINT_DEVICE_URL"
	EnvCooldown      = "MASKPAINT_COOLDOWN"
	EnvLogLevel      = "MASKPAINT_LOG_LEVEL"
)

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg using lookup, which is
// normally os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str(EnvTheme, &cfg.Theme)
	str(EnvMask, &cfg.MaskLayout)
	str(EnvExportDir, &cfg.ExportDir)
	str(EnvStore, &cfg.Store.Backend)
	str(EnvStorePath, &cfg.Store.Path)
	str(EnvRedisAddr, &cfg.Store.RedisAddr)
	str(EnvRedisPassword, &cfg.Store.RedisPassword)
	str(EnvMySQLDSN, &cfg.Store.MySQLDSN)
	str(EnvDeviceURL, &cfg.Device.URL)

	if v, ok := lookup(EnvFailClosed); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFailClosed, err)
		}
		cfg.FailClosed = b
	}
	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		cfg.Store.RedisDB = n
	}
	if v, ok := lookup(EnvCooldown); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCooldown, err)
		}
		cfg.Device.Cooldown = d
	}
	return nil
}
