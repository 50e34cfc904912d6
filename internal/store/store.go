// Package store provides the key/value backends used to persist the editor
// session between runs.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the directory of the file backend.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Prefix is prepended to every key in shared backends.
	Prefix string

	MySQLDSN string
}

// Open creates the backend described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFile(opts.Path)
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		return DialRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.Prefix)
	case BackendMySQL:
		return OpenMySQL(ctx, opts.MySQLDSN, opts.Prefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
