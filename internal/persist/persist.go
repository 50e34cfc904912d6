// Package persist saves and restores the editor session through a key/value
// store and imports raster images into the grid.
package persist

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/store"
	"github.com/example/maskpaint/internal/tool"
)

// Store keys.
const (
	GridKey = "maskpaint.grid"
	ToolKey = "maskpaint.tool"
)

const defaultTimeout = 5 * time.Second

// Adapter reads and writes the session through a store.
type Adapter struct {
	store   store.Store
	timeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout bounds each store round trip.
func WithTimeout(d time.Duration) Option { return func(a *Adapter) { a.timeout = d } }

// New creates an Adapter backed by s.
func New(s store.Store, opts ...Option) *Adapter {
	a := &Adapter{store: s, timeout: defaultTimeout}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Adapter) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.timeout)
}

// SaveGrid stores the cells in index order.
func (a *Adapter) SaveGrid(ctx context.Context, cells []grid.Color) error {
	data, err := EncodeGrid(cells)
	if err != nil {
		return err
	}
	ctx, cancel := a.ctx(ctx)
	defer cancel()
	return a.store.Set(ctx, GridKey, data)
}

// SaveTool stores the tool selection.
func (a *Adapter) SaveTool(ctx context.Context, s tool.Settings) error {
	data, err := EncodeTool(s)
	if err != nil {
		return err
	}
	ctx, cancel := a.ctx(ctx)
	defer cancel()
	return a.store.Set(ctx, ToolKey, data)
}

// Save stores both records and returns the first failure.
func (a *Adapter) Save(ctx context.Context, cells []grid.Color, s tool.Settings) error {
	if err := a.SaveGrid(ctx, cells); err != nil {
		return err
	}
	return a.SaveTool(ctx, s)
}

// Persist saves both records, logging failures instead of returning them.
func (a *Adapter) Persist(cells []grid.Color, s tool.Settings) {
	if err := a.Save(context.Background(), cells, s); err != nil {
		logrus.Warnf("persist: %v", err)
	}
}

// PersistTool saves the tool record, logging failures.
func (a *Adapter) PersistTool(s tool.Settings) {
	if err := a.SaveTool(context.Background(), s); err != nil {
		logrus.Warnf("persist tool: %v", err)
	}
}

// Load restores the session. Absent or unreadable records fall back to
// defaults: cells is nil when no usable grid was stored.
func (a *Adapter) Load(ctx context.Context) (cells []grid.Color, settings tool.Settings) {
	return a.LoadOr(ctx, tool.DefaultSettings())
}

// LoadOr is Load with def used when no usable tool record exists.
func (a *Adapter) LoadOr(ctx context.Context, def tool.Settings) (cells []grid.Color, settings tool.Settings) {
	settings = def
	ctx, cancel := a.ctx(ctx)
	defer cancel()

	if data, err := a.store.Get(ctx, GridKey); err == nil {
		if c, err := DecodeGrid(data); err == nil {
			cells = c
		} else {
			logrus.Debugf("load grid: %v", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		logrus.Debugf("load grid: %v", err)
	}

	if data, err := a.store.Get(ctx, ToolKey); err == nil {
		if s, err := DecodeTool(data); err == nil {
			settings = s
		} else {
			logrus.Debugf("load tool: %v", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		logrus.Debugf("load tool: %v", err)
	}
	return cells, settings
}
