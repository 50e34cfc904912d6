package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/example/maskpaint/internal/device"
	"github.com/example/maskpaint/internal/editor"
	"github.com/example/maskpaint/internal/grid"
	"github.com/example/maskpaint/internal/persist"
	"github.com/example/maskpaint/internal/store"
	"github.com/example/maskpaint/internal/tool"
)

// sessionEnv is everything a command needs to work on the persisted grid.
type sessionEnv struct {
	store   store.Store
	adapter *persist.Adapter
	session *editor.Session
	device  *device.Client
}

func (e *sessionEnv) Close() error {
	if e == nil || e.store == nil {
		return nil
	}
	return e.store.Close()
}

// configSettings returns the tool state described by the [editor] section,
// used when nothing has been persisted yet.
func (r *root) configSettings() tool.Settings {
	s := tool.DefaultSettings()
	ed := r.config.Editor
	if k, err := tool.ParseKind(ed.Tool); err == nil {
		s.Tool = k
	} else if ed.Tool != "" {
		logrus.Warnf("config: %v", err)
	}
	if ed.Color != "" {
		if c, err := grid.ParseColor(ed.Color); err == nil {
			s.Color = c
		} else {
			logrus.Warnf("config: editor color: %v", err)
		}
	}
	if ed.Brush > 0 {
		s.BrushSize = tool.ClampBrush(ed.Brush)
	}
	s.Filled = ed.Filled
	s.Centered = ed.Centered
	return s
}

func (r *root) storeOptions() store.Options {
	sc := r.config.Store
	opts := store.Options{
		Backend:       r.storeBackend,
		Path:          r.storePath,
		RedisAddr:     sc.RedisAddr,
		RedisPassword: sc.RedisPassword,
		RedisDB:       sc.RedisDB,
		Prefix:        sc.Prefix,
		MySQLDSN:      sc.MySQLDSN,
	}
	if r.ephemeral {
		opts.Backend = store.BackendMemory
	}
	return opts
}

// newDevice creates an upload client for url, or the configured url when
// empty.
func (r *root) newDevice(url string) *device.Client {
	dc := r.config.Device
	if url == "" {
		url = dc.URL
	}
	opts := []device.Option{}
	if dc.Cooldown > 0 {
		opts = append(opts, device.WithCooldown(dc.Cooldown))
	}
	if dc.Timeout > 0 {
		opts = append(opts, device.WithTimeout(dc.Timeout))
	}
	return device.New(url, opts...)
}

// openSession loads the mask and the persisted session. In interactive mode
// the first session is kept and returned for every later command.
func (r *root) openSession(ctx context.Context) (*sessionEnv, error) {
	if r.env != nil {
		return r.env, nil
	}
	mask := grid.LoadMaskFile(r.maskPath, r.failClosed)
	st, err := store.Open(ctx, r.storeOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	adapter := persist.New(st)
	cells, settings := adapter.LoadOr(ctx, r.configSettings())

	g := grid.New(mask)
	if cells != nil {
		g.Load(cells)
	}
	env := &sessionEnv{
		store:   st,
		adapter: adapter,
		session: editor.New(g, editor.WithTools(tool.New(tool.WithSettings(settings))), editor.WithPersister(adapter)),
		device:  r.newDevice(""),
	}
	logrus.WithField("backend", r.storeOptions().Backend).Debug("session opened")
	if r.shared {
		r.env = env
	}
	return env, nil
}

// release closes env unless it is the shared interactive session.
func (r *root) release(env *sessionEnv) {
	if env == nil || env == r.env {
		return
	}
	if err := env.Close(); err != nil {
		logrus.Warnf("close store: %v", err)
	}
}

func (r *root) closeSession() {
	if r.env == nil {
		return
	}
	if err := r.env.Close(); err != nil {
		logrus.Warnf("close store: %v", err)
	}
	r.env = nil
}
