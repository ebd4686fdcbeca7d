// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Watches the config file and re-applies reloadable settings.
// Reload runs hooks synchronously for test determinism.

package control

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader re-reads a config file when it changes and hands the new
// Config to registered hooks.
type Reloader struct {
	path    string
	log     *zap.Logger
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	hooks []func(Config)
}

// NewReloader watches the directory holding path, so editors that replace
// the file by rename are still noticed.
func NewReloader(path string, log *zap.Logger) (*Reloader, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Reloader{
		path:    abs,
		log:     log.With(zap.String("component", "reloader")),
		watcher: w,
	}, nil
}

// OnReload registers a hook called with every successfully loaded Config.
func (r *Reloader) OnReload(fn func(Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Reload loads the file now and, if valid, invokes all hooks in order.
// An invalid file leaves the running settings untouched.
func (r *Reloader) Reload() error {
	cfg, err := LoadConfig(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	hooks := slices.Clone(r.hooks)
	r.mu.Unlock()
	for _, fn := range hooks {
		fn(cfg)
	}
	return nil
}

// Run processes file events until ctx is done or the watcher is closed.
func (r *Reloader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != r.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.log.Warn("config reload rejected", zap.String("path", r.path), zap.Error(err))
				continue
			}
			r.log.Info("config reloaded", zap.String("path", r.path))
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}
