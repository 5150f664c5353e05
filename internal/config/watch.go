package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file whenever it changes on disk.
// The parent directory is watched so atomic tmp+rename saves are seen.
type Watcher struct {
	path     string
	onChange func(AppConfig)
	logger   *slog.Logger
	fs       *fsnotify.Watcher
}

func NewWatcher(path string, onChange func(AppConfig)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	cleanPath := filepath.Clean(path)
	if err := fs.Add(filepath.Dir(cleanPath)); err != nil {
		_ = fs.Close()

		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	return &Watcher{
		path:     cleanPath,
		onChange: onChange,
		logger:   slog.With("component", "config.watcher", "path", cleanPath),
		fs:       fs,
	}, nil
}

// Run blocks until ctx is done or the watcher fails.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fs.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fs watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}

	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("reload failed", "error", err)

		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Warn("reloaded config is invalid", "error", err)

		return
	}
	w.logger.Info("config reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
