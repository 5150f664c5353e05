package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/skobkin/vlcrc/internal/config"
)

// LevelFatal marks conditions that indicate a broken invariant. It does not exit.
const LevelFatal = slog.Level(12)

// Manager owns the process logger: level, format, console output and the
// optional log file.
type Manager struct {
	mu      sync.RWMutex
	console io.Writer
	level   *slog.LevelVar
	logger  *slog.Logger
	file    *os.File
}

// NewManager logs to console at info level until Configure is called.
// A nil console means stderr.
func NewManager(console io.Writer) *Manager {
	if console == nil {
		console = os.Stderr
	}
	m := &Manager{console: console, level: new(slog.LevelVar)}
	m.logger = slog.New(newHandler(console, m.level, ""))

	return m
}

func (m *Manager) Configure(cfg config.LoggingConfig, filePath string) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.closeFileLocked()
	out := m.console
	if cfg.LogToFile {
		cleanPath := filepath.Clean(filePath)
		// #nosec G304 -- path is resolved by app runtime and points to user cache dir.
		file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		m.file = file
		out = &teeWriter{dst: []io.Writer{m.console, file}}
	}

	m.level.Set(level)
	m.logger = slog.New(newHandler(out, m.level, cfg.Format))
	slog.SetDefault(m.logger)

	return nil
}

func (m *Manager) Level() slog.Level {
	return m.level.Level()
}

func (m *Manager) Logger(component string) *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logger.With("component", component)
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closeFileLocked()
}

func (m *Manager) closeFileLocked() error {
	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil

	return err
}

func newHandler(out io.Writer, level slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevelName}
	if strings.EqualFold(strings.TrimSpace(format), config.LogFormatJSON) {
		return slog.NewJSONHandler(out, opts)
	}

	return slog.NewTextHandler(out, opts)
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return 0, fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, raw)
	}
}

func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level >= LevelFatal {
		a.Value = slog.StringValue("FATAL")
	}

	return a
}

// teeWriter writes to every destination and succeeds if at least one did.
type teeWriter struct {
	dst []io.Writer
}

func (w *teeWriter) Write(p []byte) (int, error) {
	var errs []error
	for _, d := range w.dst {
		n, err := d.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(w.dst) && len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	return len(p), nil
}
