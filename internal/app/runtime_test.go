package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skobkin/vlcrc/internal/config"
	"github.com/skobkin/vlcrc/internal/connectors"
)

func newRuntimeForTests(t *testing.T, mutate func(*config.AppConfig)) *Runtime {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "cfg"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "cache"))

	cfg := config.Default()
	cfg.Connection.Host = "!"
	cfg.Logging.Level = "error"
	if mutate != nil {
		mutate(&cfg)
	}
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := config.Save(configPath, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	rt, err := Initialize(context.Background(), Options{ConfigPath: configPath})
	if err != nil {
		t.Fatalf("initialize runtime: %v", err)
	}
	t.Cleanup(func() {
		_ = rt.Close()
	})

	return rt
}

func TestInitialize_UsesConfigOverride(t *testing.T) {
	rt := newRuntimeForTests(t, func(cfg *config.AppConfig) {
		cfg.Connection.Label = "stage"
	})

	if got := rt.CurrentConfig().Connection.Label; got != "stage" {
		t.Fatalf("expected label from override config, got %q", got)
	}
	if rt.Client.Target() != "" {
		t.Fatalf("disabled host must have no target, got %q", rt.Client.Target())
	}
	if rt.AttemptRepo == nil || rt.WriterQueue == nil {
		t.Fatalf("expected history storage to be initialized")
	}
}

func TestInitialize_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "cfg"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "cache"))

	cfg := config.Default()
	cfg.Connection.Port = 70000
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Initialize(context.Background(), Options{ConfigPath: configPath})
	if !errors.Is(err, config.ErrInvalidPort) {
		t.Fatalf("expected invalid port error, got %v", err)
	}
}

func TestRuntime_RecordsAttemptHistory(t *testing.T) {
	rt := newRuntimeForTests(t, nil)

	rt.Bus.Publish(connectors.TopicConnAttempt, connectors.ConnectionAttempt{
		Label:     "stage",
		Target:    "10.0.0.5:4212",
		StartedAt: time.Now(),
		Duration:  250 * time.Millisecond,
		Detail:    connectors.ConnectionDetailConnRefused,
	})

	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := rt.History(ctx, 10)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(records) == 1 {
			if records[0].Target != "10.0.0.5:4212" || records[0].Detail != "connection_refused" {
				t.Fatalf("unexpected record: %+v", records[0])
			}

			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for history record")
		}
		time.Sleep(20 * time.Millisecond)
	}

	removed, err := rt.ClearHistory(ctx)
	if err != nil {
		t.Fatalf("clear history: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed attempt, got %d", removed)
	}
	records, err := rt.History(ctx, 10)
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(records))
	}
}

func TestRuntime_HistoryDisabled(t *testing.T) {
	rt := newRuntimeForTests(t, func(cfg *config.AppConfig) {
		cfg.History.Enabled = false
	})

	if _, err := rt.History(context.Background(), 5); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled, got %v", err)
	}
	if _, err := rt.ClearHistory(context.Background()); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("expected ErrHistoryDisabled on clear, got %v", err)
	}
}

func TestRuntime_ApplyConfigRedirectsOnTargetChange(t *testing.T) {
	rt := newRuntimeForTests(t, nil)

	next := rt.CurrentConfig()
	next.Connection.Host = "127.0.0.1"
	next.Connection.Port = 4299
	if err := rt.ApplyConfig(next); err != nil {
		t.Fatalf("apply config: %v", err)
	}

	if got := rt.Client.Target(); got != "127.0.0.1:4299" {
		t.Fatalf("expected redirected target, got %q", got)
	}
	if got := rt.CurrentConfig().Connection.Port; got != 4299 {
		t.Fatalf("expected applied config, got port %d", got)
	}
}

func TestRuntime_ApplyConfigRejectsInvalid(t *testing.T) {
	rt := newRuntimeForTests(t, nil)

	next := rt.CurrentConfig()
	next.Logging.Level = "loud"
	if err := rt.ApplyConfig(next); !errors.Is(err, config.ErrInvalidLogLevel) {
		t.Fatalf("expected invalid log level, got %v", err)
	}
	if got := rt.CurrentConfig().Logging.Level; got != "error" {
		t.Fatalf("invalid config must not be applied, got level %q", got)
	}
}

func TestRuntime_StartMQTTDisabledIsNoop(t *testing.T) {
	rt := newRuntimeForTests(t, nil)

	if err := rt.StartMQTT(); err != nil {
		t.Fatalf("expected no error with mqtt disabled, got %v", err)
	}
}
