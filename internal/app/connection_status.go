package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/skobkin/vlcrc/internal/config"
	"github.com/skobkin/vlcrc/internal/connection"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/rc"
	"github.com/skobkin/vlcrc/internal/transport"
)

// ClientOptions maps persisted connection settings onto rc client options.
func ClientOptions(cfg config.ConnectionConfig, listeners rc.Listeners, verbose bool) rc.Options {
	return rc.Options{
		Host:                   strings.TrimSpace(cfg.Host),
		Port:                   cfg.Port,
		Password:               cfg.Password,
		Label:                  strings.TrimSpace(cfg.Label),
		Listeners:              listeners,
		PlaylistUpdateInterval: cfg.PlaylistUpdateInterval(),
		ConnectTimeout:         cfg.ConnectTimeout(),
		ReconnectWindow:        reconnectWindow(cfg),
		Verbose:                verbose,
	}
}

// reconnectWindow maps a configured zero to an immediate reconnect.
func reconnectWindow(cfg config.ConnectionConfig) time.Duration {
	if cfg.ReconnectWindowMS == 0 {
		return connection.ImmediateReconnect
	}

	return cfg.ReconnectWindow()
}

func ConnectionTarget(cfg config.ConnectionConfig) string {
	return transport.Target(strings.TrimSpace(cfg.Host), cfg.Port)
}

// TargetChanged reports whether switching from prev to next needs a redirect.
func TargetChanged(prev, next config.ConnectionConfig) bool {
	return ConnectionTarget(prev) != ConnectionTarget(next)
}

// SessionSettingsChanged reports changes that only apply to the next session.
func SessionSettingsChanged(prev, next config.ConnectionConfig) bool {
	return prev.Password != next.Password ||
		prev.PlaylistUpdateIntervalMS != next.PlaylistUpdateIntervalMS ||
		prev.ConnectTimeoutMS != next.ConnectTimeoutMS ||
		prev.ReconnectWindowMS != next.ReconnectWindowMS ||
		strings.TrimSpace(prev.Label) != strings.TrimSpace(next.Label)
}

func FormatStatus(status connectors.ConnectionStatus) string {
	target := strings.TrimSpace(status.Target)
	if target == "" {
		target = "no target"
	}
	line := fmt.Sprintf("%s %s", target, status.State)
	if status.Detail != connectors.ConnectionDetailNone {
		line += fmt.Sprintf(" (%s)", status.Detail)
	}

	return line
}

func FormatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
