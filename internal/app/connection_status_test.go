package app

import (
	"testing"
	"time"

	"github.com/skobkin/vlcrc/internal/config"
	"github.com/skobkin/vlcrc/internal/connection"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/rc"
)

func TestClientOptions(t *testing.T) {
	cfg := config.Default().Connection
	cfg.Host = " 10.0.0.5 "
	cfg.Password = "secret"
	cfg.PlaylistUpdateIntervalMS = 500

	opts := ClientOptions(cfg, rc.Listeners{OnConnect: func(*rc.Handle) {}}, true)
	if opts.Host != "10.0.0.5" || opts.Port != config.DefaultPort || opts.Password != "secret" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.PlaylistUpdateInterval != 500*time.Millisecond {
		t.Fatalf("unexpected playlist interval %v", opts.PlaylistUpdateInterval)
	}
	if opts.ReconnectWindow != 5*time.Second || opts.ConnectTimeout != 6*time.Second {
		t.Fatalf("unexpected timings: %+v", opts)
	}
	if !opts.Verbose || opts.Listeners.OnConnect == nil {
		t.Fatalf("expected verbose with listeners: %+v", opts)
	}
}

func TestClientOptions_ZeroReconnectWindowIsImmediate(t *testing.T) {
	cfg := config.Default().Connection
	cfg.ReconnectWindowMS = 0

	opts := ClientOptions(cfg, rc.Listeners{}, false)
	if opts.ReconnectWindow != connection.ImmediateReconnect {
		t.Fatalf("expected immediate reconnect, got %v", opts.ReconnectWindow)
	}
}

func TestConnectionTarget(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
		want string
	}{
		{name: "host and port", host: "localhost", port: 4212, want: "localhost:4212"},
		{name: "ipv6", host: "::1", port: 4212, want: "[::1]:4212"},
		{name: "disabled", host: "!", port: 4212, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConnectionTarget(config.ConnectionConfig{Host: tt.host, Port: tt.port})
			if got != tt.want {
				t.Fatalf("ConnectionTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTargetAndSessionChanges(t *testing.T) {
	base := config.Default().Connection

	moved := base
	moved.Port = 4213
	if !TargetChanged(base, moved) {
		t.Fatalf("expected port change to be a target change")
	}
	if SessionSettingsChanged(base, moved) {
		t.Fatalf("port change is not a session setting change")
	}

	repass := base
	repass.Password = "new"
	if TargetChanged(base, repass) {
		t.Fatalf("password change is not a target change")
	}
	if !SessionSettingsChanged(base, repass) {
		t.Fatalf("expected password change to be detected")
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name   string
		status connectors.ConnectionStatus
		want   string
	}{
		{
			name:   "connected",
			status: connectors.ConnectionStatus{State: connectors.ConnectionStateConnected, Target: "vlc:4212"},
			want:   "vlc:4212 connected",
		},
		{
			name: "refused",
			status: connectors.ConnectionStatus{
				State:  connectors.ConnectionStateConnecting,
				Detail: connectors.ConnectionDetailConnRefused,
				Target: "vlc:4212",
			},
			want: "vlc:4212 connecting (connection_refused)",
		},
		{
			name:   "no target",
			status: connectors.ConnectionStatus{State: connectors.ConnectionStateDisconnected},
			want:   "no target disconnected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatStatus(tt.status); got != tt.want {
				t.Fatalf("FormatStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
