package connectors

import "time"

// ConnectionState describes the connection lifecycle state.
type ConnectionState int

const (
	ConnectionStateDisconnected ConnectionState = iota
	ConnectionStateConnecting
	ConnectionStateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionStateDisconnected:
		return "disconnected"
	case ConnectionStateConnecting:
		return "connecting"
	case ConnectionStateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// ConnectionDetail narrows down why the connection is in its current state.
type ConnectionDetail int

const (
	ConnectionDetailNone ConnectionDetail = iota
	ConnectionDetailUnknown
	ConnectionDetailConnReset
	ConnectionDetailConnRefused
	ConnectionDetailTimedOut
	ConnectionDetailInterrupted
)

func (d ConnectionDetail) String() string {
	switch d {
	case ConnectionDetailNone:
		return "none"
	case ConnectionDetailUnknown:
		return "unknown_error"
	case ConnectionDetailConnReset:
		return "connection_reset"
	case ConnectionDetailConnRefused:
		return "connection_refused"
	case ConnectionDetailTimedOut:
		return "timed_out"
	case ConnectionDetailInterrupted:
		return "interrupted"
	default:
		return "invalid"
	}
}

// ConnectionStatus is a bus event snapshot of the current connection status.
type ConnectionStatus struct {
	State     ConnectionState
	Detail    ConnectionDetail
	Err       string
	Label     string
	Target    string
	Timestamp time.Time
}

// ConnectionStats is published after every connection attempt.
type ConnectionStats struct {
	Label   string
	Samples []time.Duration
	Average time.Duration
}

// ConnectionAttempt describes one finished connection attempt.
type ConnectionAttempt struct {
	Label     string
	Target    string
	StartedAt time.Time
	Duration  time.Duration
	Connected bool
	Detail    ConnectionDetail
}

// AuthFailed is published when the player rejects the configured password.
type AuthFailed struct {
	SessionID string
	Target    string
	Response  string
	At        time.Time
}

// Exchange carries protocol traffic for debug views.
type Exchange struct {
	SessionID string
	Text      string
}
