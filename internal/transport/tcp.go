package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"
)

const (
	DefaultPort           = 4212
	DefaultConnectTimeout = 6 * time.Second

	// DisabledHost turns auto-connect off, same as an empty host.
	DisabledHost = "!"

	keepAlivePeriod = 15 * time.Second
	readBufferSize  = 64 * 1024
)

var ErrNotConnected = errors.New("transport is not connected")

// IsDisabledHost reports whether host means "do not connect".
func IsDisabledHost(host string) bool {
	return host == "" || host == DisabledHost
}

// Target formats host and port as a dial address. Disabled hosts yield "".
func Target(host string, port int) string {
	if IsDisabledHost(host) {
		return ""
	}

	return net.JoinHostPort(host, strconv.Itoa(port))
}

// TCPTransport is a single RC socket. It is not reused across connection attempts.
type TCPTransport struct {
	host    string
	port    int
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	conn    net.Conn
	writeMu sync.Mutex
	buf     []byte
}

func NewTCPTransport(host string, port int, timeout time.Duration) *TCPTransport {
	if port == 0 {
		port = DefaultPort
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	return &TCPTransport{
		host:    host,
		port:    port,
		timeout: timeout,
		logger:  slog.With("component", "transport.tcp", "target", Target(host, port)),
	}
}

func (t *TCPTransport) Name() string {
	return "tcp"
}

func (t *TCPTransport) StatusTarget() string {
	return Target(t.host, t.port)
}

func (t *TCPTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn != nil
}

func (t *TCPTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	target := t.StatusTarget()

	if t.conn != nil {
		t.logger.Debug("connect skipped: already connected")

		return nil
	}

	if target == "" {
		t.logger.Warn("connect failed: host is disabled")

		return errors.New("tcp host is disabled")
	}

	dialer := net.Dialer{Timeout: t.timeout, KeepAlive: keepAlivePeriod}
	t.logger.Debug("connecting")
	conn, err := dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		t.logger.Debug("connect failed", "error", err)

		return fmt.Errorf("dial tcp: %w", err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			t.logger.Warn("set no delay failed", "error", err)
		}
		if err := tcp.SetKeepAlive(true); err != nil {
			t.logger.Warn("set keep-alive failed", "error", err)
		}
	}
	t.conn = conn
	t.buf = make([]byte, readBufferSize)
	t.logger.Info("connected", "remote", conn.RemoteAddr().String())

	return nil
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		t.logger.Debug("close skipped: not connected")

		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		t.logger.Warn("close failed", "error", err)

		return err
	}
	t.logger.Debug("closed")

	return nil
}

// ReadChunk blocks for the next delivery from the socket and returns a copy of it.
// Only one goroutine may read at a time.
func (t *TCPTransport) ReadChunk(ctx context.Context) ([]byte, error) {
	conn, buf, err := t.current()
	if err != nil {
		t.logger.Debug("read failed: not connected", "error", err)

		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	} else {
		_ = conn.SetReadDeadline(time.Time{})
	}

	n, err := conn.Read(buf)
	if n > 0 {
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		t.logger.Debug("read chunk", "len", n)

		return chunk, nil
	}
	if err != nil {
		t.logger.Debug("read failed", "error", err)

		return nil, err
	}

	return []byte{}, nil
}

func (t *TCPTransport) Write(ctx context.Context, payload []byte) error {
	conn, _, err := t.current()
	if err != nil {
		t.logger.Debug("write failed: not connected", "error", err)

		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Time{})
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := conn.Write(payload); err != nil {
		t.logger.Debug("write failed", "len", len(payload), "error", err)

		return fmt.Errorf("write: %w", err)
	}
	t.logger.Debug("write", "len", len(payload))

	return nil
}

func (t *TCPTransport) current() (net.Conn, []byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn == nil {
		return nil, nil, ErrNotConnected
	}

	return t.conn, t.buf, nil
}
