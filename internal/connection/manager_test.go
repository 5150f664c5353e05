package connection

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/mocks"
	"github.com/skobkin/vlcrc/internal/transport"
)

func listenLoopback(t *testing.T) (net.Listener, string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	addr := ln.Addr().(*net.TCPAddr)

	return ln, addr.IP.String(), addr.Port
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	return port
}

func nextStatus(t *testing.T, sub bus.Subscription) connectors.ConnectionStatus {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case raw := <-sub:
			if status, ok := raw.(connectors.ConnectionStatus); ok {
				return status
			}
		case <-deadline:
			t.Fatalf("timed out waiting for connection status")
		}
	}
}

func waitForState(t *testing.T, sub bus.Subscription, state connectors.ConnectionState) connectors.ConnectionStatus {
	t.Helper()

	for {
		status := nextStatus(t, sub)
		if status.State == state {
			return status
		}
	}
}

func nextAttempt(t *testing.T, sub bus.Subscription) connectors.ConnectionAttempt {
	t.Helper()

	select {
	case raw := <-sub:
		attempt, ok := raw.(connectors.ConnectionAttempt)
		if !ok {
			t.Fatalf("unexpected payload %T", raw)
		}

		return attempt
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for connection attempt")
	}

	return connectors.ConnectionAttempt{}
}

func TestManager_SessionLifecycleAndStateOrder(t *testing.T) {
	ln, host, port := listenLoopback(t)

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		if _, err := conn.Write([]byte("hello")); err != nil {
			return
		}
		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}
		received <- line
	}()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var send SendFunc
	destroyed := make(chan struct{})
	session := mocks.NewMockSession(ctrl)
	gomock.InOrder(
		session.EXPECT().Recv([]byte("hello")).Do(func(_ []byte) {
			send([]byte("ping\n"))
		}),
		session.EXPECT().Destroy().Do(func() { close(destroyed) }),
	)

	b := bus.New(nil)
	statusSub := b.Subscribe(connectors.TopicConnStatus)
	attemptSub := b.Subscribe(connectors.TopicConnAttempt)

	m := New(nil, b, Config{
		Host:            host,
		Port:            port,
		Label:           "test",
		ReconnectWindow: time.Minute,
		SessionFactory: func(s SendFunc) Session {
			send = s

			return session
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	want := []struct {
		state  connectors.ConnectionState
		detail connectors.ConnectionDetail
	}{
		{connectors.ConnectionStateConnecting, connectors.ConnectionDetailNone},
		{connectors.ConnectionStateConnected, connectors.ConnectionDetailNone},
		{connectors.ConnectionStateDisconnected, connectors.ConnectionDetailNone},
	}
	for i, w := range want {
		got := nextStatus(t, statusSub)
		if got.State != w.state || got.Detail != w.detail {
			t.Fatalf("status %d: got %v/%v want %v/%v", i, got.State, got.Detail, w.state, w.detail)
		}
		if got.Label != "test" || got.Target != transport.Target(host, port) {
			t.Fatalf("status %d: unexpected label/target %q %q", i, got.Label, got.Target)
		}
	}

	select {
	case line := <-received:
		if line != "ping\n" {
			t.Fatalf("unexpected command on the wire %q", line)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not receive the session write")
	}

	attempt := nextAttempt(t, attemptSub)
	if !attempt.Connected || attempt.Detail != connectors.ConnectionDetailNone {
		t.Fatalf("unexpected attempt %+v", attempt)
	}

	select {
	case <-destroyed:
	case <-time.After(3 * time.Second):
		t.Fatalf("session was not destroyed")
	}
	if !m.AverageDuration().IsPresent() {
		t.Fatalf("expected an average after one attempt")
	}

	m.Close()
}

func TestManager_RefusedConnection(t *testing.T) {
	port := freePort(t)

	var factoryCalls atomic.Int32
	b := bus.New(nil)
	statusSub := b.Subscribe(connectors.TopicConnStatus)
	attemptSub := b.Subscribe(connectors.TopicConnAttempt)

	m := New(nil, b, Config{
		Host:            "127.0.0.1",
		Port:            port,
		ReconnectWindow: time.Minute,
		SessionFactory: func(SendFunc) Session {
			factoryCalls.Add(1)

			return nopSession{}
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	status := waitForState(t, statusSub, connectors.ConnectionStateDisconnected)
	if status.Detail != connectors.ConnectionDetailConnRefused {
		t.Fatalf("expected connection_refused, got %v", status.Detail)
	}
	if status.Err == "" {
		t.Fatalf("expected error text on failed status")
	}

	attempt := nextAttempt(t, attemptSub)
	if attempt.Connected || attempt.Detail != connectors.ConnectionDetailConnRefused {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
	if factoryCalls.Load() != 0 {
		t.Fatalf("session must not be created for a failed dial")
	}
	if m.Detail() != connectors.ConnectionDetailConnRefused {
		t.Fatalf("expected detail getter to match, got %v", m.Detail())
	}
}

func TestManager_ReconnectsAfterDrop(t *testing.T) {
	ln, host, port := listenLoopback(t)

	accepted := make(chan struct{}, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- struct{}{}
			_ = conn.Close()
		}
	}()

	m := New(nil, bus.New(nil), Config{Host: host, Port: port, ReconnectWindow: ImmediateReconnect})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-accepted:
		case <-time.After(3 * time.Second):
			t.Fatalf("expected connection %d", i+1)
		}
	}
}

func TestManager_DisabledHostDoesNotStart(t *testing.T) {
	for _, host := range []string{"", transport.DisabledHost} {
		m := New(nil, bus.New(nil), Config{Host: host, Port: 4212})
		m.Start(context.Background())

		m.mu.Lock()
		running := m.running
		m.mu.Unlock()
		if running {
			t.Fatalf("host %q: expected loop not to run", host)
		}
		if m.Status() != connectors.ConnectionStateDisconnected {
			t.Fatalf("host %q: expected disconnected, got %v", host, m.Status())
		}
	}
}

func TestManager_RedirectRestartsClosedManager(t *testing.T) {
	ln, host, port := listenLoopback(t)

	hold := make(chan struct{})
	defer close(hold)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-hold
		_ = conn.Close()
	}()

	b := bus.New(nil)
	statusSub := b.Subscribe(connectors.TopicConnStatus)

	m := New(nil, b, Config{Host: transport.DisabledHost, ReconnectWindow: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	m.Close()
	if !m.Closed() {
		t.Fatalf("expected manager to be closed")
	}

	m.Redirect(host, port)
	if m.Closed() {
		t.Fatalf("expected redirect to reopen the manager")
	}
	if m.Target() != transport.Target(host, port) {
		t.Fatalf("unexpected target %q", m.Target())
	}

	waitForState(t, statusSub, connectors.ConnectionStateConnected)

	m.Close()
	if m.Status() != connectors.ConnectionStateDisconnected || m.Detail() != connectors.ConnectionDetailNone {
		t.Fatalf("expected disconnected/none after close, got %v/%v", m.Status(), m.Detail())
	}
}

func TestManager_RedirectSwitchesTarget(t *testing.T) {
	lnA, hostA, portA := listenLoopback(t)
	lnB, hostB, portB := listenLoopback(t)

	go func() {
		conn, err := lnA.Accept()
		if err != nil {
			return
		}
		// Held until the manager closes it.
		_, _ = conn.Read(make([]byte, 1))
		_ = conn.Close()
	}()
	acceptedB := make(chan struct{}, 1)
	go func() {
		conn, err := lnB.Accept()
		if err != nil {
			return
		}
		acceptedB <- struct{}{}
		_, _ = conn.Read(make([]byte, 1))
		_ = conn.Close()
	}()

	b := bus.New(nil)
	statusSub := b.Subscribe(connectors.TopicConnStatus)

	m := New(nil, b, Config{Host: hostA, Port: portA, ReconnectWindow: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	waitForState(t, statusSub, connectors.ConnectionStateConnected)
	m.Redirect(hostB, portB)

	select {
	case <-acceptedB:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected redirect to connect to the new target")
	}

	status := waitForState(t, statusSub, connectors.ConnectionStateConnected)
	if status.Target != transport.Target(hostB, portB) {
		t.Fatalf("expected status for new target, got %q", status.Target)
	}
}

type recordingTransport struct {
	mu     sync.Mutex
	writes [][]byte
}

func (r *recordingTransport) Name() string { return "recording" }

func (r *recordingTransport) StatusTarget() string { return "recording" }

func (r *recordingTransport) Connect(context.Context) error { return nil }

func (r *recordingTransport) Close() error { return nil }

func (r *recordingTransport) ReadChunk(context.Context) ([]byte, error) {
	return nil, errors.New("not readable")
}

func (r *recordingTransport) Write(_ context.Context, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, payload)

	return nil
}

func (r *recordingTransport) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.writes)
}

func TestManager_StaleWriteIsSwallowed(t *testing.T) {
	m := New(nil, nil, Config{Host: "127.0.0.1"})
	stale := &recordingTransport{}
	live := &recordingTransport{}

	m.mu.Lock()
	m.current = live
	m.mu.Unlock()

	m.writerFor(stale)([]byte("status\n"))
	if stale.count() != 0 {
		t.Fatalf("expected stale write to be dropped")
	}

	m.writerFor(live)([]byte("status\n"))
	if live.count() != 1 {
		t.Fatalf("expected live write to go through, got %d", live.count())
	}
}

func TestManager_CloseDetachesCurrentConnection(t *testing.T) {
	m := New(nil, nil, Config{Host: "127.0.0.1"})
	live := &recordingTransport{}

	m.mu.Lock()
	m.current = live
	m.mu.Unlock()

	write := m.writerFor(live)
	m.Close()
	write([]byte("status\n"))

	if live.count() != 0 {
		t.Fatalf("expected write after close to be dropped, got %d writes", live.count())
	}
}

func TestManager_RedirectDetachesCurrentConnection(t *testing.T) {
	m := New(nil, nil, Config{Host: transport.DisabledHost})
	live := &recordingTransport{}

	m.mu.Lock()
	m.current = live
	m.mu.Unlock()

	write := m.writerFor(live)
	m.Redirect(transport.DisabledHost, 0)
	write([]byte("status\n"))

	if live.count() != 0 {
		t.Fatalf("expected write after redirect to be dropped, got %d writes", live.count())
	}
}

func TestNew_ReconnectWindowDefaults(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		want   time.Duration
	}{
		{name: "zero uses default", window: 0, want: DefaultReconnectWindow},
		{name: "immediate", window: ImmediateReconnect, want: 0},
		{name: "explicit", window: 2 * time.Second, want: 2 * time.Second},
	}

	for _, tc := range tests {
		m := New(nil, nil, Config{Host: transport.DisabledHost, ReconnectWindow: tc.window})
		if m.cfg.ReconnectWindow != tc.want {
			t.Fatalf("%s: got window %v want %v", tc.name, m.cfg.ReconnectWindow, tc.want)
		}
	}
}

func TestManager_ZeroConfigBacksOffAfterRefusedDial(t *testing.T) {
	port := freePort(t)

	b := bus.New(nil)
	attemptSub := b.Subscribe(connectors.TopicConnAttempt)

	m := New(nil, b, Config{Host: "127.0.0.1", Port: port})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Close()

	select {
	case raw := <-attemptSub:
		attempt, ok := raw.(connectors.ConnectionAttempt)
		if !ok || attempt.Connected {
			t.Fatalf("expected refused attempt, got %+v", raw)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for first attempt")
	}

	select {
	case raw := <-attemptSub:
		t.Fatalf("expected reconnect pause, got another attempt %+v", raw)
	case <-time.After(time.Second):
	}

	if delay := ReconnectDelay(m.cfg.ReconnectWindow, m.AverageDuration()); delay < 4*time.Second {
		t.Fatalf("expected delay close to %v, got %v", DefaultReconnectWindow, delay)
	}
}
