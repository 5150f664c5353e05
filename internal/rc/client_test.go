package rc

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connectors"
)

// fakePlayer answers one response per command line, like the RC interface.
func fakePlayer(t *testing.T, password string) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go servePlayer(conn, password)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)

	return addr.IP.String(), addr.Port
}

func servePlayer(conn net.Conn, password string) {
	defer func() { _ = conn.Close() }()

	reader := bufio.NewReader(conn)
	authed := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)

		var reply string
		switch {
		case !authed && line == password:
			authed = true
			reply = "Welcome, Master\r\n> "
		case !authed:
			reply = "Wrong password\r\nPassword: "
		case line == "playlist":
			reply = testDump + "> "
		case line == "is_playing":
			reply = "1\r\n> "
		default:
			reply = "Unknown command `" + line + "'. Type `help' for help.\r\n> "
		}
		if _, err := conn.Write([]byte(reply)); err != nil {
			return
		}
	}
}

func TestClient_ConnectsAndPolls(t *testing.T) {
	host, port := fakePlayer(t, "secret")

	connected := make(chan *Handle, 1)
	disconnected := make(chan struct{}, 1)
	client := NewClient(nil, bus.New(nil), Options{
		Host:                   host,
		Port:                   port,
		Password:               "secret",
		PlaylistUpdateInterval: 10 * time.Millisecond,
		ReconnectWindow:        time.Minute,
		Listeners: Listeners{
			OnConnect:    func(h *Handle) { connected <- h },
			OnDisconnect: func() { disconnected <- struct{}{} },
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	var h *Handle
	select {
	case h = <-connected:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected OnConnect")
	}

	reqCtx, reqCancel := context.WithTimeout(ctx, 2*time.Second)
	defer reqCancel()
	resp, err := h.IsPlaying(reqCtx)
	if err != nil || resp != "1\r\n>" {
		t.Fatalf("unexpected is_playing reply %q %v", resp, err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for len(client.Playlist()) != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected polled playlist, got %+v", client.Playlist())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if live, ok := client.Handle().Get(); !ok || live != h {
		t.Fatalf("expected live handle to match the connected one")
	}

	client.Close()
	select {
	case <-disconnected:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected OnDisconnect after close")
	}
	if client.Handle().IsPresent() {
		t.Fatalf("expected no live handle after close")
	}
	if _, err := client.Send(ctx, "status"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if len(client.Playlist()) != 0 {
		t.Fatalf("expected empty playlist without a session")
	}
}

func TestClient_WrongPasswordNeverConnects(t *testing.T) {
	host, port := fakePlayer(t, "secret")

	rejected := make(chan string, 1)
	connected := make(chan struct{}, 1)
	client := NewClient(nil, bus.New(nil), Options{
		Host:            host,
		Port:            port,
		Password:        "guess",
		ReconnectWindow: time.Minute,
		Listeners: Listeners{
			OnConnect:    func(*Handle) { connected <- struct{}{} },
			OnAuthFailed: func(response string) { rejected <- response },
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	defer client.Close()

	select {
	case <-rejected:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected OnAuthFailed")
	}
	select {
	case <-connected:
		t.Fatalf("OnConnect must not fire")
	case <-time.After(50 * time.Millisecond):
	}
	if client.Handle().IsPresent() {
		t.Fatalf("expected no handle for an unauthenticated session")
	}
}

func TestClient_DefaultOptionsPauseBetweenAttempts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	_ = ln.Close()

	b := bus.New(nil)
	attemptSub := b.Subscribe(connectors.TopicConnAttempt)
	client := NewClient(nil, b, Options{Host: "127.0.0.1", Port: addr.Port, Password: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	defer client.Close()

	attempts := 0
	deadline := time.After(time.Second)
	for done := false; !done; {
		select {
		case <-attemptSub:
			attempts++
		case <-deadline:
			done = true
		}
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt within the reconnect window, got %d", attempts)
	}
}
