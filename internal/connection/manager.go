package connection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/mo"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/logging"
	"github.com/skobkin/vlcrc/internal/transport"
)

const (
	DefaultReconnectWindow = 5 * time.Second
	// ImmediateReconnect disables the pause between attempts.
	ImmediateReconnect = time.Duration(-1)

	writeTimeout = 5 * time.Second
)

type Config struct {
	Host            string
	Port            int
	Label           string
	ConnectTimeout  time.Duration
	ReconnectWindow time.Duration
	SessionFactory  SessionFactory
	// Verbose logs every inbound and outbound payload.
	Verbose bool
}

type transportFactory func(host string, port int, timeout time.Duration) transport.Transport

// Manager owns the reconnect loop. Only one attempt runs at a time and every
// attempt gets its own socket and session.
type Manager struct {
	logger       *slog.Logger
	bus          bus.MessageBus
	cfg          Config
	stats        *Stats
	newTransport transportFactory
	wake         chan struct{}

	mu       sync.Mutex
	baseCtx  context.Context
	host     string
	port     int
	gen      uint64
	running  bool
	closed   bool
	state    connectors.ConnectionState
	detail   connectors.ConnectionDetail
	current  transport.Transport
	cancelFn context.CancelFunc
}

func New(logger *slog.Logger, b bus.MessageBus, cfg Config) *Manager {
	if logger == nil {
		logger = slog.With("component", "connection")
	}
	if cfg.Port == 0 {
		cfg.Port = transport.DefaultPort
	}
	if cfg.Label == "" {
		cfg.Label = transport.Target(cfg.Host, cfg.Port)
	}
	switch {
	case cfg.ReconnectWindow == 0:
		cfg.ReconnectWindow = DefaultReconnectWindow
	case cfg.ReconnectWindow < 0:
		cfg.ReconnectWindow = 0
	}
	if cfg.SessionFactory == nil {
		cfg.SessionFactory = func(SendFunc) Session { return nopSession{} }
	}

	return &Manager{
		logger: logger,
		bus:    b,
		cfg:    cfg,
		stats:  NewStats(),
		newTransport: func(host string, port int, timeout time.Duration) transport.Transport {
			return transport.NewTCPTransport(host, port, timeout)
		},
		wake: make(chan struct{}, 1),
		host: cfg.Host,
		port: cfg.Port,
	}
}

// Start launches the reconnect loop unless the host disables auto-connect.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.baseCtx = ctx
	if transport.IsDisabledHost(m.host) {
		m.mu.Unlock()
		m.logger.Info("auto-connect disabled", "host", m.host)

		return
	}
	launch := m.claimLoopLocked()
	m.mu.Unlock()

	if launch {
		go m.run(ctx)
	}
}

// Redirect switches to a new endpoint. The active attempt is torn down and a
// closed manager is reopened.
func (m *Manager) Redirect(host string, port int) {
	if port == 0 {
		port = transport.DefaultPort
	}

	m.mu.Lock()
	m.host, m.port = host, port
	m.gen++
	m.closed = false
	detailChanged := m.detail != connectors.ConnectionDetailNone
	m.detail = connectors.ConnectionDetailNone
	cancel := m.cancelFn
	m.current, m.cancelFn = nil, nil
	ctx := m.baseCtx
	if ctx == nil {
		ctx = context.Background()
		m.baseCtx = ctx
	}
	launch := !transport.IsDisabledHost(host) && m.claimLoopLocked()
	m.mu.Unlock()

	m.logger.Info("redirecting", "target", transport.Target(host, port))
	if cancel != nil {
		cancel()
	}
	m.poke()
	if detailChanged {
		m.publishStatus(nil)
	}

	if launch {
		go m.run(ctx)
	}
}

// Close tears down the active attempt and stops reconnecting until Redirect.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.gen++
	cancel := m.cancelFn
	m.current, m.cancelFn = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.poke()
	m.setStatus(connectors.ConnectionStateDisconnected, connectors.ConnectionDetailNone, nil)
	m.logger.Info("closed")
}

func (m *Manager) Status() connectors.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

func (m *Manager) Detail() connectors.ConnectionDetail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.detail
}

func (m *Manager) AverageDuration() mo.Option[time.Duration] {
	return m.stats.Average()
}

func (m *Manager) Samples() []time.Duration {
	return m.stats.Samples()
}

func (m *Manager) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return transport.Target(m.host, m.port)
}

func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func (m *Manager) claimLoopLocked() bool {
	if m.running {
		return false
	}
	m.running = true

	return true
}

func (m *Manager) poke() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) run(ctx context.Context) {
	for {
		host, port, gen, ok := m.nextAttempt(ctx)
		if !ok {
			return
		}

		m.attempt(ctx, host, port, gen)

		delay := ReconnectDelay(m.cfg.ReconnectWindow, m.stats.Average())
		if delay > 0 {
			m.logger.Debug("waiting before reconnect", "delay", delay)
		}
		if !m.wait(ctx, delay) {
			m.mu.Lock()
			m.running = false
			m.mu.Unlock()

			return
		}
	}
}

func (m *Manager) nextAttempt(ctx context.Context) (string, int, uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || transport.IsDisabledHost(m.host) || ctx.Err() != nil {
		m.running = false

		return "", 0, 0, false
	}

	return m.host, m.port, m.gen, true
}

func (m *Manager) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-m.wake:
		return true
	case <-timer.C:
		return true
	}
}

func (m *Manager) attempt(ctx context.Context, host string, port int, gen uint64) {
	startedAt := time.Now()
	target := transport.Target(host, port)
	logger := m.logger.With("target", target)

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	tr := m.newTransport(host, port, m.cfg.ConnectTimeout)
	stopClose := context.AfterFunc(attemptCtx, func() { _ = tr.Close() })
	defer stopClose()

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()

		return
	}
	m.current = tr
	m.cancelFn = cancel
	m.mu.Unlock()

	m.setStatus(connectors.ConnectionStateConnecting, m.Detail(), nil)

	var session Session
	connected := false
	err := tr.Connect(attemptCtx)
	if err == nil {
		connected = true
		m.setStatus(connectors.ConnectionStateConnected, connectors.ConnectionDetailNone, nil)
		session = m.cfg.SessionFactory(m.writerFor(tr))
		err = m.pump(attemptCtx, tr, session)
	}

	cancel()
	_ = tr.Close()

	m.mu.Lock()
	if m.current == tr {
		m.current = nil
		m.cancelFn = nil
	}
	superseded := m.gen != gen || m.closed
	m.mu.Unlock()

	detail := Classify(err)
	if superseded {
		detail = connectors.ConnectionDetailNone
	} else if detail == connectors.ConnectionDetailUnknown {
		logger.Error("connection failed", "error", err)
	} else {
		logger.Info("connection ended", "detail", detail.String(), "error", err)
	}
	m.setStatus(connectors.ConnectionStateDisconnected, detail, err)

	duration := time.Since(startedAt)
	avg := m.stats.Record(duration)
	m.publish(connectors.TopicConnStats, connectors.ConnectionStats{
		Label:   m.cfg.Label,
		Samples: m.stats.Samples(),
		Average: avg.OrElse(0),
	})
	m.publish(connectors.TopicConnAttempt, connectors.ConnectionAttempt{
		Label:     m.cfg.Label,
		Target:    target,
		StartedAt: startedAt,
		Duration:  duration,
		Connected: connected,
		Detail:    detail,
	})

	if session != nil {
		session.Destroy()
	}
}

func (m *Manager) pump(ctx context.Context, tr transport.Transport, session Session) error {
	for {
		chunk, err := tr.ReadChunk(ctx)
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			continue
		}
		if m.cfg.Verbose {
			m.logger.Info("recv", "len", len(chunk), "text", string(chunk))
		}
		session.Recv(chunk)
	}
}

// writerFor binds writes to tr. A session that outlives its socket must not
// write into the next one.
func (m *Manager) writerFor(tr transport.Transport) SendFunc {
	return func(data []byte) {
		m.mu.Lock()
		stale := m.current != tr
		m.mu.Unlock()

		if stale {
			m.logger.Log(context.Background(), logging.LevelFatal, "write on stale connection dropped", "len", len(data))

			return
		}
		if m.cfg.Verbose {
			m.logger.Info("send", "len", len(data), "text", string(data))
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := tr.Write(ctx, data); err != nil {
			m.logger.Warn("write failed", "detail", Classify(err).String(), "error", err)
		}
	}
}

func (m *Manager) setStatus(state connectors.ConnectionState, detail connectors.ConnectionDetail, err error) {
	m.mu.Lock()
	changed := m.state != state || m.detail != detail
	m.state = state
	m.detail = detail
	m.mu.Unlock()

	if changed {
		m.publishStatus(err)
	}
}

func (m *Manager) publishStatus(err error) {
	m.mu.Lock()
	status := connectors.ConnectionStatus{
		State:     m.state,
		Detail:    m.detail,
		Label:     m.cfg.Label,
		Target:    transport.Target(m.host, m.port),
		Timestamp: time.Now(),
	}
	m.mu.Unlock()
	if err != nil {
		status.Err = err.Error()
	}
	m.publish(connectors.TopicConnStatus, status)
}

func (m *Manager) publish(topic string, msg any) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(topic, msg)
}
