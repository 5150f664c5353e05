// Package rc speaks the VLC remote-control protocol on top of a connection
// managed by the connection package.
package rc

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/catalog"
	"github.com/skobkin/vlcrc/internal/connection"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/domain"
	"github.com/skobkin/vlcrc/internal/playlist"
)

const (
	DefaultPlaylistUpdateInterval = 200 * time.Millisecond

	wrongPasswordMarker = "Wrong password"
)

var (
	ErrSessionClosed  = errors.New("rc session closed")
	ErrNotConnected   = errors.New("rc client is not connected")
	ErrInvalidCommand = errors.New("rc command must be a single line")
)

// Listeners are invoked from session goroutines and must not block for long.
type Listeners struct {
	// OnConnect fires once per connection after the password is accepted.
	OnConnect func(h *Handle)
	// OnDisconnect fires once per session teardown.
	OnDisconnect func()
	// OnAuthFailed receives the player's reply to a rejected password.
	OnAuthFailed func(response string)
}

type SessionConfig struct {
	Password               string
	PlaylistUpdateInterval time.Duration
	Listeners              Listeners
	// Target is only used for events and logs.
	Target string
}

type result struct {
	text string
	err  error
}

type request struct {
	command string
	secret  bool
	result  chan result
}

// Session is the protocol state of one connection: a FIFO of requests with at
// most one of them on the wire, the password handshake and the playlist poll.
type Session struct {
	id     string
	logger *slog.Logger
	bus    bus.MessageBus
	cfg    SessionConfig
	handle *Handle

	mu            sync.Mutex
	send          connection.SendFunc
	inFlight      *request
	queue         []*request
	playlist      []domain.PlaylistEntry
	authenticated bool
	destroyed     bool

	stopPoll    chan struct{}
	pollWG      sync.WaitGroup
	connectWG   sync.WaitGroup
	destroyOnce sync.Once
}

var _ connection.Session = (*Session)(nil)

// NewSession writes the password right away, so it is the first request on the
// wire, and waits for the reply in the background.
func NewSession(logger *slog.Logger, b bus.MessageBus, send connection.SendFunc, cfg SessionConfig) *Session {
	if cfg.PlaylistUpdateInterval <= 0 {
		cfg.PlaylistUpdateInterval = DefaultPlaylistUpdateInterval
	}
	id := uuid.NewString()
	if logger == nil {
		logger = slog.With("component", "rc.session")
	}

	s := &Session{
		id:       id,
		logger:   logger.With("session_id", id),
		bus:      b,
		cfg:      cfg,
		send:     send,
		playlist: []domain.PlaylistEntry{},
		stopPoll: make(chan struct{}),
	}
	s.handle = &Handle{sender: s}

	auth := s.submit(cfg.Password, true)
	go s.authenticate(auth)

	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Handle() *Handle {
	return s.handle
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.authenticated
}

// Playlist returns the most recently polled playlist.
func (s *Session) Playlist() []domain.PlaylistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.playlist)
}

// Send queues command and waits for its response. Giving up through ctx does
// not remove the request from the pipeline.
func (s *Session) Send(ctx context.Context, command string) (string, error) {
	req := s.submit(command, false)

	return s.await(ctx, req)
}

func (s *Session) await(ctx context.Context, req *request) (string, error) {
	select {
	case res := <-req.result:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) submit(command string, secret bool) *request {
	req := &request{command: command, secret: secret, result: make(chan result, 1)}
	if strings.ContainsAny(command, "\r\n") {
		req.result <- result{err: ErrInvalidCommand}

		return req
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		req.result <- result{err: ErrSessionClosed}

		return req
	}
	if s.inFlight != nil {
		s.queue = append(s.queue, req)
		s.mu.Unlock()

		return req
	}
	s.inFlight = req
	send := s.send
	s.mu.Unlock()

	s.transmit(send, req)

	return req
}

func (s *Session) transmit(send connection.SendFunc, req *request) {
	if send == nil {
		return
	}
	send([]byte(req.command + "\n"))

	text := req.command
	if req.secret {
		text = "********"
	}
	s.publish(connectors.TopicCommandOut, connectors.Exchange{SessionID: s.id, Text: text})
}

// Recv resolves the request on the wire with data and puts the next queued
// request on the wire.
func (s *Session) Recv(data []byte) {
	text := strings.TrimSpace(string(data))

	s.mu.Lock()
	req := s.inFlight
	if req == nil {
		s.mu.Unlock()
		s.logger.Debug("unsolicited data dropped", "len", len(data))

		return
	}
	var next *request
	if len(s.queue) > 0 {
		next = s.queue[0]
		s.queue = slices.Delete(s.queue, 0, 1)
	}
	s.inFlight = next
	send := s.send
	s.mu.Unlock()

	req.result <- result{text: text}
	s.publish(connectors.TopicResponseIn, connectors.Exchange{SessionID: s.id, Text: text})

	if next != nil {
		s.transmit(send, next)
	}
}

// Destroy stops the poll, fails every outstanding request with
// ErrSessionClosed and fires OnDisconnect. Only the first call has effect.
func (s *Session) Destroy() {
	s.destroyOnce.Do(func() {
		s.mu.Lock()
		s.destroyed = true
		s.send = nil
		pending := make([]*request, 0, len(s.queue)+1)
		if s.inFlight != nil {
			pending = append(pending, s.inFlight)
		}
		pending = append(pending, s.queue...)
		s.inFlight = nil
		s.queue = nil
		s.mu.Unlock()

		for _, req := range pending {
			req.result <- result{err: ErrSessionClosed}
		}

		close(s.stopPoll)
		s.pollWG.Wait()
		s.connectWG.Wait()

		if len(pending) > 0 {
			s.logger.Debug("pending requests cancelled", "count", len(pending))
		}
		if s.cfg.Listeners.OnDisconnect != nil {
			s.cfg.Listeners.OnDisconnect()
		}
	})
}

func (s *Session) authenticate(auth *request) {
	response, err := s.await(context.Background(), auth)
	if errors.Is(err, ErrInvalidCommand) {
		s.logger.Warn("password must not contain line breaks", "target", s.cfg.Target)

		return
	}
	if err != nil {
		s.logger.Debug("handshake aborted", "error", err)

		return
	}

	if strings.Contains(response, wrongPasswordMarker) {
		s.logger.Warn("password rejected", "target", s.cfg.Target)
		s.publish(connectors.TopicAuthFailed, connectors.AuthFailed{
			SessionID: s.id,
			Target:    s.cfg.Target,
			Response:  response,
			At:        time.Now(),
		})
		if s.cfg.Listeners.OnAuthFailed != nil {
			s.cfg.Listeners.OnAuthFailed(response)
		}

		return
	}

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()

		return
	}
	s.authenticated = true
	s.pollWG.Add(1)
	// Destroy waits for OnConnect so OnDisconnect always comes second.
	s.connectWG.Add(1)
	s.mu.Unlock()
	defer s.connectWG.Done()

	s.logger.Info("authenticated", "target", s.cfg.Target)
	go s.poll()

	if s.cfg.Listeners.OnConnect != nil {
		s.cfg.Listeners.OnConnect(s.handle)
	}
}

func (s *Session) poll() {
	defer s.pollWG.Done()

	ticker := time.NewTicker(s.cfg.PlaylistUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopPoll:
			return
		case <-ticker.C:
			s.refreshPlaylist()
		}
	}
}

func (s *Session) refreshPlaylist() {
	response, err := s.Send(context.Background(), catalog.Playlist())
	if err != nil {
		s.logger.Debug("playlist poll failed", "error", err)

		return
	}

	entries := playlist.Parse(response)
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()

		return
	}
	s.playlist = entries
	s.mu.Unlock()

	s.publish(connectors.TopicPlaylist, domain.PlaylistUpdate{
		SessionID: s.id,
		Entries:   slices.Clone(entries),
		At:        time.Now(),
	})
}

func (s *Session) publish(topic string, msg any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, msg)
}
