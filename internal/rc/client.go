package rc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/mo"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connection"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/domain"
)

type Options struct {
	Host                   string
	Port                   int
	Password               string
	Label                  string
	Listeners              Listeners
	PlaylistUpdateInterval time.Duration
	ConnectTimeout         time.Duration
	// ReconnectWindow defaults to connection.DefaultReconnectWindow when zero.
	// connection.ImmediateReconnect disables the pause.
	ReconnectWindow time.Duration
	Verbose         bool
}

// Client binds a connection manager to a fresh Session per connection.
type Client struct {
	logger  *slog.Logger
	bus     bus.MessageBus
	opts    Options
	manager *connection.Manager

	mu      sync.Mutex
	session *Session
}

func NewClient(logger *slog.Logger, b bus.MessageBus, opts Options) *Client {
	if logger == nil {
		logger = slog.With("component", "rc")
	}
	if opts.PlaylistUpdateInterval <= 0 {
		opts.PlaylistUpdateInterval = DefaultPlaylistUpdateInterval
	}

	c := &Client{
		logger: logger,
		bus:    b,
		opts:   opts,
	}
	c.manager = connection.New(logger, b, connection.Config{
		Host:            opts.Host,
		Port:            opts.Port,
		Label:           opts.Label,
		ConnectTimeout:  opts.ConnectTimeout,
		ReconnectWindow: opts.ReconnectWindow,
		SessionFactory:  c.newSession,
		Verbose:         opts.Verbose,
	})

	return c
}

func (c *Client) newSession(send connection.SendFunc) connection.Session {
	var s *Session
	user := c.opts.Listeners
	listeners := Listeners{
		OnConnect:    user.OnConnect,
		OnAuthFailed: user.OnAuthFailed,
		OnDisconnect: func() {
			c.mu.Lock()
			if c.session == s {
				c.session = nil
			}
			c.mu.Unlock()
			if user.OnDisconnect != nil {
				user.OnDisconnect()
			}
		},
	}

	s = NewSession(c.logger, c.bus, send, SessionConfig{
		Password:               c.opts.Password,
		PlaylistUpdateInterval: c.opts.PlaylistUpdateInterval,
		Listeners:              listeners,
		Target:                 c.manager.Target(),
	})

	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	return s
}

func (c *Client) Start(ctx context.Context) {
	c.manager.Start(ctx)
}

func (c *Client) Redirect(host string, port int) {
	c.manager.Redirect(host, port)
}

func (c *Client) Close() {
	c.manager.Close()
}

func (c *Client) Status() connectors.ConnectionState {
	return c.manager.Status()
}

func (c *Client) Detail() connectors.ConnectionDetail {
	return c.manager.Detail()
}

func (c *Client) AverageDuration() mo.Option[time.Duration] {
	return c.manager.AverageDuration()
}

func (c *Client) Target() string {
	return c.manager.Target()
}

// Playlist returns the cached playlist of the live session, empty when there is none.
func (c *Client) Playlist() []domain.PlaylistEntry {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil {
		return []domain.PlaylistEntry{}
	}

	return s.Playlist()
}

// Handle returns the command handle of the live session once it has authenticated.
func (c *Client) Handle() mo.Option[*Handle] {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s == nil || !s.Authenticated() {
		return mo.None[*Handle]()
	}

	return mo.Some(s.Handle())
}

// Send issues command on the live session.
func (c *Client) Send(ctx context.Context, command string) (string, error) {
	h, ok := c.Handle().Get()
	if !ok {
		return "", ErrNotConnected
	}

	return h.Send(ctx, command)
}
