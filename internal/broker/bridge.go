package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/config"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/domain"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250
)

var ErrConnectTimeout = errors.New("mqtt connect timed out")

var newMQTTClient = mqtt.NewClient

// Publisher delivers one payload to the broker.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// Bridge mirrors connection status, stats and playlist events to MQTT.
type Bridge struct {
	logger    *slog.Logger
	publisher Publisher
	topics    Topics
	qos       byte
	retain    bool
}

func NewBridge(logger *slog.Logger, publisher Publisher, cfg config.MQTTConfig, label string) *Bridge {
	if logger == nil {
		logger = slog.Default().With("component", "broker")
	}

	return &Bridge{
		logger:    logger,
		publisher: publisher,
		topics:    NewTopics(cfg.TopicPrefix, label),
		qos:       cfg.QoS,
		retain:    cfg.Retain,
	}
}

func (b *Bridge) Topics() Topics {
	return b.topics
}

// Start forwards bus events until ctx is done.
func (b *Bridge) Start(ctx context.Context, messageBus bus.MessageBus) {
	topics := []string{connectors.TopicConnStatus, connectors.TopicConnStats, connectors.TopicPlaylist}
	sub := messageBus.Subscribe(topics...)

	go func() {
		defer messageBus.Unsubscribe(sub, topics...)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				b.Handle(raw)
			}
		}
	}()
}

// Handle publishes a single bus event. Unknown events are ignored.
func (b *Bridge) Handle(event any) {
	switch e := event.(type) {
	case connectors.ConnectionStatus:
		b.publishJSON(b.topics.Status(), true, newStatusPayload(e))
	case connectors.ConnectionStats:
		b.publishJSON(b.topics.Stats(), b.retain, newStatsPayload(e))
	case domain.PlaylistUpdate:
		b.publishJSON(b.topics.Playlist(), b.retain, newPlaylistPayload(e))
	}
}

func (b *Bridge) publishJSON(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("encode mqtt payload", "topic", topic, "error", err)

		return
	}
	if err := b.publisher.Publish(topic, b.qos, retained, payload); err != nil {
		b.logger.Warn("mqtt publish failed", "topic", topic, "error", err)
	}
}

// Client is a paho backed Publisher.
type Client struct {
	logger *slog.Logger
	client mqtt.Client
}

// Connect dials the broker. The online topic is set to "true" on every
// (re)connect and to "false" through the last will.
func Connect(ctx context.Context, logger *slog.Logger, cfg config.MQTTConfig, topics Topics) (*Client, error) {
	if logger == nil {
		logger = slog.Default().With("component", "broker.mqtt")
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		clientID = DefaultClientID()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetWill(topics.Online(), offlinePayload, cfg.QoS, true).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Info("mqtt connected", "broker", cfg.Broker, "client_id", clientID)
			c.Publish(topics.Online(), cfg.QoS, true, onlinePayload)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		})

	client := newMQTTClient(opts)
	token := client.Connect()
	var err error
	select {
	case <-token.Done():
		err = token.Error()
		if err != nil {
			err = fmt.Errorf("connect mqtt broker %s: %w", cfg.Broker, err)
		}
	case <-ctx.Done():
		err = ctx.Err()
	case <-time.After(connectTimeout):
		err = ErrConnectTimeout
	}
	if err != nil {
		// Stops the background reconnect loop.
		client.Disconnect(0)

		return nil, err
	}

	return &Client{logger: logger, client: client}, nil
}

func DefaultClientID() string {
	return "vlcrc-" + uuid.NewString()
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	return nil
}

// Close marks the player offline and disconnects.
func (c *Client) Close(topics Topics, qos byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.Publish(topics.Online(), qos, true, []byte(offlinePayload)); err != nil {
		c.logger.Debug("mqtt offline publish failed", "error", err)
	}
	c.client.Disconnect(disconnectQuiesce)
}
