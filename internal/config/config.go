package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultPort                     = 4212
	DefaultConnectTimeoutMS         = 6000
	DefaultReconnectWindowMS        = 5000
	DefaultPlaylistUpdateIntervalMS = 200
	DefaultMQTTTopicPrefix          = "vlcrc"
	DefaultHistoryRetainAttempts    = 1000
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	ErrInvalidPort     = errors.New("port must be between 1 and 65535")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrInvalidLogLevel = errors.New("unsupported log level")
	ErrInvalidLogFmt   = errors.New("unsupported log format")
	ErrMQTTBroker      = errors.New("mqtt broker is required when mqtt is enabled")
	ErrMQTTQoS         = errors.New("mqtt qos must be 0, 1 or 2")
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	Format    string `json:"format"`
	LogToFile bool   `json:"log_to_file"`
}

// ConnectionConfig describes the RC endpoint and connection timings.
// An empty host or "!" disables auto-connect.
type ConnectionConfig struct {
	Label                    string `json:"label"`
	Host                     string `json:"host"`
	Port                     int    `json:"port"`
	Password                 string `json:"password"`
	ConnectTimeoutMS         int    `json:"connect_timeout_ms"`
	ReconnectWindowMS        int    `json:"reconnect_window_ms"`
	PlaylistUpdateIntervalMS int    `json:"playlist_update_interval_ms"`
}

func (c ConnectionConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

func (c ConnectionConfig) ReconnectWindow() time.Duration {
	return time.Duration(c.ReconnectWindowMS) * time.Millisecond
}

func (c ConnectionConfig) PlaylistUpdateInterval() time.Duration {
	return time.Duration(c.PlaylistUpdateIntervalMS) * time.Millisecond
}

// NotificationConfig stores desktop notification preferences.
type NotificationConfig struct {
	Enabled bool                     `json:"enabled"`
	Events  NotificationEventsConfig `json:"events"`
}

// NotificationEventsConfig stores per-event notification toggles.
type NotificationEventsConfig struct {
	ConnectionLost     bool `json:"connection_lost"`
	ConnectionRestored bool `json:"connection_restored"`
	AuthFailed         bool `json:"auth_failed"`
}

// MQTTConfig controls the status/playlist bridge to an MQTT broker.
type MQTTConfig struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	Retain      bool   `json:"retain"`
}

// HistoryConfig controls persisted connection attempt history.
type HistoryConfig struct {
	Enabled        bool `json:"enabled"`
	RetainAttempts int  `json:"retain_attempts"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Connection    ConnectionConfig   `json:"connection"`
	Logging       LoggingConfig      `json:"logging"`
	Notifications NotificationConfig `json:"notifications"`
	MQTT          MQTTConfig         `json:"mqtt"`
	History       HistoryConfig      `json:"history"`
}

func Default() AppConfig {
	return AppConfig{
		Connection: ConnectionConfig{
			Label:                    "",
			Host:                     "localhost",
			Port:                     DefaultPort,
			Password:                 "",
			ConnectTimeoutMS:         DefaultConnectTimeoutMS,
			ReconnectWindowMS:        DefaultReconnectWindowMS,
			PlaylistUpdateIntervalMS: DefaultPlaylistUpdateIntervalMS,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    LogFormatText,
			LogToFile: false,
		},
		Notifications: NotificationConfig{
			Enabled: false,
			Events: NotificationEventsConfig{
				ConnectionLost:     true,
				ConnectionRestored: true,
				AuthFailed:         true,
			},
		},
		MQTT: MQTTConfig{
			Enabled:     false,
			TopicPrefix: DefaultMQTTTopicPrefix,
		},
		History: HistoryConfig{
			Enabled:        true,
			RetainAttempts: DefaultHistoryRetainAttempts,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	c.Connection.Host = strings.TrimSpace(c.Connection.Host)
	if c.Connection.Port == 0 {
		c.Connection.Port = DefaultPort
	}
	if c.Connection.ConnectTimeoutMS <= 0 {
		c.Connection.ConnectTimeoutMS = DefaultConnectTimeoutMS
	}
	if c.Connection.ReconnectWindowMS < 0 {
		c.Connection.ReconnectWindowMS = DefaultReconnectWindowMS
	}
	if c.Connection.PlaylistUpdateIntervalMS <= 0 {
		c.Connection.PlaylistUpdateIntervalMS = DefaultPlaylistUpdateIntervalMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.MQTT.TopicPrefix) == "" {
		c.MQTT.TopicPrefix = DefaultMQTTTopicPrefix
	}
	c.MQTT.TopicPrefix = strings.Trim(c.MQTT.TopicPrefix, "/ ")
	if c.History.RetainAttempts < 0 {
		c.History.RetainAttempts = DefaultHistoryRetainAttempts
	}
}

func (c AppConfig) Validate() error {
	if c.Connection.Port < 1 || c.Connection.Port > 65535 {
		return fmt.Errorf("connection port %d: %w", c.Connection.Port, ErrInvalidPort)
	}
	if c.Connection.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("connect timeout: %w", ErrInvalidInterval)
	}
	if c.Connection.PlaylistUpdateIntervalMS <= 0 {
		return fmt.Errorf("playlist update interval: %w", ErrInvalidInterval)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFmt, c.Logging.Format)
	}
	if c.MQTT.Enabled {
		if strings.TrimSpace(c.MQTT.Broker) == "" {
			return ErrMQTTBroker
		}
		if c.MQTT.QoS > 2 {
			return ErrMQTTQoS
		}
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
