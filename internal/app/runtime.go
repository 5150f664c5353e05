package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/skobkin/vlcrc/internal/broker"
	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/config"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/domain"
	"github.com/skobkin/vlcrc/internal/logging"
	"github.com/skobkin/vlcrc/internal/notifications"
	"github.com/skobkin/vlcrc/internal/persistence"
	"github.com/skobkin/vlcrc/internal/rc"
)

const shutdownDrainTimeout = 3 * time.Second

var ErrHistoryDisabled = errors.New("connection history is disabled")

// Options tune runtime initialization from the command line.
type Options struct {
	ConfigPath string
	// LogLevel overrides the configured level when set.
	LogLevel  string
	Verbose   bool
	Listeners rc.Listeners
}

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths   Paths
	Config  config.AppConfig
	verbose bool

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	DB         *sql.DB

	AttemptRepo *persistence.AttemptRepo
	WriterQueue *persistence.WriterQueue

	PlaylistStore *domain.PlaylistStore
	Client        *rc.Client

	mqtt       *broker.Client
	mqttTopics broker.Topics
	mqttQoS    byte

	connStatusMu    sync.RWMutex
	connStatus      connectors.ConnectionStatus
	connStatusKnown bool
}

func Initialize(parent context.Context, opts Options) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}
	paths = paths.WithConfigFile(opts.ConfigPath)

	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", paths.ConfigFile, err)
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:     ctx,
		cancel:  cancel,
		Paths:   paths,
		Config:  cfg,
		verbose: opts.Verbose,
	}

	logMgr := logging.NewManager(nil)
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()

		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting vlcrc runtime", "version", BuildVersion(), "build_date", BuildDateYMD(), "config", paths.ConfigFile)

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b
	connSub := b.Subscribe(connectors.TopicConnStatus)
	go rt.captureConnStatus(ctx, connSub)

	rt.PlaylistStore = domain.NewPlaylistStore()
	rt.PlaylistStore.Start(ctx, b)

	if cfg.History.Enabled {
		db, err := persistence.Open(ctx, paths.DBFile)
		if err != nil {
			_ = rt.Close()

			return nil, err
		}
		rt.DB = db
		rt.AttemptRepo = persistence.NewAttemptRepo(db)

		writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), WriterQueueCapacity)
		writerQueue.Start(ctx)
		rt.WriterQueue = writerQueue
		domain.StartPersistenceProjection(ctx, b, writerQueue, rt.AttemptRepo, cfg.History.RetainAttempts)
	}

	rt.Client = rc.NewClient(logMgr.Logger("rc"), b, ClientOptions(cfg.Connection, opts.Listeners, opts.Verbose))

	return rt, nil
}

// Start begins connecting to the configured player.
func (r *Runtime) Start() {
	r.Client.Start(r.Ctx)
}

func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

// ApplyConfig switches to cfg without saving it. Target changes redirect the
// running client; session settings are picked up on restart.
func (r *Runtime) ApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	prev := r.Config
	r.Config = cfg
	r.mu.Unlock()

	if err := r.LogManager.Configure(cfg.Logging, r.Paths.LogFile); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	if TargetChanged(prev.Connection, cfg.Connection) {
		slog.Info("redirecting client", "from", ConnectionTarget(prev.Connection), "to", ConnectionTarget(cfg.Connection))
		r.Client.Redirect(strings.TrimSpace(cfg.Connection.Host), cfg.Connection.Port)
	}
	if SessionSettingsChanged(prev.Connection, cfg.Connection) {
		slog.Warn("connection settings changed; restart to apply them")
	}

	return nil
}

// WatchConfig applies config file edits until the runtime is closed.
func (r *Runtime) WatchConfig() error {
	watcher, err := config.NewWatcher(r.Paths.ConfigFile, func(cfg config.AppConfig) {
		if err := r.ApplyConfig(cfg); err != nil {
			slog.Warn("apply reloaded config", "error", err)
		}
	})
	if err != nil {
		return err
	}
	go watcher.Run(r.Ctx)

	return nil
}

// EnableNotifications routes connection events to sender.
func (r *Runtime) EnableNotifications(sender notifications.Sender) {
	service := NewNotificationService(r.Bus, r.CurrentConfig, sender, r.LogManager.Logger("app.notifications"))
	service.Start(r.Ctx)
}

// StartMQTT connects the broker bridge when it is enabled in config.
func (r *Runtime) StartMQTT() error {
	cfg := r.CurrentConfig()
	if !cfg.MQTT.Enabled {
		return nil
	}

	label := strings.TrimSpace(cfg.Connection.Label)
	if label == "" {
		label = ConnectionTarget(cfg.Connection)
	}
	topics := broker.NewTopics(cfg.MQTT.TopicPrefix, label)

	client, err := broker.Connect(r.Ctx, r.LogManager.Logger("broker.mqtt"), cfg.MQTT, topics)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.mqtt = client
	r.mqttTopics = topics
	r.mqttQoS = cfg.MQTT.QoS
	r.mu.Unlock()

	bridge := broker.NewBridge(r.LogManager.Logger("broker"), client, cfg.MQTT, label)
	bridge.Start(r.Ctx, r.Bus)

	return nil
}

func (r *Runtime) History(ctx context.Context, limit int) ([]domain.AttemptRecord, error) {
	if r.AttemptRepo == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return r.AttemptRepo.ListRecent(ctx, limit)
}

// ClearHistory deletes all recorded attempts and returns how many were removed.
func (r *Runtime) ClearHistory(ctx context.Context) (int64, error) {
	if r.AttemptRepo == nil {
		return 0, ErrHistoryDisabled
	}
	removed, err := r.AttemptRepo.Clear(ctx)
	if err != nil {
		return 0, err
	}
	slog.Info("connection history cleared", "removed", removed)

	return removed, nil
}

func (r *Runtime) captureConnStatus(ctx context.Context, sub bus.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-sub:
			if !ok {
				return
			}
			status, ok := raw.(connectors.ConnectionStatus)
			if !ok {
				continue
			}
			r.setConnStatus(status)
		}
	}
}

func (r *Runtime) setConnStatus(status connectors.ConnectionStatus) {
	r.connStatusMu.Lock()
	r.connStatus = status
	r.connStatusKnown = true
	r.connStatusMu.Unlock()
}

func (r *Runtime) CurrentConnStatus() (connectors.ConnectionStatus, bool) {
	r.connStatusMu.RLock()
	status := r.connStatus
	known := r.connStatusKnown
	r.connStatusMu.RUnlock()

	return status, known
}

func (r *Runtime) Close() error {
	if r.Client != nil {
		r.Client.Close()
	}
	r.mu.RLock()
	mqttClient, topics, qos := r.mqtt, r.mqttTopics, r.mqttQoS
	r.mu.RUnlock()
	if mqttClient != nil {
		mqttClient.Close(topics, qos)
	}
	if r.cancel != nil {
		r.cancel()
	}
	if r.WriterQueue != nil {
		select {
		case <-r.WriterQueue.Done():
		case <-time.After(shutdownDrainTimeout):
			slog.Warn("writer queue did not drain before shutdown")
		}
	}
	if r.Bus != nil {
		r.Bus.Close()
	}
	if r.DB != nil {
		_ = r.DB.Close()
	}
	if r.LogManager != nil {
		_ = r.LogManager.Close()
	}

	return nil
}
