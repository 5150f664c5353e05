package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/config"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/notifications"
)

const (
	notificationTitleConnectionLost     = "Connection lost"
	notificationTitleConnectionRestored = "Connection restored"
	notificationTitleAuthFailed         = "Authentication failed"
)

// NotificationService listens to bus events and emits user-facing notifications.
type NotificationService struct {
	bus           bus.MessageBus
	currentConfig func() config.AppConfig
	sender        notifications.Sender
	logger        *slog.Logger

	connStatusMu sync.Mutex
	connected    bool
	lost         bool
}

func NewNotificationService(
	messageBus bus.MessageBus,
	currentConfig func() config.AppConfig,
	sender notifications.Sender,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default().With("component", "app.notifications")
	}

	return &NotificationService{
		bus:           messageBus,
		currentConfig: currentConfig,
		sender:        sender,
		logger:        logger,
	}
}

func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	sub := s.bus.Subscribe(connectors.TopicConnStatus, connectors.TopicAuthFailed)

	go func() {
		defer s.bus.Unsubscribe(sub, connectors.TopicConnStatus, connectors.TopicAuthFailed)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				switch event := raw.(type) {
				case connectors.ConnectionStatus:
					s.handleConnectionStatus(event)
				case connectors.AuthFailed:
					s.handleAuthFailed(event)
				}
			}
		}
	}()
}

func (s *NotificationService) handleConnectionStatus(status connectors.ConnectionStatus) {
	prefs := s.notificationPrefs()

	s.connStatusMu.Lock()
	wasConnected := s.connected
	wasLost := s.lost
	switch {
	case status.State == connectors.ConnectionStateConnected:
		s.connected = true
		s.lost = false
	case wasConnected:
		s.connected = false
		s.lost = true
	}
	s.connStatusMu.Unlock()

	switch {
	case status.State == connectors.ConnectionStateConnected && wasLost:
		if s.shouldNotify(prefs, prefs.Events.ConnectionRestored) {
			s.send(notifications.Payload{
				Title:   notificationTitle(status.Label, notificationTitleConnectionRestored),
				Content: statusContent(status),
			})
		}
	case status.State != connectors.ConnectionStateConnected && wasConnected:
		if s.shouldNotify(prefs, prefs.Events.ConnectionLost) {
			s.send(notifications.Payload{
				Title:   notificationTitle(status.Label, notificationTitleConnectionLost),
				Content: statusContent(status),
			})
		}
	}
}

func (s *NotificationService) handleAuthFailed(event connectors.AuthFailed) {
	prefs := s.notificationPrefs()
	if !s.shouldNotify(prefs, prefs.Events.AuthFailed) {
		return
	}

	content := strings.TrimSpace(event.Target)
	if content == "" {
		content = "No connection details"
	}
	if response := strings.TrimSpace(event.Response); response != "" {
		content = fmt.Sprintf("%s (%s)", content, response)
	}

	s.send(notifications.Payload{
		Title:   notificationTitleAuthFailed,
		Content: content,
	})
}

func (s *NotificationService) shouldNotify(prefs config.NotificationConfig, kindEnabled bool) bool {
	return prefs.Enabled && kindEnabled
}

func (s *NotificationService) notificationPrefs() config.NotificationConfig {
	cfg := config.Default()
	if s.currentConfig != nil {
		cfg = s.currentConfig()
		cfg.FillMissingDefaults()
	}

	return cfg.Notifications
}

func (s *NotificationService) send(notification notifications.Payload) {
	title := strings.TrimSpace(notification.Title)
	content := strings.TrimSpace(notification.Content)
	if title == "" && content == "" {
		return
	}
	s.logger.Debug("sending notification", "title", title)
	s.sender.Send(notifications.Payload{
		Title:   title,
		Content: content,
	})
}

func notificationTitle(label, title string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return title
	}

	return fmt.Sprintf("%s - %s", label, strings.ToLower(title))
}

func statusContent(status connectors.ConnectionStatus) string {
	details := strings.TrimSpace(status.Target)
	if details == "" {
		details = "No connection details"
	}
	if status.Detail != connectors.ConnectionDetailNone {
		details = fmt.Sprintf("%s (%s)", details, status.Detail)
	}
	if errText := strings.TrimSpace(status.Err); errText != "" {
		details = fmt.Sprintf("%s (error: %s)", details, errText)
	}

	return details
}
