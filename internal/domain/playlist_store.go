package domain

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connectors"
)

// PlaylistStore keeps the latest polled playlist for host applications.
type PlaylistStore struct {
	mu        sync.RWMutex
	entries   []PlaylistEntry
	sessionID string
	updatedAt time.Time
	changes   chan struct{}
}

func NewPlaylistStore() *PlaylistStore {
	return &PlaylistStore{
		changes: make(chan struct{}, 1),
	}
}

func (s *PlaylistStore) Start(ctx context.Context, b bus.MessageBus) {
	playlistSub := b.Subscribe(connectors.TopicPlaylist)
	statusSub := b.Subscribe(connectors.TopicConnStatus)
	go func() {
		defer b.Unsubscribe(playlistSub, connectors.TopicPlaylist)
		defer b.Unsubscribe(statusSub, connectors.TopicConnStatus)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-playlistSub:
				if !ok {
					return
				}
				update, ok := msg.(PlaylistUpdate)
				if !ok {
					continue
				}
				s.Apply(update)
			case msg, ok := <-statusSub:
				if !ok {
					return
				}
				status, ok := msg.(connectors.ConnectionStatus)
				if !ok {
					continue
				}
				// Playlist state never outlives the connection it was polled on.
				if status.State == connectors.ConnectionStateDisconnected {
					s.Reset()
				}
			}
		}
	}()
}

// Apply replaces the cached playlist and reports whether it changed.
func (s *PlaylistStore) Apply(update PlaylistUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updatedAt = update.At
	if s.sessionID == update.SessionID && slices.Equal(s.entries, update.Entries) {
		return false
	}
	s.sessionID = update.SessionID
	s.entries = slices.Clone(update.Entries)
	s.notify()

	return true
}

func (s *PlaylistStore) Snapshot() []PlaylistEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.entries)
}

func (s *PlaylistStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.updatedAt
}

func (s *PlaylistStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *PlaylistStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil && s.sessionID == "" {
		return
	}
	s.entries = nil
	s.sessionID = ""
	s.notify()
}

func (s *PlaylistStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
