package domain

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connectors"
)

type inlineQueue struct{}

func (inlineQueue) Enqueue(_ string, fn func(context.Context) error) {
	_ = fn(context.Background())
}

type memoryAttemptRepo struct {
	inserted chan AttemptRecord
	pruned   chan int
}

func (r *memoryAttemptRepo) Insert(_ context.Context, a AttemptRecord) (int64, error) {
	r.inserted <- a

	return 1, nil
}

func (r *memoryAttemptRepo) ListRecent(context.Context, int) ([]AttemptRecord, error) {
	return nil, nil
}

func (r *memoryAttemptRepo) Prune(_ context.Context, keep int) (int64, error) {
	r.pruned <- keep

	return 0, nil
}

func TestStartPersistenceProjection_StoresAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.New(slog.Default())
	defer b.Close()

	repo := &memoryAttemptRepo{inserted: make(chan AttemptRecord, 1), pruned: make(chan int, 1)}
	StartPersistenceProjection(ctx, b, inlineQueue{}, repo, 50)

	started := time.UnixMilli(1_700_000_000_000)
	b.Publish(connectors.TopicConnAttempt, connectors.ConnectionAttempt{
		Label:     "vlc",
		Target:    "127.0.0.1:4212",
		StartedAt: started,
		Duration:  1500 * time.Millisecond,
		Detail:    connectors.ConnectionDetailConnRefused,
	})

	select {
	case got := <-repo.inserted:
		if got.Target != "127.0.0.1:4212" || got.Detail != "connection_refused" || got.Duration != 1500*time.Millisecond {
			t.Fatalf("unexpected record: %+v", got)
		}
		if !got.StartedAt.Equal(started) {
			t.Fatalf("unexpected start time: %v", got.StartedAt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for attempt insert")
	}

	select {
	case keep := <-repo.pruned:
		if keep != 50 {
			t.Fatalf("expected prune to keep 50, got %d", keep)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for prune")
	}
}
