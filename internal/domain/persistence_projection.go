package domain

import (
	"context"

	"github.com/skobkin/vlcrc/internal/bus"
	"github.com/skobkin/vlcrc/internal/connectors"
)

// WriteQueue serializes persistence writes from async domain events.
type WriteQueue interface {
	Enqueue(name string, fn func(context.Context) error)
}

// StartPersistenceProjection stores every finished connection attempt. When
// retain is positive only the newest retain attempts are kept.
func StartPersistenceProjection(ctx context.Context, b bus.MessageBus, queue WriteQueue, attemptRepo AttemptRepository, retain int) {
	attemptSub := b.Subscribe(connectors.TopicConnAttempt)

	go func() {
		defer b.Unsubscribe(attemptSub, connectors.TopicConnAttempt)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-attemptSub:
				if !ok {
					return
				}
				attempt, ok := raw.(connectors.ConnectionAttempt)
				if !ok {
					continue
				}
				record := AttemptRecordFromEvent(attempt)
				queue.Enqueue("insert_attempt", func(writeCtx context.Context) error {
					_, err := attemptRepo.Insert(writeCtx, record)

					return err
				})
				if retain > 0 {
					queue.Enqueue("prune_attempts", func(writeCtx context.Context) error {
						_, err := attemptRepo.Prune(writeCtx, retain)

						return err
					})
				}
			}
		}
	}()
}

func AttemptRecordFromEvent(a connectors.ConnectionAttempt) AttemptRecord {
	return AttemptRecord{
		Label:     a.Label,
		Target:    a.Target,
		StartedAt: a.StartedAt,
		Duration:  a.Duration,
		Connected: a.Connected,
		Detail:    a.Detail.String(),
	}
}
