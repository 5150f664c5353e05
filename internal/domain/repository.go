package domain

import "context"

type AttemptRepository interface {
	Insert(ctx context.Context, a AttemptRecord) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]AttemptRecord, error)
	Prune(ctx context.Context, keep int) (int64, error)
}
