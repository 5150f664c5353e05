package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/skobkin/vlcrc/internal/domain"
)

var ErrNoDatabase = errors.New("database is not initialized")

// AttemptRepo implements domain.AttemptRepository using SQLite.
type AttemptRepo struct {
	db *sql.DB
}

func NewAttemptRepo(db *sql.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

func (r *AttemptRepo) Insert(ctx context.Context, rec domain.AttemptRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts(label, target, started_at, duration_ms, connected, detail)
		VALUES(?, ?, ?, ?, ?, ?)
	`,
		rec.Label,
		rec.Target,
		timeToUnixMillis(rec.StartedAt),
		rec.Duration.Milliseconds(),
		boolToInt(rec.Connected),
		rec.Detail,
	)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read attempt id: %w", err)
	}

	return id, nil
}

// ListRecent returns up to limit attempts, newest first.
func (r *AttemptRepo) ListRecent(ctx context.Context, limit int) ([]domain.AttemptRecord, error) {
	if limit <= 0 {
		return []domain.AttemptRecord{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, target, started_at, duration_ms, connected, detail
		FROM attempts
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]domain.AttemptRecord, 0, limit)
	for rows.Next() {
		var (
			rec        domain.AttemptRecord
			startedMS  int64
			durationMS int64
			connected  int
		)
		if err := rows.Scan(&rec.ID, &rec.Label, &rec.Target, &startedMS, &durationMS, &connected, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.StartedAt = unixMillisToTime(startedMS)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.Connected = connected != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return out, nil
}

// Prune keeps only the newest keep attempts. keep <= 0 disables pruning.
func (r *AttemptRepo) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM attempts
		WHERE id NOT IN (
			SELECT id FROM attempts ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune attempts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read pruned rows: %w", err)
	}

	return n, nil
}

// Clear deletes every attempt and restarts ids. It returns the number of removed rows.
func (r *AttemptRepo) Clear(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrNoDatabase
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear attempts tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM attempts`)
	if err != nil {
		return 0, fmt.Errorf("delete attempts: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read removed rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'attempts'`); err != nil {
		return 0, fmt.Errorf("reset attempt ids: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear attempts tx: %w", err)
	}

	return removed, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}

	return 0
}

func timeToUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func unixMillisToTime(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}

	return time.UnixMilli(v).UTC()
}
