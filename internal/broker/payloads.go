package broker

import (
	"time"

	"github.com/samber/lo"

	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/domain"
)

type statusPayload struct {
	State  string `json:"state"`
	Detail string `json:"detail"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error,omitempty"`
	At     int64  `json:"at"`
}

type statsPayload struct {
	AverageMS int64   `json:"average_ms"`
	SamplesMS []int64 `json:"samples_ms"`
}

type playlistPayload struct {
	Entries []domain.PlaylistEntry `json:"entries"`
	Current *domain.PlaylistEntry  `json:"current,omitempty"`
	At      int64                  `json:"at"`
}

func newStatusPayload(status connectors.ConnectionStatus) statusPayload {
	return statusPayload{
		State:  status.State.String(),
		Detail: status.Detail.String(),
		Target: status.Target,
		Error:  status.Err,
		At:     unixMillis(status.Timestamp),
	}
}

func newStatsPayload(stats connectors.ConnectionStats) statsPayload {
	return statsPayload{
		AverageMS: stats.Average.Milliseconds(),
		SamplesMS: lo.Map(stats.Samples, func(d time.Duration, _ int) int64 { return d.Milliseconds() }),
	}
}

func newPlaylistPayload(update domain.PlaylistUpdate) playlistPayload {
	entries := update.Entries
	if entries == nil {
		entries = []domain.PlaylistEntry{}
	}
	payload := playlistPayload{Entries: entries, At: unixMillis(update.At)}
	if current, ok := lo.Find(entries, func(e domain.PlaylistEntry) bool { return e.Current }); ok {
		payload.Current = &current
	}

	return payload
}

func unixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}
