package domain

import "time"

// PlaylistEntry is a single item of the player's playlist.
type PlaylistEntry struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Length  int    `json:"length"`
	Current bool   `json:"current"`
}

// PlaylistUpdate carries a freshly polled playlist.
type PlaylistUpdate struct {
	SessionID string
	Entries   []PlaylistEntry
	At        time.Time
}

// AttemptRecord is a persisted connection attempt.
type AttemptRecord struct {
	ID        int64
	Label     string
	Target    string
	StartedAt time.Time
	Duration  time.Duration
	Connected bool
	Detail    string
}
