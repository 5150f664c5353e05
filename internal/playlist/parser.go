// Package playlist turns the RC "playlist" dump into typed entries.
package playlist

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/skobkin/vlcrc/internal/domain"
)

const headerPrefix = "+----[ Playlist - "

var (
	// Entries sit one level below the playlist node: a pipe, three columns of
	// indentation where a single '*' marks the current item, then the id.
	entryLine      = regexp.MustCompile(`^\|([ *]{3})(\d+) - (.*)$`)
	playedSuffix   = regexp.MustCompile(`\s*\[played \d+ times?\]$`)
	durationSuffix = regexp.MustCompile(`\s*\((\d+):(\d{2}):(\d{2})\)$`)
)

// Parse extracts playlist entries from a playlist dump, preserving source order.
// Text before the header is ignored and the block ends at the first line that
// is not an entry once entries have started.
func Parse(dump string) []domain.PlaylistEntry {
	lines := strings.Split(strings.ReplaceAll(dump, "\r", ""), "\n")

	entries := make([]domain.PlaylistEntry, 0)
	inBlock := false
	started := false
	for _, line := range lines {
		if !inBlock {
			inBlock = strings.HasPrefix(line, headerPrefix)
			continue
		}

		entry, ok := parseEntry(line)
		if !ok {
			if started {
				break
			}
			continue
		}
		started = true
		entries = append(entries, entry)
	}

	return entries
}

func parseEntry(line string) (domain.PlaylistEntry, bool) {
	m := entryLine.FindStringSubmatch(line)
	if m == nil {
		return domain.PlaylistEntry{}, false
	}
	marks := strings.Count(m[1], "*")
	if marks > 1 {
		return domain.PlaylistEntry{}, false
	}
	id, err := strconv.Atoi(m[2])
	if err != nil {
		return domain.PlaylistEntry{}, false
	}

	rest := strings.TrimSpace(m[3])
	rest = playedSuffix.ReplaceAllString(rest, "")

	length := 0
	if d := durationSuffix.FindStringSubmatch(rest); d != nil {
		length = toSeconds(d[1], d[2], d[3])
		rest = rest[:len(rest)-len(d[0])]
	}

	return domain.PlaylistEntry{
		ID:      id,
		Name:    strings.TrimSpace(rest),
		Length:  length,
		Current: marks == 1,
	}, true
}

func toSeconds(h, m, s string) int {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)

	return hours*3600 + minutes*60 + seconds
}

// Current returns the entry marked as currently playing.
func Current(entries []domain.PlaylistEntry) mo.Option[domain.PlaylistEntry] {
	entry, ok := lo.Find(entries, func(e domain.PlaylistEntry) bool {
		return e.Current
	})
	if !ok {
		return mo.None[domain.PlaylistEntry]()
	}

	return mo.Some(entry)
}

// FindLastByName returns the last entry with exactly the given name.
func FindLastByName(entries []domain.PlaylistEntry, name string) mo.Option[domain.PlaylistEntry] {
	entry, _, ok := lo.FindLastIndexOf(entries, func(e domain.PlaylistEntry) bool {
		return e.Name == name
	})
	if !ok {
		return mo.None[domain.PlaylistEntry]()
	}

	return mo.Some(entry)
}
