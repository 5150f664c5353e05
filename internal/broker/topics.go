package broker

import "strings"

const (
	topicOnline   = "online"
	topicStatus   = "status"
	topicStats    = "stats"
	topicPlaylist = "playlist"

	onlinePayload  = "true"
	offlinePayload = "false"
)

var topicLevelReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")

// Topics builds per-player topic names under a shared prefix.
type Topics struct {
	prefix string
	player string
}

func NewTopics(prefix, label string) Topics {
	player := topicLevelReplacer.Replace(strings.TrimSpace(label))
	if player == "" {
		player = "default"
	}

	return Topics{prefix: strings.Trim(prefix, "/ "), player: player}
}

func (t Topics) Online() string   { return t.join(topicOnline) }
func (t Topics) Status() string   { return t.join(topicStatus) }
func (t Topics) Stats() string    { return t.join(topicStats) }
func (t Topics) Playlist() string { return t.join(topicPlaylist) }

func (t Topics) join(leaf string) string {
	if t.prefix == "" {
		return t.player + "/" + leaf
	}

	return t.prefix + "/" + t.player + "/" + leaf
}
