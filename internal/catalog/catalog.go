// Package catalog builds RC command lines. Every builder is pure and returns
// the command without the trailing newline.
package catalog

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Toggle is the explicit on/off argument accepted by toggling verbs.
type Toggle string

const (
	On  Toggle = "on"
	Off Toggle = "off"
)

var verbs = []string{
	"add", "enqueue", "playlist", "search", "delete", "move", "sort", "sd",
	"play", "stop", "next", "prev", "goto", "repeat", "loop", "random", "clear",
	"status", "title", "title_n", "title_p", "chapter", "chapter_n", "chapter_p",
	"seek", "pause", "fastforward", "rewind", "faster", "slower", "normal", "rate",
	"frame", "fullscreen", "info", "stats", "get_time", "is_playing", "get_title",
	"get_length", "volume", "volup", "voldown", "achan", "atrack", "vtrack",
	"vratio", "vcrop", "vzoom", "vdeinterlace", "vdeinterlace_mode", "snapshot",
	"strack", "description", "help", "longhelp", "lock", "logout", "quit",
	"shutdown",
}

// Verbs lists every verb the catalog can build.
func Verbs() []string {
	return append([]string(nil), verbs...)
}

// Known reports whether the first word of command is a catalog verb.
// Aliases accepted by the player (f, crop, zoom, gotoitem, ?) are not listed.
func Known(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}

	return lo.Contains(verbs, fields[0])
}

func join(verb string, args ...string) string {
	parts := append([]string{verb}, lo.Compact(args)...)

	return strings.Join(parts, " ")
}

func optString(verb string, arg mo.Option[string]) string {
	return join(verb, strings.TrimSpace(arg.OrEmpty()))
}

func optInt(verb string, arg mo.Option[int]) string {
	value, ok := arg.Get()
	if !ok {
		return verb
	}

	return join(verb, strconv.Itoa(value))
}

func optToggle(verb string, state mo.Option[Toggle]) string {
	return join(verb, string(state.OrEmpty()))
}

// Playlist management.

func Add(xyz string) string                 { return join("add", xyz) }
func Enqueue(xyz string) string             { return join("enqueue", xyz) }
func Playlist() string                      { return "playlist" }
func Search(query mo.Option[string]) string { return optString("search", query) }
func Delete(x int) string                   { return join("delete", strconv.Itoa(x)) }
func Move(x, y int) string                  { return join("move", strconv.Itoa(x), strconv.Itoa(y)) }
func Sort(key string) string                { return join("sort", key) }
func SD(sd mo.Option[string]) string        { return optString("sd", sd) }
func Play() string                          { return "play" }
func Stop() string                          { return "stop" }
func Next() string                          { return "next" }
func Prev() string                          { return "prev" }
func Goto(index int) string                 { return join("goto", strconv.Itoa(index)) }
func Repeat(state mo.Option[Toggle]) string { return optToggle("repeat", state) }
func Loop(state mo.Option[Toggle]) string   { return optToggle("loop", state) }
func Random(state mo.Option[Toggle]) string { return optToggle("random", state) }
func Clear() string                         { return "clear" }
func Status() string                        { return "status" }

// Titles and chapters.

func Title(x mo.Option[int]) string   { return optInt("title", x) }
func TitleNext() string               { return "title_n" }
func TitlePrev() string               { return "title_p" }
func Chapter(x mo.Option[int]) string { return optInt("chapter", x) }
func ChapterNext() string             { return "chapter_n" }
func ChapterPrev() string             { return "chapter_p" }

// Playback.

func Seek(seconds int) string { return join("seek", strconv.Itoa(seconds)) }
func Pause() string           { return "pause" }
func FastForward() string     { return "fastforward" }
func Rewind() string          { return "rewind" }
func Faster() string          { return "faster" }
func Slower() string          { return "slower" }
func Normal() string          { return "normal" }

func Rate(playbackRate float64) string {
	return join("rate", strconv.FormatFloat(playbackRate, 'f', -1, 64))
}

func Frame() string                             { return "frame" }
func Fullscreen(state mo.Option[Toggle]) string { return optToggle("fullscreen", state) }
func Info(id mo.Option[string]) string          { return optString("info", id) }
func Stats() string                             { return "stats" }
func GetTime() string                           { return "get_time" }
func IsPlaying() string                         { return "is_playing" }
func GetTitle() string                          { return "get_title" }
func GetLength() string                         { return "get_length" }

// Audio, video and subtitles.

func Volume(x mo.Option[int]) string              { return optInt("volume", x) }
func VolUp(steps mo.Option[int]) string           { return optInt("volup", steps) }
func VolDown(steps mo.Option[int]) string         { return optInt("voldown", steps) }
func AChan(mode mo.Option[string]) string         { return optString("achan", mode) }
func ATrack(x mo.Option[int]) string              { return optInt("atrack", x) }
func VTrack(x mo.Option[int]) string              { return optInt("vtrack", x) }
func VRatio(ratio mo.Option[string]) string       { return optString("vratio", ratio) }
func VCrop(crop mo.Option[string]) string         { return optString("vcrop", crop) }
func VZoom(zoom mo.Option[string]) string         { return optString("vzoom", zoom) }
func VDeinterlace(x mo.Option[string]) string     { return optString("vdeinterlace", x) }
func VDeinterlaceMode(x mo.Option[string]) string { return optString("vdeinterlace_mode", x) }
func Snapshot() string                            { return "snapshot" }
func STrack(x mo.Option[int]) string              { return optInt("strack", x) }

// Interface.

func Description() string                       { return "description" }
func Help(pattern mo.Option[string]) string     { return optString("help", pattern) }
func LongHelp(pattern mo.Option[string]) string { return optString("longhelp", pattern) }
func Lock() string                              { return "lock" }
func Logout() string                            { return "logout" }
func Quit() string                              { return "quit" }
func Shutdown() string                          { return "shutdown" }
