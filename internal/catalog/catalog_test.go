package catalog

import (
	"strings"
	"testing"

	"github.com/samber/mo"
)

func TestBuilders(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{got: Add("file:///tmp/a.mp3"), want: "add file:///tmp/a.mp3"},
		{got: Enqueue("/tmp/b.mp3"), want: "enqueue /tmp/b.mp3"},
		{got: Playlist(), want: "playlist"},
		{got: Search(mo.None[string]()), want: "search"},
		{got: Search(mo.Some("intro")), want: "search intro"},
		{got: Delete(4), want: "delete 4"},
		{got: Move(4, 7), want: "move 4 7"},
		{got: Sort("title"), want: "sort title"},
		{got: SD(mo.None[string]()), want: "sd"},
		{got: Goto(12), want: "goto 12"},
		{got: Repeat(mo.None[Toggle]()), want: "repeat"},
		{got: Loop(mo.Some(On)), want: "loop on"},
		{got: Random(mo.Some(Off)), want: "random off"},
		{got: Title(mo.Some(2)), want: "title 2"},
		{got: Chapter(mo.None[int]()), want: "chapter"},
		{got: Seek(-10), want: "seek -10"},
		{got: Rate(1.5), want: "rate 1.5"},
		{got: Rate(2), want: "rate 2"},
		{got: Fullscreen(mo.Some(On)), want: "fullscreen on"},
		{got: Info(mo.Some("3")), want: "info 3"},
		{got: Volume(mo.Some(0)), want: "volume 0"},
		{got: Volume(mo.None[int]()), want: "volume"},
		{got: VolUp(mo.Some(2)), want: "volup 2"},
		{got: VRatio(mo.Some("16:9")), want: "vratio 16:9"},
		{got: VDeinterlaceMode(mo.Some("blend")), want: "vdeinterlace_mode blend"},
		{got: Help(mo.Some("  ")), want: "help"},
		{got: LongHelp(mo.None[string]()), want: "longhelp"},
		{got: TitleNext(), want: "title_n"},
		{got: GetLength(), want: "get_length"},
		{got: Shutdown(), want: "shutdown"},
	}

	for _, tc := range tests {
		if tc.got != tc.want {
			t.Fatalf("got %q want %q", tc.got, tc.want)
		}
	}
}

func TestBuildersNeverEndWithNewline(t *testing.T) {
	for _, cmd := range []string{Play(), Status(), Add("x"), Volume(mo.Some(3))} {
		if strings.HasSuffix(cmd, "\n") {
			t.Fatalf("command %q must not carry a newline", cmd)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("goto 3") || !Known("  playlist") {
		t.Fatalf("expected catalog verbs to be known")
	}
	if Known("") || Known("gotoitem 3") || Known("frobnicate") {
		t.Fatalf("expected unknown commands to be rejected")
	}
}

func TestVerbsIsDetached(t *testing.T) {
	list := Verbs()
	if len(list) != 60 {
		t.Fatalf("expected 60 verbs, got %d", len(list))
	}
	list[0] = "mutated"
	if Verbs()[0] != "add" {
		t.Fatalf("expected Verbs to return a copy")
	}
}
