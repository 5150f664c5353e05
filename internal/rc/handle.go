package rc

import (
	"context"

	"github.com/samber/mo"

	"github.com/skobkin/vlcrc/internal/catalog"
	"github.com/skobkin/vlcrc/internal/domain"
)

// Commands is the typed command surface of an authenticated session.
type Commands interface {
	Send(ctx context.Context, command string) (string, error)
	// GetPlaylist returns the cached playlist without a round trip.
	GetPlaylist() []domain.PlaylistEntry
	// Playlist requests a fresh playlist dump from the player.
	Playlist(ctx context.Context) (string, error)
	Add(ctx context.Context, xyz string) (string, error)
	Enqueue(ctx context.Context, xyz string) (string, error)
	Search(ctx context.Context, query mo.Option[string]) (string, error)
	Delete(ctx context.Context, x int) (string, error)
	Move(ctx context.Context, x, y int) (string, error)
	Sort(ctx context.Context, key string) (string, error)
	SD(ctx context.Context, sd mo.Option[string]) (string, error)
	Play(ctx context.Context) (string, error)
	Stop(ctx context.Context) (string, error)
	Next(ctx context.Context) (string, error)
	Prev(ctx context.Context) (string, error)
	Goto(ctx context.Context, index int) (string, error)
	Repeat(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error)
	Loop(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error)
	Random(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error)
	Clear(ctx context.Context) (string, error)
	Status(ctx context.Context) (string, error)
	Title(ctx context.Context, x mo.Option[int]) (string, error)
	TitleNext(ctx context.Context) (string, error)
	TitlePrev(ctx context.Context) (string, error)
	Chapter(ctx context.Context, x mo.Option[int]) (string, error)
	ChapterNext(ctx context.Context) (string, error)
	ChapterPrev(ctx context.Context) (string, error)
	Seek(ctx context.Context, seconds int) (string, error)
	Pause(ctx context.Context) (string, error)
	FastForward(ctx context.Context) (string, error)
	Rewind(ctx context.Context) (string, error)
	Faster(ctx context.Context) (string, error)
	Slower(ctx context.Context) (string, error)
	Normal(ctx context.Context) (string, error)
	Rate(ctx context.Context, playbackRate float64) (string, error)
	Frame(ctx context.Context) (string, error)
	Fullscreen(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error)
	Info(ctx context.Context, id mo.Option[string]) (string, error)
	Stats(ctx context.Context) (string, error)
	GetTime(ctx context.Context) (string, error)
	IsPlaying(ctx context.Context) (string, error)
	GetTitle(ctx context.Context) (string, error)
	GetLength(ctx context.Context) (string, error)
	Volume(ctx context.Context, x mo.Option[int]) (string, error)
	VolUp(ctx context.Context, steps mo.Option[int]) (string, error)
	VolDown(ctx context.Context, steps mo.Option[int]) (string, error)
	AChan(ctx context.Context, mode mo.Option[string]) (string, error)
	ATrack(ctx context.Context, x mo.Option[int]) (string, error)
	VTrack(ctx context.Context, x mo.Option[int]) (string, error)
	VRatio(ctx context.Context, ratio mo.Option[string]) (string, error)
	VCrop(ctx context.Context, crop mo.Option[string]) (string, error)
	VZoom(ctx context.Context, zoom mo.Option[string]) (string, error)
	VDeinterlace(ctx context.Context, x mo.Option[string]) (string, error)
	VDeinterlaceMode(ctx context.Context, x mo.Option[string]) (string, error)
	Snapshot(ctx context.Context) (string, error)
	STrack(ctx context.Context, x mo.Option[int]) (string, error)
	Description(ctx context.Context) (string, error)
	Help(ctx context.Context, pattern mo.Option[string]) (string, error)
	LongHelp(ctx context.Context, pattern mo.Option[string]) (string, error)
	Lock(ctx context.Context) (string, error)
	Logout(ctx context.Context) (string, error)
	Quit(ctx context.Context) (string, error)
	Shutdown(ctx context.Context) (string, error)
}

type sender interface {
	Send(ctx context.Context, command string) (string, error)
	Playlist() []domain.PlaylistEntry
}

// Handle delegates every command to the session it was issued for.
type Handle struct {
	sender sender
}

var _ Commands = (*Handle)(nil)

func (h *Handle) Send(ctx context.Context, command string) (string, error) {
	return h.sender.Send(ctx, command)
}

func (h *Handle) GetPlaylist() []domain.PlaylistEntry {
	return h.sender.Playlist()
}

func (h *Handle) Playlist(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Playlist())
}

func (h *Handle) Add(ctx context.Context, xyz string) (string, error) {
	return h.Send(ctx, catalog.Add(xyz))
}

func (h *Handle) Enqueue(ctx context.Context, xyz string) (string, error) {
	return h.Send(ctx, catalog.Enqueue(xyz))
}

func (h *Handle) Search(ctx context.Context, query mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.Search(query))
}

func (h *Handle) Delete(ctx context.Context, x int) (string, error) {
	return h.Send(ctx, catalog.Delete(x))
}

func (h *Handle) Move(ctx context.Context, x, y int) (string, error) {
	return h.Send(ctx, catalog.Move(x, y))
}

func (h *Handle) Sort(ctx context.Context, key string) (string, error) {
	return h.Send(ctx, catalog.Sort(key))
}

func (h *Handle) SD(ctx context.Context, sd mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.SD(sd))
}

func (h *Handle) Play(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Play())
}

func (h *Handle) Stop(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Stop())
}

func (h *Handle) Next(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Next())
}

func (h *Handle) Prev(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Prev())
}

func (h *Handle) Goto(ctx context.Context, index int) (string, error) {
	return h.Send(ctx, catalog.Goto(index))
}

func (h *Handle) Repeat(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error) {
	return h.Send(ctx, catalog.Repeat(state))
}

func (h *Handle) Loop(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error) {
	return h.Send(ctx, catalog.Loop(state))
}

func (h *Handle) Random(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error) {
	return h.Send(ctx, catalog.Random(state))
}

func (h *Handle) Clear(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Clear())
}

func (h *Handle) Status(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Status())
}

func (h *Handle) Title(ctx context.Context, x mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.Title(x))
}

func (h *Handle) TitleNext(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.TitleNext())
}

func (h *Handle) TitlePrev(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.TitlePrev())
}

func (h *Handle) Chapter(ctx context.Context, x mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.Chapter(x))
}

func (h *Handle) ChapterNext(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.ChapterNext())
}

func (h *Handle) ChapterPrev(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.ChapterPrev())
}

func (h *Handle) Seek(ctx context.Context, seconds int) (string, error) {
	return h.Send(ctx, catalog.Seek(seconds))
}

func (h *Handle) Pause(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Pause())
}

func (h *Handle) FastForward(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.FastForward())
}

func (h *Handle) Rewind(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Rewind())
}

func (h *Handle) Faster(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Faster())
}

func (h *Handle) Slower(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Slower())
}

func (h *Handle) Normal(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Normal())
}

func (h *Handle) Rate(ctx context.Context, playbackRate float64) (string, error) {
	return h.Send(ctx, catalog.Rate(playbackRate))
}

func (h *Handle) Frame(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Frame())
}

func (h *Handle) Fullscreen(ctx context.Context, state mo.Option[catalog.Toggle]) (string, error) {
	return h.Send(ctx, catalog.Fullscreen(state))
}

func (h *Handle) Info(ctx context.Context, id mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.Info(id))
}

func (h *Handle) Stats(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Stats())
}

func (h *Handle) GetTime(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.GetTime())
}

func (h *Handle) IsPlaying(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.IsPlaying())
}

func (h *Handle) GetTitle(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.GetTitle())
}

func (h *Handle) GetLength(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.GetLength())
}

func (h *Handle) Volume(ctx context.Context, x mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.Volume(x))
}

func (h *Handle) VolUp(ctx context.Context, steps mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.VolUp(steps))
}

func (h *Handle) VolDown(ctx context.Context, steps mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.VolDown(steps))
}

func (h *Handle) AChan(ctx context.Context, mode mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.AChan(mode))
}

func (h *Handle) ATrack(ctx context.Context, x mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.ATrack(x))
}

func (h *Handle) VTrack(ctx context.Context, x mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.VTrack(x))
}

func (h *Handle) VRatio(ctx context.Context, ratio mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.VRatio(ratio))
}

func (h *Handle) VCrop(ctx context.Context, crop mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.VCrop(crop))
}

func (h *Handle) VZoom(ctx context.Context, zoom mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.VZoom(zoom))
}

func (h *Handle) VDeinterlace(ctx context.Context, x mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.VDeinterlace(x))
}

func (h *Handle) VDeinterlaceMode(ctx context.Context, x mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.VDeinterlaceMode(x))
}

func (h *Handle) Snapshot(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Snapshot())
}

func (h *Handle) STrack(ctx context.Context, x mo.Option[int]) (string, error) {
	return h.Send(ctx, catalog.STrack(x))
}

func (h *Handle) Description(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Description())
}

func (h *Handle) Help(ctx context.Context, pattern mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.Help(pattern))
}

func (h *Handle) LongHelp(ctx context.Context, pattern mo.Option[string]) (string, error) {
	return h.Send(ctx, catalog.LongHelp(pattern))
}

func (h *Handle) Lock(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Lock())
}

func (h *Handle) Logout(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Logout())
}

func (h *Handle) Quit(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Quit())
}

func (h *Handle) Shutdown(ctx context.Context) (string, error) {
	return h.Send(ctx, catalog.Shutdown())
}
