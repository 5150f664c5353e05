package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skobkin/vlcrc/internal/domain"
	"github.com/skobkin/vlcrc/internal/playlist"
)

func newPlaylistCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist",
		Short: "Print the player's playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, handle, err := connectOnce(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			ctx, cancel := commandContext(cmd.Context(), opts)
			defer cancel()
			dump, err := handle.Playlist(ctx)
			if err != nil {
				return fmt.Errorf("request playlist: %w", err)
			}

			return writePlaylist(cmd.OutOrStdout(), playlist.Parse(dump))
		},
	}
}

func writePlaylist(out io.Writer, entries []domain.PlaylistEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "playlist is empty")

		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, entry := range entries {
		marker := " "
		if entry.Current {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", marker, entry.ID, entry.Name, formatLength(entry.Length))
	}

	return tw.Flush()
}

func formatLength(seconds int) string {
	if seconds <= 0 {
		return "--:--"
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}

	return fmt.Sprintf("%d:%02d", m, s)
}
