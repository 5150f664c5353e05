package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/lo"
	"github.com/soellman/pidfile"
	"github.com/spf13/cobra"

	"github.com/skobkin/vlcrc/internal/app"
	"github.com/skobkin/vlcrc/internal/connectors"
	"github.com/skobkin/vlcrc/internal/domain"
	"github.com/skobkin/vlcrc/internal/notifications"
	"github.com/skobkin/vlcrc/internal/playlist"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stay connected, report status and playlist changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), opts, lo.Must(cmd.Flags().GetBool("pidfile")))
		},
	}
	cmd.Flags().Bool("pidfile", false, "Write a pid file to the cache directory")

	return cmd
}

func runWatch(ctx context.Context, out io.Writer, opts *globalOptions, writePID bool) error {
	rt, err := app.Initialize(ctx, app.Options{
		ConfigPath: opts.ConfigPath,
		LogLevel:   opts.logLevel(false),
		Verbose:    opts.Verbose,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if writePID {
		if err := pidfile.Write(rt.Paths.PIDFile); err != nil {
			return fmt.Errorf("write pid file: %w", err)
		}
		defer func() { _ = pidfile.Remove(rt.Paths.PIDFile) }()
	}

	rt.EnableNotifications(notifications.NewDesktopSender(rt.LogManager.Logger("notifications")))
	if err := rt.StartMQTT(); err != nil {
		slog.Warn("mqtt bridge disabled", "error", err)
	}
	if err := rt.WatchConfig(); err != nil {
		slog.Warn("config reload disabled", "error", err)
	}

	statusSub := rt.Bus.Subscribe(connectors.TopicConnStatus, connectors.TopicConnStats)
	defer rt.Bus.Unsubscribe(statusSub, connectors.TopicConnStatus, connectors.TopicConnStats)

	rt.Start()
	slog.Info("watching player", "target", rt.Client.Target())

	var lastCurrent string
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-statusSub:
			if !ok {
				return nil
			}
			reportEvent(out, raw)
		case <-rt.PlaylistStore.Changes():
			if line, changed := currentTrackLine(rt.PlaylistStore.Snapshot(), lastCurrent); changed {
				lastCurrent = line
				_, _ = fmt.Fprintln(out, line)
			}
		}
	}
}

func reportEvent(out io.Writer, raw any) {
	switch event := raw.(type) {
	case connectors.ConnectionStatus:
		_, _ = fmt.Fprintln(out, "status:", app.FormatStatus(event))
	case connectors.ConnectionStats:
		_, _ = fmt.Fprintf(out, "attempts: %d, average %s\n", len(event.Samples), app.FormatDuration(event.Average))
	}
}

// currentTrackLine describes the current entry and reports whether it differs from last.
func currentTrackLine(entries []domain.PlaylistEntry, last string) (string, bool) {
	line := "now playing: nothing"
	if entry, ok := playlist.Current(entries).Get(); ok {
		line = fmt.Sprintf("now playing: %d - %s (%s)", entry.ID, entry.Name, formatLength(entry.Length))
	}

	return line, line != last
}
