package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/skobkin/vlcrc/internal/app"
	"github.com/skobkin/vlcrc/internal/domain"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent connection attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := app.Initialize(cmd.Context(), app.Options{
				ConfigPath: opts.ConfigPath,
				LogLevel:   opts.logLevel(true),
			})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			if lo.Must(cmd.Flags().GetBool("clear")) {
				removed, err := rt.ClearHistory(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d attempts\n", removed)

				return nil
			}

			records, err := rt.History(cmd.Context(), lo.Must(cmd.Flags().GetInt("limit")))
			if err != nil {
				return err
			}

			return writeHistory(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntP("limit", "n", app.DefaultHistoryLimit, "Number of attempts to show")
	cmd.Flags().Bool("clear", false, "Delete all recorded attempts")

	return cmd
}

func writeHistory(out io.Writer, records []domain.AttemptRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "no attempts recorded")

		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tTARGET\tDURATION\tCONNECTED\tDETAIL")
	for _, rec := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Target,
			app.FormatDuration(rec.Duration),
			lo.Ternary(rec.Connected, "yes", "no"),
			rec.Detail,
		)
	}

	return tw.Flush()
}
