package main

import (
	"fmt"
	"runtime"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/skobkin/vlcrc/internal/app"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and build metadata",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if lo.Must(cmd.Flags().GetBool("short")) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion())

				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s/%s\n%s\n", app.Name, app.BuildString(), runtime.GOOS, runtime.GOARCH, app.SourceURL)
		},
	}
	cmd.Flags().BoolP("short", "s", false, "Print only the version")

	return cmd
}
