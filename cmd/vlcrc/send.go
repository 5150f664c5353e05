package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skobkin/vlcrc/internal/catalog"
)

func newSendCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command> [args...]",
		Short: "Send one RC command and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.TrimSpace(strings.Join(args, " "))
			if verb := commandVerb(command); !catalog.Known(verb) {
				slog.Warn("command is not in the RC catalog, sending anyway", "command", verb)
			}

			rt, handle, err := connectOnce(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			ctx, cancel := commandContext(cmd.Context(), opts)
			defer cancel()
			response, err := handle.Send(ctx, command)
			if err != nil {
				return fmt.Errorf("send %q: %w", command, err)
			}
			if response != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), response)
			}

			return nil
		},
	}
}

func commandVerb(command string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(command), " ")

	return verb
}
