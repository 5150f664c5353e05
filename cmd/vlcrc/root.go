package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/skobkin/vlcrc/internal/app"
	"github.com/skobkin/vlcrc/internal/rc"
)

const defaultCommandTimeout = 10 * time.Second

var errAuthFailed = errors.New("player rejected the password")

type globalOptions struct {
	ConfigPath string
	Verbose    bool
	Timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           app.Name,
		Short:         "Remote control client for the VLC RC interface",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the config file")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log protocol traffic")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", defaultCommandTimeout, "Time to wait for the player in one-shot commands")

	root.AddCommand(
		newWatchCmd(opts),
		newSendCmd(opts),
		newPlaylistCmd(opts),
		newHistoryCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	return root
}

func (o *globalOptions) logLevel(quiet bool) string {
	switch {
	case o.Verbose:
		return "debug"
	case quiet:
		return "warn"
	default:
		return ""
	}
}

// connectOnce starts a runtime and waits for the first authenticated session.
func connectOnce(ctx context.Context, opts *globalOptions) (*app.Runtime, *rc.Handle, error) {
	connected := make(chan *rc.Handle, 1)
	authFailed := make(chan string, 1)

	rt, err := app.Initialize(ctx, app.Options{
		ConfigPath: opts.ConfigPath,
		LogLevel:   opts.logLevel(true),
		Verbose:    opts.Verbose,
		Listeners: rc.Listeners{
			OnConnect: func(h *rc.Handle) {
				select {
				case connected <- h:
				default:
				}
			},
			OnAuthFailed: func(response string) {
				select {
				case authFailed <- response:
				default:
				}
			},
		},
	})
	if err != nil {
		return nil, nil, err
	}

	target := rt.Client.Target()
	if target == "" {
		_ = rt.Close()

		return nil, nil, fmt.Errorf("no player configured in %s", rt.Paths.ConfigFile)
	}
	rt.Start()

	timeout := lo.Ternary(opts.Timeout > 0, opts.Timeout, defaultCommandTimeout)
	select {
	case h := <-connected:
		return rt, h, nil
	case response := <-authFailed:
		_ = rt.Close()

		return nil, nil, fmt.Errorf("%s: %w (%s)", target, errAuthFailed, response)
	case <-time.After(timeout):
		status, _ := rt.CurrentConnStatus()
		_ = rt.Close()

		return nil, nil, fmt.Errorf("%s: not connected after %s (%s)", target, timeout, app.FormatStatus(status))
	case <-ctx.Done():
		_ = rt.Close()

		return nil, nil, ctx.Err()
	}
}

func commandContext(ctx context.Context, opts *globalOptions) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, lo.Ternary(opts.Timeout > 0, opts.Timeout, defaultCommandTimeout))
}
