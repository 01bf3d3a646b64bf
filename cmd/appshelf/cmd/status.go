package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/ui"
)

const statusPollInterval = 50 * time.Millisecond

func newStatusCmd(s *rootState) *cobra.Command {
	var (
		jsonOutput bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Load the catalog and report its health",
		Long: `Load appstream collections, discover backends and list installed packages
the same way the browser does, then report what was found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := loadStatus(cmd.Context(), s, timeout)
			if err != nil {
				return err
			}

			r := ui.NewStatusRenderer(cmd.OutOrStdout(), s.noColor || !ui.IsTTY(cmd.OutOrStdout()))
			if jsonOutput {
				return r.RenderJSON(info)
			}
			return r.Render(info)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up waiting for loading after this long")

	return cmd
}

// loadStatus runs a catalog until loading finishes or timeout passes. A
// timeout is reported in the status, not as an error.
func loadStatus(ctx context.Context, s *rootState, timeout time.Duration) (ui.StatusInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := async.NewLoadProgress()
	holder := appstream.NewHolder(s.loadStore(ctx))
	app := s.newApp(holder, progress, nil)

	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(statusPollInterval)
	defer tick.Stop()

wait:
	for progress.IsLoading() {
		select {
		case <-ctx.Done():
			return ui.StatusInfo{}, ctx.Err()
		case <-deadline.C:
			progress.SetError("timed out after " + timeout.String())
			break wait
		case <-tick.C:
		}
	}

	snap, err := app.Snapshot(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return ui.StatusInfo{}, err
	}

	watch := "off"
	if s.cfg.Appstream.Watch {
		watch = "on"
	}
	return ui.StatusInfo{
		Locale:   s.cfg.Locale,
		Backends: snap.Backends,
		Load:     progress.Snapshot(),
		Watcher:  watch,
	}, nil
}
