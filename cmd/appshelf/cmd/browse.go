package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/ui"
)

// runBrowse opens the interactive browser, or prints the installed list when
// stdin or stdout is not a terminal or --plain is set.
func runBrowse(cmd *cobra.Command, s *rootState) error {
	uiCfg := ui.NewConfig(cmd.InOrStdin(), cmd.OutOrStdout(),
		ui.WithPlain(s.plain),
		ui.WithNoColor(s.noColor))
	if !uiCfg.Interactive() {
		slog.Debug("not a terminal, listing installed packages")
		return runInstalled(cmd, s, installedFlags{})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := async.NewLoadProgress()
	progress.SetStage(async.StageStore)
	holder := appstream.NewHolder(s.loadStore(ctx))

	b := ui.NewBrowser(uiCfg, ui.BrowserOptions{
		Locale:   s.cfg.Locale,
		Progress: progress,
	})
	app := s.newApp(holder, progress, b.Emit)

	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()
	s.startWatcher(ctx, app)

	err := b.Run(ctx, app)
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	return nil
}
