package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/mcp"
)

func newServeCmd(s *rootState) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol server that lets AI assistants search the
catalog, list installed packages and read package details.

stdout carries JSON-RPC only; logs go to ~/.appshelf/logs/.`,
		Example: `  appshelf serve
  APPSHELF_APPSTREAM_WATCH=true appshelf serve`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationFileLogging: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), s, transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio")

	return cmd
}

func runServe(ctx context.Context, s *rootState, transport string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progress := async.NewLoadProgress()
	holder := appstream.NewHolder(s.loadStore(ctx))
	app := s.newApp(holder, progress, nil)

	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()
	watch := s.startWatcher(ctx, app)

	srv, err := mcp.NewServer(app, holder, s.cfg)
	if err != nil {
		cancel()
		<-done
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	slog.Info("serving catalog",
		slog.String("locale", s.cfg.Locale),
		slog.String("watcher", watch),
		slog.Int("collections", holder.Load().Len()))

	err = srv.Serve(ctx, transport)
	cancel()
	<-done
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
