package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/logging"
	"github.com/Aman-CERP/appshelf/internal/ui"
)

type logsFlags struct {
	follow bool
	lines  int
	level  string
	filter string
	file   string
}

func newLogsCmd(s *rootState) *cobra.Command {
	var flags logsFlags

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View appshelf logs",
		Long: `Show the JSON log written by the browser, the MCP server and --debug runs.

By default the last 50 lines are shown. Use -f to follow new entries.`,
		Example: `  appshelf logs
  appshelf logs -f --level warn
  appshelf logs --filter flatpak -n 200`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd, s, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&flags.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&flags.level, "level", "", "Minimum level shown (debug|info|warn|error)")
	cmd.Flags().StringVar(&flags.filter, "filter", "", "Only lines matching this regular expression")
	cmd.Flags().StringVar(&flags.file, "file", "", "Log file (default ~/.appshelf/logs/appshelf.log)")

	return cmd
}

func runLogs(cmd *cobra.Command, s *rootState, flags logsFlags) error {
	var pattern *regexp.Regexp
	if flags.filter != "" {
		var err error
		pattern, err = regexp.Compile(flags.filter)
		if err != nil {
			return fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	path := flags.file
	if path == "" {
		path = logging.DefaultLogPath()
	}

	out := cmd.OutOrStdout()
	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   flags.level,
		Pattern: pattern,
		NoColor: s.noColor || !ui.IsTTY(out),
	}, out)

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Log file: %s\n---\n", path)

	if !flags.follow {
		entries, err := viewer.Tail(path, flags.lines)
		if err != nil {
			return err
		}
		viewer.Print(entries)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return followLogs(ctx, viewer, path)
}

func followLogs(ctx context.Context, viewer *logging.Viewer, path string) error {
	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			viewer.Print([]logging.LogEntry{entry})
		case err := <-errCh:
			return err
		}
	}
}
