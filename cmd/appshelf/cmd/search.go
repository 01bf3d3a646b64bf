package cmd

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/search"
)

// searchFlags holds CLI flags for search.
type searchFlags struct {
	limit int
	json  bool
}

func newSearchCmd(s *rootState) *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search appstream metadata",
		Long: `Search component names and summaries in every loaded collection.

Words match case-insensitively as substrings; a name that starts with the
query ranks above one that merely contains it, and name matches rank above
summary matches.`,
		Example: `  appshelf search firefox
  appshelf search "image editor" --limit 5
  appshelf search fire --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, s, strings.Join(args, " "), flags)
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "n", -1, "Maximum number of results (default from config, 0 = unlimited)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, s *rootState, query string, flags searchFlags) error {
	pattern, err := search.Compile(query)
	if err != nil {
		return err
	}

	limit := flags.limit
	if limit < 0 {
		limit = s.cfg.Search.MaxResults
	}

	ctx := cmd.Context()
	start := time.Now()
	store := s.loadStore(ctx)
	engine := search.NewEngine(search.WithLocale(s.cfg.Locale))
	results, err := engine.Search(ctx, store, pattern, search.SearchOptions{Limit: limit})
	if err != nil {
		return err
	}
	slog.Info("search_completed",
		slog.String("query", pattern.String()),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)))

	if flags.json {
		if results == nil {
			results = []search.Result{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	out := s.writer(cmd)
	if len(results) == 0 {
		out.Warningf("No results for %q", pattern.String())
		return nil
	}
	out.Results(results)
	return nil
}
