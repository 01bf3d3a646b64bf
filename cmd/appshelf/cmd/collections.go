package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type collectionEntry struct {
	ID         string `json:"id"`
	Origin     string `json:"origin,omitempty"`
	Source     string `json:"source"`
	Components int    `json:"components"`
}

func newCollectionsCmd(s *rootState) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List loaded appstream collections",
		Long:  `List every appstream collection parsed from the configured paths, sorted by id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := s.loadStore(cmd.Context())

			entries := make([]collectionEntry, 0, store.Len())
			for id, coll := range store.All() {
				entries = append(entries, collectionEntry{
					ID:         id,
					Origin:     coll.Origin,
					Source:     coll.Source,
					Components: len(coll.Components),
				})
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			out := s.writer(cmd)
			if len(entries) == 0 {
				out.Warning("No appstream collections found")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", e.ID, e.Components, e.Source)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			out.Newline()
			out.Statusf("", "%d collections, %d components", store.Len(), store.ComponentCount())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
