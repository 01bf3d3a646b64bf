package cmd

import (
	"encoding/json"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/config"
)

// backendStatus reports whether a known backend was found on this host.
type backendStatus struct {
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
}

func newBackendsCmd(s *rootState) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "backends",
		Short: "List package backends and whether they are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reg := s.discover(ctx, appstream.NewHolder(nil))
			names := reg.Names()

			statuses := make([]backendStatus, 0, len(config.ValidBackends))
			for _, name := range config.ValidBackends {
				statuses = append(statuses, backendStatus{
					Name:      name,
					Enabled:   s.cfg.BackendEnabled(name),
					Available: slices.Contains(names, name),
				})
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}

			out := s.writer(cmd)
			for _, st := range statuses {
				switch {
				case st.Available:
					out.Success(st.Name)
				case !st.Enabled:
					out.Statusf("-", "%s (disabled)", st.Name)
				default:
					out.Warningf("%s (not found)", st.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
