package cmd

import (
	"encoding/json"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/backend"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

type installedFlags struct {
	backend string
	json    bool
}

func newInstalledCmd(s *rootState) *cobra.Command {
	var flags installedFlags

	cmd := &cobra.Command{
		Use:     "installed",
		Aliases: []string{"ls", "list"},
		Short:   "List installed applications",
		Long: `List packages installed through every usable backend, sorted by name in
the active locale.`,
		Example: `  appshelf installed
  appshelf installed --backend flatpak
  appshelf installed --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstalled(cmd, s, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.backend, "backend", "b", "", "Only list packages from this backend")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output packages as JSON")

	return cmd
}

func runInstalled(cmd *cobra.Command, s *rootState, flags installedFlags) error {
	ctx := cmd.Context()
	holder := appstream.NewHolder(s.loadStore(ctx))
	reg := s.discover(ctx, holder)

	if flags.backend != "" {
		if _, ok := reg.Get(flags.backend); !ok {
			return apperrors.BackendNotFound(flags.backend)
		}
	}

	pkgs := reg.ListInstalled(ctx, s.cfg.Locale)
	if flags.backend != "" {
		pkgs = slices.DeleteFunc(pkgs, func(p backend.InstalledPackage) bool {
			return p.Backend != flags.backend
		})
	}

	if flags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pkgs)
	}

	out := s.writer(cmd)
	if reg.Len() == 0 {
		out.Warning("No package backends available")
		return nil
	}
	out.Installed(pkgs)
	return nil
}
