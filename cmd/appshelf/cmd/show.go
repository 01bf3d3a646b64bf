package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/catalog"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/search"
)

type showFlags struct {
	component string
	json      bool
}

// componentJSON is one localized component in show --json output.
type componentJSON struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	PkgName     string `json:"pkgname,omitempty"`
	Name        string `json:"name"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
}

type showJSON struct {
	catalog.Selected
	Components []componentJSON `json:"components"`
}

func newShowCmd(s *rootState) *cobra.Command {
	var flags showFlags

	cmd := &cobra.Command{
		Use:   "show [<backend> <id>]",
		Short: "Show appstream details of a package",
		Long: `Show the full appstream metadata of an installed package, fetched through
its backend, or of any component in the loaded collections with --component.`,
		Example: `  appshelf show flatpak org.mozilla.firefox
  appshelf show dpkg gimp
  appshelf show --component org.gnome.Boxes`,
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.component != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				sel *catalog.Selected
				err error
			)
			if flags.component != "" {
				sel, err = showComponent(cmd, s, flags.component)
			} else {
				sel, err = showInstalled(cmd, s, args[0], args[1])
			}
			if err != nil {
				return err
			}

			if flags.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(describe(*sel, s.cfg.Locale))
			}
			s.writer(cmd).Selected(*sel, s.cfg.Locale)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.component, "component", "c", "", "Show a component from the loaded collections by id")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output details as JSON")

	return cmd
}

// showComponent selects a component the way choosing a search result does:
// its whole collection, without asking a backend.
func showComponent(cmd *cobra.Command, s *rootState, id string) (*catalog.Selected, error) {
	store := s.loadStore(cmd.Context())
	ref, ok := store.ComponentByID(id)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeNoMetadata, "no component with id "+id, nil).
			WithDetail("component_id", id).
			WithSuggestion("Use 'appshelf search' to find component ids")
	}

	locale := s.cfg.Locale
	sel := catalog.SelectionFromResult(search.Result{
		Backend:     search.DefaultAttributor(ref.CollectionID, ref.Collection, ref.Component),
		ID:          ref.CollectionID,
		ComponentID: ref.Component.ID,
		Name:        ref.Component.Name.Get(locale),
		Summary:     ref.Component.Summary.Get(locale),
		Icon:        store.Icon(ref.Collection.Origin, ref.Component),
		Collection:  ref.Collection,
		Component:   ref.Component,
	})
	return &sel, nil
}

// showInstalled fetches full metadata for an installed package.
func showInstalled(cmd *cobra.Command, s *rootState, backendName, id string) (*catalog.Selected, error) {
	ctx := cmd.Context()
	holder := appstream.NewHolder(s.loadStore(ctx))
	reg := s.discover(ctx, holder)

	resolver := catalog.NewResolver(reg, s.cfg.Catalog.SelectionCacheSize)
	b, err := resolver.Lookup(backendName)
	if err != nil {
		return nil, err
	}

	pkgs, err := b.Installed(ctx)
	if err != nil {
		return nil, apperrors.BackendError(backendName, "failed to list installed packages", err)
	}
	for _, p := range pkgs {
		if p.ID == id {
			return resolver.Resolve(ctx, backendName, p)
		}
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "package "+id+" is not installed", nil).
		WithDetail("backend", backendName).
		WithSuggestion("Use 'appshelf installed --backend " + backendName + "' to list package ids")
}

func describe(sel catalog.Selected, locale string) showJSON {
	out := showJSON{Selected: sel, Components: []componentJSON{}}
	if sel.Collection == nil {
		return out
	}
	for _, c := range sel.Collection.Components {
		out.Components = append(out.Components, componentJSON{
			ID:          c.ID,
			Type:        c.Type,
			PkgName:     c.PkgName,
			Name:        c.Name.Get(locale),
			Summary:     c.Summary.Get(locale),
			Description: c.Description.Get(locale),
		})
	}
	return out
}
