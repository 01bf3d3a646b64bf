package backend

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// FlatpakOptions configures the flatpak backend.
type FlatpakOptions struct {
	// Command is the flatpak executable (default "flatpak").
	Command string
	// Installations are installation roots holding app/<id>/current/active.
	Installations []string
	// Runner executes the flatpak command (default ExecRunner{}).
	Runner Runner
	// Store supplies appstream data for icons and metadata fallback.
	Store *appstream.Holder
	// Locale selects translated component names.
	Locale string
}

// Flatpak lists flatpak applications through the flatpak CLI and reads the
// metainfo files of installed applications.
type Flatpak struct {
	command       string
	installations []string
	runner        Runner
	store         *appstream.Holder
	locale        string
}

// NewFlatpak returns a flatpak backend.
func NewFlatpak(opts FlatpakOptions) *Flatpak {
	if opts.Command == "" {
		opts.Command = "flatpak"
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	return &Flatpak{
		command:       opts.Command,
		installations: opts.Installations,
		runner:        opts.Runner,
		store:         opts.Store,
		locale:        opts.Locale,
	}
}

var flatpakListArgs = []string{"list", "--app", "--columns=application,name,version,description,origin"}

// Installed implements Backend.
func (f *Flatpak) Installed(ctx context.Context) ([]Package, error) {
	out, err := f.runner.Run(ctx, f.command, flatpakListArgs...)
	if err != nil {
		return nil, apperrors.BackendError(NameFlatpak, "failed to list flatpak applications", err)
	}

	store := f.store.Load()
	var pkgs []Package
	seen := make(map[string]bool)

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Split(sc.Text(), "\t")
		id := strings.TrimSpace(fields[0])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		pkg := Package{ID: id, Name: id, Icon: appstream.PlaceholderIcon()}
		if name := field(fields, 1); name != "" {
			pkg.Name = name
		}
		pkg.Version = field(fields, 2)
		pkg.Summary = field(fields, 3)
		origin := field(fields, 4)

		if ref, ok := componentFromOrigin(store, id, origin); ok {
			if pkg.Name == id {
				if name := ref.Component.Name.Get(f.locale); name != "" {
					pkg.Name = name
				}
			}
			if pkg.Summary == "" {
				pkg.Summary = ref.Component.Summary.Get(f.locale)
			}
			pkg.Icon = store.Icon(ref.Collection.Origin, ref.Component)
		}
		pkgs = append(pkgs, pkg)
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.BackendError(NameFlatpak, "failed to read flatpak output", err)
	}
	return pkgs, nil
}

// Appstream implements Backend. The installed metainfo file is preferred;
// the remote's collection entry is used when the app ships none.
func (f *Flatpak) Appstream(ctx context.Context, pkg Package) (*appstream.Collection, error) {
	for _, path := range f.metainfoPaths(pkg.ID) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		coll, err := appstream.LoadFile(path)
		if err != nil {
			if !apperrors.HasCode(err, apperrors.ErrCodeFileNotFound) {
				slog.Warn("failed to read flatpak metainfo", apperrors.LogAttrs(err)...)
			}
			continue
		}
		if len(coll.Components) > 0 {
			return coll, nil
		}
	}

	if ref, ok := f.store.Load().ComponentByID(pkg.ID); ok {
		return localComponent(ref), nil
	}
	return nil, noMetadata(NameFlatpak, pkg.ID)
}

func (f *Flatpak) metainfoPaths(id string) []string {
	var paths []string
	for _, inst := range f.installations {
		share := filepath.Join(inst, "app", id, "current", "active", "files", "share")
		paths = append(paths,
			filepath.Join(share, "metainfo", id+".metainfo.xml"),
			filepath.Join(share, "metainfo", id+".appdata.xml"),
			filepath.Join(share, "appdata", id+".appdata.xml"),
		)
	}
	return paths
}

// componentFromOrigin prefers the component from the flatpak remote the app
// was installed from.
func componentFromOrigin(store *appstream.Store, id, origin string) (appstream.ComponentRef, bool) {
	refs := store.ComponentsByID(id)
	for _, ref := range refs {
		if origin != "" && ref.Collection.Origin == origin {
			return ref, true
		}
	}
	if len(refs) > 0 {
		return refs[0], true
	}
	return appstream.ComponentRef{}, false
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}
