// Package backend defines the package-source capability shared by every
// package manager appshelf knows about, and the registry that holds them.
package backend

import (
	"context"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// Backend names.
const (
	NameFlatpak = "flatpak"
	NameDpkg    = "dpkg"
)

// Package is an installed package as a backend reports it. It is a small
// value that is copied freely between goroutines.
type Package struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Version string         `json:"version,omitempty"`
	Summary string         `json:"summary,omitempty"`
	Icon    appstream.Icon `json:"icon"`
}

// InstalledPackage tags a Package with the backend that reported it.
type InstalledPackage struct {
	Backend string `json:"backend"`
	Package
}

// Backend is a package source.
//
// Implementations must be safe for concurrent use: Installed and Appstream
// run on worker goroutines, possibly at the same time.
type Backend interface {
	// Installed lists the packages currently installed through this source.
	Installed(ctx context.Context) ([]Package, error)
	// Appstream returns the full metadata collection for one package.
	Appstream(ctx context.Context, pkg Package) (*appstream.Collection, error)
}

// ErrNoMetadata matches (via errors.Is) failures where a package has no
// appstream metadata at all.
var ErrNoMetadata error = apperrors.New(apperrors.ErrCodeNoMetadata, "no appstream metadata", nil)

func noMetadata(backend, id string) error {
	return apperrors.New(apperrors.ErrCodeNoMetadata, "no appstream metadata for "+id, nil).
		WithDetail("backend", backend).
		WithDetail("package_id", id)
}

// localComponent wraps a store component in a one-component collection that
// keeps the origin of the collection it came from.
func localComponent(ref appstream.ComponentRef) *appstream.Collection {
	return &appstream.Collection{
		Origin:     ref.Collection.Origin,
		Source:     ref.Collection.Source,
		Components: []*appstream.Component{ref.Component},
	}
}
