package search

import (
	"strings"

	"github.com/Aman-CERP/appshelf/internal/appstream"
)

// BackendAppstream attributes results that no package source claims.
const BackendAppstream = "appstream"

// Attributor decides which backend a search result belongs to.
type Attributor func(collectionID string, coll *appstream.Collection, comp *appstream.Component) string

// DefaultAttributor maps flatpak remote collections to "flatpak", distro
// components naming a package to "dpkg", and everything else to "appstream".
func DefaultAttributor(collectionID string, _ *appstream.Collection, comp *appstream.Component) string {
	switch {
	case strings.HasPrefix(collectionID, "flatpak:"):
		return "flatpak"
	case comp != nil && comp.PkgName != "":
		return "dpkg"
	default:
		return BackendAppstream
	}
}
