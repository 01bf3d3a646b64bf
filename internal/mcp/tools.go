package mcp

import (
	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/telemetry"
)

// SearchPackagesInput defines the input schema for the search_packages tool.
type SearchPackagesInput struct {
	Query string `json:"query" jsonschema:"text to look for in application names and summaries, matched case-insensitively"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 20"`
}

// SearchPackagesOutput defines the output schema for the search_packages tool.
type SearchPackagesOutput struct {
	Query   string         `json:"query"`
	Total   int            `json:"total" jsonschema:"number of matches before the limit was applied"`
	Results []PackageEntry `json:"results"`
}

// ListInstalledInput defines the input schema for the list_installed tool.
type ListInstalledInput struct {
	Backend string `json:"backend,omitempty" jsonschema:"only list packages from this backend (flatpak, dpkg)"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of packages, default 100"`
}

// ListInstalledOutput defines the output schema for the list_installed tool.
type ListInstalledOutput struct {
	Total    int            `json:"total"`
	Packages []PackageEntry `json:"packages"`
}

// PackageEntry is one row of a search or installed listing.
type PackageEntry struct {
	Backend     string         `json:"backend"`
	ID          string         `json:"id"`
	ComponentID string         `json:"component_id,omitempty"`
	Name        string         `json:"name"`
	Version     string         `json:"version,omitempty"`
	Summary     string         `json:"summary,omitempty"`
	Weight      *int           `json:"weight,omitempty" jsonschema:"match tier, 0 is best"`
	Icon        appstream.Icon `json:"icon"`
}

// ShowPackageInput defines the input schema for the show_package tool.
// Either ComponentID, or Backend with ID, must be set.
type ShowPackageInput struct {
	Backend     string `json:"backend,omitempty" jsonschema:"backend of an installed package"`
	ID          string `json:"id,omitempty" jsonschema:"id of an installed package within its backend"`
	ComponentID string `json:"component_id,omitempty" jsonschema:"appstream component id from the metadata store"`
}

// ShowPackageOutput defines the output schema for the show_package tool.
type ShowPackageOutput struct {
	Backend    string            `json:"backend"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Summary    string            `json:"summary,omitempty"`
	Icon       appstream.Icon    `json:"icon"`
	Components []ComponentOutput `json:"components"`
}

// ComponentOutput is one appstream component, localized.
type ComponentOutput struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	PkgName     string `json:"pkgname,omitempty"`
	Name        string `json:"name"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
}

// CatalogStatusInput defines the input schema for the catalog_status tool (no parameters).
type CatalogStatusInput struct{}

// CatalogStatusOutput defines the output schema for the catalog_status tool.
type CatalogStatusOutput struct {
	Locale   string             `json:"locale"`
	Backends []string           `json:"backends"`
	Loading  async.LoadSnapshot `json:"loading"`
	Searches telemetry.Snapshot `json:"searches"`
}
