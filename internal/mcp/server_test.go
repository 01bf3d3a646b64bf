package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/backend"
	"github.com/Aman-CERP/appshelf/internal/catalog"
	"github.com/Aman-CERP/appshelf/internal/config"
	"github.com/Aman-CERP/appshelf/internal/telemetry"
)

// fakeCatalog serves a fixed snapshot.
type fakeCatalog struct {
	snap     catalog.Snapshot
	err      error
	progress *async.LoadProgress
	metrics  *telemetry.QueryMetrics
}

func (f *fakeCatalog) Snapshot(context.Context) (catalog.Snapshot, error) {
	return f.snap, f.err
}

func (f *fakeCatalog) Progress() *async.LoadProgress {
	return f.progress
}

func (f *fakeCatalog) Metrics() *telemetry.QueryMetrics {
	return f.metrics
}

// fakeBackend returns a fixed collection or error.
type fakeBackend struct {
	coll  *appstream.Collection
	err   error
	calls int
}

func (f *fakeBackend) Installed(context.Context) ([]backend.Package, error) {
	return nil, nil
}

func (f *fakeBackend) Appstream(context.Context, backend.Package) (*appstream.Collection, error) {
	f.calls++
	return f.coll, f.err
}

func component(id, name, summary string) *appstream.Component {
	return &appstream.Component{
		ID:      id,
		Type:    "desktop-application",
		Name:    appstream.Translatable{"C": name},
		Summary: appstream.Translatable{"C": summary},
	}
}

func testStore() *appstream.Store {
	return appstream.NewStoreFromCollections(map[string]*appstream.Collection{
		"flatpak:system:flathub/x86_64": {Origin: "flathub", Source: "/var/lib/flatpak/appstream.xml", Components: []*appstream.Component{
			component("org.mozilla.firefox", "Firefox", "Web browser"),
			component("org.gnome.Firewall", "Firewall", "Configure the firewall"),
		}},
		"debian": {Origin: "debian", Source: "/usr/share/swcatalog/xml/debian.xml.gz", Components: []*appstream.Component{
			component("org.gnome.Boxes", "Boxes", "Manage fire-resistant virtual machines"),
		}},
	}, nil, 16)
}

func newTestServer(t *testing.T) (*Server, *fakeCatalog, *fakeBackend) {
	t.Helper()

	gimp := &fakeBackend{coll: &appstream.Collection{Components: []*appstream.Component{
		component("org.gimp.GIMP", "GIMP", "Image editor"),
	}}}
	reg := backend.NewRegistry(map[string]backend.Backend{"dpkg": gimp})

	progress := async.NewLoadProgress()
	progress.SetBackends(1)
	progress.SetInstalled(2)

	cat := &fakeCatalog{
		progress: progress,
		metrics:  telemetry.NewQueryMetrics(),
		snap: catalog.Snapshot{
			Locale:   "en",
			Registry: reg,
			Backends: reg.Names(),
			Installed: []backend.InstalledPackage{
				{Backend: "dpkg", Package: backend.Package{ID: "gimp", Name: "GIMP", Version: "2.10"}},
				{Backend: "flatpak", Package: backend.Package{ID: "org.mozilla.firefox", Name: "Firefox"}},
			},
		},
	}

	cfg := config.NewConfig()
	cfg.Locale = "en"
	srv, err := NewServer(cat, appstream.NewHolder(testStore()), cfg)
	require.NoError(t, err)
	return srv, cat, gimp
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	_, err := NewServer(nil, appstream.NewHolder(nil), nil)
	assert.Error(t, err)

	_, err = NewServer(&fakeCatalog{}, nil, nil)
	assert.Error(t, err)
}

func TestServer_InfoAndTools(t *testing.T) {
	srv, _, _ := newTestServer(t)

	name, _ := srv.Info()
	assert.Equal(t, "appshelf", name)
	assert.NotNil(t, srv.MCPServer())

	var names []string
	for _, tool := range srv.ListTools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{ToolSearchPackages, ToolListInstalled, ToolShowPackage, ToolCatalogStatus}, names)
}

func TestServer_SearchDescriptionMatchesRanking(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var desc string
	for _, tool := range srv.ListTools() {
		if tool.Name == ToolSearchPackages {
			desc = tool.Description
		}
	}

	tests := []struct {
		phrase string
		want   bool
	}{
		{"exact name matches first", true},
		{"then name prefixes", true},
		{"whole-word", false},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			assert.Equal(t, tt.want, strings.Contains(desc, tt.phrase))
		})
	}
}

func TestServer_SearchPackages_RanksByTier(t *testing.T) {
	// Given: a store with name and summary matches for "fire"
	srv, _, _ := newTestServer(t)

	// When: searching
	got, err := srv.CallTool(context.Background(), ToolSearchPackages, map[string]any{"query": "fire"})
	require.NoError(t, err)
	out := got.(SearchPackagesOutput)

	// Then: name prefixes come before summary matches
	require.Equal(t, 3, out.Total)
	assert.Equal(t, "Firefox", out.Results[0].Name)
	assert.Equal(t, "Firewall", out.Results[1].Name)
	assert.Equal(t, "Boxes", out.Results[2].Name)
	assert.Equal(t, "flatpak", out.Results[0].Backend)
	assert.Equal(t, "flatpak:system:flathub/x86_64", out.Results[0].ID)
	assert.Equal(t, "org.mozilla.firefox", out.Results[0].ComponentID)
	require.NotNil(t, out.Results[2].Weight)
	assert.Greater(t, *out.Results[2].Weight, *out.Results[0].Weight)
}

func TestServer_SearchPackages_Limit(t *testing.T) {
	srv, _, _ := newTestServer(t)

	got, err := srv.CallTool(context.Background(), ToolSearchPackages, map[string]any{"query": "fire", "limit": 1})
	require.NoError(t, err)

	out := got.(SearchPackagesOutput)
	assert.Equal(t, 3, out.Total)
	assert.Len(t, out.Results, 1)
}

func TestServer_SearchPackages_InvalidQuery(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, q := range []string{"", "   "} {
		_, err := srv.CallTool(context.Background(), ToolSearchPackages, map[string]any{"query": q})

		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
	}
}

func TestServer_ListInstalled_FilterByBackend(t *testing.T) {
	srv, _, _ := newTestServer(t)

	got, err := srv.CallTool(context.Background(), ToolListInstalled, map[string]any{"backend": "dpkg"})
	require.NoError(t, err)

	out := got.(ListInstalledOutput)
	assert.Equal(t, 1, out.Total)
	require.Len(t, out.Packages, 1)
	assert.Equal(t, "GIMP", out.Packages[0].Name)
	assert.Equal(t, "2.10", out.Packages[0].Version)
}

func TestServer_ShowPackage_Installed(t *testing.T) {
	// Given: an installed dpkg package with metadata
	srv, _, gimp := newTestServer(t)
	args := map[string]any{"backend": "dpkg", "id": "gimp"}

	// When: showing it twice
	got, err := srv.CallTool(context.Background(), ToolShowPackage, args)
	require.NoError(t, err)
	_, err = srv.CallTool(context.Background(), ToolShowPackage, args)
	require.NoError(t, err)

	// Then: the backend's collection is described and cached
	out := got.(ShowPackageOutput)
	assert.Equal(t, "GIMP", out.Name)
	require.Len(t, out.Components, 1)
	assert.Equal(t, "Image editor", out.Components[0].Summary)
	assert.Equal(t, 1, gimp.calls)
}

func TestServer_ShowPackage_Component(t *testing.T) {
	srv, _, gimp := newTestServer(t)

	got, err := srv.CallTool(context.Background(), ToolShowPackage, map[string]any{"component_id": "org.gnome.Firewall"})
	require.NoError(t, err)

	// The whole collection is shown, without asking a backend.
	out := got.(ShowPackageOutput)
	assert.Equal(t, "flatpak", out.Backend)
	assert.Equal(t, "flatpak:system:flathub/x86_64", out.ID)
	assert.Equal(t, "Firewall", out.Name)
	assert.Len(t, out.Components, 2)
	assert.Zero(t, gimp.calls)
}

func TestServer_ShowPackage_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		code int
	}{
		{"no arguments", map[string]any{}, ErrCodeInvalidParams},
		{"unknown component", map[string]any{"component_id": "nope"}, ErrCodePackageNotFound},
		{"not installed", map[string]any{"backend": "dpkg", "id": "nope"}, ErrCodePackageNotFound},
		{"backend not registered", map[string]any{"backend": "flatpak", "id": "org.mozilla.firefox"}, ErrCodePackageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(t)

			_, err := srv.CallTool(context.Background(), ToolShowPackage, tt.args)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, tt.code, mcpErr.Code)
		})
	}
}

func TestServer_ShowPackage_NoMetadata(t *testing.T) {
	srv, _, gimp := newTestServer(t)
	gimp.err = backend.ErrNoMetadata

	_, err := srv.CallTool(context.Background(), ToolShowPackage, map[string]any{"backend": "dpkg", "id": "gimp"})

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeNoMetadata, mcpErr.Code)
}

func TestServer_CatalogStatus(t *testing.T) {
	srv, _, _ := newTestServer(t)
	_, err := srv.CallTool(context.Background(), ToolSearchPackages, map[string]any{"query": "nothing-matches"})
	require.NoError(t, err)

	got, err := srv.CallTool(context.Background(), ToolCatalogStatus, nil)
	require.NoError(t, err)

	out := got.(CatalogStatusOutput)
	assert.Equal(t, "en", out.Locale)
	assert.Equal(t, []string{"dpkg"}, out.Backends)
	assert.Equal(t, "ready", out.Loading.Status)
	assert.Equal(t, 2, out.Loading.Installed)
	assert.Equal(t, int64(1), out.Searches.TotalQueries)
	assert.Equal(t, []string{"nothing-matches"}, out.Searches.ZeroResultQueries)
}

func TestServer_CatalogStopped(t *testing.T) {
	srv, cat, _ := newTestServer(t)
	cat.err = catalog.ErrStopped

	_, err := srv.CallTool(context.Background(), ToolCatalogStatus, nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeCatalogNotReady, mcpErr.Code)
}

func TestServer_CallTool_UnknownTool(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.CallTool(context.Background(), "index_status", nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeMethodNotFound, mcpErr.Code)
}

func TestServer_CallTool_BadArguments(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_, err := srv.CallTool(context.Background(), ToolSearchPackages, map[string]any{"query": 42})

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestServer_ClampLimit(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.maxResults = 0

	assert.Equal(t, DefaultSearchLimit, srv.clampLimit(0, DefaultSearchLimit))
	assert.Equal(t, MaxLimit, srv.clampLimit(10_000, DefaultSearchLimit))

	srv.maxResults = 5
	assert.Equal(t, 5, srv.clampLimit(50, DefaultSearchLimit))
}

func TestServer_Collections(t *testing.T) {
	srv, _, _ := newTestServer(t)

	colls := srv.Collections()

	require.Len(t, colls, 2)
	byID := map[string]CollectionInfo{}
	for _, c := range colls {
		byID[c.ID] = c
	}
	assert.Equal(t, 2, byID["flatpak:system:flathub/x86_64"].Components)
	assert.Equal(t, "debian", byID["debian"].Origin)

	res, err := srv.handleCollections(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Contains(t, res.Contents[0].Text, `"id": "debian"`)
}
