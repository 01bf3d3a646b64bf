package cmd

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/config"
	"github.com/Aman-CERP/appshelf/internal/ui"
)

func TestBackendsCmd_JSON(t *testing.T) {
	// Given: only dpkg is enabled
	cfg := testEnv(t)

	// When: listing backends
	out, err := execute(t, "--config", cfg, "backends", "--json")

	// Then: dpkg is available and flatpak is reported as disabled
	require.NoError(t, err)
	var got []backendStatus
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []backendStatus{
		{Name: "dpkg", Enabled: true, Available: true},
		{Name: "flatpak", Enabled: false, Available: false},
	}, got)
}

func TestBackendsCmd_Text(t *testing.T) {
	cfg := testEnv(t)

	out, err := execute(t, "--config", cfg, "backends")

	require.NoError(t, err)
	assert.Contains(t, out, "dpkg")
	assert.Contains(t, out, "flatpak (disabled)")
}

func TestCollectionsCmd(t *testing.T) {
	cfg := testEnv(t)

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "collections", "--json")

		require.NoError(t, err)
		var got []collectionEntry
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "catalog", got[0].ID)
		assert.Equal(t, "testing", got[0].Origin)
		assert.Equal(t, 2, got[0].Components)
	})

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "collections")

		require.NoError(t, err)
		assert.Contains(t, out, "catalog")
		assert.Contains(t, out, "1 collections, 2 components")
	})
}

func TestStatusCmd_JSON(t *testing.T) {
	// Given: one collection and one installed application
	cfg := testEnv(t)

	// When: loading the catalog for status
	out, err := execute(t, "--config", cfg, "status", "--json")

	// Then: loading completes and reports what was found
	require.NoError(t, err)
	var info ui.StatusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "en-US", info.Locale)
	assert.Equal(t, []string{"dpkg"}, info.Backends)
	assert.Equal(t, "ready", info.Load.Status)
	assert.Equal(t, 1, info.Load.Collections)
	assert.Equal(t, 2, info.Load.Components)
	assert.Equal(t, 1, info.Load.Installed)
	assert.Equal(t, "off", info.Watcher)
}

func TestStatusCmd_Text(t *testing.T) {
	cfg := testEnv(t)

	out, err := execute(t, "--config", cfg, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Catalog Status")
	assert.Contains(t, out, "Backends:    dpkg")
}

func TestStartWatcher(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		watch bool
		want  []string
	}{
		{name: "disabled", watch: false, want: []string{"off"}},
		{name: "enabled", watch: true, want: []string{"fsnotify", "polling"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.Appstream.Paths = []string{filepath.Join(dir, "*.xml")}
			cfg.Appstream.Watch = tt.watch
			s := &rootState{cfg: cfg}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			app := s.newApp(appstream.NewHolder(nil), nil, nil)

			kind := s.startWatcher(ctx, app)

			assert.Contains(t, tt.want, kind)
		})
	}
}
