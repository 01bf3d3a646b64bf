package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/configs"
	"github.com/Aman-CERP/appshelf/internal/config"
)

func TestConfigInit_CreatesTemplate(t *testing.T) {
	// Given: no config file yet
	testEnv(t)
	path := filepath.Join(t.TempDir(), "appshelf", "config.yaml")

	// When: running config init
	out, err := execute(t, "--config", path, "config", "init")

	// Then: the template is written
	require.NoError(t, err)
	assert.Contains(t, out, "Created configuration")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigInit_ExistingWithoutForce(t *testing.T) {
	cfg := testEnv(t)
	before, err := os.ReadFile(cfg)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "config", "init")

	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	after, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConfigInit_ForceUpgradesAndBacksUp(t *testing.T) {
	// Given: an existing config that sets a few values
	cfg := testEnv(t)

	// When: re-initializing with --force
	out, err := execute(t, "--config", cfg, "config", "init", "--force")

	// Then: a backup exists and the rewritten file keeps the values
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration upgraded")
	backups, err := config.ListBackups(cfg)
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	loaded, err := config.Load(cfg)
	require.NoError(t, err)
	assert.Equal(t, "en-US", loaded.Locale)
	assert.Equal(t, []string{"dpkg"}, loaded.Backends.Enabled)
	assert.Equal(t, "error", loaded.Log.Level)
	assert.Equal(t, 128, loaded.Catalog.SelectionCacheSize)
}

func TestConfigInit_ForceReplacesInvalidFile(t *testing.T) {
	testEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: [not, a, map]\n"), 0o644))

	out, err := execute(t, "--config", path, "config", "init", "--force")

	require.NoError(t, err)
	assert.Contains(t, out, "replaced by the template")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))
}

func TestConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		testEnv(t)

		out, err := execute(t, "--config", "/tmp/elsewhere.yaml", "config", "path")

		require.NoError(t, err)
		assert.Equal(t, "/tmp/elsewhere.yaml", strings.TrimSpace(out))
	})

	t.Run("user config path", func(t *testing.T) {
		testEnv(t)

		out, err := execute(t, "config", "path")

		require.NoError(t, err)
		assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(out))
	})
}

func TestConfigShow(t *testing.T) {
	cfg := testEnv(t)

	t.Run("yaml", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "config", "show")

		require.NoError(t, err)
		assert.Contains(t, out, "locale: en-US")
		assert.Contains(t, out, "selection_cache_size: 128")
	})

	t.Run("locale flag applied", func(t *testing.T) {
		out, err := execute(t, "--config", cfg, "--locale", "de_AT.UTF-8", "config", "show", "--json")

		require.NoError(t, err)
		assert.Contains(t, out, `"locale": "de-AT"`)
	})
}
