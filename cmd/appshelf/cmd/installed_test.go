package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/internal/backend"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

func TestInstalledCmd_JSON(t *testing.T) {
	// Given: dpkg reports firefox and libc6 as installed
	cfg := testEnv(t)

	// When: listing installed packages as JSON
	out, err := execute(t, "--config", cfg, "installed", "--json")

	// Then: only the package with appstream metadata is listed
	require.NoError(t, err)
	var pkgs []backend.InstalledPackage
	require.NoError(t, json.Unmarshal([]byte(out), &pkgs))
	require.Len(t, pkgs, 1)
	assert.Equal(t, "dpkg", pkgs[0].Backend)
	assert.Equal(t, "firefox", pkgs[0].ID)
	assert.Equal(t, "Firefox", pkgs[0].Name)
	assert.Equal(t, "Web browser", pkgs[0].Summary)
}

func TestInstalledCmd_BackendFilter(t *testing.T) {
	cfg := testEnv(t)

	out, err := execute(t, "--config", cfg, "installed", "--backend", "dpkg")

	require.NoError(t, err)
	assert.Contains(t, out, "Firefox")
}

func TestInstalledCmd_UnknownBackend(t *testing.T) {
	// Given: only dpkg is enabled
	cfg := testEnv(t)

	// When: filtering by flatpak
	_, err := execute(t, "--config", cfg, "installed", "--backend", "flatpak")

	// Then: the lookup miss is reported with its code
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendNotFound))
}
