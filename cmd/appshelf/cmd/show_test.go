package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

type showResult struct {
	Backend     string          `json:"backend"`
	ID          string          `json:"id"`
	ComponentID string          `json:"component_id"`
	Name        string          `json:"name"`
	Components  []componentJSON `json:"components"`
}

func TestShowCmd_Installed(t *testing.T) {
	// Given: firefox installed through dpkg with no metainfo files
	cfg := testEnv(t)

	// When: showing it
	out, err := execute(t, "--config", cfg, "show", "dpkg", "firefox", "--json")

	// Then: metadata falls back to the store component naming the package
	require.NoError(t, err)
	var got showResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dpkg", got.Backend)
	assert.Equal(t, "firefox", got.ID)
	assert.Equal(t, "Firefox", got.Name)
	require.Len(t, got.Components, 1)
	assert.Equal(t, "org.mozilla.firefox", got.Components[0].ID)
	assert.Equal(t, "Browse the web.", got.Components[0].Description)
}

func TestShowCmd_InstalledText(t *testing.T) {
	cfg := testEnv(t)

	out, err := execute(t, "--config", cfg, "show", "dpkg", "firefox")

	require.NoError(t, err)
	assert.Contains(t, out, "Firefox")
	assert.Contains(t, out, "  Browse the web.")
}

func TestShowCmd_Component(t *testing.T) {
	// Given: a component no backend claims
	cfg := testEnv(t)

	// When: showing it by component id
	out, err := execute(t, "--config", cfg, "show", "--component", "org.gnome.Firewall", "--json")

	// Then: the whole collection is shown without a backend fetch
	require.NoError(t, err)
	var got showResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "appstream", got.Backend)
	assert.Equal(t, "catalog", got.ID)
	assert.Equal(t, "org.gnome.Firewall", got.ComponentID)
	assert.Len(t, got.Components, 2)
}

func TestShowCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{name: "unknown backend", args: []string{"show", "flatpak", "org.mozilla.firefox"}, code: apperrors.ErrCodeBackendNotFound},
		{name: "not installed", args: []string{"show", "dpkg", "gimp"}, code: apperrors.ErrCodeInvalidInput},
		{name: "unknown component", args: []string{"show", "--component", "org.example.Nope"}, code: apperrors.ErrCodeNoMetadata},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEnv(t)

			_, err := execute(t, append([]string{"--config", cfg}, tt.args...)...)

			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetCode(err))
		})
	}
}

func TestShowCmd_ArgValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "one argument", args: []string{"show", "dpkg"}},
		{name: "component with arguments", args: []string{"show", "--component", "x", "dpkg", "firefox"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testEnv(t)

			_, err := execute(t, append([]string{"--config", cfg}, tt.args...)...)

			assert.Error(t, err)
		})
	}
}
