package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

func TestRootCmd_NotATerminal_ListsInstalled(t *testing.T) {
	// Given: a config with one installed dpkg application
	cfg := testEnv(t)

	// When: running without a subcommand into a buffer
	out, err := execute(t, "--config", cfg)

	// Then: the installed list is printed instead of the browser
	require.NoError(t, err)
	assert.Contains(t, out, "Firefox")
	assert.Contains(t, out, "128.0-1")
	assert.NotContains(t, out, "libc6", "packages without metadata are not applications")
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	cfg := testEnv(t)

	_, err := execute(t, "--config", cfg, "firefox")

	assert.Error(t, err)
}

func TestRootCmd_InvalidLocaleFlag(t *testing.T) {
	cfg := testEnv(t)

	_, err := execute(t, "--config", cfg, "--locale", "not a locale!", "collections")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--locale")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	// Given: an environment override that fails validation
	cfg := testEnv(t)
	t.Setenv("APPSHELF_CATALOG_WORKERS", "0")

	// When: running a command that needs the config
	_, err := execute(t, "--config", cfg, "collections")

	// Then: loading fails before the command runs
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.workers")
}

func TestRootCmd_SkipConfigCommandsIgnoreBrokenConfig(t *testing.T) {
	cfg := testEnv(t)
	t.Setenv("APPSHELF_CATALOG_WORKERS", "0")

	out, err := execute(t, "--config", cfg, "version", "--short")

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{"search", "installed", "show", "backends", "collections", "status", "serve", "config", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "coded error shows code and hint",
			err:      apperrors.BackendNotFound("snap").WithSuggestion("Enable it first"),
			contains: []string{"Error: backend \"snap\" is not registered", "Hint: Enable it first", "ERR_407"},
		},
		{
			name:     "plain error shows message",
			err:      errors.New("unknown flag: --nope"),
			contains: []string{"Error: unknown flag: --nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}
