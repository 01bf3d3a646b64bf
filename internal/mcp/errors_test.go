package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

func TestMapError_NilError(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_Sentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not ready", ErrCatalogNotReady, ErrCodeCatalogNotReady},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeTimeout},
		{"package", ErrPackageNotFound, ErrCodePackageNotFound},
		{"tool", ErrToolNotFound, ErrCodeMethodNotFound},
		{"params", ErrInvalidParams, ErrCodeInvalidParams},
		{"resource", ErrResourceNotFound, ErrCodeMethodNotFound},
		{"wrapped", fmt.Errorf("ctx: %w", ErrPackageNotFound), ErrCodePackageNotFound},
		{"unknown", errors.New("boom"), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)
			require.NotNil(t, result)
			assert.Equal(t, tt.code, result.Code)
		})
	}
}

func TestMapError_CatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"backend unavailable", apperrors.BackendError("flatpak", "flatpak not found", nil), ErrCodeBackendUnavailable},
		{"backend not found", apperrors.BackendNotFound("snap"), ErrCodePackageNotFound},
		{"empty query", apperrors.New(apperrors.ErrCodeQueryEmpty, "empty", nil), ErrCodeInvalidParams},
		{"fetch failed", apperrors.FetchError("dpkg", "gimp", errors.New("io")), ErrCodeInternalError},
		{
			"fetch without metadata",
			apperrors.FetchError("dpkg", "gimp", apperrors.New(apperrors.ErrCodeNoMetadata, "none", nil)),
			ErrCodeNoMetadata,
		},
		{"config", apperrors.ConfigError("bad", nil), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MapError(tt.err)
			require.NotNil(t, result)
			assert.Equal(t, tt.code, result.Code)
		})
	}
}

func TestMapError_KeepsMCPError(t *testing.T) {
	// Given: an error that is already an MCP error
	orig := NewInvalidParamsError("query is required")

	// When: mapping it again
	result := MapError(fmt.Errorf("wrapped: %w", orig))

	// Then: it is returned unchanged
	assert.Same(t, orig, result)
}

func TestMapError_IncludesSuggestion(t *testing.T) {
	err := apperrors.BackendError("flatpak", "flatpak not found", nil).WithSuggestion("Install flatpak.")

	result := MapError(err)

	assert.Equal(t, "flatpak not found Install flatpak.", result.Message)
}

func TestMCPError_Error(t *testing.T) {
	assert.Equal(t, "MCP error -32601: Tool 'nope' not found.", NewMethodNotFoundError("nope").Error())
	assert.Contains(t, NewPackageNotFoundError("dpkg:gimp").Message, "dpkg:gimp")
	assert.Contains(t, NewResourceNotFoundError("appshelf://x").Message, "appshelf://x")
}
