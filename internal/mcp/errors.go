// Package mcp exposes the package catalog over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// Custom MCP error codes.
const (
	// ErrCodeCatalogNotReady indicates the catalog is still loading.
	ErrCodeCatalogNotReady = -32001

	// ErrCodeBackendUnavailable indicates a package backend failed.
	ErrCodeBackendUnavailable = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodePackageNotFound indicates no package or component matched.
	ErrCodePackageNotFound = -32004

	// ErrCodeNoMetadata indicates a package has no appstream metadata.
	ErrCodeNoMetadata = -32005

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrCatalogNotReady indicates the catalog has stopped or not started.
	ErrCatalogNotReady = errors.New("catalog not ready")

	// ErrPackageNotFound indicates no package or component matched.
	ErrPackageNotFound = errors.New("package not found")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrResourceNotFound indicates the requested resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var catErr *apperrors.CatalogError
	if errors.As(err, &catErr) {
		return mapCatalogError(catErr)
	}

	switch {
	case errors.Is(err, ErrCatalogNotReady):
		return &MCPError{
			Code:    ErrCodeCatalogNotReady,
			Message: "Catalog is not running.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	case errors.Is(err, ErrPackageNotFound):
		return &MCPError{
			Code:    ErrCodePackageNotFound,
			Message: "Package not found.",
		}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{
			Code:    ErrCodeMethodNotFound,
			Message: "Tool not found.",
		}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid parameters.",
		}
	case errors.Is(err, ErrResourceNotFound):
		return &MCPError{
			Code:    ErrCodeMethodNotFound,
			Message: "Resource not found.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown methods/tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

// NewPackageNotFoundError creates an error naming the missing package.
func NewPackageNotFoundError(what string) *MCPError {
	return &MCPError{
		Code:    ErrCodePackageNotFound,
		Message: fmt.Sprintf("Package '%s' not found.", what),
	}
}

// NewResourceNotFoundError creates an error for unknown resources.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}

func mapCatalogError(ce *apperrors.CatalogError) *MCPError {
	message := ce.Message
	if ce.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ce.Message, ce.Suggestion)
	}

	// A fetch failure wrapping "no metadata" is reported as such.
	if ce.Code == apperrors.ErrCodeNoMetadata || apperrors.HasCode(ce.Cause, apperrors.ErrCodeNoMetadata) {
		return &MCPError{Code: ErrCodeNoMetadata, Message: message}
	}

	switch ce.Category {
	case apperrors.CategoryBackend:
		return &MCPError{Code: ErrCodeBackendUnavailable, Message: message}
	case apperrors.CategoryValidation:
		if ce.Code == apperrors.ErrCodeBackendNotFound {
			return &MCPError{Code: ErrCodePackageNotFound, Message: message}
		}
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default: // Config, IO, Internal
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
