package errors

import (
	"errors"
	"fmt"
)

// CatalogError is the structured error type for appshelf.
// It carries enough context for logging and for the "missing information"
// presentation the catalog uses instead of error dialogs.
type CatalogError struct {
	// Code is the unique error code (e.g., "ERR_407_BACKEND_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Backend, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so sentinel values work with errors.Is.
func (e *CatalogError) Is(target error) bool {
	if t, ok := target.(*CatalogError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *CatalogError) WithDetail(key, value string) *CatalogError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *CatalogError) WithSuggestion(suggestion string) *CatalogError {
	e.Suggestion = suggestion
	return e
}

// New creates a new CatalogError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *CatalogError {
	return &CatalogError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CatalogError from an existing error.
// The error's message becomes the CatalogError message.
func Wrap(code string, err error) *CatalogError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *CatalogError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ParseError creates an error for a malformed or unreadable appstream file.
func ParseError(path string, cause error) *CatalogError {
	return New(ErrCodeFileCorrupt, "failed to parse appstream file", cause).
		WithDetail("path", path)
}

// BackendError creates an error for a backend that could not serve a request.
func BackendError(backend, message string, cause error) *CatalogError {
	return New(ErrCodeBackendUnavailable, message, cause).
		WithDetail("backend", backend)
}

// BackendNotFound creates the recoverable lookup-miss error for a backend name.
func BackendNotFound(name string) *CatalogError {
	return New(ErrCodeBackendNotFound, fmt.Sprintf("backend %q is not registered", name), nil).
		WithDetail("backend", name)
}

// FetchError creates an error for a failed appstream fetch of one package.
func FetchError(backend, packageID string, cause error) *CatalogError {
	return New(ErrCodeMetadataFetchFailed,
		fmt.Sprintf("failed to get appstream data for %s", packageID), cause).
		WithDetail("backend", backend).
		WithDetail("package_id", packageID)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *CatalogError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *CatalogError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// GetCode extracts the error code from a CatalogError anywhere in the chain.
// Returns empty string if none is found.
func GetCode(err error) string {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from a CatalogError.
// Returns empty string if not a CatalogError.
func GetCategory(err error) Category {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return errors.Is(err, &CatalogError{Code: code})
}
