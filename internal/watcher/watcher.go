package watcher

import (
	"context"
	"time"
)

// Operation is a file system operation type.
type Operation int

const (
	OpCreate Operation = iota
	OpModify
	OpDelete
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one change to a watched path.
type FileEvent struct {
	// Path is absolute.
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// Watcher delivers debounced batches of file events.
type Watcher interface {
	// Start watches until Stop is called or ctx is cancelled.
	Start(ctx context.Context) error
	// Stop releases resources. Safe to call more than once.
	Stop() error
	// Events is closed when the watcher stops.
	Events() <-chan []FileEvent
	// Errors carries non-fatal errors and is closed when the watcher stops.
	Errors() <-chan error
}

// Options configures watchers.
type Options struct {
	// Patterns are the doublestar collection patterns to watch.
	Patterns []string

	// DebounceWindow is how long to wait for quiet before emitting.
	// Default: 500ms
	DebounceWindow time.Duration

	// PollInterval is the polling fallback interval.
	// Default: 30s
	PollInterval time.Duration

	// EventBufferSize is the number of batches buffered.
	// Default: 16
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  500 * time.Millisecond,
		PollInterval:    30 * time.Second,
		EventBufferSize: 16,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
