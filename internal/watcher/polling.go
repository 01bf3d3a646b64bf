package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// PollingWatcher re-expands the collection patterns on an interval and
// reports files that appeared, changed or disappeared.
type PollingWatcher struct {
	patterns []string
	interval time.Duration

	mu      sync.Mutex
	state   map[string]fileSnapshot
	stopped bool

	events chan FileEvent
	errors chan error
	stopCh chan struct{}
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
}

// NewPollingWatcher returns a poller for patterns.
func NewPollingWatcher(patterns []string, interval time.Duration) *PollingWatcher {
	return &PollingWatcher{
		patterns: patterns,
		interval: interval,
		state:    make(map[string]fileSnapshot),
		events:   make(chan FileEvent, 100),
		errors:   make(chan error, 10),
		stopCh:   make(chan struct{}),
	}
}

// Start takes a baseline and then polls until ctx is cancelled or Stop is
// called.
func (p *PollingWatcher) Start(ctx context.Context) error {
	p.mu.Lock()
	p.state = p.scan()
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *PollingWatcher) scan() map[string]fileSnapshot {
	current := make(map[string]fileSnapshot)
	for _, pattern := range p.patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			p.emitError(err)
			continue
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			current[path] = fileSnapshot{modTime: info.ModTime(), size: info.Size()}
		}
	}
	return current
}

// poll compares the current matches with the previous scan.
func (p *PollingWatcher) poll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	current := p.scan()
	now := time.Now()
	for path, snap := range current {
		prev, existed := p.state[path]
		switch {
		case !existed:
			p.emit(FileEvent{Path: path, Operation: OpCreate, Timestamp: now})
		case prev != snap:
			p.emit(FileEvent{Path: path, Operation: OpModify, Timestamp: now})
		}
	}
	for path := range p.state {
		if _, ok := current[path]; !ok {
			p.emit(FileEvent{Path: path, Operation: OpDelete, Timestamp: now})
		}
	}
	p.state = current
}

// emit must be called with p.mu held.
func (p *PollingWatcher) emit(event FileEvent) {
	if p.stopped {
		return
	}
	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()))
	}
}

// emitError must be called with p.mu held.
func (p *PollingWatcher) emitError(err error) {
	if p.stopped {
		return
	}
	select {
	case p.errors <- err:
	default:
	}
}

// Stop stops polling and closes the channels.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// Errors returns the channel of errors.
func (p *PollingWatcher) Errors() <-chan error {
	return p.errors
}
