// Package async runs catalog work off the coordinating goroutine and tracks
// startup progress.
package async

import (
	"sync"
	"time"
)

// LoadStatus is the overall catalog loading state.
type LoadStatus string

const (
	// StatusLoading means startup work is still running.
	StatusLoading LoadStatus = "loading"
	// StatusReady means the store, backends and installed list are loaded.
	StatusReady LoadStatus = "ready"
	// StatusError means loading stopped early.
	StatusError LoadStatus = "error"
)

// LoadStage is the startup step in progress.
type LoadStage string

const (
	StageStore     LoadStage = "store"
	StageBackends  LoadStage = "backends"
	StageInstalled LoadStage = "installed"
	StageDone      LoadStage = "done"
)

// LoadSnapshot is an immutable copy of LoadProgress.
type LoadSnapshot struct {
	Status         string `json:"status"`
	Stage          string `json:"stage"`
	Collections    int    `json:"collections"`
	Components     int    `json:"components"`
	Backends       int    `json:"backends"`
	Installed      int    `json:"installed"`
	StoreReloads   int    `json:"store_reloads"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// LoadProgress tracks catalog loading. It is safe for concurrent use.
type LoadProgress struct {
	mu sync.RWMutex

	status       LoadStatus
	stage        LoadStage
	collections  int
	components   int
	backends     int
	installed    int
	storeReloads int
	startTime    time.Time
	errorMessage string
}

// NewLoadProgress returns a tracker in the loading state.
func NewLoadProgress() *LoadProgress {
	return &LoadProgress{
		status:    StatusLoading,
		stage:     StageStore,
		startTime: time.Now(),
	}
}

// SetStage moves to the next startup step.
func (p *LoadProgress) SetStage(stage LoadStage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stage = stage
}

// SetStore records the size of the loaded store. Calls after the first count
// as reloads.
func (p *LoadProgress) SetStore(collections, components int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != StageStore {
		p.storeReloads++
	}
	p.collections = collections
	p.components = components
}

// SetBackends records the number of registered backends.
func (p *LoadProgress) SetBackends(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.backends = n
}

// SetInstalled records the size of the installed list and marks loading done.
func (p *LoadProgress) SetInstalled(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.installed = n
	p.stage = StageDone
	if p.status == StatusLoading {
		p.status = StatusReady
	}
}

// SetError marks loading as failed.
func (p *LoadProgress) SetError(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusError
	p.errorMessage = message
}

// IsLoading reports whether startup is still in progress.
func (p *LoadProgress) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.status == StatusLoading
}

// Snapshot returns a copy of the current state.
func (p *LoadProgress) Snapshot() LoadSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return LoadSnapshot{
		Status:         string(p.status),
		Stage:          string(p.stage),
		Collections:    p.collections,
		Components:     p.components,
		Backends:       p.backends,
		Installed:      p.installed,
		StoreReloads:   p.storeReloads,
		ElapsedSeconds: int(time.Since(p.startTime).Seconds()),
		ErrorMessage:   p.errorMessage,
	}
}
