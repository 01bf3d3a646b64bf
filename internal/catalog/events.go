package catalog

import (
	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/backend"
	"github.com/Aman-CERP/appshelf/internal/search"
)

// Event is an input to the catalog loop. Events come from the presentation
// layer and from completed background work.
type Event interface {
	isEvent()
}

// BackendsLoaded delivers the backend registry built by discovery.
type BackendsLoaded struct {
	Registry *backend.Registry
}

// InstalledLoaded delivers a merged installed-package list.
type InstalledLoaded struct {
	Seq      uint64
	Packages []backend.InstalledPackage
}

// SearchInput replaces the current search text. It does not search.
type SearchInput struct {
	Text string
}

// SearchSubmit searches for the current text. Empty text is ignored.
type SearchSubmit struct{}

// SearchClear drops the search text and results.
type SearchClear struct{}

// SearchResults delivers the outcome of one dispatched search.
type SearchResults struct {
	Seq     uint64
	Query   string
	Results []search.Result
	Err     error
}

// SelectInstalled selects the installed package at Index.
type SelectInstalled struct {
	Index int
}

// SelectSearchResult selects the search result at Index.
type SelectSearchResult struct {
	Index int
}

// SelectNone clears the selection.
type SelectNone struct{}

// SelectionLoaded delivers the outcome of one dispatched selection.
type SelectionLoaded struct {
	Seq      uint64
	Selected *Selected
	Err      error
}

// StoreReloaded swaps in a freshly loaded metadata store.
type StoreReloaded struct {
	Store *appstream.Store
}

type snapshotRequest struct {
	reply chan Snapshot
}

func (BackendsLoaded) isEvent()     {}
func (InstalledLoaded) isEvent()    {}
func (SearchInput) isEvent()        {}
func (SearchSubmit) isEvent()       {}
func (SearchClear) isEvent()        {}
func (SearchResults) isEvent()      {}
func (SelectInstalled) isEvent()    {}
func (SelectSearchResult) isEvent() {}
func (SelectNone) isEvent()         {}
func (SelectionLoaded) isEvent()    {}
func (StoreReloaded) isEvent()      {}
func (snapshotRequest) isEvent()    {}

// Notification is an output of the catalog loop for the presentation layer.
type Notification interface {
	isNotification()
}

// BackendsReady reports the registered backend names.
type BackendsReady struct {
	Names []string
}

// InstalledReady reports a new installed list.
type InstalledReady struct {
	Packages []backend.InstalledPackage
}

// SearchReady reports new search results.
type SearchReady struct {
	Query   string
	Results []search.Result
}

// SelectionReady reports a new selection.
type SelectionReady struct {
	Selected Selected
}

// SearchCleared reports that search text and results were dropped.
type SearchCleared struct{}

// SelectionCleared reports that nothing is selected.
type SelectionCleared struct{}

func (BackendsReady) isNotification()    {}
func (InstalledReady) isNotification()   {}
func (SearchReady) isNotification()      {}
func (SelectionReady) isNotification()   {}
func (SearchCleared) isNotification()    {}
func (SelectionCleared) isNotification() {}

// Emitter receives notifications on the catalog goroutine. It must not block
// for long and must not call back into the App synchronously.
type Emitter func(Notification)
