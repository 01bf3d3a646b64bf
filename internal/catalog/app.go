// Package catalog coordinates the package catalog: one goroutine owns all
// state and applies events one at a time, while slow work (discovery,
// installed listing, search, metadata fetches) runs on a worker pool and
// reports back through the same inbox.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/backend"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/search"
	"github.com/Aman-CERP/appshelf/internal/telemetry"
)

// Default sizes.
const (
	DefaultInboxSize = 64
	DefaultWorkers   = 4
)

// ErrStopped is returned when the App is no longer running.
var ErrStopped = errors.New("catalog stopped")

// Options configures an App.
type Options struct {
	// Locale selects translations and collation.
	Locale string
	// Store publishes the metadata store; backends read through the same
	// holder, so a reload is visible to them too.
	Store *appstream.Holder
	// LoadBackends builds the registry. It runs once on a worker when Run
	// starts. Nil means no backends.
	LoadBackends func(ctx context.Context) *backend.Registry
	// Emit receives notifications (nil = discard).
	Emit Emitter

	Workers            int
	InboxSize          int
	SelectionCacheSize int

	// Progress is updated as loading advances (nil = a private tracker).
	Progress *async.LoadProgress
	// Metrics records every completed search (nil = a private collector).
	Metrics *telemetry.QueryMetrics
}

// Snapshot is a copy of catalog state taken on the catalog goroutine.
// Results is nil when no search results are shown. Registry is shared, not
// copied; registries are not modified after construction.
type Snapshot struct {
	Locale      string
	Registry    *backend.Registry
	Backends    []string
	Installed   []backend.InstalledPackage
	SearchText  string
	Results     []search.Result
	Selected    *Selected
	Collections int
}

// App is the catalog actor.
type App struct {
	locale   string
	holder   *appstream.Holder
	engine   *search.Engine
	load     func(ctx context.Context) *backend.Registry
	emit     Emitter
	pool     *async.Pool
	progress *async.LoadProgress
	metrics  *telemetry.QueryMetrics
	cacheLen int

	inbox chan Event
	done  chan struct{}

	// Owned by the Run goroutine.
	store      *appstream.Store
	registry   *backend.Registry
	resolver   *Resolver
	installed  []backend.InstalledPackage
	searchText string
	results    []search.Result
	selected   *Selected

	installedSeq, installedApplied uint64
	searchSeq, searchApplied       uint64
	selectSeq, selectApplied       uint64
}

// New returns an App. Call Run to start it.
func New(opts Options) *App {
	if opts.InboxSize <= 0 {
		opts.InboxSize = DefaultInboxSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Emit == nil {
		opts.Emit = func(Notification) {}
	}
	if opts.Progress == nil {
		opts.Progress = async.NewLoadProgress()
	}
	if opts.Store == nil {
		opts.Store = appstream.NewHolder(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewQueryMetrics()
	}

	a := &App{
		locale:   opts.Locale,
		holder:   opts.Store,
		engine:   search.NewEngine(search.WithLocale(opts.Locale)),
		load:     opts.LoadBackends,
		emit:     opts.Emit,
		pool:     async.NewPool(opts.Workers),
		progress: opts.Progress,
		metrics:  opts.Metrics,
		cacheLen: opts.SelectionCacheSize,
		inbox:    make(chan Event, opts.InboxSize),
		done:     make(chan struct{}),
	}
	a.store = a.holder.Load()
	a.registry = backend.NewRegistry(nil)
	a.resolver = NewResolver(a.registry, a.cacheLen)
	return a
}

// Metrics returns the search statistics collector.
func (a *App) Metrics() *telemetry.QueryMetrics {
	return a.metrics
}

// Progress returns the loading tracker.
func (a *App) Progress() *async.LoadProgress {
	return a.progress
}

// Post queues ev. It blocks while the inbox is full and returns false once
// the App has stopped.
func (a *App) Post(ev Event) bool {
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.inbox <- ev:
		return true
	case <-a.done:
		return false
	}
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot(ctx context.Context) (Snapshot, error) {
	req := snapshotRequest{reply: make(chan Snapshot, 1)}
	select {
	case a.inbox <- req:
	case <-a.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case snap := <-req.reply:
		return snap, nil
	case <-a.done:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Run loads backends and then applies events until ctx is cancelled.
// Outstanding background work is cancelled and awaited before Run returns.
func (a *App) Run(ctx context.Context) error {
	defer a.pool.Close()
	defer close(a.done)

	a.progress.SetStore(a.store.Len(), a.store.ComponentCount())
	a.progress.SetStage(async.StageBackends)
	a.dispatchBackends()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-a.inbox:
			a.apply(ev)
		}
	}
}

func (a *App) apply(ev Event) {
	switch ev := ev.(type) {
	case BackendsLoaded:
		a.onBackendsLoaded(ev)
	case InstalledLoaded:
		a.onInstalledLoaded(ev)
	case SearchInput:
		a.searchText = ev.Text
	case SearchSubmit:
		a.onSearchSubmit()
	case SearchClear:
		a.onSearchClear()
	case SearchResults:
		a.onSearchResults(ev)
	case SelectInstalled:
		a.onSelectInstalled(ev)
	case SelectSearchResult:
		a.onSelectSearchResult(ev)
	case SelectNone:
		a.selectApplied = a.selectSeq
		a.selected = nil
		a.emit(SelectionCleared{})
	case SelectionLoaded:
		a.onSelectionLoaded(ev)
	case StoreReloaded:
		a.onStoreReloaded(ev)
	case snapshotRequest:
		ev.reply <- a.snapshot()
	default:
		slog.Warn("unknown catalog event", slog.String("type", typeName(ev)))
	}
}

func (a *App) dispatchBackends() {
	load := a.load
	a.pool.Go("load-backends", func(ctx context.Context) {
		start := time.Now()
		var reg *backend.Registry
		if load != nil {
			reg = load(ctx)
		}
		if reg == nil {
			reg = backend.NewRegistry(nil)
		}
		slog.Info("loaded backends", slog.Int("count", reg.Len()), slog.Duration("duration", time.Since(start)))
		a.post(BackendsLoaded{Registry: reg})
	})
}

func (a *App) onBackendsLoaded(ev BackendsLoaded) {
	if ev.Registry == nil {
		ev.Registry = backend.NewRegistry(nil)
	}
	a.registry = ev.Registry
	a.resolver = NewResolver(a.registry, a.cacheLen)
	a.progress.SetBackends(a.registry.Len())
	a.progress.SetStage(async.StageInstalled)
	a.emit(BackendsReady{Names: a.registry.Names()})
	a.dispatchInstalled()
}

func (a *App) dispatchInstalled() {
	a.installedSeq++
	seq, reg, locale := a.installedSeq, a.registry, a.locale
	a.pool.Go("list-installed", func(ctx context.Context) {
		a.post(InstalledLoaded{Seq: seq, Packages: reg.ListInstalled(ctx, locale)})
	})
}

func (a *App) onInstalledLoaded(ev InstalledLoaded) {
	if stale(ev.Seq, a.installedApplied) {
		slog.Debug("discarding stale installed list", slog.Uint64("seq", ev.Seq))
		return
	}
	a.installedApplied = max(a.installedApplied, ev.Seq)
	a.installed = ev.Packages
	a.progress.SetInstalled(len(a.installed))
	a.emit(InstalledReady{Packages: a.installed})
}

func (a *App) onSearchSubmit() {
	pattern, err := search.Compile(a.searchText)
	if err != nil {
		if !errors.Is(err, search.ErrEmptyQuery) {
			slog.Warn("failed to compile search", apperrors.LogAttrs(err)...)
		}
		return
	}

	a.searchSeq++
	seq, store, engine, metrics := a.searchSeq, a.store, a.engine, a.metrics
	a.pool.Go("search", func(ctx context.Context) {
		start := time.Now()
		results, err := engine.Search(ctx, store, pattern, search.SearchOptions{})
		if err == nil {
			metrics.Record(telemetry.SearchEvent(pattern.String(), results, time.Since(start)))
		}
		a.post(SearchResults{Seq: seq, Query: pattern.String(), Results: results, Err: err})
	})
}

func (a *App) onSearchClear() {
	a.searchApplied = a.searchSeq
	a.searchText = ""
	a.results = nil
	a.emit(SearchCleared{})
}

func (a *App) onSearchResults(ev SearchResults) {
	if stale(ev.Seq, a.searchApplied) {
		slog.Debug("discarding stale search results",
			slog.Uint64("seq", ev.Seq),
			slog.Uint64("applied", a.searchApplied))
		return
	}
	a.searchApplied = max(a.searchApplied, ev.Seq)
	if ev.Err != nil {
		slog.Warn("search failed", apperrors.LogAttrs(ev.Err)...)
		return
	}
	if ev.Results == nil {
		ev.Results = []search.Result{}
	}
	a.results = ev.Results
	a.emit(SearchReady{Query: ev.Query, Results: a.results})
}

func (a *App) onSelectInstalled(ev SelectInstalled) {
	if ev.Index < 0 || ev.Index >= len(a.installed) {
		slog.Error("failed to find installed package", slog.Int("index", ev.Index))
		return
	}
	item := a.installed[ev.Index]
	if _, err := a.resolver.Lookup(item.Backend); err != nil {
		slog.Error("failed to find backend", apperrors.LogAttrs(err)...)
		return
	}

	a.selectSeq++
	seq, resolver := a.selectSeq, a.resolver
	a.pool.Go("select", func(ctx context.Context) {
		sel, err := resolver.Resolve(ctx, item.Backend, item.Package)
		a.post(SelectionLoaded{Seq: seq, Selected: sel, Err: err})
	})
}

func (a *App) onSelectSearchResult(ev SelectSearchResult) {
	if ev.Index < 0 || ev.Index >= len(a.results) {
		slog.Error("failed to find search result", slog.Int("index", ev.Index))
		return
	}
	sel := SelectionFromResult(a.results[ev.Index])
	a.selectSeq++
	a.selectApplied = a.selectSeq
	a.selected = &sel
	a.emit(SelectionReady{Selected: sel})
}

func (a *App) onSelectionLoaded(ev SelectionLoaded) {
	if stale(ev.Seq, a.selectApplied) {
		slog.Debug("discarding stale selection",
			slog.Uint64("seq", ev.Seq),
			slog.Uint64("applied", a.selectApplied))
		return
	}
	// A failed load still supersedes older in-flight loads; the current
	// selection stays.
	a.selectApplied = max(a.selectApplied, ev.Seq)
	if ev.Err != nil || ev.Selected == nil {
		if ev.Err != nil {
			slog.Error("failed to load selection", apperrors.LogAttrs(ev.Err)...)
		}
		return
	}
	a.selected = ev.Selected
	a.emit(SelectionReady{Selected: *ev.Selected})
}

func (a *App) onStoreReloaded(ev StoreReloaded) {
	if ev.Store == nil {
		return
	}
	a.holder.Swap(ev.Store)
	a.store = ev.Store
	a.resolver.Purge()
	a.progress.SetStore(a.store.Len(), a.store.ComponentCount())
	slog.Info("appstream store reloaded", slog.Int("collections", a.store.Len()))
	a.dispatchInstalled()
}

func (a *App) snapshot() Snapshot {
	snap := Snapshot{
		Locale:      a.locale,
		Registry:    a.registry,
		Backends:    a.registry.Names(),
		Installed:   slices.Clone(a.installed),
		SearchText:  a.searchText,
		Collections: a.store.Len(),
	}
	if a.results != nil {
		snap.Results = slices.Clone(a.results)
	}
	if a.selected != nil {
		sel := *a.selected
		snap.Selected = &sel
	}
	return snap
}

// stale reports whether a completion numbered seq is older than the last
// one applied for its class. Unnumbered events always apply.
func stale(seq, applied uint64) bool {
	return seq != 0 && seq <= applied
}

// post delivers a completion from a worker. It gives up once Run has
// returned.
func (a *App) post(ev Event) {
	select {
	case a.inbox <- ev:
	case <-a.done:
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
