package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/async"
	"github.com/Aman-CERP/appshelf/internal/backend"
	"github.com/Aman-CERP/appshelf/internal/catalog"
	"github.com/Aman-CERP/appshelf/internal/config"
	"github.com/Aman-CERP/appshelf/internal/output"
	"github.com/Aman-CERP/appshelf/internal/ui"
	"github.com/Aman-CERP/appshelf/internal/watcher"
)

// loadStore parses every configured collection.
func (s *rootState) loadStore(ctx context.Context) *appstream.Store {
	a := s.cfg.Appstream
	return appstream.NewStore(ctx, appstream.StoreOptions{
		Paths:         config.ExpandHomeAll(a.Paths),
		IconDirs:      config.ExpandHomeAll(a.IconDirs),
		Workers:       a.ParseWorkers,
		IconCacheSize: a.IconCacheSize,
	})
}

func (s *rootState) discoverOptions(holder *appstream.Holder) backend.DiscoverOptions {
	b := s.cfg.Backends
	return backend.DiscoverOptions{
		Enabled:              b.Enabled,
		FlatpakCommand:       b.FlatpakCommand,
		FlatpakInstallations: config.ExpandHomeAll(b.FlatpakInstallations),
		DpkgStatus:           config.ExpandHome(b.DpkgStatus),
		DpkgInfoDir:          config.ExpandHome(b.DpkgInfoDir),
		CommandTimeout:       b.CommandTimeout,
		Store:                holder,
		Locale:               s.cfg.Locale,
	}
}

// discover checks the host for backends reading through holder.
func (s *rootState) discover(ctx context.Context, holder *appstream.Holder) *backend.Registry {
	return backend.Discover(ctx, s.discoverOptions(holder))
}

// newApp builds a catalog over holder. Backends are discovered when the App
// starts running.
func (s *rootState) newApp(holder *appstream.Holder, progress *async.LoadProgress, emit catalog.Emitter) *catalog.App {
	opts := s.discoverOptions(holder)
	return catalog.New(catalog.Options{
		Locale: s.cfg.Locale,
		Store:  holder,
		LoadBackends: func(ctx context.Context) *backend.Registry {
			return backend.Discover(ctx, opts)
		},
		Emit:               emit,
		Workers:            s.cfg.Catalog.Workers,
		InboxSize:          s.cfg.Catalog.InboxSize,
		SelectionCacheSize: s.cfg.Catalog.SelectionCacheSize,
		Progress:           progress,
	})
}

// startWatcher reloads the store into app whenever collection files change.
// It returns the watcher kind, or "off" when watching is disabled or fails.
func (s *rootState) startWatcher(ctx context.Context, app *catalog.App) string {
	if !s.cfg.Appstream.Watch {
		return "off"
	}

	w, err := watcher.NewHybridWatcher(watcher.Options{
		Patterns:       config.ExpandHomeAll(s.cfg.Appstream.Paths),
		DebounceWindow: s.cfg.Appstream.WatchDebounce,
	})
	if err != nil {
		slog.Warn("appstream watcher unavailable", slog.String("error", err.Error()))
		return "off"
	}

	r := watcher.NewReloader(w, s.loadStore, func(store *appstream.Store) {
		app.Post(catalog.StoreReloaded{Store: store})
	})
	go func() {
		if err := r.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("appstream watcher stopped", slog.String("error", err.Error()))
		}
	}()

	slog.Info("watching appstream collections",
		slog.String("watcher", w.WatcherType()),
		slog.Any("roots", w.Roots()))
	return w.WatcherType()
}

// writer returns an output writer for cmd, colored only on a terminal.
func (s *rootState) writer(cmd *cobra.Command) *output.Writer {
	w := cmd.OutOrStdout()
	return output.NewWithColor(w, !s.noColor && !ui.DetectNoColor() && ui.IsTTY(w))
}
