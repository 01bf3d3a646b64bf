package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/Aman-CERP/appshelf/internal/appstream"
)

// Reloader rebuilds the metadata store whenever the watcher reports a change
// and hands the fresh store to apply. The previous store is never modified.
type Reloader struct {
	watcher Watcher
	build   func(ctx context.Context) *appstream.Store
	apply   func(*appstream.Store)
}

// NewReloader returns a Reloader.
func NewReloader(w Watcher, build func(ctx context.Context) *appstream.Store, apply func(*appstream.Store)) *Reloader {
	return &Reloader{watcher: w, build: build, apply: apply}
}

// Run starts the watcher and reloads on every batch until ctx is cancelled
// or the watcher stops.
func (r *Reloader) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.watcher.Start(ctx)
	}()
	defer func() { _ = r.watcher.Stop() }()

	events, errs := r.watcher.Events(), r.watcher.Errors()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if err != nil && ctx.Err() == nil {
				return err
			}
			errCh = nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("appstream watcher error", slog.String("error", err.Error()))
		case batch, ok := <-events:
			if !ok {
				return nil
			}
			r.reload(ctx, batch)
		}
	}
}

func (r *Reloader) reload(ctx context.Context, batch []FileEvent) {
	if len(batch) == 0 {
		return
	}
	start := time.Now()
	slog.Info("appstream files changed", slog.Int("changes", len(batch)), slog.String("first", batch[0].Path))

	store := r.build(ctx)
	if ctx.Err() != nil {
		return
	}
	r.apply(store)
	slog.Info("reloaded appstream store",
		slog.Int("collections", store.Len()),
		slog.Duration("duration", time.Since(start)))
}
