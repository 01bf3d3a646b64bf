// Package watcher notices changes to appstream collection files and reloads
// the metadata store.
//
// Watching is hybrid: fsnotify on the directories the collection patterns
// live under, or polling of the patterns when fsnotify is unavailable.
// Events are debounced so a package-manager transaction that rewrites many
// files produces one reload.
//
// Usage:
//
//	w, err := watcher.NewHybridWatcher(watcher.Options{Patterns: paths})
//	if err != nil {
//	    return err
//	}
//	r := watcher.NewReloader(w, build, func(s *appstream.Store) {
//	    app.Post(catalog.StoreReloaded{Store: s})
//	})
//	go r.Run(ctx)
package watcher
