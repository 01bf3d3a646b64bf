package backend

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/natsort"
)

// Registry maps backend names to backends. It is built once and only read
// afterwards, so lookups need no locking.
type Registry struct {
	backends map[string]Backend
	names    []string
}

// NewRegistry returns a registry holding a copy of backends.
func NewRegistry(backends map[string]Backend) *Registry {
	r := &Registry{backends: make(map[string]Backend, len(backends))}
	for name, b := range backends {
		if b == nil {
			continue
		}
		r.backends[name] = b
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, bool) {
	if r == nil {
		return nil, false
	}
	b, ok := r.backends[name]
	return b, ok
}

// Names returns registered backend names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.names)
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}

// ListInstalled asks every backend for its installed packages in parallel.
// A failing backend is logged and contributes nothing; the others are
// unaffected. The result is sorted by name in natural order for locale,
// then by backend and id.
func (r *Registry) ListInstalled(ctx context.Context, locale string) []InstalledPackage {
	if r.Len() == 0 {
		return []InstalledPackage{}
	}

	var (
		mu  sync.Mutex
		all = []InstalledPackage{}
	)
	var g errgroup.Group
	for _, name := range r.names {
		b := r.backends[name]
		g.Go(func() error {
			start := time.Now()
			pkgs, err := b.Installed(ctx)
			if err != nil {
				attrs := append([]any{slog.String("backend", name),
					slog.Duration("duration", time.Since(start))}, apperrors.LogAttrs(err)...)
				slog.Error("failed to list installed packages", attrs...)
				return nil
			}
			slog.Info("loaded installed packages",
				slog.String("backend", name),
				slog.Int("count", len(pkgs)),
				slog.Duration("duration", time.Since(start)))

			mu.Lock()
			for _, p := range pkgs {
				all = append(all, InstalledPackage{Backend: name, Package: p})
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	SortInstalled(all, locale)
	return all
}

// SortInstalled orders packages by name in natural order, then by backend
// and id so the order is total.
func SortInstalled(pkgs []InstalledPackage, locale string) {
	coll := natsort.New(locale)
	slices.SortStableFunc(pkgs, func(a, b InstalledPackage) int {
		if c := coll.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := strings.Compare(a.Backend, b.Backend); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
