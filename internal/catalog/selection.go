package catalog

import (
	"context"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/backend"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/search"
)

// DefaultSelectionCacheSize bounds the number of fetched collections kept.
const DefaultSelectionCacheSize = 128

// Selected is the package shown in detail. It is replaced wholesale, never
// modified. ComponentID is set when the selection came from a search result.
type Selected struct {
	Backend     string                `json:"backend"`
	ID          string                `json:"id"`
	ComponentID string                `json:"component_id,omitempty"`
	Name        string                `json:"name"`
	Summary     string                `json:"summary,omitempty"`
	Icon        appstream.Icon        `json:"icon"`
	Collection  *appstream.Collection `json:"-"`
}

// SelectionFromResult selects a search result. The result's collection is
// reused as is; no backend is asked.
func SelectionFromResult(r search.Result) Selected {
	return Selected{
		Backend:     r.Backend,
		ID:          r.ID,
		ComponentID: r.ComponentID,
		Name:        r.Name,
		Summary:     r.Summary,
		Icon:        r.Icon,
		Collection:  r.Collection,
	}
}

// Resolver turns an installed package into a Selected by asking its backend
// for full metadata.
type Resolver struct {
	registry *backend.Registry
	cache    *lru.Cache[string, *appstream.Collection]
}

// NewResolver returns a resolver over registry.
func NewResolver(registry *backend.Registry, cacheSize int) *Resolver {
	if cacheSize <= 0 {
		cacheSize = DefaultSelectionCacheSize
	}
	cache, _ := lru.New[string, *appstream.Collection](cacheSize)
	return &Resolver{registry: registry, cache: cache}
}

// Lookup returns the backend registered under backendName.
func (r *Resolver) Lookup(backendName string) (backend.Backend, error) {
	b, ok := r.registry.Get(backendName)
	if !ok {
		return nil, apperrors.BackendNotFound(backendName)
	}
	return b, nil
}

// Resolve fetches metadata for pkg from the named backend. An unregistered
// backend yields an ERR_407 error; a failed fetch yields ERR_502 naming the
// package.
func (r *Resolver) Resolve(ctx context.Context, backendName string, pkg backend.Package) (*Selected, error) {
	b, err := r.Lookup(backendName)
	if err != nil {
		return nil, err
	}

	key := backendName + "\x00" + pkg.ID + "\x00" + pkg.Version
	coll, hit := r.cache.Get(key)
	if !hit {
		coll, err = b.Appstream(ctx, pkg)
		if err != nil {
			return nil, apperrors.FetchError(backendName, pkg.ID, err)
		}
		r.cache.Add(key, coll)
	} else {
		slog.Debug("selection cache hit", slog.String("backend", backendName), slog.String("id", pkg.ID))
	}

	return &Selected{
		Backend:    backendName,
		ID:         pkg.ID,
		Name:       pkg.Name,
		Summary:    pkg.Summary,
		Icon:       pkg.Icon,
		Collection: coll,
	}, nil
}

// Purge drops cached collections.
func (r *Resolver) Purge() {
	r.cache.Purge()
}
