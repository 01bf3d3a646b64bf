package appstream

import (
	"context"
	"iter"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// StoreOptions configures NewStore.
type StoreOptions struct {
	// Paths are doublestar glob patterns of collection files, in priority
	// order: when two files map to the same collection id the first wins.
	Paths []string
	// IconDirs are roots searched for cached icons.
	IconDirs []string
	// Workers bounds concurrent parsing (0 = NumCPU).
	Workers int
	// IconCacheSize bounds memoized icon lookups.
	IconCacheSize int
	// Logger receives per-file failures (default slog.Default()).
	Logger *slog.Logger
}

// ComponentRef locates a component inside the store.
type ComponentRef struct {
	CollectionID string
	Collection   *Collection
	Component    *Component
}

// Store is the in-memory set of parsed collections. It is read-only after
// construction and safe for concurrent readers.
type Store struct {
	ids         []string
	collections map[string]*Collection
	byID        map[string][]ComponentRef
	byPkgName   map[string][]ComponentRef
	icons       *iconResolver
	loadedAt    time.Time
}

// NewStore scans opts.Paths and parses every matching file. A file that
// cannot be read or parsed is logged and skipped; NewStore always returns a
// usable, possibly empty, store.
func NewStore(ctx context.Context, opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	files := expandPaths(opts.Paths, logger)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	parsed := make([]*Collection, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			coll, err := LoadFile(path)
			if err != nil {
				logger.Warn("failed to load appstream collection",
					apperrors.LogAttrs(err)...)
				return nil
			}
			parsed[i] = coll
			return nil
		})
	}
	_ = g.Wait()

	collections := make(map[string]*Collection, len(parsed))
	for i, coll := range parsed {
		if coll == nil {
			continue
		}
		id := CollectionID(files[i])
		if prev, dup := collections[id]; dup {
			logger.Info("skipping duplicate appstream collection",
				slog.String("id", id),
				slog.String("path", files[i]),
				slog.String("kept", prev.Source))
			continue
		}
		collections[id] = coll
	}

	s := NewStoreFromCollections(collections, opts.IconDirs, opts.IconCacheSize)
	logger.Info("loaded appstream cache",
		slog.Int("files", len(files)),
		slog.Int("collections", s.Len()),
		slog.Duration("duration", time.Since(start)))
	return s
}

// NewStoreFromCollections builds a store from already parsed collections.
func NewStoreFromCollections(collections map[string]*Collection, iconDirs []string, iconCacheSize int) *Store {
	s := &Store{
		collections: make(map[string]*Collection, len(collections)),
		byID:        make(map[string][]ComponentRef),
		byPkgName:   make(map[string][]ComponentRef),
		icons:       newIconResolver(iconDirs, iconCacheSize),
		loadedAt:    time.Now(),
	}
	for id, coll := range collections {
		if coll == nil {
			continue
		}
		s.collections[id] = coll
		s.ids = append(s.ids, id)
	}
	sort.Strings(s.ids)

	for _, id := range s.ids {
		coll := s.collections[id]
		for _, comp := range coll.Components {
			ref := ComponentRef{CollectionID: id, Collection: coll, Component: comp}
			s.byID[comp.ID] = append(s.byID[comp.ID], ref)
			if comp.PkgName != "" {
				s.byPkgName[comp.PkgName] = append(s.byPkgName[comp.PkgName], ref)
			}
		}
	}
	return s
}

// expandPaths resolves glob patterns into a de-duplicated file list that
// keeps pattern order.
func expandPaths(patterns []string, logger *slog.Logger) []string {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			logger.Warn("invalid appstream path pattern",
				slog.String("pattern", pattern),
				slog.String("error", err.Error()))
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files
}

// All yields (collection id, collection) pairs in id order.
func (s *Store) All() iter.Seq2[string, *Collection] {
	return func(yield func(string, *Collection) bool) {
		for _, id := range s.ids {
			if !yield(id, s.collections[id]) {
				return
			}
		}
	}
}

// Get returns the collection with the given id.
func (s *Store) Get(id string) (*Collection, bool) {
	c, ok := s.collections[id]
	return c, ok
}

// IDs returns collection ids in sorted order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of collections.
func (s *Store) Len() int {
	return len(s.ids)
}

// ComponentCount returns the number of components across all collections.
func (s *Store) ComponentCount() int {
	n := 0
	for _, coll := range s.collections {
		n += len(coll.Components)
	}
	return n
}

// LoadedAt reports when the store was built.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// ComponentsByID returns every component with the given appstream id.
func (s *Store) ComponentsByID(id string) []ComponentRef {
	return s.byID[id]
}

// ComponentsByPkgName returns every component shipped by a distro package.
func (s *Store) ComponentsByPkgName(name string) []ComponentRef {
	return s.byPkgName[name]
}

// Icon resolves a displayable icon for comp, falling back to the
// placeholder. It never fails.
func (s *Store) Icon(origin string, comp *Component) Icon {
	return s.icons.resolve(origin, comp)
}

// ComponentByID returns the first component with the given id in collection
// id order.
func (s *Store) ComponentByID(id string) (ComponentRef, bool) {
	refs := s.byID[id]
	if len(refs) == 0 {
		return ComponentRef{}, false
	}
	return refs[0], true
}
