package appstream

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultIconCacheSize is the number of file-existence checks remembered.
const DefaultIconCacheSize = 4096

// iconResolver finds icon files on disk. Existence checks are memoized since
// the same icons are resolved for every search that lists them.
type iconResolver struct {
	roots  []string
	exists *lru.Cache[string, bool]
}

func newIconResolver(roots []string, cacheSize int) *iconResolver {
	if cacheSize <= 0 {
		cacheSize = DefaultIconCacheSize
	}
	cache, _ := lru.New[string, bool](cacheSize)
	return &iconResolver{roots: roots, exists: cache}
}

func (r *iconResolver) fileExists(path string) bool {
	if ok, hit := r.exists.Get(path); hit {
		return ok
	}
	info, err := os.Stat(path)
	ok := err == nil && !info.IsDir()
	r.exists.Add(path, ok)
	return ok
}

// resolve walks the component's icons in document order and returns the
// first one that can be displayed, else the placeholder.
func (r *iconResolver) resolve(origin string, comp *Component) Icon {
	if comp == nil {
		return PlaceholderIcon()
	}
	for _, ref := range comp.Icons {
		switch ref.Kind {
		case IconStock:
			return Icon{Kind: HandleNamed, Value: ref.Value}
		case IconCached:
			for _, path := range r.cachedCandidates(origin, comp.iconDir, ref) {
				if r.fileExists(path) {
					return Icon{Kind: HandleFile, Value: path}
				}
			}
		case IconLocal:
			if filepath.IsAbs(ref.Value) && r.fileExists(ref.Value) {
				return Icon{Kind: HandleFile, Value: ref.Value}
			}
		}
	}
	return PlaceholderIcon()
}

func (r *iconResolver) cachedCandidates(origin, localDir string, ref IconRef) []string {
	sizes := []string{"64x64", "128x128"}
	if ref.Width > 0 && ref.Height > 0 {
		sizes = []string{fmt.Sprintf("%dx%d", ref.Width, ref.Height)}
	}

	var out []string
	for _, size := range sizes {
		if localDir != "" {
			out = append(out, filepath.Join(localDir, size, ref.Value))
		}
		if origin == "" {
			continue
		}
		for _, root := range r.roots {
			out = append(out,
				filepath.Join(root, origin, size, ref.Value),
				filepath.Join(root, origin, "icons", size, ref.Value),
			)
		}
	}
	return out
}
