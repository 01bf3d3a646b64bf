package watcher

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Roots returns the static directory prefix of each pattern, skipping
// prefixes that do not exist.
func Roots(patterns []string) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, pattern := range patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		dir := filepath.FromSlash(base)
		if seen[dir] || !isDir(dir) {
			continue
		}
		seen[dir] = true
		roots = append(roots, dir)
	}
	sort.Strings(roots)
	return roots
}

// relevant reports whether a change at path can affect the store. Files must
// match a pattern. Extensionless paths are directories or symlinks such as a
// flatpak "active" link, which are relevant when they sit under a root.
func relevant(patterns []string, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), slashed); ok {
			return true
		}
	}
	return filepath.Ext(path) == "" && filepath.Base(path)[0] != '.'
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
