// Package appstream loads appstream collections (AppStream XML and DEP-11
// YAML, optionally gzip-compressed) into an immutable in-memory store and
// resolves the icons their components reference.
package appstream

import "strings"

// DefaultLocale is the key of the untranslated value of a Translatable.
const DefaultLocale = "C"

// Collection is one parsed appstream source file. It is never modified after
// parsing; search results and selections share it by pointer.
type Collection struct {
	// Origin names the repository the collection describes, if declared.
	Origin string
	// Source is the file the collection was parsed from.
	Source string
	// Components in document order.
	Components []*Component
}

// Component describes one piece of software within a collection.
type Component struct {
	ID          string
	Type        string
	PkgName     string
	Name        Translatable
	Summary     Translatable
	Description Translatable
	Icons       []IconRef

	// iconDir holds icons shipped next to the collection file (flatpak trees).
	iconDir string
}

// Translatable maps locale keys to text. The untranslated value lives under
// DefaultLocale. A nil Translatable is valid and empty.
type Translatable map[string]string

// Get returns the text for locale, trying the exact key, the POSIX spelling
// (en-US as en_US), the bare language, then the untranslated value.
// It returns "" when none of these exist.
func (t Translatable) Get(locale string) string {
	if len(t) == 0 {
		return ""
	}
	if locale != "" {
		for _, key := range localeCandidates(locale) {
			if v, ok := t[key]; ok {
				return v
			}
		}
	}
	return t[DefaultLocale]
}

// IsEmpty reports whether t holds no text at all.
func (t Translatable) IsEmpty() bool {
	for _, v := range t {
		if v != "" {
			return false
		}
	}
	return true
}

func localeCandidates(locale string) []string {
	candidates := []string{locale}
	if posix := strings.ReplaceAll(locale, "-", "_"); posix != locale {
		candidates = append(candidates, posix)
	} else if bcp := strings.ReplaceAll(locale, "_", "-"); bcp != locale {
		candidates = append(candidates, bcp)
	}
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		candidates = append(candidates, locale[:i])
	}
	return candidates
}

// IconKind is the appstream icon type.
type IconKind string

const (
	IconStock  IconKind = "stock"
	IconCached IconKind = "cached"
	IconLocal  IconKind = "local"
	IconRemote IconKind = "remote"
)

// IconRef is an icon reference as written in the collection.
type IconRef struct {
	Kind   IconKind
	Value  string
	Width  int
	Height int
}

// HandleKind tells a presentation layer how to load an Icon.
type HandleKind string

const (
	// HandleNamed is a themed icon name.
	HandleNamed HandleKind = "named"
	// HandleFile is an absolute image path.
	HandleFile HandleKind = "file"
)

// PlaceholderIconName is the themed icon used when nothing resolves.
const PlaceholderIconName = "package-x-generic"

// Icon is a resolved, displayable icon handle.
type Icon struct {
	Kind  HandleKind `json:"kind"`
	Value string     `json:"value"`
}

// PlaceholderIcon returns the generic package icon.
func PlaceholderIcon() Icon {
	return Icon{Kind: HandleNamed, Value: PlaceholderIconName}
}

// IsPlaceholder reports whether i is the generic package icon.
func (i Icon) IsPlaceholder() bool {
	return i == PlaceholderIcon()
}
