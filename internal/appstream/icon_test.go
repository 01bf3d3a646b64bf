package appstream

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

func TestStore_Icon(t *testing.T) {
	root := t.TempDir()
	cached := writeFile(t, filepath.Join(root, "flathub", "64x64", "org.mozilla.firefox.png"), "png")
	local := writeFile(t, filepath.Join(root, "local", "gimp.png"), "png")

	s := NewStoreFromCollections(nil, []string{root}, 16)

	tests := []struct {
		name   string
		origin string
		comp   *Component
		want   Icon
	}{
		{
			name:   "cached icon found under origin",
			origin: "flathub",
			comp: &Component{Icons: []IconRef{
				{Kind: IconCached, Value: "org.mozilla.firefox.png", Width: 64, Height: 64},
				{Kind: IconStock, Value: "firefox"},
			}},
			want: Icon{Kind: HandleFile, Value: cached},
		},
		{
			name:   "missing cached icon falls through to stock",
			origin: "other",
			comp: &Component{Icons: []IconRef{
				{Kind: IconCached, Value: "org.mozilla.firefox.png", Width: 64, Height: 64},
				{Kind: IconStock, Value: "firefox"},
			}},
			want: Icon{Kind: HandleNamed, Value: "firefox"},
		},
		{
			name: "local icon",
			comp: &Component{Icons: []IconRef{{Kind: IconLocal, Value: local}}},
			want: Icon{Kind: HandleFile, Value: local},
		},
		{
			name: "remote only",
			comp: &Component{Icons: []IconRef{{Kind: IconRemote, Value: "https://example.org/a.png"}}},
			want: PlaceholderIcon(),
		},
		{
			name: "nil component",
			want: PlaceholderIcon(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Icon(tt.origin, tt.comp))
		})
	}
}

func TestStore_IconFlatpakTree(t *testing.T) {
	// Given: a flatpak appstream tree with its icons directory
	base := filepath.Join(t.TempDir(), "flatpak", "appstream", "flathub", "x86_64", "active")
	path := writeFile(t, filepath.Join(base, "appstream.xml"), collectionXML)
	icon := writeFile(t, filepath.Join(base, "icons", "64x64", "org.mozilla.firefox.png"), "png")

	coll, err := LoadFile(path)
	require.NoError(t, err)
	s := NewStoreFromCollections(map[string]*Collection{CollectionID(path): coll}, nil, 0)

	// When/Then: the cached icon resolves next to the collection file
	assert.Equal(t, Icon{Kind: HandleFile, Value: icon}, s.Icon(coll.Origin, coll.Components[0]))
	assert.True(t, s.Icon("", coll.Components[1]).IsPlaceholder())
}

func TestIconResolver_MemoizesExistence(t *testing.T) {
	root := t.TempDir()
	r := newIconResolver([]string{root}, 4)
	path := filepath.Join(root, "late.png")

	assert.False(t, r.fileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	assert.False(t, r.fileExists(path), "cached negative answer is reused")
}
