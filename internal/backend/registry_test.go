package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(pkgs []InstalledPackage) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Backend + "/" + p.Name
	}
	return out
}

func TestRegistry_ListInstalled_PartialFailure(t *testing.T) {
	// Given: one failing backend and one reporting three packages
	r := NewRegistry(map[string]Backend{
		"broken": &fakeBackend{err: errBoom},
		"dpkg": &fakeBackend{pkgs: []Package{
			{ID: "z", Name: "Zeal"},
			{ID: "i10", Name: "Item 10"},
			{ID: "i2", Name: "item 2"},
		}},
	})

	// When: listing installed packages
	got := r.ListInstalled(context.Background(), "en-US")

	// Then: the healthy backend's packages come back in natural order
	assert.Equal(t, []string{"dpkg/item 2", "dpkg/Item 10", "dpkg/Zeal"}, names(got))
}

func TestRegistry_ListInstalled_AllFailing(t *testing.T) {
	r := NewRegistry(map[string]Backend{
		"a": &fakeBackend{err: errBoom},
		"b": &fakeBackend{err: errBoom},
	})

	got := r.ListInstalled(context.Background(), "en")

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRegistry_ListInstalled_TieBreak(t *testing.T) {
	r := NewRegistry(map[string]Backend{
		"flatpak": &fakeBackend{pkgs: []Package{{ID: "org.gimp.GIMP", Name: "GIMP"}}},
		"dpkg":    &fakeBackend{pkgs: []Package{{ID: "gimp", Name: "GIMP"}, {ID: "atlas", Name: "Atlas"}}},
	})

	got := r.ListInstalled(context.Background(), "en")

	assert.Equal(t, []string{"dpkg/Atlas", "dpkg/GIMP", "flatpak/GIMP"}, names(got))
}

func TestRegistry_Lookup(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRegistry(map[string]Backend{"flatpak": fb, "dpkg": &fakeBackend{}, "nil": nil})

	b, ok := r.Get("flatpak")
	assert.True(t, ok)
	assert.Same(t, fb, b)

	_, ok = r.Get("snap")
	assert.False(t, ok)

	assert.Equal(t, []string{"dpkg", "flatpak"}, r.Names())
	assert.Equal(t, 2, r.Len())

	var empty *Registry
	_, ok = empty.Get("flatpak")
	assert.False(t, ok)
	assert.Empty(t, NewRegistry(nil).ListInstalled(context.Background(), "en"))
}
