package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/backend"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
	"github.com/Aman-CERP/appshelf/internal/search"
)

func TestResolver_Resolve(t *testing.T) {
	coll := &appstream.Collection{Components: []*appstream.Component{comp("gimp", "GIMP", "")}}
	fb := &fakeBackend{collections: map[string]*appstream.Collection{"gimp": coll}}
	r := NewResolver(backend.NewRegistry(map[string]backend.Backend{"dpkg": fb}), 0)
	pkg := backend.Package{ID: "gimp", Name: "GIMP", Version: "2.10", Summary: "Image editor",
		Icon: appstream.Icon{Kind: appstream.HandleNamed, Value: "gimp"}}

	sel, err := r.Resolve(context.Background(), "dpkg", pkg)

	require.NoError(t, err)
	assert.Equal(t, "dpkg", sel.Backend)
	assert.Equal(t, "gimp", sel.ID)
	assert.Equal(t, "GIMP", sel.Name)
	assert.Equal(t, "Image editor", sel.Summary)
	assert.Equal(t, pkg.Icon, sel.Icon)
	assert.Same(t, coll, sel.Collection)
}

func TestResolver_CachesByVersion(t *testing.T) {
	coll := &appstream.Collection{}
	fb := &fakeBackend{collections: map[string]*appstream.Collection{"gimp": coll}}
	r := NewResolver(backend.NewRegistry(map[string]backend.Backend{"dpkg": fb}), 4)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "dpkg", backend.Package{ID: "gimp", Version: "1"})
	require.NoError(t, err)
	_, err = r.Resolve(ctx, "dpkg", backend.Package{ID: "gimp", Version: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, fb.fetchCount())

	_, err = r.Resolve(ctx, "dpkg", backend.Package{ID: "gimp", Version: "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, fb.fetchCount())

	r.Purge()
	_, err = r.Resolve(ctx, "dpkg", backend.Package{ID: "gimp", Version: "2"})
	require.NoError(t, err)
	assert.Equal(t, 3, fb.fetchCount())
}

func TestResolver_Errors(t *testing.T) {
	r := NewResolver(backend.NewRegistry(map[string]backend.Backend{"dpkg": &fakeBackend{}}), 0)
	ctx := context.Background()

	t.Run("unregistered backend", func(t *testing.T) {
		sel, err := r.Resolve(ctx, "snap", backend.Package{ID: "x"})
		assert.Nil(t, sel)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendNotFound))
	})

	t.Run("fetch failure names the package", func(t *testing.T) {
		sel, err := r.Resolve(ctx, "dpkg", backend.Package{ID: "broken"})
		assert.Nil(t, sel)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMetadataFetchFailed))
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("nil registry", func(t *testing.T) {
		_, err := NewResolver(nil, 0).Lookup("dpkg")
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBackendNotFound))
	})
}

func TestSelectionFromResult(t *testing.T) {
	coll := &appstream.Collection{}
	r := search.Result{
		Backend: "flatpak", ID: "flatpak:system:flathub/x86_64", ComponentID: "org.gimp.GIMP",
		Name: "GIMP", Summary: "Edit images", Icon: appstream.PlaceholderIcon(),
		Collection: coll, Weight: 0,
	}

	sel := SelectionFromResult(r)

	assert.Equal(t, "flatpak", sel.Backend)
	assert.Equal(t, "flatpak:system:flathub/x86_64", sel.ID)
	assert.Equal(t, "org.gimp.GIMP", sel.ComponentID)
	assert.Equal(t, "GIMP", sel.Name)
	assert.Same(t, coll, sel.Collection)
}
