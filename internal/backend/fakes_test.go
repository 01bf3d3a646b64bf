package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/internal/appstream"
)

// fakeBackend is a Backend with canned answers.
type fakeBackend struct {
	pkgs    []Package
	err     error
	coll    *appstream.Collection
	collErr error
}

func (f *fakeBackend) Installed(context.Context) ([]Package, error) {
	return f.pkgs, f.err
}

func (f *fakeBackend) Appstream(context.Context, Package) (*appstream.Collection, error) {
	return f.coll, f.collErr
}

// fakeRunner records invocations and returns canned output.
type fakeRunner struct {
	mu    sync.Mutex
	out   string
	err   error
	calls [][]string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

var errBoom = errors.New("boom")

const storeXML = `<components origin="flathub">
  <component type="desktop-application">
    <id>org.mozilla.firefox</id>
    <pkgname>firefox-esr</pkgname>
    <name>Firefox</name>
    <name xml:lang="de">Feuerfuchs</name>
    <summary>Web browser</summary>
    <icon type="stock">firefox</icon>
  </component>
  <component type="desktop-application">
    <id>org.gnome.Calculator</id>
    <pkgname>gnome-calculator</pkgname>
    <name>Calculator</name>
    <summary>Perform arithmetic</summary>
  </component>
</components>`

func testStore(t *testing.T) *appstream.Holder {
	t.Helper()
	coll, err := appstream.ParseXML(strings.NewReader(storeXML))
	require.NoError(t, err)
	return appstream.NewHolder(appstream.NewStoreFromCollections(
		map[string]*appstream.Collection{"flathub-main": coll}, nil, 0))
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
