package appstream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

const collectionXML = `<?xml version="1.0" encoding="UTF-8"?>
<components version="0.14" origin="flathub">
  <component type="desktop-application">
    <id>org.mozilla.firefox</id>
    <pkgname>firefox</pkgname>
    <name>Firefox</name>
    <name xml:lang="de">Firefox Browser</name>
    <summary>Fast, private web browser</summary>
    <summary xml:lang="de">Schneller Webbrowser</summary>
    <description>
      <p>Browse the   web.</p>
      <p xml:lang="de">Im Netz surfen.</p>
      <ul>
        <li>Tabs</li>
        <li>Extensions</li>
      </ul>
    </description>
    <icon type="cached" width="64" height="64">org.mozilla.firefox.png</icon>
    <icon type="stock">firefox</icon>
  </component>
  <component type="desktop-application">
    <id>org.gnome.Firewall</id>
    <name>Firewall</name>
    <summary>Configure the firewall</summary>
  </component>
  <component type="desktop-application">
    <name>No id, dropped</name>
  </component>
</components>
`

const metainfoXML = `<?xml version="1.0" encoding="UTF-8"?>
<component type="desktop-application">
  <id>org.gimp.GIMP</id>
  <name>GIMP</name>
  <summary>Create images and edit photographs</summary>
  <description><p>Image editor.</p></description>
  <icon type="local">/usr/share/icons/gimp.png</icon>
</component>
`

const dep11YAML = `---
File: DEP-11
Version: '0.12'
Origin: bookworm-main
---
Type: desktop-application
ID: org.inkscape.Inkscape
Package: inkscape
Name:
  C: Inkscape
  fr: Inkscape FR
Summary:
  C: Vector graphics editor
Description:
  C: <p>Draw freely.</p><ul><li>SVG</li></ul>
Icon:
  stock: inkscape
  cached:
  - name: inkscape_org.inkscape.Inkscape.png
    width: 64
    height: 64
---
Type: generic
Package: nothing
Name:
  C: No id
`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzip(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}
