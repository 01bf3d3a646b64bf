package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCatalogXML = `<?xml version="1.0" encoding="UTF-8"?>
<components version="0.14" origin="testing">
  <component type="desktop-application">
    <id>org.mozilla.firefox</id>
    <pkgname>firefox</pkgname>
    <name>Firefox</name>
    <summary>Web browser</summary>
    <description><p>Browse the web.</p></description>
  </component>
  <component type="desktop-application">
    <id>org.gnome.Firewall</id>
    <name>Firewall</name>
    <summary>Configure the firewall</summary>
  </component>
</components>
`

const testDpkgStatus = `Package: firefox
Status: install ok installed
Version: 128.0-1
Description: Mozilla Firefox web browser

Package: libc6
Status: install ok installed
Version: 2.36-9
Description: GNU C Library
`

// testEnv isolates HOME and locale and writes a config pointing at one
// collection and a dpkg status file. It returns the config path.
func testEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("NO_COLOR", "1")

	data := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(filepath.Join(data, "info"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "catalog.xml"), []byte(testCatalogXML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "status"), []byte(testDpkgStatus), 0o644))

	cfg := fmt.Sprintf(`version: 1
locale: en-US
appstream:
  paths:
    - %[1]s/*.xml
  icon_dirs: []
backends:
  enabled: [dpkg]
  dpkg_status: %[1]s/status
  dpkg_info_dir: %[1]s/info
log:
  level: error
`, data)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
