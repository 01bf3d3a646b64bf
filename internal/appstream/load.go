package appstream

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// sniffLen is how much of a file is inspected to detect compression.
const sniffLen = 512

// LoadFile parses one collection or metainfo file. Gzip compression is
// detected from content; DEP-11 YAML is selected by the .yml/.yaml extension.
func LoadFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.New(apperrors.ErrCodeFileNotFound, "appstream file not found", err).
				WithDetail("path", path)
		}
		if os.IsPermission(err) {
			return nil, apperrors.New(apperrors.ErrCodeFilePermission, "appstream file not readable", err).
				WithDetail("path", path)
		}
		return nil, apperrors.ParseError(path, err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReaderSize(f, sniffLen)
	head, _ := br.Peek(sniffLen)

	var r io.Reader = br
	if mimetype.Detect(head).Is("application/gzip") {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, apperrors.ParseError(path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	var coll *Collection
	if isYAML(path) {
		coll, err = ParseDEP11(r)
	} else {
		coll, err = ParseXML(r)
	}
	if err != nil {
		return nil, apperrors.ParseError(path, err)
	}

	coll.Source = path
	if dir := flatpakIconDir(path); dir != "" {
		for _, c := range coll.Components {
			c.iconDir = dir
		}
	}
	return coll, nil
}

func trimCompression(name string) string {
	return strings.TrimSuffix(name, ".gz")
}

func isYAML(path string) bool {
	switch filepath.Ext(trimCompression(path)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

// CollectionID derives the store key for a collection file:
// flatpak:<scope>:<remote>/<arch> for flatpak appstream trees, otherwise the
// file name without compression and format extensions. The scope keeps a
// user remote from shadowing a system remote of the same name.
func CollectionID(path string) string {
	if scope, remote, arch, ok := flatpakTree(path); ok {
		return "flatpak:" + scope + ":" + remote + "/" + arch
	}
	name := trimCompression(filepath.Base(path))
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// flatpakTree recognizes .../flatpak/appstream/<remote>/<arch>/active/appstream.xml[.gz].
func flatpakTree(path string) (scope, remote, arch string, ok bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	n := len(parts)
	if n < 6 || parts[n-2] != "active" || parts[n-5] != "appstream" || parts[n-6] != "flatpak" {
		return "", "", "", false
	}
	return flatpakScope(parts[:n-6]), parts[n-4], parts[n-3], true
}

// flatpakScope names the installation holding a flatpak directory.
// ~/.local/share/flatpak is "user" and /var/lib/flatpak is "system"; any
// other installation is named after its parent directory.
func flatpakScope(parent []string) string {
	n := len(parent)
	switch {
	case n >= 2 && parent[n-2] == ".local" && parent[n-1] == "share":
		return "user"
	case n >= 2 && parent[n-2] == "var" && parent[n-1] == "lib":
		return "system"
	case n >= 1 && parent[n-1] != "":
		return parent[n-1]
	default:
		return "system"
	}
}

func flatpakIconDir(path string) string {
	if _, _, _, ok := flatpakTree(path); !ok {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "icons")
}
