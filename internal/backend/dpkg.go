package backend

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// Default dpkg database locations.
const (
	DefaultDpkgStatus  = "/var/lib/dpkg/status"
	DefaultDpkgInfoDir = "/var/lib/dpkg/info"
)

// DpkgOptions configures the dpkg backend.
type DpkgOptions struct {
	StatusPath string
	InfoDir    string
	Store      *appstream.Holder
	Locale     string
}

// Dpkg reads the dpkg database. Only packages that ship an appstream
// component are listed, which keeps libraries and other plumbing out of the
// installed list.
type Dpkg struct {
	statusPath string
	infoDir    string
	store      *appstream.Holder
	locale     string
}

// NewDpkg returns a dpkg backend.
func NewDpkg(opts DpkgOptions) *Dpkg {
	if opts.StatusPath == "" {
		opts.StatusPath = DefaultDpkgStatus
	}
	if opts.InfoDir == "" {
		opts.InfoDir = DefaultDpkgInfoDir
	}
	return &Dpkg{
		statusPath: opts.StatusPath,
		infoDir:    opts.InfoDir,
		store:      opts.Store,
		locale:     opts.Locale,
	}
}

// dpkgStanza is one package record of the status file.
type dpkgStanza struct {
	Package      string
	Architecture string
	Version      string
	Status       string
	Description  string
}

// Installed implements Backend.
func (d *Dpkg) Installed(ctx context.Context) ([]Package, error) {
	f, err := os.Open(d.statusPath)
	if err != nil {
		return nil, apperrors.BackendError(NameDpkg, "failed to open dpkg status", err).
			WithDetail("path", d.statusPath)
	}
	defer func() { _ = f.Close() }()

	stanzas, err := parseDpkgStatus(f)
	if err != nil {
		return nil, apperrors.BackendError(NameDpkg, "failed to read dpkg status", err).
			WithDetail("path", d.statusPath)
	}

	store := d.store.Load()
	var pkgs []Package
	for _, st := range stanzas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if st.Status != "install ok installed" {
			continue
		}
		refs := store.ComponentsByPkgName(st.Package)
		if len(refs) == 0 {
			continue
		}
		ref := refs[0]

		pkg := Package{
			ID:      st.Package,
			Name:    ref.Component.Name.Get(d.locale),
			Version: st.Version,
			Summary: ref.Component.Summary.Get(d.locale),
			Icon:    store.Icon(ref.Collection.Origin, ref.Component),
		}
		if pkg.Name == "" {
			pkg.Name = st.Package
		}
		if pkg.Summary == "" {
			pkg.Summary = st.Description
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}

// Appstream implements Backend. Metainfo files the package installed are
// preferred; store components naming the package are the fallback.
func (d *Dpkg) Appstream(ctx context.Context, pkg Package) (*appstream.Collection, error) {
	coll := &appstream.Collection{}
	for _, path := range d.metainfoFiles(pkg.ID) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := appstream.LoadFile(path)
		if err != nil {
			slog.Warn("failed to read dpkg metainfo", apperrors.LogAttrs(err)...)
			continue
		}
		coll.Components = append(coll.Components, parsed.Components...)
		if coll.Source == "" {
			coll.Source = path
		}
	}
	if len(coll.Components) > 0 {
		return coll, nil
	}

	refs := d.store.Load().ComponentsByPkgName(pkg.ID)
	if len(refs) == 0 {
		return nil, noMetadata(NameDpkg, pkg.ID)
	}
	coll = localComponent(refs[0])
	for _, ref := range refs[1:] {
		coll.Components = append(coll.Components, ref.Component)
	}
	return coll, nil
}

// metainfoFiles returns the metainfo paths listed in the package's .list
// file. Multi-arch packages use <pkg>:<arch>.list.
func (d *Dpkg) metainfoFiles(name string) []string {
	lists, _ := filepath.Glob(filepath.Join(d.infoDir, name+":*.list"))
	lists = append([]string{filepath.Join(d.infoDir, name+".list")}, lists...)

	var files []string
	for _, list := range lists {
		f, err := os.Open(list)
		if err != nil {
			continue
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if isMetainfoPath(line) {
				files = append(files, line)
			}
		}
		_ = f.Close()
	}
	return files
}

func isMetainfoPath(p string) bool {
	if !strings.HasSuffix(p, ".xml") {
		return false
	}
	return strings.HasPrefix(p, "/usr/share/metainfo/") || strings.HasPrefix(p, "/usr/share/appdata/")
}

// parseDpkgStatus reads RFC-822 style stanzas separated by blank lines.
// Continuation lines are skipped, so Description keeps only its synopsis.
func parseDpkgStatus(r io.Reader) ([]dpkgStanza, error) {
	var (
		out []dpkgStanza
		cur dpkgStanza
	)
	flush := func() {
		if cur.Package != "" {
			out = append(out, cur)
		}
		cur = dpkgStanza{}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Package":
			cur.Package = value
		case "Architecture":
			cur.Architecture = value
		case "Version":
			cur.Version = value
		case "Status":
			cur.Status = value
		case "Description":
			cur.Description = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}
