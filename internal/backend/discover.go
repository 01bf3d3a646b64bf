package backend

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/Aman-CERP/appshelf/internal/appstream"
)

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	// Enabled restricts the result to these names (empty = every usable backend).
	Enabled []string

	FlatpakCommand       string
	FlatpakInstallations []string
	DpkgStatus           string
	DpkgInfoDir          string
	CommandTimeout       time.Duration

	Store  *appstream.Holder
	Locale string

	// Runner overrides command execution (tests).
	Runner Runner
	// LookPath overrides executable lookup (tests).
	LookPath func(string) (string, error)
}

// Discover checks the host and registers every usable backend. A cancelled
// context yields an empty registry.
func Discover(ctx context.Context, opts DiscoverOptions) *Registry {
	if ctx.Err() != nil {
		return NewRegistry(nil)
	}
	start := time.Now()
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{Timeout: opts.CommandTimeout}
	}
	if opts.FlatpakCommand == "" {
		opts.FlatpakCommand = "flatpak"
	}
	if opts.DpkgStatus == "" {
		opts.DpkgStatus = DefaultDpkgStatus
	}

	enabled := func(name string) bool {
		return len(opts.Enabled) == 0 || slices.Contains(opts.Enabled, name)
	}

	backends := make(map[string]Backend)
	if enabled(NameFlatpak) {
		if _, err := opts.LookPath(opts.FlatpakCommand); err == nil {
			backends[NameFlatpak] = NewFlatpak(FlatpakOptions{
				Command:       opts.FlatpakCommand,
				Installations: opts.FlatpakInstallations,
				Runner:        opts.Runner,
				Store:         opts.Store,
				Locale:        opts.Locale,
			})
		} else {
			slog.Debug("flatpak backend unavailable", slog.String("error", err.Error()))
		}
	}
	if enabled(NameDpkg) {
		if _, err := os.Stat(opts.DpkgStatus); err == nil {
			backends[NameDpkg] = NewDpkg(DpkgOptions{
				StatusPath: opts.DpkgStatus,
				InfoDir:    opts.DpkgInfoDir,
				Store:      opts.Store,
				Locale:     opts.Locale,
			})
		} else {
			slog.Debug("dpkg backend unavailable", slog.String("error", err.Error()))
		}
	}

	r := NewRegistry(backends)
	slog.Info("loaded backends",
		slog.Any("backends", r.Names()),
		slog.Duration("duration", time.Since(start)))
	return r
}
