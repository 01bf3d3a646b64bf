// Package version provides build and version information for appshelf.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags:
//
//	-X github.com/Aman-CERP/appshelf/pkg/version.Version=$(VERSION)
//	-X github.com/Aman-CERP/appshelf/pkg/version.Commit=$(git rev-parse --short HEAD)
//	-X github.com/Aman-CERP/appshelf/pkg/version.Date=$(date -u +%FT%TZ)
//
// When they are left unset, binaries built with `go install` fall back to
// the module version and VCS stamps recorded by the toolchain.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetInfo returns the build information, filling unset ldflags values from
// the embedded module build info.
func GetInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fromBuildInfo(&info, bi)
	}
	return info
}

func fromBuildInfo(info *BuildInfo, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value[:min(12, len(s.Value))]
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
}

// String returns a one-line description of the build.
func String() string {
	info := GetInfo()
	dirty := ""
	if info.Modified {
		dirty = "+dirty"
	}
	return fmt.Sprintf("appshelf %s (commit: %s%s, built: %s, go: %s)",
		info.Version, info.Commit, dirty, info.Date, info.GoVersion)
}

// Short returns just the version.
func Short() string {
	return GetInfo().Version
}
