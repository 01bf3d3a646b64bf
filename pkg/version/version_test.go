package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString_ContainsBuildInfo(t *testing.T) {
	info := GetInfo()

	str := String()

	assert.Contains(t, str, "appshelf "+info.Version)
	assert.Contains(t, str, "commit: "+info.Commit)
	assert.Contains(t, str, "go: "+runtime.Version())
	assert.Equal(t, info.Version, Short())
}

func TestGetInfo_JSON(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, runtime.GOOS, decoded["os"])
	assert.Equal(t, runtime.GOARCH, decoded["arch"])
	assert.Equal(t, runtime.Version(), decoded["go_version"])
}

func TestFromBuildInfo(t *testing.T) {
	stamped := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name string
		in   BuildInfo
		bi   *debug.BuildInfo
		want BuildInfo
	}{
		{
			name: "unset ldflags take build info",
			in:   BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"},
			bi:   stamped,
			want: BuildInfo{Version: "v1.4.0", Commit: "0123456789ab", Date: "2026-03-01T12:00:00Z", Modified: true},
		},
		{
			name: "ldflags win",
			in:   BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01"},
			bi:   stamped,
			want: BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01", Modified: true},
		},
		{
			name: "devel build keeps dev",
			in:   BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"},
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: BuildInfo{Version: "dev", Commit: "unknown", Date: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.in

			fromBuildInfo(&info, tt.bi)

			assert.Equal(t, tt.want, info)
		})
	}
}
