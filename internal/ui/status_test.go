package ui

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/appshelf/internal/async"
)

func readyInfo() StatusInfo {
	return StatusInfo{
		Locale:   "en-US",
		Backends: []string{"dpkg", "flatpak"},
		Load: async.LoadSnapshot{
			Status: "ready", Stage: "done",
			Collections: 3, Components: 120, Installed: 42,
			ElapsedSeconds: 75,
		},
		Watcher: "fsnotify",
	}
}

func TestStatusRenderer_Render(t *testing.T) {
	// Given: a ready catalog
	buf := &bytes.Buffer{}
	r := NewStatusRenderer(buf, true)

	// When: rendering
	require.NoError(t, r.Render(readyInfo()))

	// Then: every field is shown plainly
	out := buf.String()
	assert.Contains(t, out, "Status:      ready (done)")
	assert.Contains(t, out, "Collections: 3 (120 components)")
	assert.Contains(t, out, "Installed:   42")
	assert.Contains(t, out, "Backends:    dpkg, flatpak")
	assert.Contains(t, out, "Elapsed:     1m 15s")
	assert.Contains(t, out, "Watcher:     fsnotify")
	assert.NotContains(t, out, "Reloads")
}

func TestStatusRenderer_NoBackendsAndError(t *testing.T) {
	buf := &bytes.Buffer{}
	info := readyInfo()
	info.Backends = nil
	info.Load.Status = "error"
	info.Load.ErrorMessage = "discovery failed"

	require.NoError(t, NewStatusRenderer(buf, true).Render(info))

	assert.Contains(t, buf.String(), "Backends:    none")
	assert.Contains(t, buf.String(), "discovery failed")
}

func TestStatusRenderer_RenderJSON(t *testing.T) {
	buf := &bytes.Buffer{}

	require.NoError(t, NewStatusRenderer(buf, true).RenderJSON(readyInfo()))

	var decoded StatusInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, readyInfo(), decoded)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 15*time.Second, "2m 15s"},
		{3*time.Hour + 4*time.Minute, "3h 4m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.d))
		})
	}
}
