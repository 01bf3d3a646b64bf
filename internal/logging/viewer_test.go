package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"DEBUG","msg":"selection cache hit","backend":"dpkg"}
{"time":"2026-01-02T10:00:01.000Z","level":"INFO","msg":"loaded backends","count":2}
not json at all
{"time":"2026-01-02T10:00:02.000Z","level":"WARN","msg":"failed to read dpkg metainfo","path":"/usr/share/metainfo/x.xml"}
{"time":"2026-01-02T10:00:03.000Z","level":"ERROR","msg":"failed to list installed packages","backend":"flatpak","code":"ERR_302_COMMAND_FAILED"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appshelf.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestViewer_Tail(t *testing.T) {
	path := writeLog(t, sampleLog)

	tests := []struct {
		name string
		cfg  ViewerConfig
		n    int
		want []string
	}{
		{name: "last two lines", n: 2, want: []string{"failed to read dpkg metainfo", "failed to list installed packages"}},
		{name: "level filter", cfg: ViewerConfig{Level: "warn"}, n: 50, want: []string{"failed to read dpkg metainfo", "failed to list installed packages"}},
		{name: "pattern filter", cfg: ViewerConfig{Pattern: regexp.MustCompile(`dpkg`)}, n: 50, want: []string{"selection cache hit", "failed to read dpkg metainfo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewer(tt.cfg, &bytes.Buffer{})

			entries, err := v.Tail(path, tt.n)

			require.NoError(t, err)
			var msgs []string
			for _, e := range entries {
				msgs = append(msgs, e.Msg)
			}
			assert.Equal(t, tt.want, msgs)
		})
	}
}

func TestViewer_Tail_KeepsInvalidLines(t *testing.T) {
	path := writeLog(t, sampleLog)
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})

	entries, err := v.Tail(path, 50)

	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.False(t, entries[2].IsValid)
	assert.Equal(t, "not json at all", v.FormatEntry(entries[2]))
}

func TestViewer_Tail_MissingFile(t *testing.T) {
	v := NewViewer(ViewerConfig{}, &bytes.Buffer{})

	_, err := v.Tail(filepath.Join(t.TempDir(), "nope.log"), 10)

	assert.Error(t, err)
}

func TestViewer_FormatEntry(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, &bytes.Buffer{})
	entry := parseLine(`{"time":"2026-01-02T10:00:03.250Z","level":"ERROR","msg":"failed","z":"last","a":1}`)

	got := v.FormatEntry(entry)

	assert.Equal(t, "10:00:03.250 ERROR failed a=1 z=last", got)
}

func TestViewer_Print(t *testing.T) {
	var buf bytes.Buffer
	v := NewViewer(ViewerConfig{NoColor: true}, &buf)

	v.Print([]LogEntry{parseLine(`{"time":"2026-01-02T10:00:00Z","level":"INFO","msg":"hello"}`)})

	assert.Equal(t, "10:00:00.000 INFO  hello\n", buf.String())
}

func TestViewer_Follow(t *testing.T) {
	// Given: a log file with existing content
	path := writeLog(t, sampleLog)
	v := NewViewer(ViewerConfig{Level: "info"}, &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	entries := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- v.Follow(ctx, path, entries) }()
	time.Sleep(3 * followInterval)

	// When: lines are appended, one below the level filter
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(strings.Join([]string{
		`{"time":"2026-01-02T11:00:00Z","level":"DEBUG","msg":"skipped"}`,
		`{"time":"2026-01-02T11:00:01Z","level":"INFO","msg":"appstream store reloaded"}`,
	}, "\n") + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Then: only the new matching entry arrives
	select {
	case e := <-entries:
		assert.Equal(t, "appstream store reloaded", e.Msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no entry followed")
	}
	cancel()
	assert.NoError(t, <-done)
}
