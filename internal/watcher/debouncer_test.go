package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, d *Debouncer, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_SingleEventPassesThrough(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	// When: one event is added
	d.Add(FileEvent{Path: "/x/a.xml", Operation: OpCreate})

	// Then: it comes out alone after the window
	batch := receive(t, d, time.Second)
	require.Len(t, batch, 1)
	assert.Equal(t, "/x/a.xml", batch[0].Path)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestDebouncer_Coalescing(t *testing.T) {
	tests := []struct {
		name   string
		ops    []Operation
		want   Operation
		cancel bool
	}{
		{"create then modify", []Operation{OpCreate, OpModify, OpModify}, OpCreate, false},
		{"create then delete", []Operation{OpCreate, OpDelete}, 0, true},
		{"delete then create", []Operation{OpDelete, OpCreate}, OpModify, false},
		{"modify then delete", []Operation{OpModify, OpDelete}, OpDelete, false},
		{"modify repeatedly", []Operation{OpModify, OpModify}, OpModify, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(30 * time.Millisecond)
			defer d.Stop()

			for _, op := range tt.ops {
				d.Add(FileEvent{Path: "/x/a.xml", Operation: op})
			}
			d.Add(FileEvent{Path: "/x/b.xml", Operation: OpModify})

			batch := receive(t, d, time.Second)
			if tt.cancel {
				require.Len(t, batch, 1)
				assert.Equal(t, "/x/b.xml", batch[0].Path)
				return
			}
			require.Len(t, batch, 2)
			assert.Equal(t, "/x/a.xml", batch[0].Path)
			assert.Equal(t, tt.want, batch[0].Operation)
		})
	}
}

func TestDebouncer_StopClosesOutput(t *testing.T) {
	d := NewDebouncer(time.Hour)
	d.Add(FileEvent{Path: "/x/a.xml", Operation: OpCreate})

	d.Stop()
	d.Stop()
	d.Add(FileEvent{Path: "/x/b.xml", Operation: OpCreate})

	_, ok := <-d.Output()
	assert.False(t, ok)
}
