package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Aman-CERP/appshelf/internal/async"
)

// StatusInfo describes catalog health.
type StatusInfo struct {
	Locale   string             `json:"locale"`
	Backends []string           `json:"backends"`
	Load     async.LoadSnapshot `json:"load"`
	Watcher  string             `json:"watcher"` // "fsnotify", "polling", "off"
}

// StatusRenderer displays catalog status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{out: out, styles: GetStyles(noColor)}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Catalog Status"))

	_, _ = fmt.Fprintf(r.out, "  Status:      %s (%s)\n", r.renderStatus(info.Load.Status), info.Load.Stage)
	_, _ = fmt.Fprintf(r.out, "  Locale:      %s\n", info.Locale)
	_, _ = fmt.Fprintf(r.out, "  Collections: %d (%d components)\n", info.Load.Collections, info.Load.Components)
	_, _ = fmt.Fprintf(r.out, "  Installed:   %d\n", info.Load.Installed)
	if len(info.Backends) > 0 {
		_, _ = fmt.Fprintf(r.out, "  Backends:    %s\n", strings.Join(info.Backends, ", "))
	} else {
		_, _ = fmt.Fprintf(r.out, "  Backends:    %s\n", r.styles.Warning.Render("none"))
	}
	if info.Load.StoreReloads > 0 {
		_, _ = fmt.Fprintf(r.out, "  Reloads:     %d\n", info.Load.StoreReloads)
	}
	_, _ = fmt.Fprintf(r.out, "  Elapsed:     %s\n", formatDuration(time.Duration(info.Load.ElapsedSeconds)*time.Second))
	if info.Watcher != "" {
		_, _ = fmt.Fprintf(r.out, "  Watcher:     %s\n", info.Watcher)
	}
	if info.Load.ErrorMessage != "" {
		_, _ = fmt.Fprintf(r.out, "\n  %s\n", r.styles.Error.Render(info.Load.ErrorMessage))
	}

	return nil
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func (r *StatusRenderer) renderStatus(status string) string {
	switch async.LoadStatus(status) {
	case async.StatusReady:
		return r.styles.Success.Render(status)
	case async.StatusLoading:
		return r.styles.Warning.Render(status)
	case async.StatusError:
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
