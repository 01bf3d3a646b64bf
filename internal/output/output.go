// Package output formats CLI output: status lines, package lists, search
// results and package details.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/appshelf/internal/appstream"
	"github.com/Aman-CERP/appshelf/internal/backend"
	"github.com/Aman-CERP/appshelf/internal/catalog"
	"github.com/Aman-CERP/appshelf/internal/search"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool
	name     lipgloss.Style
	dim      lipgloss.Style
}

// New creates a Writer without color.
func New(out io.Writer) *Writer {
	return NewWithColor(out, false)
}

// NewWithColor creates a Writer that highlights names when color is true.
func NewWithColor(out io.Writer, color bool) *Writer {
	w := &Writer{out: out, useColor: color, name: lipgloss.NewStyle(), dim: lipgloss.NewStyle()}
	if color {
		w.name = w.name.Bold(true)
		w.dim = w.dim.Foreground(lipgloss.Color("8"))
	}
	return w
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Installed prints installed packages as aligned columns.
func (w *Writer) Installed(pkgs []backend.InstalledPackage) {
	if len(pkgs) == 0 {
		w.Status("", "No installed applications found.")
		return
	}
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	for _, p := range pkgs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.name.Render(p.Name), p.Version, w.dim.Render(p.Backend), p.ID)
	}
	_ = tw.Flush()
}

// Results prints search results with their weight tier.
func (w *Writer) Results(results []search.Result) {
	if len(results) == 0 {
		w.Status("", "No matching applications.")
		return
	}
	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Weight, w.name.Render(r.Name), truncate(r.Summary, 60), w.dim.Render(r.Backend+":"+r.ComponentID))
	}
	_ = tw.Flush()
}

// Selected prints a selection header followed by every component of its
// collection with localized name, summary and description.
func (w *Writer) Selected(sel catalog.Selected, locale string) {
	_, _ = fmt.Fprintf(w.out, "%s  %s\n", w.name.Render(sel.Name), sel.Summary)
	_, _ = fmt.Fprintf(w.out, "%s\n", w.dim.Render(fmt.Sprintf("%s · %s · icon %s:%s", sel.Backend, sel.ID, sel.Icon.Kind, sel.Icon.Value)))
	if sel.Collection == nil {
		return
	}
	for _, c := range sel.Collection.Components {
		w.component(c, locale)
	}
}

func (w *Writer) component(c *appstream.Component, locale string) {
	w.Newline()
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.name.Render(c.Name.Get(locale)), w.dim.Render("("+c.ID+")"))
	if s := c.Summary.Get(locale); s != "" {
		_, _ = fmt.Fprintln(w.out, s)
	}
	if d := c.Description.Get(locale); d != "" {
		w.Newline()
		for _, line := range strings.Split(d, "\n") {
			_, _ = fmt.Fprintf(w.out, "  %s\n", line)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
