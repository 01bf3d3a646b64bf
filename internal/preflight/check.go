package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Aman-CERP/appshelf/internal/config"
	"github.com/Aman-CERP/appshelf/internal/logging"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose  bool
	output   io.Writer
	lookPath func(string) (string, error)
	logDir   string
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints details under each result.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithLookPath overrides executable lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Checker) {
		c.lookPath = fn
	}
}

// WithLogDir overrides the directory checked for log writes.
func WithLogDir(dir string) Option {
	return func(c *Checker) {
		c.logDir = dir
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:   os.Stdout,
		lookPath: exec.LookPath,
		logDir:   logging.DefaultLogDir(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check against cfg.
func (c *Checker) RunAll(_ context.Context, cfg *config.Config) []CheckResult {
	flatpak := c.CheckFlatpak(cfg.Backends.FlatpakCommand, cfg.BackendEnabled("flatpak"))
	dpkg := c.CheckDpkg(config.ExpandHome(cfg.Backends.DpkgStatus), cfg.BackendEnabled("dpkg"))

	return []CheckResult{
		c.CheckCollections(config.ExpandHomeAll(cfg.Appstream.Paths)),
		c.CheckIconDirs(config.ExpandHomeAll(cfg.Appstream.IconDirs)),
		flatpak,
		dpkg,
		c.CheckBackends(flatpak, dpkg),
		c.CheckWritePermissions(c.logDir),
		c.CheckFileDescriptors(),
	}
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns "failed", "ready_with_warnings" or "ready".
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status == StatusWarn || r.Status == StatusFail {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "appshelf System Check")
	_, _ = fmt.Fprintln(c.output, "=====================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errors []string
	for _, r := range results {
		switch {
		case r.IsCritical():
			errors = append(errors, r.Name+": "+r.Message)
		case r.Status != StatusPass:
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}
	printList(c.output, "error(s)", errors)
	printList(c.output, "warning(s)", warnings)
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "%d %s:\n", len(items), label)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// CheckCollections counts the files the collection patterns match.
func (c *Checker) CheckCollections(patterns []string) CheckResult {
	result := CheckResult{Name: "collections"}

	files := 0
	var bad []string
	for _, p := range patterns {
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			bad = append(bad, p)
			continue
		}
		files += len(matches)
	}

	switch {
	case len(bad) > 0:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%d invalid pattern(s)", len(bad))
		result.Details = strings.Join(bad, ", ")
	case files == 0:
		result.Status = StatusWarn
		result.Message = "no appstream collection files found"
		result.Details = "Install your distribution's appstream data or set appstream.paths"
	default:
		result.Status = StatusPass
		result.Message = fmt.Sprintf("%d file(s)", files)
	}
	return result
}

// CheckIconDirs reports how many icon roots exist.
func (c *Checker) CheckIconDirs(dirs []string) CheckResult {
	result := CheckResult{Name: "icon_dirs"}

	var found []string
	for _, d := range dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			found = append(found, d)
		}
	}
	if len(found) == 0 {
		result.Status = StatusWarn
		result.Message = "no cached icon directories; placeholder icons will be shown"
		return result
	}
	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d of %d present", len(found), len(dirs))
	result.Details = strings.Join(found, ", ")
	return result
}

// CheckFlatpak looks up the flatpak executable.
func (c *Checker) CheckFlatpak(command string, enabled bool) CheckResult {
	result := CheckResult{Name: "flatpak"}
	if !enabled {
		result.Status = StatusPass
		result.Message = "disabled"
		return result
	}

	path, err := c.lookPath(command)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s not found", command)
		return result
	}
	result.Status = StatusPass
	result.Message = path
	return result
}

// CheckDpkg checks that the dpkg status database is readable.
func (c *Checker) CheckDpkg(statusPath string, enabled bool) CheckResult {
	result := CheckResult{Name: "dpkg"}
	if !enabled {
		result.Status = StatusPass
		result.Message = "disabled"
		return result
	}

	f, err := os.Open(statusPath)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s not readable", statusPath)
		result.Details = err.Error()
		return result
	}
	_ = f.Close()
	result.Status = StatusPass
	result.Message = statusPath
	return result
}

// CheckBackends fails when no enabled backend is usable.
func (c *Checker) CheckBackends(backends ...CheckResult) CheckResult {
	result := CheckResult{Name: "backends", Required: true}

	var usable []string
	for _, b := range backends {
		if b.Status == StatusPass && b.Message != "disabled" {
			usable = append(usable, b.Name)
		}
	}
	if len(usable) == 0 {
		result.Status = StatusFail
		result.Message = "no usable package backend"
		result.Details = "Install flatpak or dpkg, or check backends.enabled"
		return result
	}
	result.Status = StatusPass
	result.Message = strings.Join(usable, ", ")
	return result
}

// CheckWritePermissions checks that log files can be created in dir.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "log_dir",
		Required: true,
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	testFile := filepath.Join(dir, ".appshelf-preflight-test")
	f, err := os.Create(testFile)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	result.Status = StatusPass
	result.Message = dir
	return result
}
