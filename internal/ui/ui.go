// Package ui provides the interactive catalog browser and terminal status
// display.
package ui

import (
	"io"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
)

// ciEnvVars mark CI jobs, where a full-screen program would hang the log.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE"}

// Config describes the terminal the browser runs on.
type Config struct {
	Input   io.Reader
	Output  io.Writer
	Plain   bool
	NoColor bool
}

// ConfigOption modifies a Config.
type ConfigOption func(*Config)

// WithPlain disables the interactive browser.
func WithPlain(plain bool) ConfigOption {
	return func(c *Config) { c.Plain = plain }
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) { c.NoColor = noColor }
}

// NewConfig returns a Config for the given streams. NO_COLOR in the
// environment overrides WithNoColor(false).
func NewConfig(in io.Reader, out io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Input: in, Output: out}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.NoColor = cfg.NoColor || DetectNoColor()
	return cfg
}

// Interactive reports whether the browser can run. Both streams must be
// terminals, TERM must not be "dumb", and this must not be a CI job.
func (c Config) Interactive() bool {
	if c.Plain || DetectCI() || os.Getenv("TERM") == "dumb" {
		return false
	}
	in, ok := c.Input.(*os.File)
	return ok && isTerminal(in) && IsTTY(c.Output)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectNoColor reports whether NO_COLOR is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI reports whether a CI environment variable is set.
func DetectCI() bool {
	return slices.ContainsFunc(ciEnvVars, func(v string) bool {
		_, exists := os.LookupEnv(v)
		return exists
	})
}
