package backend

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/Aman-CERP/appshelf/internal/errors"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host.
type ExecRunner struct {
	// Timeout bounds each command (0 = only the caller's context).
	Timeout time.Duration
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		e := apperrors.New(apperrors.ErrCodeCommandFailed, "command failed: "+name, err).
			WithDetail("command", strings.Join(append([]string{name}, args...), " "))
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			e = e.WithDetail("stderr", msg)
		}
		return nil, e
	}
	return stdout.Bytes(), nil
}
