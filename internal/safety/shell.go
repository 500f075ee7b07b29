package safety

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	defaultShellTimeout = 120 * time.Second
	termuxBash          = "/data/data/com.termux/files/usr/bin/bash"
)

// Shell runs a command string and returns its combined output and exit code.
// err is only set when the process could not be started or was killed by
// the timeout; a nonzero exit is reported through the exit code.
type Shell interface {
	Run(ctx context.Context, command string) (output string, exitCode int, err error)
}

// ShellRunner executes commands through the system shell.
type ShellRunner struct {
	Timeout time.Duration
	Dir     string
}

// NewShellRunner creates a runner with the given timeout, or the default
// when timeout is zero.
func NewShellRunner(timeout time.Duration) *ShellRunner {
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}
	return &ShellRunner{Timeout: timeout}
}

// Run implements Shell.
func (s *ShellRunner) Run(ctx context.Context, command string) (string, int, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, shellPath(), "-c", command)
	if s.Dir != "" {
		cmd.Dir = s.Dir
	}

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return string(output), -1, fmt.Errorf("command timed out after %v", timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), exitErr.ExitCode(), nil
		}
		return string(output), -1, err
	}
	return string(output), 0, nil
}

// shellPath prefers Termux's bash when running on Android.
func shellPath() string {
	if _, err := os.Stat(termuxBash); err == nil {
		return termuxBash
	}
	return "sh"
}
