// Package command runs the external tools auto-idle drives (gdbus,
// powerprofilesctl, asusctl) with a bounded wait.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 3 * time.Second

// ErrTimeout is returned when a tool does not exit within the timeout.
var ErrTimeout = errors.New("command timed out")

// Runner executes a tool and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(name string) bool
}

// Exec runs real processes.
type Exec struct {
	Timeout time.Duration
}

// NewExec returns an Exec runner; a non-positive timeout selects DefaultTimeout.
func NewExec(timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Exec{Timeout: timeout}
}

func (e *Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 500 * time.Millisecond

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdout.Bytes(), fmt.Errorf("%s: %w after %s", name, ErrTimeout, timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func (e *Exec) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
