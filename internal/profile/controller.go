// Package profile switches the power profile between an active and an idle
// mode as the session idle time crosses a threshold.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/idle"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

// State is the controller's view of the user.
type State int

const (
	Active State = iota
	Idle
)

func (s State) String() string {
	if s == Idle {
		return "idle"
	}
	return "active"
}

// Backend reads and writes the system power profile.
type Backend interface {
	Name() string
	Set(ctx context.Context, mode power.Mode) error
	// Current returns the live profile, or power.Unknown when it cannot be read.
	Current(ctx context.Context) power.Mode
}

// Policy is the idle threshold and the mode to use on each side of it.
type Policy struct {
	IdleMinutes int
	ActiveMode  power.Mode
	IdleMode    power.Mode
}

// ThresholdSeconds is the single enter/exit point for the idle state.
func (p Policy) ThresholdSeconds() int64 {
	return int64(p.IdleMinutes) * 60
}

// Target returns the mode for a state.
func (p Policy) Target(s State) power.Mode {
	if s == Idle {
		return p.IdleMode
	}
	return p.ActiveMode
}

// Result describes what one Update did.
type Result struct {
	From      State
	To        State
	Want      State // the state the reading calls for; differs from To after a failed set
	Target    power.Mode
	Crossed   bool // the reading crossed the threshold relative to From
	Invoked   bool // the backend was called
	Switched  bool // To differs from From
	Err       error
	Threshold int64
}

// Controller holds the ACTIVE/IDLE state and the last profile this process
// itself applied. The cache may be stale if the profile is changed elsewhere.
type Controller struct {
	backend Backend
	logger  *slog.Logger

	state       State
	lastApplied power.Mode
}

func NewController(backend Backend, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{backend: backend, logger: logger, state: Active}
}

func (c *Controller) State() State { return c.state }

// LastApplied returns the last profile successfully set, or "" if none.
func (c *Controller) LastApplied() power.Mode { return c.lastApplied }

// Update evaluates one reading. A failed set leaves state and cache untouched
// so the next reading on the same side of the threshold retries.
func (c *Controller) Update(ctx context.Context, reading idle.Reading, policy Policy) Result {
	threshold := policy.ThresholdSeconds()
	res := Result{From: c.state, To: c.state, Threshold: threshold}

	want := Active
	if reading.Seconds >= threshold {
		want = Idle
	}
	res.Want = want
	if want == c.state {
		return res
	}

	res.Crossed = true
	res.Target = policy.Target(want)

	invoked, err := c.Apply(ctx, res.Target)
	res.Invoked = invoked
	if err != nil {
		res.Err = err
		c.logger.Warn("profile.transition.failed",
			"from", c.state.String(), "to", want.String(), "mode", res.Target, "idle_seconds", reading.Seconds, "error", err)
		return res
	}

	c.state = want
	res.To = want
	res.Switched = true
	c.logger.Info("profile.transition.completed",
		"from", res.From.String(), "to", want.String(), "mode", res.Target, "idle_seconds", reading.Seconds, "threshold_seconds", threshold)
	return res
}

// Apply sets mode unless it is already the last applied profile. It reports
// whether the backend was invoked.
func (c *Controller) Apply(ctx context.Context, mode power.Mode) (bool, error) {
	if !mode.Valid() {
		return false, fmt.Errorf("refusing to set invalid power mode %q", mode)
	}
	if mode == c.lastApplied {
		return false, nil
	}
	if err := c.backend.Set(ctx, mode); err != nil {
		return true, fmt.Errorf("set profile %s via %s: %w", mode, c.backend.Name(), err)
	}
	c.lastApplied = mode
	return true, nil
}

// Current returns the live system profile.
func (c *Controller) Current(ctx context.Context) power.Mode {
	return c.backend.Current(ctx)
}
