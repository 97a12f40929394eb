// Package daemon runs the poll loop: sample idle time, switch the power
// profile, then update keyboard lighting, one tick at a time.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/idle"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/metrics"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/profile"
)

// Report is what one tick observed and did.
type Report struct {
	TickID   string
	Time     time.Time
	Duration time.Duration
	Skipped  bool
	Reading  idle.Reading
	Profile  profile.Result
	// Current is the live profile read after the profile step.
	Current  power.Mode
	Lighting lighting.Result
}

// Observer receives every completed tick. Observers run on the tick
// goroutine after the tick lock is released.
type Observer func(Report)

// Snapshot is a copy of the runtime state for status surfaces.
type Snapshot struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	State             string    `json:"state"`
	LastApplied       string    `json:"last_applied_profile"`
	CurrentProfile    string    `json:"current_profile,omitempty"`
	IdleSeconds       int64     `json:"idle_seconds"`
	IdleMinutes       int       `json:"idle_minutes"`
	ThresholdSeconds  int64     `json:"threshold_seconds"`
	LightingSource    string    `json:"lighting_source"`
	LightingAvailable bool      `json:"lighting_available"`
	LastLightingMode  string    `json:"last_lighting_mode,omitempty"`
	LastLightingColor string    `json:"last_lighting_color,omitempty"`
	Temperature       int       `json:"temperature_celsius"`
	TemperatureKnown  bool      `json:"temperature_known"`
	Ticks             uint64    `json:"ticks"`
	SkippedTicks      uint64    `json:"skipped_ticks"`
	LastTick          time.Time `json:"last_tick"`
	LastError         string    `json:"last_error,omitempty"`
}

// Options wires a Daemon. Sampler, Profiles and Lighting are required.
type Options struct {
	Config   config.Config
	Sampler  *idle.Sampler
	Profiles *profile.Controller
	Lighting *lighting.Controller
	// Temperature overrides the sysfs reader built from the config.
	Temperature lighting.TemperatureSource
	Logger      *slog.Logger
	RunID       string
	Now         func() time.Time
}

// Daemon owns the controllers. tickMu serializes ticks; stateMu guards the
// runtime state so snapshots never wait on a running tick.
type Daemon struct {
	sampler  *idle.Sampler
	profiles *profile.Controller
	lights   *lighting.Controller
	temps    lighting.TemperatureSource
	logger   *slog.Logger
	now      func() time.Time

	tickMu sync.Mutex

	stateMu   sync.RWMutex
	policy    policy
	state     Snapshot
	observers []Observer
}

func New(opts Options) (*Daemon, error) {
	if opts.Sampler == nil || opts.Profiles == nil || opts.Lighting == nil {
		return nil, errors.New("daemon: sampler, profile and lighting controllers are required")
	}
	pol, err := policyFromConfig(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runID := opts.RunID
	if runID == "" {
		runID = logging.NewRunID()
	}

	d := &Daemon{
		sampler:  opts.Sampler,
		profiles: opts.Profiles,
		lights:   opts.Lighting,
		temps:    opts.Temperature,
		logger:   logger.With("run_id", runID),
		now:      now,
		policy:   pol,
	}
	d.state = Snapshot{
		RunID:             runID,
		StartedAt:         now().UTC(),
		State:             profile.Active.String(),
		LightingAvailable: opts.Lighting.Available(),
	}
	d.refreshPolicyState()
	return d, nil
}

// Observe registers fn for every completed tick.
func (d *Daemon) Observe(fn Observer) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.observers = append(d.observers, fn)
}

// Config returns the config currently in effect.
func (d *Daemon) Config() config.Config {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.policy.cfg
}

// Interval returns the poll interval currently in effect.
func (d *Daemon) Interval() time.Duration {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.policy.interval
}

// SetConfig swaps the policy between ticks. The lighting caches are cleared
// so the new colors are sent on the next tick. An invalid config is rejected
// and the previous one stays in effect.
func (d *Daemon) SetConfig(cfg config.Config) error {
	pol, err := policyFromConfig(cfg)
	if err != nil {
		return err
	}

	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	d.stateMu.Lock()
	d.policy = pol
	d.refreshPolicyState()
	d.stateMu.Unlock()

	d.lights.Reset()
	d.logger.Info("daemon.config.applied",
		"idle_minutes", pol.minutes,
		"active_mode", pol.profile.ActiveMode,
		"idle_mode", pol.profile.IdleMode,
		"lighting_source", pol.lighting.Source.String(),
		"interval", pol.interval.String())
	return nil
}

// refreshPolicyState copies policy fields into the snapshot; stateMu held.
func (d *Daemon) refreshPolicyState() {
	d.state.IdleMinutes = d.policy.minutes
	d.state.ThresholdSeconds = d.policy.profile.ThresholdSeconds()
	d.state.LightingSource = d.policy.lighting.Source.String()
}

// Snapshot returns a copy of the runtime state.
func (d *Daemon) Snapshot() Snapshot {
	d.stateMu.RLock()
	defer d.stateMu.RUnlock()
	return d.state
}

// Tick runs one tick, waiting for a running tick to finish first. Used for
// explicit "apply now" requests.
func (d *Daemon) Tick(ctx context.Context) Report {
	d.tickMu.Lock()
	report := d.tick(ctx)
	d.tickMu.Unlock()

	d.publish(report)
	return report
}

// TryTick runs one tick unless another is in progress, in which case the
// tick is skipped and counted.
func (d *Daemon) TryTick(ctx context.Context) Report {
	if !d.tickMu.TryLock() {
		metrics.TicksSkipped.Inc()
		d.stateMu.Lock()
		d.state.SkippedTicks++
		d.stateMu.Unlock()
		d.logger.Debug("daemon.tick.skipped", "reason", "previous tick still running")
		return Report{Time: d.now().UTC(), Skipped: true}
	}
	report := d.tick(ctx)
	d.tickMu.Unlock()

	d.publish(report)
	return report
}

// Run ticks immediately and then every poll interval until ctx is done. A
// changed interval takes effect after the next tick.
func (d *Daemon) Run(ctx context.Context) error {
	interval := d.Interval()
	d.logger.Info("daemon.started", "interval", interval.String(), "lighting_available", d.lights.Available())

	d.TryTick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon.stopped", "ticks", d.Snapshot().Ticks)
			return nil
		case <-ticker.C:
			d.TryTick(ctx)
			if next := d.Interval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// ApplyMode sets a profile directly, outside the idle state machine, and
// recolors the keyboard if lighting follows the mode. The next crossing still
// applies the policy's mode.
func (d *Daemon) ApplyMode(ctx context.Context, mode power.Mode) (bool, error) {
	d.tickMu.Lock()
	defer d.tickMu.Unlock()

	invoked, err := d.profiles.Apply(ctx, mode)
	if err != nil {
		d.logger.Warn("daemon.mode.failed", "mode", mode, "error", err)
		d.stateMu.Lock()
		d.state.LastError = err.Error()
		d.stateMu.Unlock()
		return invoked, err
	}

	d.stateMu.RLock()
	pol := d.policy
	d.stateMu.RUnlock()

	current := d.profiles.Current(ctx)
	light := lighting.Result{}
	if pol.lighting.Source == lighting.SourceMode {
		light = d.updateLighting(ctx, pol, current)
		switch {
		case light.Err != nil:
			metrics.LightingFailures.WithLabelValues(light.Source.String()).Inc()
		case light.Applied:
			metrics.LightingApplied.WithLabelValues(light.Source.String()).Inc()
		}
	}

	d.stateMu.Lock()
	d.state.LastApplied = string(d.profiles.LastApplied())
	d.state.CurrentProfile = liveProfile(current)
	d.state.LastLightingMode = string(d.lights.LastMode())
	d.state.LastLightingColor = string(d.lights.LastColor())
	d.state.LastError = ""
	if light.Err != nil {
		d.state.LastError = light.Err.Error()
	}
	d.stateMu.Unlock()

	d.logger.Info("daemon.mode.applied", "mode", mode, "invoked", invoked, "lighting_applied", light.Applied)
	return invoked, nil
}

// tick must be called with tickMu held.
func (d *Daemon) tick(ctx context.Context) Report {
	start := d.now()
	tickID := logging.NewTickID()

	d.stateMu.RLock()
	pol := d.policy
	d.stateMu.RUnlock()

	report := Report{TickID: tickID, Time: start.UTC()}

	report.Reading = d.sampler.Sample(ctx)
	report.Profile = d.profiles.Update(ctx, report.Reading, pol.profile)
	report.Current = d.profiles.Current(ctx)
	report.Lighting = d.updateLighting(ctx, pol, report.Current)

	report.Duration = d.now().Sub(start)
	d.record(report)

	d.logger.Debug("daemon.tick.completed",
		"tick_id", tickID,
		"idle_seconds", report.Reading.Seconds,
		"state", report.Profile.To.String(),
		"profile_invoked", report.Profile.Invoked,
		"lighting_source", report.Lighting.Source.String(),
		"lighting_applied", report.Lighting.Applied,
		"lighting_skipped", report.Lighting.Skipped,
		"duration_ms", report.Duration.Milliseconds())
	return report
}

// updateLighting colors by the live profile, or by the last one this process
// set when the live one cannot be read.
func (d *Daemon) updateLighting(ctx context.Context, pol policy, current power.Mode) lighting.Result {
	var mode power.Mode
	if pol.lighting.Source == lighting.SourceMode {
		mode = current
		if !mode.Valid() {
			mode = d.profiles.LastApplied()
		}
	}

	var temps lighting.TemperatureSource = pol.thermal
	if d.temps != nil {
		temps = d.temps
	}
	return d.lights.Update(ctx, pol.lighting, mode, temps)
}

func (d *Daemon) record(r Report) {
	metrics.Ticks.Inc()
	metrics.TickDuration.Observe(r.Duration.Seconds())
	metrics.IdleSeconds.Set(float64(r.Reading.Seconds))

	if r.Profile.Crossed {
		if r.Profile.Err != nil {
			metrics.ProfileFailures.WithLabelValues(string(r.Profile.Target)).Inc()
		} else if r.Profile.Switched {
			metrics.ProfileSwitches.WithLabelValues(string(r.Profile.Target)).Inc()
		}
	}
	if r.Profile.To == profile.Idle {
		metrics.IdleState.Set(1)
	} else {
		metrics.IdleState.Set(0)
	}

	source := r.Lighting.Source.String()
	switch {
	case r.Lighting.Err != nil:
		metrics.LightingFailures.WithLabelValues(source).Inc()
	case r.Lighting.Applied:
		metrics.LightingApplied.WithLabelValues(source).Inc()
	}

	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	d.state.Ticks++
	d.state.LastTick = r.Time
	d.state.IdleSeconds = r.Reading.Seconds
	d.state.State = d.profiles.State().String()
	d.state.LastApplied = string(d.profiles.LastApplied())
	d.state.CurrentProfile = liveProfile(r.Current)
	d.state.LastLightingMode = string(d.lights.LastMode())
	d.state.LastLightingColor = string(d.lights.LastColor())

	if r.Lighting.Source == lighting.SourceTemperature {
		d.state.Temperature = 0
		d.state.TemperatureKnown = r.Lighting.TemperatureRead
		if r.Lighting.TemperatureRead {
			d.state.Temperature = r.Lighting.Temperature
			metrics.CPUTemperature.Set(float64(r.Lighting.Temperature))
		}
	}

	var errText string
	if r.Profile.Err != nil {
		errText = r.Profile.Err.Error()
	} else if r.Lighting.Err != nil {
		errText = r.Lighting.Err.Error()
	}
	d.state.LastError = errText
}

func liveProfile(m power.Mode) string {
	if !m.Valid() {
		return ""
	}
	return string(m)
}

func (d *Daemon) publish(r Report) {
	d.stateMu.RLock()
	observers := append([]Observer(nil), d.observers...)
	d.stateMu.RUnlock()

	for _, fn := range observers {
		fn(r)
	}
}
