package profile

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command/commandtest"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/idle"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

type recordingBackend struct {
	sets    []power.Mode
	failFor map[power.Mode]error
	current power.Mode
}

func (r *recordingBackend) Name() string { return "recording" }

func (r *recordingBackend) Set(_ context.Context, mode power.Mode) error {
	r.sets = append(r.sets, mode)
	if err := r.failFor[mode]; err != nil {
		return err
	}
	r.current = mode
	return nil
}

func (r *recordingBackend) Current(context.Context) power.Mode {
	if r.current == "" {
		return power.Unknown
	}
	return r.current
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func defaultPolicy() Policy {
	return Policy{IdleMinutes: 20, ActiveMode: power.Balanced, IdleMode: power.PowerSaver}
}

func TestControllerScenario(t *testing.T) {
	backend := &recordingBackend{}
	c := NewController(backend, quietLogger())

	type step struct {
		seconds    int64
		wantSwitch bool
		wantMode   power.Mode
		wantState  State
	}
	steps := []step{
		{seconds: 0, wantState: Active},
		{seconds: 600, wantState: Active},
		{seconds: 1199, wantState: Active},
		{seconds: 1200, wantSwitch: true, wantMode: power.PowerSaver, wantState: Idle},
		{seconds: 1201, wantState: Idle},
		{seconds: 10, wantSwitch: true, wantMode: power.Balanced, wantState: Active},
	}

	for _, s := range steps {
		res := c.Update(context.Background(), idle.Reading{Seconds: s.seconds}, defaultPolicy())
		if res.Switched != s.wantSwitch {
			t.Fatalf("reading %d: Switched = %v, want %v", s.seconds, res.Switched, s.wantSwitch)
		}
		if s.wantSwitch && res.Target != s.wantMode {
			t.Fatalf("reading %d: Target = %q, want %q", s.seconds, res.Target, s.wantMode)
		}
		if c.State() != s.wantState {
			t.Fatalf("reading %d: State = %v, want %v", s.seconds, c.State(), s.wantState)
		}
	}

	want := []power.Mode{power.PowerSaver, power.Balanced}
	if len(backend.sets) != len(want) {
		t.Fatalf("backend sets = %v, want %v", backend.sets, want)
	}
	for i := range want {
		if backend.sets[i] != want[i] {
			t.Fatalf("backend sets = %v, want %v", backend.sets, want)
		}
	}
}

func TestControllerFirstTickAlreadyIdle(t *testing.T) {
	backend := &recordingBackend{}
	c := NewController(backend, quietLogger())

	res := c.Update(context.Background(), idle.Reading{Seconds: 5000}, defaultPolicy())
	if !res.Invoked || !res.Switched {
		t.Fatalf("first idle reading: %+v, want an explicit set", res)
	}
	if c.LastApplied() != power.PowerSaver {
		t.Fatalf("LastApplied = %q, want %q", c.LastApplied(), power.PowerSaver)
	}
}

func TestControllerFailedSetRetriesNextTick(t *testing.T) {
	backend := &recordingBackend{failFor: map[power.Mode]error{power.PowerSaver: errors.New("exit status 1")}}
	c := NewController(backend, quietLogger())

	res := c.Update(context.Background(), idle.Reading{Seconds: 1300}, defaultPolicy())
	if res.Err == nil || res.Switched {
		t.Fatalf("failed set: %+v, want error and no switch", res)
	}
	if c.State() != Active {
		t.Fatalf("State = %v after failed set, want Active", c.State())
	}
	if c.LastApplied() != "" {
		t.Fatalf("LastApplied = %q after failed set, want unset", c.LastApplied())
	}
	if res.To != Active || res.Want != Idle {
		t.Fatalf("failed set To=%v Want=%v, want To=active Want=idle", res.To, res.Want)
	}

	delete(backend.failFor, power.PowerSaver)
	res = c.Update(context.Background(), idle.Reading{Seconds: 1305}, defaultPolicy())
	if !res.Switched || c.State() != Idle {
		t.Fatalf("retry: %+v state=%v, want switch to Idle", res, c.State())
	}
	if len(backend.sets) != 2 {
		t.Fatalf("backend sets = %v, want two attempts", backend.sets)
	}
}

func TestControllerApplyIsDebounced(t *testing.T) {
	backend := &recordingBackend{}
	c := NewController(backend, quietLogger())

	for i := 0; i < 2; i++ {
		if _, err := c.Apply(context.Background(), power.Performance); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}
	if len(backend.sets) != 1 {
		t.Fatalf("backend sets = %v, want exactly one invocation", backend.sets)
	}
}

func TestControllerApplyRejectsInvalidMode(t *testing.T) {
	backend := &recordingBackend{}
	c := NewController(backend, quietLogger())

	invoked, err := c.Apply(context.Background(), power.Mode("turbo"))
	if err == nil || invoked {
		t.Fatalf("Apply(turbo) = (%v, %v), want rejection without invocation", invoked, err)
	}
}

func TestControllerSameModeBothSides(t *testing.T) {
	backend := &recordingBackend{}
	c := NewController(backend, quietLogger())
	policy := Policy{IdleMinutes: 1, ActiveMode: power.Balanced, IdleMode: power.Balanced}

	c.Update(context.Background(), idle.Reading{Seconds: 60}, policy)
	c.Update(context.Background(), idle.Reading{Seconds: 0}, policy)

	if len(backend.sets) != 1 {
		t.Fatalf("backend sets = %v, want one set, second transition is a cache hit", backend.sets)
	}
	if c.State() != Active {
		t.Fatalf("State = %v, want Active", c.State())
	}
}

func TestIdleIffLatestReadingAtOrAboveThreshold(t *testing.T) {
	backend := &recordingBackend{}
	c := NewController(backend, quietLogger())
	policy := defaultPolicy()
	readings := []int64{0, 1200, 5, 7000, 7001, 1199, 1200, 0, 0, 99999}

	for _, r := range readings {
		c.Update(context.Background(), idle.Reading{Seconds: r}, policy)
		wantIdle := r >= policy.ThresholdSeconds()
		if (c.State() == Idle) != wantIdle {
			t.Fatalf("after reading %d: State = %v, want idle=%v", r, c.State(), wantIdle)
		}
	}
}

func TestCLIBackend(t *testing.T) {
	runner := commandtest.New().
		On("powerprofilesctl get", "performance\n", nil).
		On("powerprofilesctl set power-saver", "", nil)
	cli := &CLI{Runner: runner, Logger: quietLogger()}

	if got := cli.Current(context.Background()); got != power.Performance {
		t.Fatalf("Current() = %q, want %q", got, power.Performance)
	}
	if err := cli.Set(context.Background(), power.PowerSaver); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if runner.Count("powerprofilesctl set power-saver") != 1 {
		t.Fatalf("calls = %v", runner.Calls())
	}
}

func TestCLIBackendCurrentUnknownOnFailure(t *testing.T) {
	runner := commandtest.New().On("powerprofilesctl get", "", errors.New("executable file not found"))
	cli := &CLI{Runner: runner, Logger: quietLogger()}

	if got := cli.Current(context.Background()); got != power.Unknown {
		t.Fatalf("Current() = %q, want %q", got, power.Unknown)
	}
}

const listOutput = `  performance:
    CpuDriver:	intel_pstate
    PlatformDriver:	platform_profile
    Degraded:   no

* balanced:
    CpuDriver:	intel_pstate
    PlatformDriver:	platform_profile

  power-saver:
    CpuDriver:	intel_pstate
    PlatformDriver:	platform_profile
`

func TestCLIBackendProfiles(t *testing.T) {
	runner := commandtest.New().On("powerprofilesctl list", listOutput, nil)
	var lister Lister = &CLI{Runner: runner, Logger: quietLogger()}

	got, err := lister.Profiles(context.Background())
	if err != nil {
		t.Fatalf("Profiles() error = %v", err)
	}
	want := []power.Mode{power.Performance, power.Balanced, power.PowerSaver}
	if len(got) != len(want) {
		t.Fatalf("Profiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Profiles() = %v, want %v", got, want)
		}
	}
}

func TestCLIBackendProfilesFailure(t *testing.T) {
	runner := commandtest.New().On("powerprofilesctl list", "", errors.New("executable file not found"))
	cli := &CLI{Runner: runner, Logger: quietLogger()}

	if _, err := cli.Profiles(context.Background()); err == nil {
		t.Fatal("Profiles() error = nil, want error")
	}
}

func TestBackendsListProfiles(t *testing.T) {
	runner := commandtest.New()
	for _, name := range []string{"powerprofilesctl", "dbus"} {
		backend, err := NewBackend(name, runner, quietLogger())
		if err != nil {
			t.Fatalf("NewBackend(%q) error = %v", name, err)
		}
		if _, ok := backend.(Lister); !ok {
			t.Errorf("%s backend does not list profiles", name)
		}
	}
}

func TestNewBackend(t *testing.T) {
	runner := commandtest.New()
	for _, name := range []string{"", "powerprofilesctl", "dbus"} {
		if _, err := NewBackend(name, runner, quietLogger()); err != nil {
			t.Fatalf("NewBackend(%q) error = %v", name, err)
		}
	}
	if _, err := NewBackend("tuned", runner, quietLogger()); err == nil {
		t.Fatal("NewBackend(tuned) error = nil, want error")
	}
}
