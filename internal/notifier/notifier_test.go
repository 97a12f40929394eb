package notifier

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command/commandtest"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/idle"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/profile"
)

// stubState records what happened during a test's systemNotify calls.
type stubState struct {
	calls int
	title string
	body  string
	err   error
}

func setupStubs(t *testing.T, err error) *stubState {
	t.Helper()
	state := &stubState{err: err}

	orig := SystemNotifyFunc
	t.Cleanup(func() { SystemNotifyFunc = orig })

	SystemNotifyFunc = func(title, body string) error {
		state.calls++
		state.title = title
		state.body = body
		return state.err
	}
	return state
}

func switched(mode power.Mode) daemon.Report {
	return daemon.Report{Reading: idle.Reading{Seconds: 1259}, Profile: profile.Result{
		From: profile.Active, To: profile.Idle, Target: mode, Crossed: true, Invoked: true, Switched: true,
	}}
}

func TestSwitchMessage(t *testing.T) {
	msg := SwitchMessage(power.PowerSaver, 20)
	if msg.Title != "Auto Idle Power Switcher" {
		t.Errorf("title = %q", msg.Title)
	}
	if msg.Body != "Mode: power-saver\nIdle: 20 min" {
		t.Errorf("body = %q", msg.Body)
	}
}

func TestNotify_DefaultsTitle(t *testing.T) {
	state := setupStubs(t, nil)
	if err := Notify(Message{Body: "hi"}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if state.title != Title {
		t.Errorf("title = %q, want %q", state.title, Title)
	}
}

func TestSwitcher_Observe(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		report    daemon.Report
		wantCalls int
	}{
		{name: "switched and enabled", enabled: true, report: switched(power.PowerSaver), wantCalls: 1},
		{name: "disabled", enabled: false, report: switched(power.PowerSaver), wantCalls: 0},
		{name: "no switch", enabled: true, report: daemon.Report{}, wantCalls: 0},
		{name: "skipped tick", enabled: true, report: daemon.Report{Skipped: true}, wantCalls: 0},
		{
			name:    "failed set",
			enabled: true,
			report: daemon.Report{Profile: profile.Result{
				Crossed: true, Invoked: true, Target: power.PowerSaver, Err: errors.New("boom"),
			}},
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := setupStubs(t, nil)
			s := NewSwitcher(tt.enabled, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
			s.Observe(tt.report)
			if state.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", state.calls, tt.wantCalls)
			}
		})
	}
}

func TestSwitcher_FailureIsLoggedOnly(t *testing.T) {
	setupStubs(t, errors.New("notify-send: not found"))
	var buf bytes.Buffer
	s := NewSwitcher(true, slog.New(slog.NewTextHandler(&buf, nil)))

	s.Observe(switched(power.Balanced))

	if !bytes.Contains(buf.Bytes(), []byte("notify.system.failed")) {
		t.Errorf("expected failure log, got %q", buf.String())
	}
}

func TestSwitcher_ReportsMinutesActuallyIdle(t *testing.T) {
	state := setupStubs(t, nil)
	s := NewSwitcher(false, nil)
	s.Configure(true)

	// 1259 s idle is 20 whole minutes, whatever the threshold is.
	s.Observe(switched(power.PowerSaver))

	if state.body != "Mode: power-saver\nIdle: 20 min" {
		t.Errorf("body = %q", state.body)
	}

	back := daemon.Report{Reading: idle.Reading{Seconds: 3}, Profile: profile.Result{
		From: profile.Idle, To: profile.Active, Target: power.Balanced, Crossed: true, Invoked: true, Switched: true,
	}}
	s.Observe(back)
	if state.body != "Mode: balanced\nIdle: 0 min" {
		t.Errorf("body after return = %q", state.body)
	}
}

func TestSystemNotify_UsesNotifySend(t *testing.T) {
	fake := commandtest.New()
	orig := notifyRunner
	notifyRunner = fake
	t.Cleanup(func() { notifyRunner = orig })

	if err := systemNotify("T", "B"); err != nil {
		t.Fatalf("systemNotify() error = %v", err)
	}
	if got := fake.Calls(); len(got) != 1 || got[0] != "notify-send --app-name=auto-idle T B" {
		t.Errorf("calls = %v", got)
	}
}
