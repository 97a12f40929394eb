// Package notifier shows a desktop notification when the daemon switches the
// power profile.
package notifier

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

// Title is the notification summary line.
const Title = "Auto Idle Power Switcher"

// Message represents a notification to be sent.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SwitchMessage describes the mode now in effect and how long the session
// has been idle, in the same form as the tray tooltip.
func SwitchMessage(mode power.Mode, idleMinutes int64) Message {
	return Message{
		Title: Title,
		Body:  fmt.Sprintf("Mode: %s\nIdle: %d min", mode, idleMinutes),
	}
}

// Notify sends msg as a system notification. Failures are returned for the
// caller to log; they never affect the tick.
func Notify(msg Message) error {
	if msg.Title == "" {
		msg.Title = Title
	}
	return SystemNotifyFunc(msg.Title, msg.Body)
}

// Switcher notifies on successful profile switches while enabled.
type Switcher struct {
	enabled atomic.Bool
	logger  *slog.Logger
}

func NewSwitcher(enabled bool, logger *slog.Logger) *Switcher {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Switcher{logger: logger}
	s.Configure(enabled)
	return s
}

// Configure updates the switch after a config reload.
func (s *Switcher) Configure(enabled bool) {
	s.enabled.Store(enabled)
}

// Observe is a daemon.Observer.
func (s *Switcher) Observe(r daemon.Report) {
	if !s.enabled.Load() || r.Skipped || !r.Profile.Switched {
		return
	}
	msg := SwitchMessage(r.Profile.Target, r.Reading.Seconds/60)
	if err := Notify(msg); err != nil {
		s.logger.Warn("notify.system.failed", "mode", r.Profile.Target, "error", err)
		return
	}
	s.logger.Debug("notify.system.sent", "mode", r.Profile.Target)
}
