package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

// Lister is implemented by backends that can enumerate the profiles the
// system offers.
type Lister interface {
	Profiles(ctx context.Context) ([]power.Mode, error)
}

// NewBackend selects a backend by name: "powerprofilesctl" (default) or "dbus".
func NewBackend(name string, runner command.Runner, logger *slog.Logger) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "powerprofilesctl", "cli":
		return &CLI{Runner: runner, Logger: logger}, nil
	case "dbus":
		return NewDBus(logger), nil
	default:
		return nil, fmt.Errorf("unknown profile backend %q", name)
	}
}
