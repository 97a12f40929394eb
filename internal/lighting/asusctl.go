package lighting

import (
	"context"
	"fmt"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
)

// Tool sends a color and brightness to the keyboard.
type Tool interface {
	Name() string
	Available() bool
	Apply(ctx context.Context, s Setting) error
}

// Asusctl sets a static aura color and then the backlight level.
type Asusctl struct {
	Runner command.Runner
}

func (a *Asusctl) Name() string { return "asusctl" }

func (a *Asusctl) Available() bool {
	return a.Runner.LookPath("asusctl")
}

func (a *Asusctl) Apply(ctx context.Context, s Setting) error {
	if _, err := a.Runner.Run(ctx, "asusctl", "aura", "static", "-c", s.Color.Hex()); err != nil {
		return fmt.Errorf("set aura color: %w", err)
	}
	if _, err := a.Runner.Run(ctx, "asusctl", "-k", string(s.Brightness)); err != nil {
		return fmt.Errorf("set keyboard brightness: %w", err)
	}
	return nil
}
