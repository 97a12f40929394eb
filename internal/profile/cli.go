package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

// CLI drives powerprofilesctl.
type CLI struct {
	Runner command.Runner
	Logger *slog.Logger
}

func (c *CLI) Name() string { return "powerprofilesctl" }

func (c *CLI) Set(ctx context.Context, mode power.Mode) error {
	_, err := c.Runner.Run(ctx, "powerprofilesctl", "set", string(mode))
	return err
}

func (c *CLI) Current(ctx context.Context) power.Mode {
	out, err := c.Runner.Run(ctx, "powerprofilesctl", "get")
	if err != nil {
		c.logger().Warn("profile.current.failed", "backend", c.Name(), "error", err)
		return power.Unknown
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return power.Unknown
	}
	return power.Mode(name)
}

// Profiles parses "powerprofilesctl list". Profile headers sit at the left
// margin, the active one marked with "*"; detail lines are indented further.
func (c *CLI) Profiles(ctx context.Context) ([]power.Mode, error) {
	out, err := c.Runner.Run(ctx, "powerprofilesctl", "list")
	if err != nil {
		return nil, err
	}
	var modes []power.Mode
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimPrefix(strings.TrimRight(line, " \t\r"), "*")
		if strings.HasPrefix(line, "   ") || !strings.HasSuffix(line, ":") {
			continue
		}
		name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
		if name != "" && !strings.ContainsAny(name, " \t") {
			modes = append(modes, power.Mode(name))
		}
	}
	return modes, nil
}

func (c *CLI) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
