package idle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
)

const (
	mutterDest   = "org.gnome.Mutter.IdleMonitor"
	mutterPath   = "/org/gnome/Mutter/IdleMonitor/Core"
	mutterMethod = "org.gnome.Mutter.IdleMonitor.GetIdletime"
)

// Gdbus asks Mutter's idle monitor through the gdbus CLI.
type Gdbus struct {
	Runner command.Runner
}

func (g *Gdbus) Name() string { return "gdbus" }

func (g *Gdbus) IdleMillis(ctx context.Context) (int64, error) {
	out, err := g.Runner.Run(ctx, "gdbus", "call",
		"--session",
		"--dest", mutterDest,
		"--object-path", mutterPath,
		"--method", mutterMethod,
	)
	if err != nil {
		return 0, err
	}
	return parseGdbusIdletime(out)
}

// parseGdbusIdletime reads the GVariant text gdbus prints, e.g. "(uint64 12345,)".
func parseGdbusIdletime(out []byte) (int64, error) {
	text := strings.TrimSpace(string(out))
	fields := strings.Fields(text)
	if len(fields) < 2 || strings.TrimLeft(fields[0], "(") != "uint64" {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}

	raw := strings.TrimRight(fields[1], ",)")
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, text, err)
	}
	return ms, nil
}
