package idle

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
)

// Xprintidle covers X11 sessions without Mutter. It prints milliseconds.
type Xprintidle struct {
	Runner command.Runner
}

func (x *Xprintidle) Name() string { return "xprintidle" }

func (x *Xprintidle) IdleMillis(ctx context.Context) (int64, error) {
	out, err := x.Runner.Run(ctx, "xprintidle")
	if err != nil {
		return 0, err
	}

	text := strings.TrimSpace(string(out))
	ms, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformed, text, err)
	}
	return ms, nil
}
