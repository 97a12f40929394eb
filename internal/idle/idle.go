// Package idle samples how long the desktop session has gone without input.
package idle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
)

// Reading is one idle-time sample in whole seconds.
type Reading struct {
	Seconds int64
}

// Provider queries one idle-time mechanism and returns milliseconds.
type Provider interface {
	Name() string
	IdleMillis(ctx context.Context) (int64, error)
}

// ErrMalformed is returned when a provider's output cannot be parsed.
var ErrMalformed = errors.New("malformed idle time")

// Sampler tries its providers in order. It never fails: when every provider
// fails, the reading is zero and the user is treated as active.
type Sampler struct {
	providers []Provider
	logger    *slog.Logger
}

func NewSampler(logger *slog.Logger, providers ...Provider) *Sampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sampler{providers: providers, logger: logger}
}

// Sample returns the current idle reading.
func (s *Sampler) Sample(ctx context.Context) Reading {
	var errs []error
	for _, p := range s.providers {
		ms, err := p.IdleMillis(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if ms < 0 {
			errs = append(errs, fmt.Errorf("%s: %w: negative value %d", p.Name(), ErrMalformed, ms))
			continue
		}
		return Reading{Seconds: MillisToSeconds(ms)}
	}

	if len(errs) == 0 {
		errs = append(errs, errors.New("no idle providers configured"))
	}
	s.logger.Warn("idle.sample.failed", "error", errors.Join(errs...), "assumed_idle_seconds", 0)
	return Reading{}
}

// MillisToSeconds truncates: 12999 ms is 12 s.
func MillisToSeconds(ms int64) int64 {
	return ms / 1000
}

// Providers builds providers by name in the given order. Unknown names are
// reported as an error; an empty list selects DefaultProviders.
func Providers(names []string, runner command.Runner) ([]Provider, error) {
	if len(names) == 0 {
		names = DefaultProviders()
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gdbus":
			providers = append(providers, &Gdbus{Runner: runner})
		case "dbus":
			providers = append(providers, NewMutterDBus())
		case "xprintidle":
			providers = append(providers, &Xprintidle{Runner: runner})
		default:
			return nil, fmt.Errorf("unknown idle provider %q", name)
		}
	}
	return providers, nil
}

// DefaultProviders is the provider order used when none is configured.
func DefaultProviders() []string {
	return []string{"gdbus", "dbus", "xprintidle"}
}
