package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/history"
)

// Journal persists transitions and lighting changes.
type Journal interface {
	RecordTransition(ctx context.Context, t history.Transition) error
	RecordLighting(ctx context.Context, l history.Lighting) error
}

const journalTimeout = 2 * time.Second

// JournalObserver records every attempted profile switch and every attempted
// lighting change. Debounced and skipped ticks are not recorded. A failed
// switch is recorded with the state it tried to enter.
func JournalObserver(j Journal, logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(r Report) {
		if r.Skipped {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()

		if r.Profile.Crossed && (r.Profile.Invoked || r.Profile.Err != nil) {
			err := j.RecordTransition(ctx, history.Transition{
				Time:        r.Time,
				From:        r.Profile.From.String(),
				To:          r.Profile.Want.String(),
				Mode:        string(r.Profile.Target),
				IdleSeconds: r.Reading.Seconds,
				Err:         r.Profile.Err,
			})
			if err != nil {
				logger.Warn("history.record.failed", "kind", "profile", "error", err)
			}
		}

		if r.Lighting.Applied || (r.Lighting.Err != nil && r.Lighting.Setting.Color != "") {
			err := j.RecordLighting(ctx, history.Lighting{
				Time:        r.Time,
				Source:      r.Lighting.Source.String(),
				Color:       string(r.Lighting.Setting.Color),
				Brightness:  string(r.Lighting.Setting.Brightness),
				Temperature: r.Lighting.Temperature,
				Err:         r.Lighting.Err,
			})
			if err != nil {
				logger.Warn("history.record.failed", "kind", "lighting", "error", err)
			}
		}
	}
}
