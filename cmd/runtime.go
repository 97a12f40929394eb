package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/history"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/notifier"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/server"
)

var (
	buildDaemon = daemon.Build
	startServer = server.Start
	watchConfig = config.Watch
	openHistory = func(dir string) (*history.Store, error) { return history.Open(dir) }
)

func envConfigPath() string {
	return os.Getenv(config.EnvConfigPath)
}

type runtimeOptions struct {
	server bool
	watch  bool
	// interval overrides idle.poll_interval_seconds across reloads when > 0.
	interval int
}

// runtime is the daemon plus the services hung off it.
type runtime struct {
	daemon   *daemon.Daemon
	history  *history.Store
	switcher *notifier.Switcher
	source   config.SourceSelection
	interval int
	logger   *slog.Logger
	wg       sync.WaitGroup
}

func startRuntime(ctx context.Context, cfg config.Config, source config.SourceSelection, logger *slog.Logger, opts runtimeOptions) (*runtime, error) {
	if opts.interval > 0 {
		cfg.Idle.PollIntervalSeconds = opts.interval
	}
	d, err := buildDaemon(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build daemon: %w", err)
	}

	rt := &runtime{daemon: d, source: source, interval: opts.interval, logger: logger}

	if cfg.History.Enabled {
		store, err := openHistory(cfg.History.Dir)
		if err != nil {
			logger.Warn("history.open.failed", "dir", cfg.History.Dir, "error", err)
		} else {
			rt.history = store
			d.Observe(daemon.JournalObserver(store, logger))
		}
	}

	rt.switcher = notifier.NewSwitcher(cfg.Notification.OnSwitch, logger)
	d.Observe(rt.switcher.Observe)

	if opts.server && cfg.Server.Address != "" {
		var hist server.History
		if rt.history != nil {
			hist = rt.history
		}
		handler := server.NewHandler(server.Options{
			Daemon:  d,
			History: hist,
			Metrics: cfg.Server.Metrics,
			Logger:  logger,
		})
		rt.wg.Add(1)
		go func() {
			defer rt.wg.Done()
			if err := startServer(ctx, cfg.Server.Address, handler, logger); err != nil {
				logger.Error("server.failed", "address", cfg.Server.Address, "error", err)
			}
		}()
	}

	if opts.watch && source.Path != "" {
		rt.wg.Add(1)
		go func() {
			defer rt.wg.Done()
			if err := watchConfig(ctx, source.Path, logger, rt.reload); err != nil {
				logger.Warn("config.watch.failed", "path", source.Path, "error", err)
			}
		}()
	}

	return rt, nil
}

// reload re-reads the config file. Invalid values fall back to the config
// currently in effect; a parse error keeps it entirely.
func (rt *runtime) reload() {
	current := rt.daemon.Config()
	cfg, warnings, err := config.LoadFile(rt.source.Path, current)
	if err != nil {
		rt.logger.Warn("config.reload.failed", "path", rt.source.Path, "error", err)
		return
	}
	for _, w := range warnings {
		rt.logger.Warn("config.reload.normalized", "warning", w)
	}
	rt.apply(cfg)
}

func (rt *runtime) apply(cfg config.Config) {
	if rt.interval > 0 {
		cfg.Idle.PollIntervalSeconds = rt.interval
	}
	if err := rt.daemon.SetConfig(cfg); err != nil {
		rt.logger.Warn("config.reload.rejected", "error", err)
		return
	}
	rt.switcher.Configure(cfg.Notification.OnSwitch)
	// Only the level follows a reload; file logging settings need a restart.
	if logging.SetLevel(cfg.Logging.Level) {
		rt.logger.Info("logging.level.changed", "level", logging.Level().String())
	}
}

// wait blocks until the server and watcher have returned; ctx must be done.
func (rt *runtime) wait() {
	rt.wg.Wait()
	if rt.history != nil {
		if err := rt.history.Close(); err != nil {
			rt.logger.Warn("history.close.failed", "error", err)
		}
	}
}
