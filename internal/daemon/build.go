package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/idle"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/profile"
)

// Build wires a Daemon against the real system tools named in cfg.
func Build(cfg config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runner := command.NewExec(time.Duration(cfg.Commands.TimeoutSeconds) * time.Second)
	return BuildWithRunner(cfg, runner, logger)
}

// BuildWithRunner is Build with an injected command runner.
func BuildWithRunner(cfg config.Config, runner command.Runner, logger *slog.Logger) (*Daemon, error) {
	providers, err := idle.Providers(cfg.Idle.Providers, runner)
	if err != nil {
		return nil, fmt.Errorf("idle providers: %w", err)
	}
	backend, err := profile.NewBackend(cfg.Profile.Backend, runner, logger)
	if err != nil {
		return nil, fmt.Errorf("profile backend: %w", err)
	}

	return New(Options{
		Config:   cfg,
		Sampler:  idle.NewSampler(logger, providers...),
		Profiles: profile.NewController(backend, logger),
		Lighting: lighting.NewController(&lighting.Asusctl{Runner: runner}, logger),
		Logger:   logger,
	})
}
