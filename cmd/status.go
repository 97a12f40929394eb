package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/idle"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/profile"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/thermal"
)

var statusJSON bool

// newRunner is swapped out in tests.
var newRunner = func(cfg config.Config) command.Runner {
	return command.NewExec(time.Duration(cfg.Commands.TimeoutSeconds) * time.Second)
}

type statusInfo struct {
	ConfigPath        string   `json:"config_path,omitempty"`
	IdleSeconds       int64    `json:"idle_seconds"`
	IdleMinutes       int      `json:"idle_minutes"`
	WouldBeIdle       bool     `json:"would_be_idle"`
	Profile           string   `json:"profile"`
	ProfileBackend    string   `json:"profile_backend"`
	Profiles          []string `json:"profiles,omitempty"`
	Temperature       *int     `json:"temperature_celsius,omitempty"`
	LightingSource    string   `json:"lighting_source"`
	LightingAvailable bool     `json:"lighting_available"`
	Autostart         bool     `json:"autostart"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show idle time, power profile and CPU temperature",
	RunE: func(cmd *cobra.Command, args []string) error {
		loadResult, err := loadConfigForCommand()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg := loadResult.Config
		logger := initializeCommandLogging(cmd.ErrOrStderr(), cfg.Logging, logging.RoleCLI)

		info, err := collectStatus(commandContext(cmd), cfg, newRunner(cfg), logger)
		if err != nil {
			return err
		}
		info.ConfigPath = loadResult.Source.Path
		info.Autostart = autostartManager().IsEnabled()

		if statusJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		printStatus(cmd.OutOrStdout(), info)
		return nil
	},
}

func collectStatus(ctx context.Context, cfg config.Config, runner command.Runner, logger *slog.Logger) (statusInfo, error) {
	providers, err := idle.Providers(cfg.Idle.Providers, runner)
	if err != nil {
		return statusInfo{}, err
	}
	backend, err := profile.NewBackend(cfg.Profile.Backend, runner, logger)
	if err != nil {
		return statusInfo{}, err
	}
	settings, err := daemon.LightingSettings(cfg)
	if err != nil {
		return statusInfo{}, err
	}

	reading := idle.NewSampler(logger, providers...).Sample(ctx)
	threshold := int64(cfg.Idle.Minutes) * 60

	info := statusInfo{
		IdleSeconds:       reading.Seconds,
		IdleMinutes:       cfg.Idle.Minutes,
		WouldBeIdle:       reading.Seconds >= threshold,
		Profile:           string(backend.Current(ctx)),
		ProfileBackend:    backend.Name(),
		LightingSource:    settings.Source.String(),
		LightingAvailable: (&lighting.Asusctl{Runner: runner}).Available(),
	}

	if lister, ok := backend.(profile.Lister); ok {
		modes, err := lister.Profiles(ctx)
		if err != nil {
			logger.Warn("status.profiles.failed", "backend", backend.Name(), "error", err)
		}
		for _, m := range modes {
			info.Profiles = append(info.Profiles, string(m))
		}
	}

	reader := &thermal.Reader{Root: cfg.TemperatureRGB.ThermalDir, Sensor: cfg.TemperatureRGB.Sensor}
	if celsius, err := reader.Celsius(); err == nil {
		info.Temperature = &celsius
	}
	return info, nil
}

func printStatus(w io.Writer, info statusInfo) {
	if info.ConfigPath != "" {
		fmt.Fprintf(w, "Config:      %s\n", info.ConfigPath)
	}
	state := "active"
	if info.WouldBeIdle {
		state = "idle"
	}
	fmt.Fprintf(w, "Idle:        %ds of %d min (%s)\n", info.IdleSeconds, info.IdleMinutes, state)
	fmt.Fprintf(w, "Profile:     %s (%s)\n", info.Profile, info.ProfileBackend)
	if len(info.Profiles) > 0 {
		fmt.Fprintf(w, "Available:   %s\n", strings.Join(info.Profiles, ", "))
	}
	if info.Temperature != nil {
		fmt.Fprintf(w, "CPU temp:    %d°C\n", *info.Temperature)
	} else {
		fmt.Fprintf(w, "CPU temp:    unavailable\n")
	}
	tool := "asusctl found"
	if !info.LightingAvailable {
		tool = "asusctl not found"
	}
	fmt.Fprintf(w, "Lighting:    %s (%s)\n", info.LightingSource, tool)
	fmt.Fprintf(w, "Autostart:   %t\n", info.Autostart)
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print status as JSON")
	rootCmd.AddCommand(statusCmd)
}
