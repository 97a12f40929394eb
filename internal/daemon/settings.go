package daemon

import (
	"fmt"
	"time"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/profile"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/thermal"
)

// policy is everything one tick needs from the config, converted once.
type policy struct {
	profile  profile.Policy
	lighting lighting.Settings
	thermal  *thermal.Reader
	interval time.Duration
	minutes  int
	cfg      config.Config
}

func policyFromConfig(cfg config.Config) (policy, error) {
	active, err := power.ParseMode(cfg.Idle.ActiveMode)
	if err != nil {
		return policy{}, fmt.Errorf("idle.active_mode: %w", err)
	}
	idleMode, err := power.ParseMode(cfg.Idle.IdleMode)
	if err != nil {
		return policy{}, fmt.Errorf("idle.idle_mode: %w", err)
	}
	if cfg.Idle.Minutes < 1 {
		return policy{}, fmt.Errorf("idle.minutes must be at least 1, got %d", cfg.Idle.Minutes)
	}

	settings, err := LightingSettings(cfg)
	if err != nil {
		return policy{}, err
	}

	interval := time.Duration(cfg.Idle.PollIntervalSeconds) * time.Second
	if interval < time.Second {
		interval = time.Second
	}

	return policy{
		profile: profile.Policy{
			IdleMinutes: cfg.Idle.Minutes,
			ActiveMode:  active,
			IdleMode:    idleMode,
		},
		lighting: settings,
		thermal:  &thermal.Reader{Root: cfg.TemperatureRGB.ThermalDir, Sensor: cfg.TemperatureRGB.Sensor},
		interval: interval,
		minutes:  cfg.Idle.Minutes,
		cfg:      cfg,
	}, nil
}

// LightingSettings converts the keyboard and temperature sections into the
// lighting policy. Temperature coloring wins when both are enabled.
func LightingSettings(cfg config.Config) (lighting.Settings, error) {
	settings := lighting.Settings{
		Source: lighting.SourceOff,
		Modes:  make(map[power.Mode]lighting.Setting, len(cfg.Keyboard.Modes)),
	}

	switch {
	case cfg.TemperatureRGB.Enabled:
		settings.Source = lighting.SourceTemperature
	case cfg.Keyboard.Enabled:
		settings.Source = lighting.SourceMode
	}

	for name, kc := range cfg.Keyboard.Modes {
		mode, err := power.ParseMode(name)
		if err != nil {
			return lighting.Settings{}, fmt.Errorf("keyboard.modes: %w", err)
		}
		// Colors are kept raw so a bad one is rejected and logged per tick.
		settings.Modes[mode] = lighting.Setting{
			Color:      lighting.Color(kc.Color),
			Brightness: lighting.Brightness(kc.Brightness),
		}
	}

	points := make([]lighting.Point, 0, len(cfg.TemperatureRGB.Points))
	for threshold, color := range cfg.TemperatureRGB.Points {
		points = append(points, lighting.Point{Threshold: threshold, Color: lighting.Color(color)})
	}
	settings.Curve = lighting.NewCurve(points)

	brightness, err := lighting.ParseBrightness(cfg.TemperatureRGB.Brightness)
	if err != nil {
		return lighting.Settings{}, fmt.Errorf("temperature_rgb.brightness: %w", err)
	}
	settings.TemperatureBrightness = brightness

	return settings, nil
}

// WithLightingSource returns cfg with exactly the flags for src enabled.
func WithLightingSource(cfg config.Config, src lighting.Source) config.Config {
	cfg.Keyboard.Enabled = src == lighting.SourceMode
	cfg.TemperatureRGB.Enabled = src == lighting.SourceTemperature
	return cfg
}
