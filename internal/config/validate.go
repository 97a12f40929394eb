package config

import (
	"fmt"
	"strings"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

// Normalize checks every field once and replaces invalid values with the
// corresponding value from fallback (the last known good config). It returns
// one warning per replaced value.
func Normalize(cfg Config, fallback Config) (Config, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if cfg.Idle.Minutes < 1 {
		warn("idle.minutes must be at least 1, got %d; using %d", cfg.Idle.Minutes, fallback.Idle.Minutes)
		cfg.Idle.Minutes = fallback.Idle.Minutes
	}

	if mode, err := power.ParseMode(cfg.Idle.ActiveMode); err != nil {
		warn("idle.active_mode: %v; using %q", err, fallback.Idle.ActiveMode)
		cfg.Idle.ActiveMode = fallback.Idle.ActiveMode
	} else {
		cfg.Idle.ActiveMode = string(mode)
	}

	if mode, err := power.ParseMode(cfg.Idle.IdleMode); err != nil {
		warn("idle.idle_mode: %v; using %q", err, fallback.Idle.IdleMode)
		cfg.Idle.IdleMode = fallback.Idle.IdleMode
	} else {
		cfg.Idle.IdleMode = string(mode)
	}

	if cfg.Idle.PollIntervalSeconds < 1 {
		warn("idle.poll_interval_seconds must be at least 1, got %d; using %d", cfg.Idle.PollIntervalSeconds, fallback.Idle.PollIntervalSeconds)
		cfg.Idle.PollIntervalSeconds = fallback.Idle.PollIntervalSeconds
	}

	if bad := unknownProviders(cfg.Idle.Providers); len(bad) > 0 {
		warn("idle.providers: unknown %v; using %v", bad, fallback.Idle.Providers)
		cfg.Idle.Providers = append([]string(nil), fallback.Idle.Providers...)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Profile.Backend)) {
	case "powerprofilesctl", "dbus":
		cfg.Profile.Backend = strings.ToLower(strings.TrimSpace(cfg.Profile.Backend))
	default:
		warn("profile.backend %q is not powerprofilesctl or dbus; using %q", cfg.Profile.Backend, fallback.Profile.Backend)
		cfg.Profile.Backend = fallback.Profile.Backend
	}

	cfg.Keyboard.Modes = normalizeKeyboard(cfg.Keyboard.Modes, fallback.Keyboard.Modes, warn)
	cfg.TemperatureRGB.Points = normalizePoints(cfg.TemperatureRGB.Points, fallback.TemperatureRGB.Points, warn)

	if b, err := lighting.ParseBrightness(cfg.TemperatureRGB.Brightness); err != nil {
		warn("temperature_rgb.brightness: %v; using %q", err, fallback.TemperatureRGB.Brightness)
		cfg.TemperatureRGB.Brightness = fallback.TemperatureRGB.Brightness
	} else {
		cfg.TemperatureRGB.Brightness = string(b)
	}

	if cfg.Keyboard.Enabled && cfg.TemperatureRGB.Enabled {
		warn("keyboard.enabled and temperature_rgb.enabled are both set; temperature coloring wins")
		cfg.Keyboard.Enabled = false
	}

	if cfg.Commands.TimeoutSeconds < 1 {
		warn("commands.timeout_seconds must be at least 1, got %d; using %d", cfg.Commands.TimeoutSeconds, fallback.Commands.TimeoutSeconds)
		cfg.Commands.TimeoutSeconds = fallback.Commands.TimeoutSeconds
	}

	if err := validateLogging(cfg.Logging); err != nil {
		warn("%v; using previous logging settings", err)
		cfg.Logging = fallback.Logging
	}
	cfg.Logging.Dir = normalizeLoggingDir(cfg.Logging.Dir)

	return cfg, warnings
}

func normalizeKeyboard(modes, fallback map[string]KeyColor, warn func(string, ...any)) map[string]KeyColor {
	out := make(map[string]KeyColor, len(modes))
	for name, kc := range modes {
		mode, err := power.ParseMode(name)
		if err != nil {
			warn("keyboard.modes: %v; entry ignored", err)
			continue
		}
		prev, hasPrev := fallback[string(mode)]

		if c, err := lighting.ParseColor(kc.Color); err != nil {
			if !hasPrev {
				warn("keyboard.modes.%s.color: %v; entry ignored", mode, err)
				continue
			}
			warn("keyboard.modes.%s.color: %v; using %q", mode, err, prev.Color)
			kc.Color = prev.Color
		} else {
			kc.Color = string(c)
		}

		if b, err := lighting.ParseBrightness(kc.Brightness); err != nil {
			fb := string(lighting.BrightnessMed)
			if hasPrev {
				fb = prev.Brightness
			}
			if strings.TrimSpace(kc.Brightness) != "" {
				warn("keyboard.modes.%s.brightness: %v; using %q", mode, err, fb)
			}
			kc.Brightness = fb
		} else {
			kc.Brightness = string(b)
		}

		out[string(mode)] = kc
	}
	return out
}

func normalizePoints(points, fallback map[int]string, warn func(string, ...any)) map[int]string {
	out := make(map[int]string, len(points))
	for threshold, raw := range points {
		c, err := lighting.ParseColor(raw)
		if err == nil {
			out[threshold] = string(c)
			continue
		}
		if prev, ok := fallback[threshold]; ok {
			warn("temperature_rgb.points.%d: %v; using %q", threshold, err, prev)
			out[threshold] = prev
			continue
		}
		warn("temperature_rgb.points.%d: %v; point ignored", threshold, err)
	}
	return out
}

func unknownProviders(names []string) []string {
	var bad []string
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "gdbus", "dbus", "xprintidle":
		default:
			bad = append(bad, name)
		}
	}
	return bad
}

func validateLogging(logging LoggingConfig) error {
	switch strings.ToLower(logging.Level) {
	case "error", "warn", "info", "debug":
		// valid
	default:
		return fmt.Errorf("logging.level must be one of error, warn, info, debug")
	}

	if logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be greater than 0")
	}

	if logging.MaxBackups <= 0 {
		return fmt.Errorf("logging.max_backups must be greater than 0")
	}

	if strings.TrimSpace(logging.Dir) == "" {
		return fmt.Errorf("logging.dir is required")
	}

	return nil
}
