package lighting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/thermal"
)

// Source selects what drives the keyboard color. Only one is active at a time.
type Source int

const (
	SourceOff Source = iota
	SourceMode
	SourceTemperature
)

func (s Source) String() string {
	switch s {
	case SourceMode:
		return "mode"
	case SourceTemperature:
		return "temperature"
	default:
		return "off"
	}
}

// ParseSource accepts "off", "mode" or "temperature".
func ParseSource(s string) (Source, error) {
	switch s {
	case "off", "":
		return SourceOff, nil
	case "mode":
		return SourceMode, nil
	case "temperature":
		return SourceTemperature, nil
	default:
		return SourceOff, fmt.Errorf("unknown lighting source %q", s)
	}
}

// Settings is the lighting policy for one tick.
type Settings struct {
	Source                Source
	Modes                 map[power.Mode]Setting
	Curve                 Curve
	TemperatureBrightness Brightness
}

// TemperatureSource reports the CPU temperature in °C.
type TemperatureSource interface {
	Celsius() (int, error)
}

// Result describes what one Update did. Temperature is meaningful only
// when TemperatureRead is set.
type Result struct {
	Source          Source
	Mode            power.Mode
	Temperature     int
	TemperatureRead bool
	Setting         Setting
	Applied         bool
	Skipped         string
	Err             error
}

// Controller debounces lighting changes. Mode-linked coloring skips when the
// mode is unchanged; temperature coloring skips when the color is unchanged.
type Controller struct {
	tool      Tool
	logger    *slog.Logger
	available bool

	lastSource Source
	lastMode   power.Mode
	lastColor  Color
}

// NewController checks once whether the tool is installed. Without it every
// Update is a no-op.
func NewController(tool Tool, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{tool: tool, logger: logger}
	if tool != nil {
		c.available = tool.Available()
	}
	if !c.available {
		logger.Info("lighting.tool.unavailable", "tool", toolName(tool))
	}
	return c
}

// Available reports whether the lighting tool was found.
func (c *Controller) Available() bool { return c.available }

// LastMode returns the mode last applied by mode-linked coloring.
func (c *Controller) LastMode() power.Mode { return c.lastMode }

// LastColor returns the color last applied by either sub-mode.
func (c *Controller) LastColor() Color { return c.lastColor }

// Reset forgets what was applied so the next Update sends the color again.
func (c *Controller) Reset() {
	c.lastMode = ""
	c.lastColor = ""
}

// Update applies lighting for the current mode or temperature according to
// settings.Source. temps is read only for temperature-linked coloring, and is
// read even without the tool so the reading can still be shown.
func (c *Controller) Update(ctx context.Context, settings Settings, mode power.Mode, temps TemperatureSource) Result {
	res := Result{Source: settings.Source, Mode: mode}

	var readErr error
	if settings.Source == SourceTemperature {
		readErr = c.readTemperature(temps, &res)
	}

	if !c.available {
		res.Skipped = "tool unavailable"
		return res
	}

	if settings.Source != c.lastSource {
		c.Reset()
		c.lastSource = settings.Source
	}

	switch settings.Source {
	case SourceMode:
		return c.updateMode(ctx, settings, mode, res)
	case SourceTemperature:
		return c.updateTemperature(ctx, settings, readErr, res)
	default:
		res.Skipped = "disabled"
		return res
	}
}

func (c *Controller) updateMode(ctx context.Context, settings Settings, mode power.Mode, res Result) Result {
	if !mode.Valid() {
		res.Skipped = "mode unknown"
		return res
	}
	if mode == c.lastMode {
		res.Skipped = "unchanged mode"
		return res
	}

	setting, ok := settings.Modes[mode]
	if !ok {
		res.Skipped = "no color for mode"
		return res
	}
	res.Setting = setting

	if err := setting.validate(); err != nil {
		res.Err = err
		c.logger.Warn("lighting.mode.rejected", "mode", mode, "color", setting.Color, "brightness", setting.Brightness, "error", err)
		return res
	}

	if err := c.tool.Apply(ctx, setting); err != nil {
		res.Err = err
		c.logger.Warn("lighting.mode.failed", "mode", mode, "color", setting.Color, "error", err)
		return res
	}

	c.lastMode = mode
	c.lastColor = setting.Color
	res.Applied = true
	c.logger.Info("lighting.mode.applied", "mode", mode, "color", setting.Color, "brightness", setting.Brightness)
	return res
}

// readTemperature fills res.Temperature. A missing sensor is not an error.
func (c *Controller) readTemperature(temps TemperatureSource, res *Result) error {
	if temps == nil {
		return thermal.ErrUnavailable
	}
	celsius, err := temps.Celsius()
	if err != nil {
		return err
	}
	res.Temperature = celsius
	res.TemperatureRead = true
	return nil
}

func (c *Controller) updateTemperature(ctx context.Context, settings Settings, readErr error, res Result) Result {
	if !res.TemperatureRead {
		res.Skipped = "temperature unavailable"
		if readErr != nil && !errors.Is(readErr, thermal.ErrUnavailable) {
			res.Err = readErr
			c.logger.Warn("lighting.temperature.read_failed", "error", readErr)
		}
		return res
	}
	celsius := res.Temperature

	point, ok := settings.Curve.Resolve(celsius)
	if !ok {
		res.Skipped = "empty curve"
		return res
	}

	setting := Setting{Color: point.Color, Brightness: settings.TemperatureBrightness}
	res.Setting = setting

	if err := setting.validate(); err != nil {
		res.Err = err
		c.logger.Warn("lighting.temperature.rejected", "threshold", point.Threshold, "color", point.Color, "error", err)
		return res
	}
	if setting.Color == c.lastColor {
		res.Skipped = "unchanged color"
		return res
	}

	if err := c.tool.Apply(ctx, setting); err != nil {
		res.Err = err
		c.logger.Warn("lighting.temperature.failed", "celsius", celsius, "color", setting.Color, "error", err)
		return res
	}

	c.lastColor = setting.Color
	res.Applied = true
	c.logger.Info("lighting.temperature.applied", "celsius", celsius, "threshold", point.Threshold, "color", setting.Color)
	return res
}

func toolName(t Tool) string {
	if t == nil {
		return "none"
	}
	return t.Name()
}
