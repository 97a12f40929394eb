// Package lighting drives the keyboard RGB color from either the active power
// mode or the CPU temperature.
package lighting

import (
	"fmt"
	"regexp"
	"strings"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// Color is "#" followed by six lowercase hex digits.
type Color string

// Valid reports whether c is exactly "#rrggbb" in lowercase.
func (c Color) Valid() bool {
	return colorPattern.MatchString(string(c))
}

// Hex returns the color without the leading "#", as asusctl expects it.
func (c Color) Hex() string {
	return strings.TrimPrefix(string(c), "#")
}

// ParseColor lowercases and validates s. A missing "#" is accepted.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v != "" && !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	c := Color(v)
	if !c.Valid() {
		return "", fmt.Errorf("invalid color %q (want #rrggbb)", s)
	}
	return c, nil
}

// Brightness is one of the keyboard backlight levels asusctl accepts.
type Brightness string

const (
	BrightnessOff  Brightness = "off"
	BrightnessLow  Brightness = "low"
	BrightnessMed  Brightness = "med"
	BrightnessHigh Brightness = "high"
)

func (b Brightness) Valid() bool {
	switch b {
	case BrightnessOff, BrightnessLow, BrightnessMed, BrightnessHigh:
		return true
	default:
		return false
	}
}

func ParseBrightness(s string) (Brightness, error) {
	b := Brightness(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("invalid brightness %q (want off, low, med or high)", s)
	}
	return b, nil
}

// Setting is a color and brightness pair.
type Setting struct {
	Color      Color
	Brightness Brightness
}

func (s Setting) validate() error {
	if !s.Color.Valid() {
		return fmt.Errorf("invalid color %q (want #rrggbb)", s.Color)
	}
	if !s.Brightness.Valid() {
		return fmt.Errorf("invalid brightness %q", s.Brightness)
	}
	return nil
}
