// Package power names the profiles understood by power-profiles-daemon.
package power

import (
	"fmt"
	"strings"
)

// Mode is a power-profiles-daemon profile name.
type Mode string

const (
	Performance Mode = "performance"
	Balanced    Mode = "balanced"
	PowerSaver  Mode = "power-saver"
)

// Unknown is reported when the live profile cannot be read.
const Unknown Mode = "unknown"

// Modes returns the fixed set of profiles in display order.
func Modes() []Mode {
	return []Mode{Performance, Balanced, PowerSaver}
}

func (m Mode) Valid() bool {
	switch m {
	case Performance, Balanced, PowerSaver:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode accepts a profile name, ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown power mode %q (want performance, balanced or power-saver)", s)
	}
	return m, nil
}
