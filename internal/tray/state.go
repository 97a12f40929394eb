package tray

import (
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

// DaemonState is what the tray menu reads and drives.
type DaemonState interface {
	Snapshot() daemon.Snapshot
	// ApplyNow runs a tick, waiting for any running tick first.
	ApplyNow()
	// SetMode switches the profile now; the next idle transition overrides it.
	SetMode(mode power.Mode) error
	// SetLightingSource persists the choice and applies it.
	SetLightingSource(src lighting.Source) error
	RequestShutdown()
}
