// Package tray shows the daemon status in the desktop system tray.
package tray

import (
	"fmt"
	"log/slog"

	"github.com/getlantern/systray"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

var (
	state   DaemonState
	onStart func()
	onExit  func()
	logger  = slog.Default()
	ready   = make(chan struct{})

	modeItem     *systray.MenuItem
	idleItem     *systray.MenuItem
	lightingItem *systray.MenuItem
	applyItem    *systray.MenuItem
	modeItems    map[power.Mode]*systray.MenuItem
	sourceItems  map[lighting.Source]*systray.MenuItem
	quitItem     *systray.MenuItem
)

var sourceOrder = []lighting.Source{lighting.SourceMode, lighting.SourceTemperature, lighting.SourceOff}

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (start the daemon loop here).
// onExitFn is called when the tray exits.
func Run(s DaemonState, l *slog.Logger, onStartFn, onExitFn func()) {
	state = s
	if l != nil {
		logger = l
	}
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetTitle("auto-idle")
	systray.SetTooltip("Auto Idle Power Switcher")

	header := systray.AddMenuItem("Auto Idle Power Switcher", "")
	header.Disable()

	modeItem = systray.AddMenuItem("Mode: unknown", "")
	modeItem.Disable()
	idleItem = systray.AddMenuItem("Idle: -", "")
	idleItem.Disable()
	lightingItem = systray.AddMenuItem("Lighting: -", "")
	lightingItem.Disable()

	systray.AddSeparator()

	applyItem = systray.AddMenuItem("Apply now", "Sample idle time and apply profile and lighting")
	modeMenu := systray.AddMenuItem("Set mode", "Switch the power profile until the next idle transition")
	modeItems = make(map[power.Mode]*systray.MenuItem, len(power.Modes()))
	for _, m := range power.Modes() {
		modeItems[m] = modeMenu.AddSubMenuItemCheckbox(string(m), "", false)
	}
	sourceItems = make(map[lighting.Source]*systray.MenuItem, len(sourceOrder))
	for _, src := range sourceOrder {
		sourceItems[src] = systray.AddMenuItemCheckbox(sourceLabel(src), "Keyboard lighting source", false)
	}

	systray.AddSeparator()
	quitItem = systray.AddMenuItem("Quit", "Stop auto-idle")

	close(ready)

	if onStart != nil {
		onStart()
	}
	if state != nil {
		Update(state.Snapshot())
	}

	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	for {
		select {
		case <-applyItem.ClickedCh:
			if state != nil {
				go state.ApplyNow()
			}
		case <-modeItems[power.Performance].ClickedCh:
			go setMode(power.Performance)
		case <-modeItems[power.Balanced].ClickedCh:
			go setMode(power.Balanced)
		case <-modeItems[power.PowerSaver].ClickedCh:
			go setMode(power.PowerSaver)
		case <-sourceItems[lighting.SourceMode].ClickedCh:
			setSource(lighting.SourceMode)
		case <-sourceItems[lighting.SourceTemperature].ClickedCh:
			setSource(lighting.SourceTemperature)
		case <-sourceItems[lighting.SourceOff].ClickedCh:
			setSource(lighting.SourceOff)
		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
			return
		}
	}
}

func setMode(mode power.Mode) {
	if state == nil {
		return
	}
	if err := state.SetMode(mode); err != nil {
		logger.Warn("tray.mode.update_failed", "mode", mode, "error", err)
		return
	}
	Update(state.Snapshot())
}

func setSource(src lighting.Source) {
	if state == nil {
		return
	}
	if err := state.SetLightingSource(src); err != nil {
		logger.Warn("tray.lighting.update_failed", "source", src.String(), "error", err)
		return
	}
	Update(state.Snapshot())
}

// Update refreshes the menu and tooltip. It is a no-op until the tray is
// ready, so it is safe to register as a daemon observer before Run.
func Update(snap daemon.Snapshot) {
	select {
	case <-ready:
	default:
		return
	}

	systray.SetTooltip(formatTooltip(snap))
	modeItem.SetTitle(formatMode(snap))
	idleItem.SetTitle(formatIdle(snap))
	lightingItem.SetTitle(formatLighting(snap))

	for m, item := range modeItems {
		if string(m) == snap.CurrentProfile {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	for src, item := range sourceItems {
		if src.String() == snap.LightingSource {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// formatTooltip shows how long the session has been idle, in whole minutes.
func formatTooltip(snap daemon.Snapshot) string {
	return fmt.Sprintf("%s\nIdle: %d min", formatMode(snap), snap.IdleSeconds/60)
}

// formatMode prefers the live profile over the one this process last set.
func formatMode(snap daemon.Snapshot) string {
	mode := snap.CurrentProfile
	if mode == "" {
		mode = snap.LastApplied
	}
	if mode == "" {
		mode = "unknown"
	}
	return "Mode: " + mode
}

func formatIdle(snap daemon.Snapshot) string {
	return fmt.Sprintf("Idle: %ds of %ds (%s)", snap.IdleSeconds, snap.ThresholdSeconds, snap.State)
}

func formatLighting(snap daemon.Snapshot) string {
	if !snap.LightingAvailable {
		return "Lighting: asusctl not found"
	}
	text := "Lighting: " + snap.LightingSource
	if snap.LastLightingColor != "" {
		text += " " + snap.LastLightingColor
	}
	if snap.LightingSource == lighting.SourceTemperature.String() && snap.TemperatureKnown {
		text += fmt.Sprintf(" at %d°C", snap.Temperature)
	}
	return text
}

func sourceLabel(src lighting.Source) string {
	switch src {
	case lighting.SourceMode:
		return "Color by power mode"
	case lighting.SourceTemperature:
		return "Color by CPU temperature"
	default:
		return "Lighting off"
	}
}
