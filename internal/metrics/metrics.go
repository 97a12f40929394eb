// Package metrics provides Prometheus metrics for the auto-idle daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ticks ──────────────────────────────────────────────────────────────────

// Ticks counts completed poll ticks.
var Ticks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "auto_idle",
	Name:      "ticks_total",
	Help:      "Completed poll ticks.",
})

// TicksSkipped counts timer ticks dropped because a tick was still running.
var TicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "auto_idle",
	Name:      "ticks_skipped_total",
	Help:      "Timer ticks skipped because the previous tick had not finished.",
})

// TickDuration tracks how long a tick takes, dominated by subprocess calls.
var TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "auto_idle",
	Name:      "tick_duration_seconds",
	Help:      "Duration of a poll tick.",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
})

// IdleSeconds is the last idle reading.
var IdleSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "auto_idle",
	Name:      "idle_seconds",
	Help:      "Seconds since last user input at the last tick.",
})

// ─── Profile ────────────────────────────────────────────────────────────────

// ProfileSwitches counts successful transitions by target mode.
var ProfileSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "auto_idle",
	Name:      "profile_switches_total",
	Help:      "Power profile transitions applied.",
}, []string{"mode"})

// ProfileFailures counts failed profile sets by target mode.
var ProfileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "auto_idle",
	Name:      "profile_failures_total",
	Help:      "Power profile sets that failed.",
}, []string{"mode"})

// IdleState is 1 while the controller is in the idle state.
var IdleState = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "auto_idle",
	Name:      "idle_state",
	Help:      "1 when the user is considered idle, 0 when active.",
})

// ─── Lighting ───────────────────────────────────────────────────────────────

// LightingApplied counts keyboard color changes by source.
var LightingApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "auto_idle",
	Name:      "lighting_applied_total",
	Help:      "Keyboard lighting changes sent to the lighting tool.",
}, []string{"source"})

// LightingFailures counts rejected or failed lighting changes by source.
var LightingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "auto_idle",
	Name:      "lighting_failures_total",
	Help:      "Keyboard lighting changes that were rejected or failed.",
}, []string{"source"})

// CPUTemperature is the last CPU package temperature read.
var CPUTemperature = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "auto_idle",
	Name:      "cpu_temperature_celsius",
	Help:      "CPU package temperature at the last temperature-linked tick.",
})
