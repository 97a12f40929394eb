package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
)

const (
	ppdDest     = "net.hadess.PowerProfiles"
	ppdPath     = "/net/hadess/PowerProfiles"
	ppdActive   = "net.hadess.PowerProfiles.ActiveProfile"
	ppdProfiles = "net.hadess.PowerProfiles.Profiles"
)

// DBus talks to power-profiles-daemon on the system bus.
type DBus struct {
	Logger  *slog.Logger
	connect func() (*dbus.Conn, error)

	mu   sync.Mutex
	conn *dbus.Conn
}

func NewDBus(logger *slog.Logger) *DBus {
	return &DBus{Logger: logger, connect: dbus.SystemBus}
}

func (d *DBus) Name() string { return "dbus" }

func (d *DBus) Set(ctx context.Context, mode power.Mode) error {
	obj, err := d.object()
	if err != nil {
		return err
	}
	call := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Set", 0,
		"net.hadess.PowerProfiles", "ActiveProfile", dbus.MakeVariant(string(mode)))
	if call.Err != nil {
		return fmt.Errorf("set %s: %w", ppdActive, call.Err)
	}
	return nil
}

func (d *DBus) Current(ctx context.Context) power.Mode {
	obj, err := d.object()
	if err != nil {
		d.logger().Warn("profile.current.failed", "backend", d.Name(), "error", err)
		return power.Unknown
	}

	var active string
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
		"net.hadess.PowerProfiles", "ActiveProfile").Store(&active); err != nil {
		d.logger().Warn("profile.current.failed", "backend", d.Name(), "error", err)
		return power.Unknown
	}
	return power.Mode(active)
}

// Profiles lists the profiles power-profiles-daemon advertises.
func (d *DBus) Profiles(ctx context.Context) ([]power.Mode, error) {
	obj, err := d.object()
	if err != nil {
		return nil, err
	}

	var profiles []map[string]dbus.Variant
	if err := obj.CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0,
		"net.hadess.PowerProfiles", "Profiles").Store(&profiles); err != nil {
		return nil, fmt.Errorf("read %s: %w", ppdProfiles, err)
	}

	modes := make([]power.Mode, 0, len(profiles))
	for _, p := range profiles {
		if name, ok := p["Profile"].Value().(string); ok {
			modes = append(modes, power.Mode(name))
		}
	}
	return modes, nil
}

func (d *DBus) object() (dbus.BusObject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil || !d.conn.Connected() {
		conn, err := d.connect()
		if err != nil {
			return nil, fmt.Errorf("connect system bus: %w", err)
		}
		d.conn = conn
	}
	return d.conn.Object(ppdDest, dbus.ObjectPath(ppdPath)), nil
}

func (d *DBus) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
