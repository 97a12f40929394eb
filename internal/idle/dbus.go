package idle

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// MutterDBus calls Mutter's idle monitor directly on the session bus.
type MutterDBus struct {
	connect func() (*dbus.Conn, error)

	mu   sync.Mutex
	conn *dbus.Conn
}

func NewMutterDBus() *MutterDBus {
	return &MutterDBus{connect: dbus.SessionBus}
}

func (m *MutterDBus) Name() string { return "dbus" }

func (m *MutterDBus) IdleMillis(ctx context.Context) (int64, error) {
	conn, err := m.session()
	if err != nil {
		return 0, err
	}

	var ms uint64
	obj := conn.Object(mutterDest, dbus.ObjectPath(mutterPath))
	if err := obj.CallWithContext(ctx, mutterMethod, 0).Store(&ms); err != nil {
		return 0, fmt.Errorf("call %s: %w", mutterMethod, err)
	}
	return int64(ms), nil
}

func (m *MutterDBus) session() (*dbus.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil && m.conn.Connected() {
		return m.conn, nil
	}
	conn, err := m.connect()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	m.conn = conn
	return conn, nil
}
