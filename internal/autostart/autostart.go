// Package autostart registers auto-idle as an XDG autostart application.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const desktopFileName = "auto-idle.desktop"

const desktopEntryTemplate = `[Desktop Entry]
Type=Application
Name=Auto Idle Power Switcher
Comment=Switch power profiles when the session goes idle
Exec=%s
Icon=preferences-system-power
Terminal=false
Categories=Utility;
X-GNOME-Autostart-enabled=true
`

// Manager writes and removes the .desktop entry. Zero fields select the
// XDG defaults.
type Manager struct {
	// Dir is the autostart directory, default $XDG_CONFIG_HOME/autostart.
	Dir string
	// Executable resolves the binary to start, default os.Executable.
	Executable func() (string, error)
	// Args follow the binary on the Exec line.
	Args []string
}

// Default starts `auto-idle tray` at login.
func Default() *Manager {
	return &Manager{Args: []string{"tray"}}
}

// Path returns where the .desktop entry lives.
func (m *Manager) Path() (string, error) {
	dir := m.Dir
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("user config dir: %w", err)
		}
		dir = filepath.Join(configDir, "autostart")
	}
	return filepath.Join(dir, desktopFileName), nil
}

// IsEnabled returns true if the autostart .desktop file exists.
func (m *Manager) IsEnabled() bool {
	p, err := m.Path()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Enable creates or refreshes the autostart entry for the current executable.
func (m *Manager) Enable() error {
	exe, err := m.executable()
	if err != nil {
		return fmt.Errorf("get executable path: %w", err)
	}

	p, err := m.Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}

	content := fmt.Sprintf(desktopEntryTemplate, execLine(exe, m.Args))
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write desktop file: %w", err)
	}
	return nil
}

// Disable removes the autostart entry. A missing entry is not an error.
func (m *Manager) Disable() error {
	p, err := m.Path()
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (m *Manager) executable() (string, error) {
	if m.Executable != nil {
		return m.Executable()
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved, nil
	}
	return exe, nil
}

// execLine quotes arguments containing spaces as the desktop entry format
// requires.
func execLine(exe string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{exe}, args...) {
		if strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
