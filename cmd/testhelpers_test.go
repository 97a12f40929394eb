package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/command/commandtest"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
)

const gdbusLine = "gdbus call --session --dest org.gnome.Mutter.IdleMonitor --object-path /org/gnome/Mutter/IdleMonitor/Core --method org.gnome.Mutter.IdleMonitor.GetIdletime"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig avoids the session bus, the state dir and the network.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Idle.Providers = []string{"gdbus"}
	cfg.History.Enabled = false
	cfg.History.Dir = t.TempDir()
	cfg.Server.Address = ""
	cfg.TemperatureRGB.ThermalDir = t.TempDir()
	cfg.Logging.Enabled = false
	return cfg
}

func stubLoadConfig(t *testing.T, cfg config.Config) {
	t.Helper()
	orig := loadConfigForCommand
	t.Cleanup(func() { loadConfigForCommand = orig })
	loadConfigForCommand = func() (config.LoadResult, error) {
		return config.LoadResult{Config: cfg, Source: config.SourceSelection{Type: config.SourceDefaults}}, nil
	}
}

func stubLogging(t *testing.T) {
	t.Helper()
	orig := commandLoggingBootstrap
	t.Cleanup(func() { commandLoggingBootstrap = orig })
	commandLoggingBootstrap = func(config.LoggingConfig, logging.Role) (*slog.Logger, error) {
		return quietLogger(), nil
	}
}

func stubRunner(t *testing.T) *commandtest.Fake {
	t.Helper()
	fake := commandtest.New()
	orig := newRunner
	t.Cleanup(func() { newRunner = orig })
	newRunner = func(config.Config) command.Runner { return fake }
	return fake
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func runCommand(c *cobra.Command) func() (string, error) {
	return func() (string, error) {
		cmd, stdout, _ := newTestCommand()
		err := c.RunE(cmd, nil)
		return stdout.String(), err
	}
}
