package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "auto-idle",
	Short:   "Idle-driven power profile switcher",
	Version: Version,
	Long: `auto-idle switches the power profile when the desktop session goes idle
and back when you return. It can also color an ASUS keyboard by power mode
or by CPU temperature.

Usage:
  auto-idle run                 Run the daemon in the foreground
  auto-idle tray                Run the daemon with a tray icon
  auto-idle status              Show idle time, profile and temperature
  auto-idle set power-saver     Set a power profile now
  auto-idle config init         Create default config file`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
