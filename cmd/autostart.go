package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/autostart"
)

var autostartManager = autostart.Default

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Start the tray at login",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Create the login entry for the tray",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := autostartManager()
		if err := m.Enable(); err != nil {
			return err
		}
		p, _ := m.Path()
		fmt.Fprintf(cmd.OutOrStdout(), "Autostart enabled: %s\n", p)
		return nil
	},
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the login entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := autostartManager().Disable(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled")
		return nil
	},
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether autostart is enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		if autostartManager().IsEnabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "enabled")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "disabled")
		}
		return nil
	},
}

func init() {
	autostartCmd.AddCommand(autostartEnableCmd)
	autostartCmd.AddCommand(autostartDisableCmd)
	autostartCmd.AddCommand(autostartStatusCmd)
	rootCmd.AddCommand(autostartCmd)
}
