package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/profile"
)

var setCmd = &cobra.Command{
	Use:       "set <mode>",
	Short:     "Set the power profile now",
	Long:      "Set the power profile to performance, balanced or power-saver. When keyboard\ncoloring by mode is enabled, the keyboard is recolored to match.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(power.Performance), string(power.Balanced), string(power.PowerSaver)},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := power.ParseMode(args[0])
		if err != nil {
			return err
		}

		loadResult, err := loadConfigForCommand()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg := loadResult.Config
		logger := initializeCommandLogging(cmd.ErrOrStderr(), cfg.Logging, logging.RoleCLI)
		runner := newRunner(cfg)
		ctx := commandContext(cmd)

		backend, err := profile.NewBackend(cfg.Profile.Backend, runner, logger)
		if err != nil {
			return err
		}
		if _, err := profile.NewController(backend, logger).Apply(ctx, mode); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Power profile set to %s\n", mode)

		settings, err := daemon.LightingSettings(cfg)
		if err != nil {
			return err
		}
		if settings.Source != lighting.SourceMode {
			return nil
		}
		res := lighting.NewController(&lighting.Asusctl{Runner: runner}, logger).Update(ctx, settings, mode, nil)
		switch {
		case res.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: keyboard color not applied: %v\n", res.Err)
		case res.Applied:
			fmt.Fprintf(cmd.OutOrStdout(), "Keyboard set to %s (%s)\n", res.Setting.Color, res.Setting.Brightness)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
