package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
)

var loadConfigForCommand = config.Load

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Init()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config created at %s\n", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := config.ResolveConfigSource(config.ResolveOptions{EnvPath: envConfigPath()})
		if err != nil {
			return err
		}

		path, err := configSavePath(source)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), path)
		printConfigSourceDetails(cmd, source)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	RunE: func(cmd *cobra.Command, args []string) error {
		loadResult, err := loadConfigForCommand()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		printConfigSourceDetails(cmd, loadResult.Source)
		printConfigWarnings(cmd, loadResult.Warnings)

		data, err := yaml.Marshal(loadResult.Config)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSetIdleCmd = &cobra.Command{
	Use:   "set-idle <minutes>",
	Short: "Set the idle threshold in minutes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil || minutes < 1 {
			return fmt.Errorf("idle minutes must be a positive integer, got %q", args[0])
		}

		loadResult, err := loadConfigForCommand()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		path, err := configSavePath(loadResult.Source)
		if err != nil {
			return err
		}

		cfg := loadResult.Config
		cfg.Idle.Minutes = minutes
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Idle threshold set to %d min in %s\n", minutes, path)
		return nil
	},
}

// configSavePath is where changes to the config are written: the selected
// file, or the default path when running on defaults.
func configSavePath(source config.SourceSelection) (string, error) {
	if source.Path != "" {
		return source.Path, nil
	}
	return config.ConfigPath()
}

func printConfigSourceDetails(cmd *cobra.Command, source config.SourceSelection) {
	w := cmd.ErrOrStderr()
	switch {
	case source.Path != "":
		fmt.Fprintf(w, "config: %s (%s)\n", source.Path, source.Type)
	default:
		fmt.Fprintf(w, "config: built-in defaults\n")
	}
	if source.Reason != "" {
		fmt.Fprintf(w, "config reason: %s\n", source.Reason)
	}
}

func printConfigWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetIdleCmd)
	rootCmd.AddCommand(configCmd)
}
