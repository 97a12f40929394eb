package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
)

var (
	runOnce     bool
	runInterval int
	runNoServer bool
)

var runLoadConfig = func() (config.LoadResult, error) { return loadConfigForCommand() }

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the idle power switcher in the foreground",
	Long: `Run the poll loop: every interval, read the session idle time, switch the
power profile when the idle threshold is crossed, and update keyboard lighting.

The local control API listens on the configured address (default 127.0.0.1:8229):
  GET  /health           Health check
  GET  /status           Runtime state
  POST /apply            Run a tick now
  GET  /history?limit=N  Recent transitions and lighting changes
  GET  /metrics          Prometheus metrics

Example:
  auto-idle run --interval 10
  curl -X POST 127.0.0.1:8229/apply`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loadResult, err := runLoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		printConfigSourceDetails(cmd, loadResult.Source)
		cfg := loadResult.Config
		logger := initializeCommandLogging(cmd.ErrOrStderr(), cfg.Logging, logging.RoleDaemon)
		for _, w := range loadResult.Warnings {
			logger.Warn("config.load.normalized", "warning", w)
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := startRuntime(ctx, cfg, loadResult.Source, logger, runtimeOptions{
			server:   !runNoServer && !runOnce,
			watch:    !runOnce,
			interval: runInterval,
		})
		if err != nil {
			return err
		}
		defer func() {
			stop()
			rt.wait()
		}()

		if runOnce {
			printReport(cmd.OutOrStdout(), rt.daemon.Tick(ctx))
			return nil
		}
		return rt.daemon.Run(ctx)
	},
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printReport(w io.Writer, r daemon.Report) {
	fmt.Fprintf(w, "idle: %ds\n", r.Reading.Seconds)
	fmt.Fprintf(w, "state: %s -> %s\n", r.Profile.From, r.Profile.To)
	switch {
	case r.Profile.Err != nil:
		fmt.Fprintf(w, "profile: failed to set %s: %v\n", r.Profile.Target, r.Profile.Err)
	case r.Profile.Invoked:
		fmt.Fprintf(w, "profile: set %s\n", r.Profile.Target)
	default:
		fmt.Fprintf(w, "profile: unchanged\n")
	}
	switch {
	case r.Lighting.Err != nil:
		fmt.Fprintf(w, "lighting (%s): failed: %v\n", r.Lighting.Source, r.Lighting.Err)
	case r.Lighting.Applied:
		fmt.Fprintf(w, "lighting (%s): %s %s\n", r.Lighting.Source, r.Lighting.Setting.Color, r.Lighting.Setting.Brightness)
	default:
		fmt.Fprintf(w, "lighting (%s): %s\n", r.Lighting.Source, r.Lighting.Skipped)
	}
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single tick and exit")
	runCmd.Flags().IntVarP(&runInterval, "interval", "i", 0, "Poll interval in seconds (default from config)")
	runCmd.Flags().BoolVar(&runNoServer, "no-server", false, "Do not start the local control API")

	rootCmd.AddCommand(runCmd)
}
