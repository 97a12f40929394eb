package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/daemon"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/lighting"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/power"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/tray"
)

var (
	runTray    = tray.Run
	quitTray   = tray.Quit
	saveConfig = config.Save
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run the daemon with a system tray menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		loadResult, err := loadConfigForCommand()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		printConfigSourceDetails(cmd, loadResult.Source)
		cfg := loadResult.Config
		logger := initializeCommandLogging(cmd.ErrOrStderr(), cfg.Logging, logging.RoleDaemon)
		for _, w := range loadResult.Warnings {
			logger.Warn("config.load.normalized", "warning", w)
		}

		savePath, err := configSavePath(loadResult.Source)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// The watcher needs a path even when running on defaults, so that
		// menu changes saved to the default location are picked up.
		source := loadResult.Source
		source.Path = savePath

		rt, err := startRuntime(ctx, cfg, source, logger, runtimeOptions{server: true, watch: true})
		if err != nil {
			return err
		}

		session := &traySession{ctx: ctx, cancel: stop, rt: rt, path: savePath}
		rt.daemon.Observe(func(daemon.Report) { tray.Update(rt.daemon.Snapshot()) })

		go func() {
			<-ctx.Done()
			quitTray()
		}()

		var started atomic.Bool
		loopDone := make(chan error, 1)
		runTray(session, logger, func() {
			started.Store(true)
			go func() { loopDone <- rt.daemon.Run(ctx) }()
		}, stop)

		stop()
		rt.wait()
		if !started.Load() {
			return nil
		}
		return <-loopDone
	},
}

// traySession adapts the runtime to the tray menu.
type traySession struct {
	ctx    context.Context
	cancel context.CancelFunc
	rt     *runtime
	path   string
}

func (s *traySession) Snapshot() daemon.Snapshot { return s.rt.daemon.Snapshot() }

func (s *traySession) ApplyNow() { s.rt.daemon.Tick(s.ctx) }

func (s *traySession) SetMode(mode power.Mode) error {
	_, err := s.rt.daemon.ApplyMode(s.ctx, mode)
	return err
}

// SetLightingSource writes the choice to the config file so it survives a
// restart, then applies it without waiting for the file watcher.
func (s *traySession) SetLightingSource(src lighting.Source) error {
	cfg := daemon.WithLightingSource(s.rt.daemon.Config(), src)
	if err := saveConfig(s.path, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.rt.apply(cfg)
	return nil
}

func (s *traySession) RequestShutdown() {
	s.cancel()
}

func init() {
	rootCmd.AddCommand(trayCmd)
}
