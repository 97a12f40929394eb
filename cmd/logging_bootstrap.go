package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/logging"
)

var commandLoggingBootstrap = func(cfg config.LoggingConfig, role logging.Role) (*slog.Logger, error) {
	return logging.Bootstrap(cfg, role), nil
}

func initializeCommandLogging(errWriter io.Writer, cfg config.LoggingConfig, role logging.Role) *slog.Logger {
	logger, err := commandLoggingBootstrap(cfg, role)
	if err != nil {
		fmt.Fprintf(errWriter, "warning: unable to initialize persistent logging for %s role: %v; continuing without file logging\n", role, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return logger
}
