package config

import (
	"os"
	"path/filepath"
	"strings"
)

const legacyLogDir = "logs"

type stateDirResolverOptions struct {
	getenv      func(string) string
	userHomeDir func() (string, error)
}

func defaultLogDir() string {
	return filepath.Join(resolveStateDir(stateDirResolverOptions{}), "logs")
}

func defaultStateDir() string {
	return resolveStateDir(stateDirResolverOptions{})
}

// resolveStateDir follows the XDG base directory layout for state files.
func resolveStateDir(opts stateDirResolverOptions) string {
	getenv := opts.getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	userHomeDir := opts.userHomeDir
	if userHomeDir == nil {
		userHomeDir = os.UserHomeDir
	}

	if stateHome := strings.TrimSpace(getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, appName)
	}

	home, err := userHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "."
	}
	return filepath.Join(home, ".local", "state", appName)
}

func normalizeLoggingDir(dir string) string {
	if isLegacyLogDir(dir) {
		return defaultLogDir()
	}
	return dir
}

func isLegacyLogDir(dir string) bool {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return false
	}

	return filepath.Clean(trimmed) == legacyLogDir
}
