package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolveStateDir(t *testing.T) {
	tests := []struct {
		name     string
		opts     stateDirResolverOptions
		wantPath string
	}{
		{
			name: "uses xdg state home when set",
			opts: stateDirResolverOptions{
				getenv: func(key string) string {
					if key == "XDG_STATE_HOME" {
						return "/state"
					}
					return ""
				},
				userHomeDir: func() (string, error) {
					return "/home/alex", nil
				},
			},
			wantPath: filepath.Join("/state", "auto-idle"),
		},
		{
			name: "falls back to local state dir",
			opts: stateDirResolverOptions{
				getenv: func(string) string {
					return ""
				},
				userHomeDir: func() (string, error) {
					return "/home/alex", nil
				},
			},
			wantPath: filepath.Join("/home/alex", ".local", "state", "auto-idle"),
		},
		{
			name: "falls back to working directory on lookup failure",
			opts: stateDirResolverOptions{
				getenv: func(string) string {
					return ""
				},
				userHomeDir: func() (string, error) {
					return "", errors.New("boom")
				},
			},
			wantPath: ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveStateDir(tt.opts)
			if got != tt.wantPath {
				t.Fatalf("resolveStateDir() = %q, want %q", got, tt.wantPath)
			}
		})
	}
}

func TestNormalizeLoggingDir(t *testing.T) {
	if got := normalizeLoggingDir("/var/log/auto-idle"); got != "/var/log/auto-idle" {
		t.Fatalf("absolute dir rewritten to %q", got)
	}
	if got := normalizeLoggingDir("./logs"); got != defaultLogDir() {
		t.Fatalf("legacy dir = %q, want %q", got, defaultLogDir())
	}
}
