package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
)

// captureSink sends file output to file and everything else to stderr.
func captureSink(file io.Writer, stderr *bytes.Buffer) sink {
	return sink{
		stderr:   stderr,
		open:     func(string, config.LoggingConfig) io.Writer { return file },
		attempts: 2,
		sleep:    func(time.Duration) {},
	}
}

func decodeLines(t *testing.T, raw string) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line %q is not JSON: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func restoreLevel(t *testing.T) {
	t.Helper()
	prev := Level()
	t.Cleanup(func() { level.Set(prev) })
}

func TestLoggerWritesUTCJSONWithScrubbedSecrets(t *testing.T) {
	restoreLevel(t)
	var file, stderr bytes.Buffer
	cfg := config.LoggingConfig{Enabled: true, Level: "info", Dir: t.TempDir()}

	logger := captureSink(&file, &stderr).logger(cfg, RoleDaemon)
	logger.Info("lighting.mode.applied", "color", "#00ff00", "auth-token", "abc", "db_password", "pw")

	records := decodeLines(t, file.String())
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec["msg"] != "lighting.mode.applied" || rec["color"] != "#00ff00" {
		t.Fatalf("record = %v", rec)
	}
	for _, key := range []string{"auth-token", "db_password"} {
		if rec[key] != "[REDACTED]" {
			t.Errorf("%s = %v, want redacted", key, rec[key])
		}
	}
	stamp, _ := rec["time"].(string)
	if ts, err := time.Parse(time.RFC3339, stamp); err != nil || ts.Location() != time.UTC {
		t.Errorf("time = %q, want RFC3339 UTC", stamp)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSetLevelReachesExistingLoggers(t *testing.T) {
	restoreLevel(t)
	var file, stderr bytes.Buffer
	cfg := config.LoggingConfig{Enabled: true, Level: "info", Dir: t.TempDir()}
	logger := captureSink(&file, &stderr).logger(cfg, RoleDaemon)

	logger.Debug("daemon.tick.completed", "tick", 1)
	if !SetLevel("debug") {
		t.Fatal("SetLevel(debug) reported no change from info")
	}
	logger.Debug("daemon.tick.completed", "tick", 2)
	if SetLevel("debug") {
		t.Fatal("SetLevel(debug) reported a change twice")
	}
	SetLevel("error")
	logger.Warn("config.reload.normalized")

	records := decodeLines(t, file.String())
	if len(records) != 1 {
		t.Fatalf("got %d records, want only the debug record logged after SetLevel: %s", len(records), file.String())
	}
	if records[0]["tick"] != float64(2) {
		t.Fatalf("record = %v, want tick 2", records[0])
	}
}

func TestDisabledFileLoggingUsesStderr(t *testing.T) {
	restoreLevel(t)
	var file, stderr bytes.Buffer
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := config.LoggingConfig{Enabled: false, Level: "debug", Dir: dir}

	captureSink(&file, &stderr).logger(cfg, RoleCLI).Debug("status.collected")

	if file.Len() != 0 {
		t.Fatalf("file got %q with file logging off", file.String())
	}
	if !strings.Contains(stderr.String(), "status.collected") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("log dir created with file logging off: %v", err)
	}
}

func TestUnusableLogDirectoryFallsBackToStderr(t *testing.T) {
	restoreLevel(t)
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	var file, stderr bytes.Buffer
	cfg := config.LoggingConfig{Enabled: true, Level: "info", Dir: filepath.Join(blocker, "logs")}

	captureSink(&file, &stderr).logger(cfg, RoleDaemon).Info("daemon.started")

	out := stderr.String()
	if !strings.Contains(out, "is not usable") || !strings.Contains(out, "daemon.started") {
		t.Fatalf("stderr = %q, want a notice and the record", out)
	}
}

type brokenFile struct{ calls int }

func (b *brokenFile) Write([]byte) (int, error) {
	b.calls++
	return 0, errors.New("disk full")
}

func TestRetryWriterAnnouncesFallbackOnce(t *testing.T) {
	restoreLevel(t)
	file := &brokenFile{}
	var stderr bytes.Buffer
	cfg := config.LoggingConfig{Enabled: true, Level: "info", Dir: t.TempDir()}
	logger := captureSink(file, &stderr).logger(cfg, RoleDaemon)

	logger.Info("profile.transition.completed", "to", "idle")
	logger.Info("profile.transition.completed", "to", "active")

	if file.calls != 4 {
		t.Fatalf("file writes = %d, want 2 attempts per record", file.calls)
	}
	out := stderr.String()
	if n := strings.Count(out, "cannot write"); n != 1 {
		t.Fatalf("fallback notice printed %d times: %q", n, out)
	}
	if !strings.Contains(out, filepath.Join(cfg.Dir, "daemon.log")) {
		t.Fatalf("notice does not name the log file: %q", out)
	}
	if strings.Count(out, "profile.transition.completed") != 2 {
		t.Fatalf("records missing from stderr: %q", out)
	}
}

func TestRoleFilenames(t *testing.T) {
	if got := RoleDaemon.filename(); got != "daemon.log" {
		t.Errorf("daemon = %q", got)
	}
	if got := RoleCLI.filename(); got != "cli.log" {
		t.Errorf("cli = %q", got)
	}
}
