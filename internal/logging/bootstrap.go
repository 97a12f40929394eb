package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/volodymyr-hlavnyi/auto-idle-switcher/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Role picks the log file a process writes to. The tray and the foreground
// daemon share daemon.log; one-shot commands write cli.log.
type Role string

const (
	RoleCLI    Role = "cli"
	RoleDaemon Role = "daemon"
)

func (r Role) filename() string {
	if r == RoleDaemon {
		return "daemon.log"
	}
	return "cli.log"
}

// level is shared by every handler Bootstrap builds, so SetLevel changes the
// verbosity of loggers that are already handed out.
var level = new(slog.LevelVar)

// ParseLevel maps logging.level to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SetLevel applies logging.level to every bootstrapped logger. It reports
// whether the level changed.
func SetLevel(name string) bool {
	next := ParseLevel(name)
	if level.Level() == next {
		return false
	}
	level.Set(next)
	return true
}

// Level returns the level currently in effect.
func Level() slog.Level { return level.Level() }

// sink decides where records go. The zero value is not usable; see
// defaultSink.
type sink struct {
	stderr   io.Writer
	open     func(path string, cfg config.LoggingConfig) io.Writer
	attempts int
	backoff  time.Duration
	sleep    func(time.Duration)
}

func defaultSink() sink {
	return sink{
		stderr:   os.Stderr,
		open:     rotatingFile,
		attempts: 3,
		backoff:  50 * time.Millisecond,
		sleep:    time.Sleep,
	}
}

// Bootstrap builds the JSON logger for role, installs it as the slog default
// and returns it. With file logging off, or an unusable log directory, records
// go to stderr.
func Bootstrap(cfg config.LoggingConfig, role Role) *slog.Logger {
	logger := defaultSink().logger(cfg, role)
	slog.SetDefault(logger)
	return logger
}

func (s sink) logger(cfg config.LoggingConfig, role Role) *slog.Logger {
	SetLevel(cfg.Level)
	handler := slog.NewJSONHandler(s.writer(cfg, role), &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: scrubAttr,
	})
	return slog.New(handler)
}

func (s sink) writer(cfg config.LoggingConfig, role Role) io.Writer {
	if !cfg.Enabled {
		return s.stderr
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		fmt.Fprintf(s.stderr, "auto-idle: log directory %s is not usable (%v), logging to stderr\n", cfg.Dir, err)
		return s.stderr
	}
	path := filepath.Join(cfg.Dir, role.filename())
	return &retryWriter{
		path:   path,
		file:   s.open(path, cfg),
		stderr: s.stderr,
		sink:   s,
	}
}

func rotatingFile(path string, cfg config.LoggingConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	}
}

// retryWriter writes to the log file, retrying a few times before sending
// the record to stderr instead. The switch to stderr is announced once.
type retryWriter struct {
	path   string
	file   io.Writer
	stderr io.Writer
	sink   sink
	once   sync.Once
}

func (w *retryWriter) Write(p []byte) (int, error) {
	attempts := max(w.sink.attempts, 1)
	var err error
	for i := range attempts {
		if i > 0 {
			w.sink.sleep(w.sink.backoff)
		}
		var n int
		if n, err = w.file.Write(p); err == nil {
			return n, nil
		}
	}
	w.once.Do(func() {
		fmt.Fprintf(w.stderr, "auto-idle: cannot write %s after %d attempts (%v), logging to stderr\n", w.path, attempts, err)
	})
	return w.stderr.Write(p)
}

var secretMarkers = []string{"token", "secret", "password", "authorization", "api_key"}

// scrubAttr renders times in UTC and hides values of credential-looking keys.
func scrubAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		return slog.String(a.Key, a.Value.Time().UTC().Format(time.RFC3339))
	}
	key := strings.ReplaceAll(strings.ToLower(a.Key), "-", "_")
	for _, marker := range secretMarkers {
		if strings.Contains(key, marker) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}
	return a
}
