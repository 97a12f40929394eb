package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const appName = "auto-idle"

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "AUTO_IDLE_CONFIG"

type Config struct {
	Idle           IdleConfig         `yaml:"idle"`
	Profile        ProfileConfig      `yaml:"profile"`
	Keyboard       KeyboardConfig     `yaml:"keyboard"`
	TemperatureRGB TemperatureConfig  `yaml:"temperature_rgb"`
	Commands       CommandsConfig     `yaml:"commands"`
	Notification   NotificationConfig `yaml:"notification"`
	Server         ServerConfig       `yaml:"server"`
	History        HistoryConfig      `yaml:"history"`
	Logging        LoggingConfig      `yaml:"logging"`
}

type IdleConfig struct {
	Minutes             int      `yaml:"minutes"`
	ActiveMode          string   `yaml:"active_mode"`
	IdleMode            string   `yaml:"idle_mode"`
	PollIntervalSeconds int      `yaml:"poll_interval_seconds"`
	Providers           []string `yaml:"providers"`
}

type ProfileConfig struct {
	// Backend is "powerprofilesctl" or "dbus".
	Backend string `yaml:"backend"`
}

type KeyboardConfig struct {
	Enabled bool                `yaml:"enabled"`
	Modes   map[string]KeyColor `yaml:"modes"`
}

type KeyColor struct {
	Color      string `yaml:"color"`
	Brightness string `yaml:"brightness"`
}

type TemperatureConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Brightness string         `yaml:"brightness"`
	ThermalDir string         `yaml:"thermal_dir"`
	Sensor     string         `yaml:"sensor"`
	Points     map[int]string `yaml:"points"`
}

type CommandsConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type NotificationConfig struct {
	// OnSwitch shows a desktop notification when the profile changes.
	OnSwitch bool `yaml:"on_switch"`
}

type ServerConfig struct {
	// Address of the local control API; empty disables it.
	Address string `yaml:"address"`
	Metrics bool   `yaml:"metrics"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Level      string `yaml:"level"`
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Idle: IdleConfig{
			Minutes:             20,
			ActiveMode:          "balanced",
			IdleMode:            "power-saver",
			PollIntervalSeconds: 5,
			Providers:           []string{"gdbus", "dbus", "xprintidle"},
		},
		Profile: ProfileConfig{
			Backend: "powerprofilesctl",
		},
		Keyboard: KeyboardConfig{
			Enabled: true,
			Modes: map[string]KeyColor{
				"power-saver": {Color: "#00ff00", Brightness: "low"},
				"balanced":    {Color: "#e61e00", Brightness: "med"},
				"performance": {Color: "#ff0000", Brightness: "high"},
			},
		},
		TemperatureRGB: TemperatureConfig{
			Enabled:    false,
			Brightness: "high",
			ThermalDir: "/sys/class/thermal",
			Sensor:     "x86_pkg_temp",
			Points: map[int]string{
				30:  "#00ff00",
				40:  "#66ff00",
				50:  "#ccff00",
				60:  "#ffff00",
				70:  "#ffcc00",
				80:  "#ff9900",
				90:  "#ff6600",
				100: "#ff3300",
				110: "#ff0000",
			},
		},
		Commands: CommandsConfig{
			TimeoutSeconds: 3,
		},
		Notification: NotificationConfig{
			OnSwitch: false,
		},
		Server: ServerConfig{
			Address: "127.0.0.1:8229",
			Metrics: true,
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     defaultStateDir(),
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        defaultLogDir(),
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(configDir, appName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadResult is a parsed config plus where it came from and what was corrected.
type LoadResult struct {
	Config   Config
	Source   SourceSelection
	Warnings []string
}

// Load resolves the config source and reads it, falling back to defaults.
func Load() (LoadResult, error) {
	source, err := ResolveConfigSource(ResolveOptions{EnvPath: os.Getenv(EnvConfigPath)})
	if err != nil {
		return LoadResult{Config: DefaultConfig(), Source: SourceSelection{Type: SourceDefaults}}, err
	}
	return LoadSource(source)
}

// LoadSource reads the selected source. A missing file yields defaults.
func LoadSource(source SourceSelection) (LoadResult, error) {
	result := LoadResult{Config: DefaultConfig(), Source: source}
	if source.Type == SourceDefaults || source.Path == "" {
		return result, nil
	}

	cfg, warnings, err := LoadFile(source.Path, DefaultConfig())
	result.Config = cfg
	result.Warnings = warnings
	return result, err
}

// LoadFile reads path over defaults and validates it against fallback.
func LoadFile(path string, fallback Config) (Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil, nil
		}
		return fallback, nil, fmt.Errorf("read config: %w", err)
	}
	return LoadFromBytes(data, fallback)
}

// LoadFromBytes unmarshals data over DefaultConfig, so missing keys keep their
// defaults, then replaces invalid values with the ones from fallback.
func LoadFromBytes(data []byte, fallback Config) (Config, []string, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fallback, nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, warnings := Normalize(cfg, fallback)
	return cfg, warnings, nil
}

// Save writes cfg to path atomically.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Init creates a default config file if one doesn't exist.
func Init() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config already exists at %s", path)
	}

	if err := Save(path, DefaultConfig()); err != nil {
		return "", err
	}
	return path, nil
}
