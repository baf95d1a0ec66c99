// Package config loads the finbot settings file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all finbot configuration. It is loaded once by the CLI and passed
// into constructors.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Database   DatabaseConfig   `toml:"database"`
	Telegram   TelegramConfig   `toml:"telegram"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds presentation settings.
type GeneralConfig struct {
	Timezone string `toml:"timezone"`
	Currency string `toml:"currency"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// TelegramConfig holds bot delivery settings.
type TelegramConfig struct {
	Token         string  `toml:"token,omitempty"`
	RatePerSecond float64 `toml:"rate_per_second"`
	SendTimeout   string  `toml:"send_timeout"`
}

// SchedulerConfig holds cron expressions. An empty expression disables the job.
type SchedulerConfig struct {
	BillsSpec  string `toml:"bills_spec"`
	GoalsSpec  string `toml:"goals_spec"`
	AlertsSpec string `toml:"alerts_spec"`
	Workers    int    `toml:"workers"`
}

// DaemonConfig holds HTTP API settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AppearanceConfig holds dashboard display settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Timezone: "Local",
			Currency: "R$",
		},
		Database: DatabaseConfig{
			Path: filepath.Join(DataDir(), "finbot.db"),
		},
		Telegram: TelegramConfig{
			RatePerSecond: 25,
			SendTimeout:   "10s",
		},
		Scheduler: SchedulerConfig{
			BillsSpec: "0 10 * * *",
			GoalsSpec: "0 9 * * 1",
			Workers:   4,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finbot")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database and
// daemon runtime files.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "finbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "finbot")
}

// Load reads the config file at path (ConfigPath when empty), then the .env file
// in the working directory, then environment overrides. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the local user
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("reading .env: %w", err)
	}
	ApplyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and paths from the environment.
func ApplyEnv(cfg *Config) {
	if tok := os.Getenv("FINBOT_TELEGRAM_TOKEN"); tok != "" {
		cfg.Telegram.Token = tok
	} else if tok := os.Getenv("TELEGRAM_BOT_TOKEN"); tok != "" {
		cfg.Telegram.Token = tok
	}
	if p := os.Getenv("FINBOT_DB_PATH"); p != "" {
		cfg.Database.Path = p
	}
}

// Validate checks the derived values so bad settings fail at startup.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SendTimeout(); err != nil {
		return err
	}
	if c.Database.Path == "" {
		return errors.New("database path is empty")
	}
	if c.Scheduler.Workers < 1 {
		return fmt.Errorf("scheduler workers must be at least 1, got %d", c.Scheduler.Workers)
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.General.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.General.Timezone, err)
	}
	return loc, nil
}

// SendTimeout parses the per-delivery timeout.
func (c Config) SendTimeout() (time.Duration, error) {
	if c.Telegram.SendTimeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Telegram.SendTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid send_timeout %q: %w", c.Telegram.SendTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("send_timeout must be positive, got %s", d)
	}
	return d, nil
}

// Save writes the config to path (ConfigPath when empty).
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path (ConfigPath when empty).
func Exists(path string) bool {
	if path == "" {
		path = ConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}
