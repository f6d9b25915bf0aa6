package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"markestedt/clippath/cleanup"
	"markestedt/clippath/hotkey"
	"markestedt/clippath/paths"
)

const DefaultPort = 52853

type Config struct {
	Shortcut string        `toml:"shortcut"`
	Paths    PathsConfig   `toml:"paths"`
	Cleanup  CleanupConfig `toml:"cleanup"`
	Web      WebConfig     `toml:"web"`
	Log      LogConfig     `toml:"log"`
}

type PathsConfig struct {
	Mode        string `toml:"mode"`
	QuoteSpaces bool   `toml:"quote_spaces"`
}

type CleanupConfig struct {
	Schedule  string `toml:"schedule"`
	DailyHour int    `toml:"daily_hour"`
}

type WebConfig struct {
	Port int `toml:"port"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default configuration
func Default() *Config {
	return &Config{
		Shortcut: hotkey.Default.String(),
		Paths: PathsConfig{
			Mode:        string(paths.ModeAuto),
			QuoteSpaces: false,
		},
		Cleanup: CleanupConfig{
			Schedule:  string(cleanup.EveryHour),
			DailyHour: cleanup.DefaultHour,
		},
		Web: WebConfig{
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the per-user application directory, creating it if needed
func Dir() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		appData = filepath.Join(home, "AppData", "Roaming")
	}

	dir := filepath.Join(appData, "clippath")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the path to the configuration file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from the TOML file at configPath.
// If the file doesn't exist, it creates it with default values
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Keys missing from the file keep their defaults
	cfg := Default()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Save writes the configuration to the TOML file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write beside the target and rename so the watcher never sees a
	// half-written file.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Validate checks every field and normalizes the shortcut and path mode
// to their canonical spelling.
func (c *Config) Validate() error {
	var errs []error

	b, err := hotkey.Parse(c.Shortcut)
	if err != nil {
		errs = append(errs, fmt.Errorf("shortcut: %w", err))
	} else {
		c.Shortcut = b.String()
	}

	if m, err := paths.ParseMode(c.Paths.Mode); err != nil {
		errs = append(errs, fmt.Errorf("paths.mode: %w", err))
	} else {
		c.Paths.Mode = string(m)
	}
	if !cleanup.Schedule(c.Cleanup.Schedule).Valid() {
		errs = append(errs, fmt.Errorf("cleanup.schedule: unknown schedule %q", c.Cleanup.Schedule))
	}
	if c.Cleanup.DailyHour < 0 || c.Cleanup.DailyHour > 23 {
		errs = append(errs, fmt.Errorf("cleanup.daily_hour: %d is not between 0 and 23", c.Cleanup.DailyHour))
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		errs = append(errs, fmt.Errorf("web.port: %d is out of range", c.Web.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

// Binding returns the parsed shortcut. Call Validate first.
func (c *Config) Binding() hotkey.Binding {
	b, err := hotkey.Parse(c.Shortcut)
	if err != nil {
		return hotkey.Default
	}
	return b
}

// PathMode returns the parsed path mode, defaulting to auto.
func (c *Config) PathMode() paths.Mode {
	m, err := paths.ParseMode(c.Paths.Mode)
	if err != nil {
		return paths.ModeAuto
	}
	return m
}
