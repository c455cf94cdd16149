// Package config loads process configuration for the spotlight viewer:
// compiled-in defaults, then an optional YAML file, then SPOTLIGHT_*
// environment variables (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/lixenwraith/spotlight/parameter"
)

const (
	DefaultFileName = "config.yaml"
	// SettingsFileName is the shared settings record inside the config directory
	SettingsFileName = "settings.yaml"
	dirName          = "spotlight"
	envPrefix        = "SPOTLIGHT_"
)

// Config captures the process-level knobs; spotlight settings themselves live in the settings store
type Config struct {
	SettingsPath string        `yaml:"settings_path"`
	Display      DisplayConfig `yaml:"display"`
	Sound        SoundConfig   `yaml:"sound"`
	Logging      LoggingConfig `yaml:"logging"`

	// Source is the file the configuration was read from, or "<defaults>"
	Source string `yaml:"-"`
}

// DisplayConfig maps terminal cells to the pixel geometry the spotlight uses
// Marker colors are "#rrggbb"; empty keeps the built-in theme
type DisplayConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	MarkerFill string  `yaml:"marker_fill"`
	MarkerRing string  `yaml:"marker_ring"`
}

// SoundConfig controls the activation cue
type SoundConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// LoggingConfig defines log verbosity, formatting and destination
// An empty File discards log output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Dir returns the per-user configuration directory, falling back to the working directory
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "."
	}
	return filepath.Join(base, dirName)
}

// Default returns the baseline configuration
func Default() Config {
	dir := Dir()
	return Config{
		SettingsPath: filepath.Join(dir, SettingsFileName),
		Display: DisplayConfig{
			CellWidth:  parameter.DefaultCellWidth,
			CellHeight: parameter.DefaultCellHeight,
		},
		Sound: SoundConfig{
			Enabled: false,
			Volume:  parameter.CueVolume,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(dir, "spotlight.log"),
		},
		Source: "<defaults>",
	}
}

// Load reads path over the defaults; an empty path tries Dir()/config.yaml and tolerates its absence
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = filepath.Join(Dir(), DefaultFileName)
	}

	data, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file %q: %w", candidate, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv seeds the process environment from .env files; missing files are ignored
// Variables already set in the environment win
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from SPOTLIGHT_* variables read through lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	var errs []error
	if v, ok := get("SETTINGS"); ok {
		c.SettingsPath = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.Logging.Format = v
	}
	if v, ok := get("LOG_FILE"); ok {
		c.Logging.File = v
	}
	if v, ok := get("SOUND"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSOUND: %w", envPrefix, err))
		} else {
			c.Sound.Enabled = b
		}
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"VOLUME", &c.Sound.Volume},
		{"CELL_WIDTH", &c.Display.CellWidth},
		{"CELL_HEIGHT", &c.Display.CellHeight},
	}
	for _, f := range floats {
		v, ok := get(f.name)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, f.name, err))
			continue
		}
		*f.dst = n
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	c.normalize()
	return c.Validate()
}

func (c *Config) normalize() {
	c.SettingsPath = strings.TrimSpace(c.SettingsPath)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate ensures values are usable
func (c Config) Validate() error {
	if c.SettingsPath == "" {
		return errors.New("settings_path must not be empty")
	}
	if c.Display.CellWidth <= 0 || c.Display.CellHeight <= 0 {
		return errors.New("display cell size must be positive")
	}
	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		return fmt.Errorf("sound.volume %v outside [0,1]", c.Sound.Volume)
	}
	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}
	return nil
}

// NormalizeLogLevel lowercases and validates a log level name
func NormalizeLogLevel(level string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(level))
	switch l {
	case "":
		return "info", nil
	case "debug", "info", "warn", "error":
		return l, nil
	case "warning":
		return "warn", nil
	}
	return "", fmt.Errorf("unsupported log level %q", level)
}

// NormalizeFormat lowercases and validates a log format name
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "":
		return "text", nil
	case "json", "text":
		return f, nil
	case "console":
		return "text", nil
	}
	return "", fmt.Errorf("unsupported log format %q", format)
}
