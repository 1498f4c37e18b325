// Package config loads cut detection settings from TOML
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/linuxmatters/bangingcuts/internal/detector"
	"github.com/linuxmatters/bangingcuts/internal/mains"
)

// Config holds detection and reconciliation settings
type Config struct {
	ThresholdDB     float64 `toml:"threshold_db"`
	PrerollFrames   int     `toml:"preroll_frames"`
	PostrollFrames  int     `toml:"postroll_frames"`
	AutoHoldoff     bool    `toml:"auto_holdoff"`
	DebounceSamples int     `toml:"debounce_samples"`

	// FPS overrides the project's frame rate. Zero means use the project,
	// then the regional default.
	FPS float64 `toml:"fps"`

	// Channel is the audio channel of the reference clip to scan
	Channel int `toml:"channel"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`
}

const (
	defaultThresholdDB    = -15.0
	defaultPrerollFrames  = 1
	defaultPostrollFrames = 5
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Default returns the stock settings
func Default() Config {
	return Config{
		ThresholdDB:     defaultThresholdDB,
		PrerollFrames:   defaultPrerollFrames,
		PostrollFrames:  defaultPostrollFrames,
		AutoHoldoff:     true,
		DebounceSamples: detector.DefaultDebounceSamples,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
	}
}

// DefaultConfigPath returns the per-user config file location
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bangcuts/config.toml")
}

// Load reads a config file over the defaults. An empty path falls back to
// the per-user file; a missing file is not an error. Returns the config, the
// resolved path and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = p
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func expandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Clean(p), nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = defaultLogFormat
	}
	c.LogFile = strings.TrimSpace(c.LogFile)
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.ThresholdDB >= 0 {
		return fmt.Errorf("threshold_db must be below 0 dBFS, got %v", c.ThresholdDB)
	}
	if c.PrerollFrames < 0 {
		return fmt.Errorf("preroll_frames must be >= 0, got %d", c.PrerollFrames)
	}
	if c.PostrollFrames < 1 {
		return fmt.Errorf("postroll_frames must be >= 1, got %d", c.PostrollFrames)
	}
	if c.DebounceSamples < 1 {
		return fmt.Errorf("debounce_samples must be >= 1, got %d", c.DebounceSamples)
	}
	if c.FPS < 0 {
		return fmt.Errorf("fps must be positive, got %v", c.FPS)
	}
	if c.Channel < 0 {
		return fmt.Errorf("channel must be >= 0, got %d", c.Channel)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: unsupported value %q", c.LogFormat)
	}
	return nil
}

// FrameRate picks the frame rate to work in: the configured override, then
// the project's own rate, then the default for the local mains region.
func (c *Config) FrameRate(projectFPS float64) float64 {
	if c.FPS > 0 {
		return c.FPS
	}
	if projectFPS > 0 {
		return projectFPS
	}
	return mains.FrameRate()
}

// DetectorParams builds detector parameters for a scan window
func (c *Config) DetectorParams(sampleRate, fps float64, start, end int) detector.Params {
	return detector.Params{
		SampleRate:      sampleRate,
		FPS:             fps,
		StartSample:     start,
		EndSample:       end,
		ThresholdDB:     c.ThresholdDB,
		PrerollFrames:   c.PrerollFrames,
		PostrollFrames:  c.PostrollFrames,
		AutoHoldoff:     c.AutoHoldoff,
		DebounceSamples: c.DebounceSamples,
	}
}
