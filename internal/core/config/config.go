// Package config handles configuration loading and validation for folio.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/folio/internal/core/flow"
)

// Measure modes for reader.measure.
const (
	MeasureCells = "cells"
	MeasureFont  = "font"
)

// Config holds the application configuration.
type Config struct {
	Style    StyleConfig    `yaml:"style"`
	Reader   ReaderConfig   `yaml:"reader"`
	Database DatabaseConfig `yaml:"database"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// StyleConfig is the text style pages are laid out and drawn with.
type StyleConfig struct {
	TextColor   string  `yaml:"text_color"` // empty = theme foreground
	BgColor     string  `yaml:"bg_color"`   // empty = theme background
	Typeface    string  `yaml:"typeface"`
	TextSize    float64 `yaml:"text_size"`
	Padding     float64 `yaml:"padding"`
	LineSpacing float64 `yaml:"line_spacing"`
	Theme       string  `yaml:"theme"`
}

// ReaderConfig tunes pagination and the page-turn gesture.
type ReaderConfig struct {
	Measure         string        `yaml:"measure"`          // cells or font
	DPI             float64       `yaml:"dpi"`              // font measure only
	CacheSize       int           `yaml:"cache_size"`       // section renderers kept in memory
	FlingVelocity   float64       `yaml:"fling_velocity"`   // page widths per second
	HotZoneWidth    float64       `yaml:"hot_zone_width"`   // fraction of the page width
	TurnDuration    time.Duration `yaml:"turn_duration"`    // full-width turn animation
	PrefetchWorkers int           `yaml:"prefetch_workers"` // background pagination fan-out
	TickInterval    time.Duration `yaml:"tick_interval"`    // animation frame interval
}

// DatabaseConfig configures the SQLite progress database.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Style: StyleConfig{
			Typeface:    flow.TypefaceRegular,
			TextSize:    12,
			Padding:     1,
			LineSpacing: 0,
			Theme:       "paper",
		},
		Reader: ReaderConfig{
			Measure:         MeasureCells,
			DPI:             72,
			CacheSize:       2,
			FlingVelocity:   2,
			HotZoneWidth:    0.2,
			TurnDuration:    250 * time.Millisecond,
			PrefetchWorkers: 4,
			TickInterval:    16 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Style.Typeface == "" {
		c.Style.Typeface = defaults.Style.Typeface
	}
	if c.Style.TextSize == 0 {
		c.Style.TextSize = defaults.Style.TextSize
	}
	if c.Style.Theme == "" {
		c.Style.Theme = defaults.Style.Theme
	}

	if c.Reader.Measure == "" {
		c.Reader.Measure = defaults.Reader.Measure
	}
	if c.Reader.DPI == 0 {
		c.Reader.DPI = defaults.Reader.DPI
	}
	if c.Reader.CacheSize == 0 {
		c.Reader.CacheSize = defaults.Reader.CacheSize
	}
	if c.Reader.FlingVelocity == 0 {
		c.Reader.FlingVelocity = defaults.Reader.FlingVelocity
	}
	if c.Reader.HotZoneWidth == 0 {
		c.Reader.HotZoneWidth = defaults.Reader.HotZoneWidth
	}
	if c.Reader.TurnDuration == 0 {
		c.Reader.TurnDuration = defaults.Reader.TurnDuration
	}
	if c.Reader.PrefetchWorkers == 0 {
		c.Reader.PrefetchWorkers = defaults.Reader.PrefetchWorkers
	}
	if c.Reader.TickInterval == 0 {
		c.Reader.TickInterval = defaults.Reader.TickInterval
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Style.TextSize <= 0 {
		return fmt.Errorf("style.text_size must be positive")
	}
	if c.Style.Padding < 0 {
		return fmt.Errorf("style.padding cannot be negative")
	}
	if c.Style.LineSpacing < 0 {
		return fmt.Errorf("style.line_spacing cannot be negative")
	}

	if c.Reader.Measure != MeasureCells && c.Reader.Measure != MeasureFont {
		return fmt.Errorf("reader.measure must be %q or %q, got %q", MeasureCells, MeasureFont, c.Reader.Measure)
	}
	if c.Reader.CacheSize < 1 {
		return fmt.Errorf("reader.cache_size must be at least 1")
	}
	if c.Reader.HotZoneWidth <= 0 || c.Reader.HotZoneWidth >= 0.5 {
		return fmt.Errorf("reader.hot_zone_width must be between 0 and 0.5")
	}
	if c.Reader.FlingVelocity < 0 {
		return fmt.Errorf("reader.fling_velocity cannot be negative")
	}
	if c.Reader.PrefetchWorkers < 1 {
		return fmt.Errorf("reader.prefetch_workers must be at least 1")
	}
	if c.Reader.TurnDuration < 0 || c.Reader.TickInterval <= 0 {
		return fmt.Errorf("reader.turn_duration and reader.tick_interval must be positive")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	return nil
}

// Flow converts the style section into the layout style.
func (s StyleConfig) Flow() flow.Style {
	return flow.Style{
		TextColor:   s.TextColor,
		BgColor:     s.BgColor,
		Typeface:    s.Typeface,
		TextSize:    s.TextSize,
		Padding:     s.Padding,
		LineSpacing: s.LineSpacing,
	}
}

// DBPath returns the path of the progress database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "folio.db")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "folio.log")
}
