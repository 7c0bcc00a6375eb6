// Package config handles the configuration of the proximity CLI.
package config

import (
	"errors"
	"fmt"

	"github.com/akmonengine/proximity"
	"github.com/akmonengine/proximity/internal/logger"
)

// ErrInvalidConfig reports a configuration value out of range
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings of a run.
type Config struct {
	BroadPhase BroadPhaseConfig `yaml:"broad_phase"`
	Contact    ContactConfig    `yaml:"contact"`
	Scene      SceneConfig      `yaml:"scene"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// BroadPhaseConfig selects and tunes the broad-phase method.
type BroadPhaseConfig struct {
	Method          string  `yaml:"method"`
	InflationRadius float64 `yaml:"inflation_radius"`
	Workers         int     `yaml:"workers"`
	CellSize        float64 `yaml:"cell_size"`   // 0 derives it from the boxes
	BucketCount     int     `yaml:"bucket_count"` // spatial hash only
}

// ContactConfig holds the narrow-phase settings.
type ContactConfig struct {
	ActivationDistance float64 `yaml:"activation_distance"`
	Dim                int     `yaml:"dim"`
}

// SceneConfig describes the two meshes approaching each other.
type SceneConfig struct {
	Shape      string  `yaml:"shape"` // sphere or box
	Size       float64 `yaml:"size"`
	Resolution int     `yaml:"resolution"` // marching cubes cells along the longest axis
	Separation float64 `yaml:"separation"` // initial gap between the two meshes
	Speed      float64 `yaml:"speed"`      // approach per step
	Spin       float64 `yaml:"spin"`       // rotation of the second mesh per step, in degrees
	Steps      int     `yaml:"steps"`
}

// LoggingConfig holds logging settings. The rotation settings only apply when LogFile is set.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// File returns the rotating file settings of the logger, without a path when LogFile is empty.
func (c LoggingConfig) File() logger.FileConfig {
	return logger.FileConfig{
		Path:       c.LogFile,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

func defaultLogging() LoggingConfig {
	file := logger.DefaultFileConfig("")
	return LoggingConfig{
		Level:      "info",
		LogFile:    file.Path,
		MaxSizeMB:  file.MaxSizeMB,
		MaxBackups: file.MaxBackups,
		MaxAgeDays: file.MaxAgeDays,
		Compress:   file.Compress,
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		BroadPhase: BroadPhaseConfig{
			Method:          proximity.MethodHashGrid.String(),
			InflationRadius: 0,
			Workers:         4,
			CellSize:        0,
			BucketCount:     4096,
		},
		Contact: ContactConfig{
			ActivationDistance: 0.05,
			Dim:                3,
		},
		Scene: SceneConfig{
			Shape:      "sphere",
			Size:       1,
			Resolution: 16,
			Separation: 0.5,
			Speed:      0.05,
			Spin:       2,
			Steps:      20,
		},
		Logging: defaultLogging(),
	}
}

// Validate checks every value, the first problem found is returned
func (c *Config) Validate() error {
	if _, err := proximity.ParseMethod(c.BroadPhase.Method); err != nil {
		return fmt.Errorf("%w: broad_phase.method: %w", ErrInvalidConfig, err)
	}
	if c.BroadPhase.InflationRadius < 0 {
		return fmt.Errorf("%w: broad_phase.inflation_radius must be >= 0, got %v", ErrInvalidConfig, c.BroadPhase.InflationRadius)
	}
	if c.BroadPhase.Workers < 0 {
		return fmt.Errorf("%w: broad_phase.workers must be >= 0, got %d", ErrInvalidConfig, c.BroadPhase.Workers)
	}
	if c.BroadPhase.CellSize < 0 {
		return fmt.Errorf("%w: broad_phase.cell_size must be >= 0, got %v", ErrInvalidConfig, c.BroadPhase.CellSize)
	}
	if c.BroadPhase.BucketCount < 0 {
		return fmt.Errorf("%w: broad_phase.bucket_count must be >= 0, got %d", ErrInvalidConfig, c.BroadPhase.BucketCount)
	}

	if c.Contact.ActivationDistance <= 0 {
		return fmt.Errorf("%w: contact.activation_distance must be > 0, got %v", ErrInvalidConfig, c.Contact.ActivationDistance)
	}
	if c.Contact.Dim != 2 && c.Contact.Dim != 3 {
		return fmt.Errorf("%w: contact.dim must be 2 or 3, got %d", ErrInvalidConfig, c.Contact.Dim)
	}

	switch c.Scene.Shape {
	case "sphere", "box":
	default:
		return fmt.Errorf("%w: scene.shape must be sphere or box, got %q", ErrInvalidConfig, c.Scene.Shape)
	}
	if c.Scene.Size <= 0 {
		return fmt.Errorf("%w: scene.size must be > 0, got %v", ErrInvalidConfig, c.Scene.Size)
	}
	if c.Scene.Resolution < 2 {
		return fmt.Errorf("%w: scene.resolution must be >= 2, got %d", ErrInvalidConfig, c.Scene.Resolution)
	}
	if c.Scene.Steps < 1 {
		return fmt.Errorf("%w: scene.steps must be >= 1, got %d", ErrInvalidConfig, c.Scene.Steps)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level must be debug, info, warn or error, got %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("%w: logging.max_size_mb, max_backups and max_age_days must be >= 0", ErrInvalidConfig)
	}

	return nil
}
