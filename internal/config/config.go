/*
Package config handles loading, validating and saving supply-intel configuration.

Configuration is read from ~/.supply-intel.yaml (or --config) with every key
overridable from the environment: SUPPLY_INTEL_ prefix, dots as underscores,
e.g. SUPPLY_INTEL_FORECAST_ESTIMATORS=200.

Schema:

	model:
	  path: ~/.supply-intel/model.json   # or redis://host:6379/0?key=name
	storage:
	  enabled: true
	  path: ~/.supply-intel/activity.db
	  retention_days: 90
	logging:
	  level: info
	  format: console
	similarity:
	  max_features: 1000
	  default_top_n: 5
	forecast:
	  estimators: 100
	  seed: 42
	  validation_ratio: 0.2
	  max_depth: 0
	  min_samples_split: 2
	scoring:
	  weights: {rating: 0.4, completion: 0.3, responsiveness: 0.2, quality: 0.1}
	  defaults: {response_hours: 24, quality: 0.8}
	metrics:
	  textfile: ""
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/khanglvm/supply-intel/internal/scoring"
)

// Config represents the root configuration structure.
type Config struct {
	Model      ModelConfig      `mapstructure:"model" yaml:"model"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Similarity SimilarityConfig `mapstructure:"similarity" yaml:"similarity"`
	Forecast   ForecastConfig   `mapstructure:"forecast" yaml:"forecast"`
	Scoring    ScoringConfig    `mapstructure:"scoring" yaml:"scoring"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// ModelConfig locates the persisted model bundle.
type ModelConfig struct {
	// Path is a file path or a redis:// URL.
	Path string `mapstructure:"path" yaml:"path"`
}

// StorageConfig controls the SQLite activity log.
type StorageConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type SimilarityConfig struct {
	MaxFeatures int `mapstructure:"max_features" yaml:"max_features"`
	DefaultTopN int `mapstructure:"default_top_n" yaml:"default_top_n"`
}

// ForecastConfig holds the random forest hyperparameters.
type ForecastConfig struct {
	Estimators      int     `mapstructure:"estimators" yaml:"estimators"`
	Seed            int64   `mapstructure:"seed" yaml:"seed"`
	ValidationRatio float64 `mapstructure:"validation_ratio" yaml:"validation_ratio"`
	MaxDepth        int     `mapstructure:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int     `mapstructure:"min_samples_split" yaml:"min_samples_split"`
}

type ScoringConfig struct {
	Weights  scoring.Weights  `mapstructure:"weights" yaml:"weights"`
	Defaults scoring.Defaults `mapstructure:"defaults" yaml:"defaults"`
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Params converts the forecast section to model parameters.
func (f ForecastConfig) Params() forecast.Params {
	return forecast.Params{
		Estimators:      f.Estimators,
		Seed:            f.Seed,
		ValidationRatio: f.ValidationRatio,
		MaxDepth:        f.MaxDepth,
		MinSamplesSplit: f.MinSamplesSplit,
	}
}

// Retention returns the activity log retention window; zero keeps everything.
func (s StorageConfig) Retention() time.Duration {
	if s.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// Scorer builds a supplier scorer from the scoring section.
func (s ScoringConfig) Scorer() *scoring.Scorer {
	return scoring.New(s.Weights, s.Defaults)
}

// GetDefaultConfigPath returns the path to ~/.supply-intel.yaml
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".supply-intel.yaml"), nil
}

// defaultDataDir returns ~/.supply-intel, or a relative directory if home is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".supply-intel"
	}
	return filepath.Join(home, ".supply-intel")
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
