package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validFormats = map[string]bool{"json": true, "console": true}
)

// Validate checks value ranges. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Model.Path) == "" {
		errs = append(errs, errors.New("model.path must not be empty"))
	}

	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level))
	}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Errorf("logging.format %q is not one of json, console", cfg.Logging.Format))
	}

	if cfg.Storage.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("storage.retention_days must not be negative, got %d", cfg.Storage.RetentionDays))
	}

	if cfg.Similarity.MaxFeatures <= 0 {
		errs = append(errs, fmt.Errorf("similarity.max_features must be positive, got %d", cfg.Similarity.MaxFeatures))
	}
	if cfg.Similarity.DefaultTopN <= 0 {
		errs = append(errs, fmt.Errorf("similarity.default_top_n must be positive, got %d", cfg.Similarity.DefaultTopN))
	}

	f := cfg.Forecast
	if f.Estimators <= 0 {
		errs = append(errs, fmt.Errorf("forecast.estimators must be positive, got %d", f.Estimators))
	}
	if math.IsNaN(f.ValidationRatio) || f.ValidationRatio < 0 || f.ValidationRatio >= 1 {
		errs = append(errs, fmt.Errorf("forecast.validation_ratio must be in [0,1), got %v", f.ValidationRatio))
	}
	if f.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("forecast.max_depth must not be negative, got %d", f.MaxDepth))
	}

	w := cfg.Scoring.Weights
	for _, weight := range []struct {
		name  string
		value float64
	}{
		{"rating", w.Rating},
		{"completion", w.Completion},
		{"responsiveness", w.Responsiveness},
		{"quality", w.Quality},
	} {
		if weight.value < 0 || math.IsNaN(weight.value) {
			errs = append(errs, fmt.Errorf("scoring.weights.%s must not be negative, got %v", weight.name, weight.value))
		}
	}

	d := cfg.Scoring.Defaults
	if d.ResponseHours < 0 {
		errs = append(errs, fmt.Errorf("scoring.defaults.response_hours must not be negative, got %v", d.ResponseHours))
	}
	if d.Quality < 0 || d.Quality > 1 {
		errs = append(errs, fmt.Errorf("scoring.defaults.quality must be in [0,1], got %v", d.Quality))
	}

	return errors.Join(errs...)
}
