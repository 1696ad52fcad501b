/*
Package bundle defines the model bundle: the single aggregate of every
trained artifact (similarity index, forecast model, trained flags) that is
swapped atomically in memory and persisted as one unit.

A Bundle is treated as immutable once published. The With* methods return
modified copies and leave the receiver untouched.
*/
package bundle

import (
	"fmt"
	"time"

	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/khanglvm/supply-intel/internal/similarity"
)

// SchemaVersion is the current artifact layout version.
const SchemaVersion = 1

// Bundle is the trained state of the intelligence service.
type Bundle struct {
	SchemaVersion int `json:"schema_version"`

	Similarity          *similarity.Index `json:"similarity,omitempty"`
	SimilarityTrained   bool              `json:"similarity_trained"`
	SimilarityTrainedAt time.Time         `json:"similarity_trained_at"`

	Forecast          *forecast.Model `json:"forecast,omitempty"`
	ForecastTrained   bool            `json:"forecast_trained"`
	ForecastTrainedAt time.Time       `json:"forecast_trained_at"`
}

// New returns an empty, untrained bundle.
func New() *Bundle {
	return &Bundle{SchemaVersion: SchemaVersion}
}

// WithSimilarity returns a copy of b carrying idx as the trained similarity index.
func (b *Bundle) WithSimilarity(idx *similarity.Index, at time.Time) *Bundle {
	next := *b
	next.Similarity = idx
	next.SimilarityTrained = true
	next.SimilarityTrainedAt = at
	return &next
}

// WithForecast returns a copy of b carrying m as the trained forecast model.
func (b *Bundle) WithForecast(m *forecast.Model, at time.Time) *Bundle {
	next := *b
	next.Forecast = m
	next.ForecastTrained = true
	next.ForecastTrainedAt = at
	return &next
}

// Validate checks that every sub-model flagged as trained is present and well formed.
func (b *Bundle) Validate() error {
	if b.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", b.SchemaVersion, SchemaVersion)
	}

	if b.SimilarityTrained {
		if err := b.Similarity.Validate(); err != nil {
			return fmt.Errorf("similarity index: %w", err)
		}
	}

	if b.ForecastTrained {
		if err := b.Forecast.Validate(); err != nil {
			return fmt.Errorf("forecast model: %w", err)
		}
	}

	return nil
}
