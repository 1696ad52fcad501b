/*
Package intel implements the intelligence service: the single owner of the
trained model bundle and the public surface for training, querying and
persisting it.

Readers load the published bundle through an atomic pointer and never block.
Training, loading and saving are serialized by a writer mutex; training builds
a complete replacement off to the side and publishes it with one pointer swap,
so a query sees either the old bundle or the new one in full.
*/
package intel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/khanglvm/supply-intel/internal/activity"
	"github.com/khanglvm/supply-intel/internal/bundle"
	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/khanglvm/supply-intel/internal/metrics"
	"github.com/khanglvm/supply-intel/internal/modelstore"
	"github.com/khanglvm/supply-intel/internal/scoring"
	"github.com/khanglvm/supply-intel/internal/similarity"
	"go.uber.org/zap"
)

// Service owns one model bundle for its lifetime.
type Service struct {
	state atomic.Pointer[bundle.Bundle]

	// writeMu serializes training, load and save.
	writeMu sync.Mutex

	logger         *zap.Logger
	metrics        *metrics.Metrics
	tracker        *activity.Tracker
	scorer         *scoring.Scorer
	forecastParams forecast.Params
	maxFeatures    int
	openStore      func(destination string) (modelstore.Store, error)
	now            func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the prometheus collectors. Defaults to none.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracker sets the activity tracker. Defaults to none.
func WithTracker(t *activity.Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithScorer replaces the default supplier scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithForecastParams sets the forest hyperparameters.
func WithForecastParams(p forecast.Params) Option {
	return func(s *Service) { s.forecastParams = p }
}

// WithMaxFeatures caps the similarity vocabulary size.
func WithMaxFeatures(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxFeatures = n
		}
	}
}

// WithStoreOpener overrides how save and load destinations are resolved.
func WithStoreOpener(open func(destination string) (modelstore.Store, error)) Option {
	return func(s *Service) {
		if open != nil {
			s.openStore = open
		}
	}
}

// WithClock overrides the time source used for trained-at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a service holding an empty, untrained bundle.
func New(opts ...Option) *Service {
	s := &Service{
		logger:         zap.NewNop(),
		scorer:         scoring.NewDefault(),
		forecastParams: forecast.DefaultParams(),
		maxFeatures:    similarity.DefaultMaxFeatures,
		openStore:      modelstore.Open,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.state.Store(bundle.New())
	return s
}

// Snapshot returns the currently published bundle. It must not be modified.
func (s *Service) Snapshot() *bundle.Bundle {
	return s.state.Load()
}

// publish swaps in a new bundle and refreshes the trained gauges. Callers hold writeMu.
func (s *Service) publish(b *bundle.Bundle) {
	s.state.Store(b)
	s.metrics.SetTrained(metrics.ModelSimilarity, b.SimilarityTrained)
	s.metrics.SetTrained(metrics.ModelForecast, b.ForecastTrained)
}

// Status summarizes the published bundle.
type Status struct {
	SchemaVersion int `json:"schema_version"`

	SimilarityTrained   bool      `json:"similarity_trained"`
	SimilarityTrainedAt time.Time `json:"similarity_trained_at"`
	Suppliers           int       `json:"suppliers"`
	VocabularySize      int       `json:"vocabulary_size"`

	ForecastTrained   bool                 `json:"forecast_trained"`
	ForecastTrainedAt time.Time            `json:"forecast_trained_at"`
	Trees             int                  `json:"trees"`
	TrainingSize      int                  `json:"training_size"`
	Validation        *forecast.Validation `json:"validation,omitempty"`
}

// Status reports which sub-models are trained and their shapes.
func (s *Service) Status() Status {
	b := s.state.Load()

	st := Status{
		SchemaVersion:     b.SchemaVersion,
		SimilarityTrained: b.SimilarityTrained,
		ForecastTrained:   b.ForecastTrained,
	}

	if b.SimilarityTrained && b.Similarity != nil {
		st.SimilarityTrainedAt = b.SimilarityTrainedAt
		st.Suppliers = b.Similarity.Len()
		st.VocabularySize = b.Similarity.Vocabulary.Size()
	}

	if b.ForecastTrained && b.Forecast != nil {
		st.ForecastTrainedAt = b.ForecastTrainedAt
		st.Trees = len(b.Forecast.Trees)
		st.TrainingSize = b.Forecast.TrainingSize
		if b.Forecast.Validation.Count > 0 {
			v := b.Forecast.Validation
			st.Validation = &v
		}
	}

	return st
}
