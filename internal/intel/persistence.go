package intel

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Save persists the published bundle to destination (a file path or a
// redis:// URL). Save is exclusive with training and loading.
func (s *Service) Save(ctx context.Context, destination string) (err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	defer func() { s.metrics.ObserveArtifact("save", err) }()

	store, err := s.openStore(destination)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, s.state.Load()); err != nil {
		return fmt.Errorf("failed to save model bundle: %w", err)
	}

	s.logger.Info("model bundle saved", zap.String("location", store.Location()))
	return nil
}

// Load replaces the published bundle with the artifact at source.
//
// A missing artifact is a no-op and returns false with no error. A corrupt
// artifact returns a *bundle.DeserializationError. In both cases, and on any
// other error, the published bundle is unchanged.
func (s *Service) Load(ctx context.Context, source string) (loaded bool, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	defer func() { s.metrics.ObserveArtifact("load", err) }()

	store, err := s.openStore(source)
	if err != nil {
		return false, err
	}
	defer store.Close()

	b, err := store.Load(ctx)
	if err != nil {
		s.logger.Warn("model bundle load failed", zap.String("location", store.Location()), zap.Error(err))
		return false, err
	}
	if b == nil {
		s.logger.Debug("no model bundle to load", zap.String("location", store.Location()))
		return false, nil
	}

	s.publish(b)

	s.logger.Info("model bundle loaded",
		zap.String("location", store.Location()),
		zap.Bool("similarity_trained", b.SimilarityTrained),
		zap.Bool("forecast_trained", b.ForecastTrained),
	)
	return true, nil
}
