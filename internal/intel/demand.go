package intel

import (
	"context"
	"fmt"
	"time"

	"github.com/khanglvm/supply-intel/internal/activity"
	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/khanglvm/supply-intel/internal/metrics"
	"go.uber.org/zap"
)

// TrainDemandForecasting fits the forecast model on examples.
//
// Empty input is a no-op that leaves the published bundle untouched.
func (s *Service) TrainDemandForecasting(ctx context.Context, examples []forecast.DemandExample) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if len(examples) == 0 {
		s.logger.Debug("demand forecasting training skipped: no examples")
		return nil
	}

	start := time.Now()
	model, err := forecast.Train(ctx, examples, s.forecastParams)
	elapsed := time.Since(start)

	s.metrics.ObserveTraining(metrics.ModelForecast, len(examples), elapsed, err)
	s.tracker.Track(activity.NewTrainingEvent(metrics.ModelForecast, len(examples), elapsed, err))

	if err != nil {
		s.logger.Warn("demand forecasting training failed", zap.Int("examples", len(examples)), zap.Error(err))
		return fmt.Errorf("failed to train demand forecasting: %w", err)
	}

	s.publish(s.state.Load().WithForecast(model, s.now()))

	s.logger.Info("demand forecasting trained",
		zap.Int("examples", len(examples)),
		zap.Int("training_size", model.TrainingSize),
		zap.Int("trees", len(model.Trees)),
		zap.Float64("validation_mae", model.Validation.MAE),
		zap.Duration("duration", elapsed),
	)

	return nil
}

// ForecastDemand predicts demand for a product. Before training it returns
// the zero Forecast with Trained false.
func (s *Service) ForecastDemand(p forecast.Product) forecast.Forecast {
	b := s.state.Load()
	if !b.ForecastTrained {
		s.observeQuery("forecast", fmt.Sprintf("%+v", p), 0, false)
		return forecast.Forecast{}
	}

	f := b.Forecast.Forecast(p)
	s.observeQuery("forecast", fmt.Sprintf("%+v", p), 1, true)
	return f
}
