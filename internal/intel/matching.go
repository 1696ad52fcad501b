package intel

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/khanglvm/supply-intel/internal/activity"
	"github.com/khanglvm/supply-intel/internal/metrics"
	"github.com/khanglvm/supply-intel/internal/similarity"
	"go.uber.org/zap"
)

// TrainSupplierMatching rebuilds the similarity index from suppliers.
//
// An empty supplier list is a no-op: the published bundle, including its
// trained flag, is left untouched. On error the published bundle is also
// left untouched.
func (s *Service) TrainSupplierMatching(ctx context.Context, suppliers []similarity.SupplierRecord) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.trainSupplierMatchingLocked(ctx, suppliers)
}

func (s *Service) trainSupplierMatchingLocked(ctx context.Context, suppliers []similarity.SupplierRecord) error {
	if len(suppliers) == 0 {
		s.logger.Debug("supplier matching training skipped: no suppliers")
		return nil
	}

	start := time.Now()
	idx, err := similarity.Train(ctx, suppliers, s.maxFeatures)
	elapsed := time.Since(start)

	s.metrics.ObserveTraining(metrics.ModelSimilarity, len(suppliers), elapsed, err)
	s.tracker.Track(activity.NewTrainingEvent(metrics.ModelSimilarity, len(suppliers), elapsed, err))

	if err != nil {
		s.logger.Warn("supplier matching training failed", zap.Int("suppliers", len(suppliers)), zap.Error(err))
		return fmt.Errorf("failed to train supplier matching: %w", err)
	}

	s.publish(s.state.Load().WithSimilarity(idx, s.now()))

	s.logger.Info("supplier matching trained",
		zap.Int("suppliers", idx.Len()),
		zap.Int("vocabulary", idx.Vocabulary.Size()),
		zap.Duration("duration", elapsed),
	)

	return nil
}

// EnsureSupplierMatching trains from suppliers only if no similarity index
// is published yet. It reports whether training ran.
func (s *Service) EnsureSupplierMatching(ctx context.Context, suppliers []similarity.SupplierRecord) (bool, error) {
	if s.state.Load().SimilarityTrained {
		return false, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Another writer may have trained while we waited
	if s.state.Load().SimilarityTrained || len(suppliers) == 0 {
		return false, nil
	}

	if err := s.trainSupplierMatchingLocked(ctx, suppliers); err != nil {
		return false, err
	}
	return true, nil
}

// Recommend ranks suppliers against a buyer profile.
//
// The boolean is false when no similarity index is trained; the slice is
// then empty. topN larger than the supplier count returns every supplier.
func (s *Service) Recommend(buyer similarity.BuyerQuery, topN int) ([]similarity.Recommendation, bool) {
	b := s.state.Load()
	if !b.SimilarityTrained {
		s.observeQuery("recommend", buyer.Text(), 0, false)
		return []similarity.Recommendation{}, false
	}

	recs := b.Similarity.Recommend(buyer, topN)
	s.observeQuery("recommend", buyer.Text(), len(recs), true)
	return recs, true
}

// SimilarSuppliers ranks other suppliers by similarity to the supplier at
// position i in the training set. An out-of-range i returns an empty slice.
func (s *Service) SimilarSuppliers(i, topN int) ([]similarity.Recommendation, bool) {
	b := s.state.Load()
	if !b.SimilarityTrained {
		s.observeQuery("similar", strconv.Itoa(i), 0, false)
		return []similarity.Recommendation{}, false
	}

	recs := b.Similarity.Similar(i, topN)
	s.observeQuery("similar", strconv.Itoa(i), len(recs), true)
	return recs, true
}

func (s *Service) observeQuery(operation, input string, results int, ready bool) {
	s.metrics.ObserveQuery(operation, ready)
	s.tracker.Track(activity.NewQueryEvent(operation, input, results, ready))

	if !ready {
		s.logger.Debug("query against untrained model", zap.String("operation", operation))
	}
}
