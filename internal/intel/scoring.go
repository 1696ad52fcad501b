package intel

import (
	"fmt"

	"github.com/khanglvm/supply-intel/internal/scoring"
)

// ScoreSupplier returns the supplier score in [0,1]. It needs no training.
func (s *Service) ScoreSupplier(supplier scoring.Supplier, orders []scoring.Order) float64 {
	return s.ScoreBreakdown(supplier, orders).Total
}

// ScoreBreakdown returns every weighted component of the supplier score.
func (s *Service) ScoreBreakdown(supplier scoring.Supplier, orders []scoring.Order) scoring.Breakdown {
	b := s.scorer.Breakdown(supplier, orders)
	s.observeQuery("score", fmt.Sprintf("%v/%d", supplier.Rating, len(orders)), 1, true)
	return b
}
