/*
Package scoring computes a supplier quality score from rating, order
history, responsiveness and quality signals.

Formula: 0.4*rating + 0.3*completion + 0.2*responsiveness + 0.1*quality,
clamped to [0,1]. The completion term is left out entirely when there is no
order history.
*/
package scoring

import "math"

const (
	// StatusDelivered is the order status counted as completed.
	StatusDelivered = "delivered"

	// responseFloorHours is the response time that earns full marks.
	responseFloorHours = 1.0

	// responseWindowHours is how many hours past the floor it takes to reach zero.
	responseWindowHours = 48.0
)

// Weights are the factor weights of the score.
type Weights struct {
	Rating         float64 `json:"rating" mapstructure:"rating" yaml:"rating"`
	Completion     float64 `json:"completion" mapstructure:"completion" yaml:"completion"`
	Responsiveness float64 `json:"responsiveness" mapstructure:"responsiveness" yaml:"responsiveness"`
	Quality        float64 `json:"quality" mapstructure:"quality" yaml:"quality"`
}

// Defaults fill in optional supplier fields.
type Defaults struct {
	ResponseHours float64 `json:"response_hours" mapstructure:"response_hours" yaml:"response_hours"`
	Quality       float64 `json:"quality" mapstructure:"quality" yaml:"quality"`
}

// DefaultWeights returns 0.4 / 0.3 / 0.2 / 0.1.
func DefaultWeights() Weights {
	return Weights{Rating: 0.4, Completion: 0.3, Responsiveness: 0.2, Quality: 0.1}
}

// DefaultDefaults returns a 24 hour response time and 0.8 quality.
func DefaultDefaults() Defaults {
	return Defaults{ResponseHours: 24, Quality: 0.8}
}

// Supplier holds the scoring inputs. Rating is expected in [0,1]; nil
// optional fields take the scorer defaults.
type Supplier struct {
	Rating          float64  `json:"rating" yaml:"rating"`
	AvgResponseTime *float64 `json:"avg_response_time,omitempty" yaml:"avg_response_time,omitempty"`
	QualityScore    *float64 `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
}

// Order is a past order; only its status is used.
type Order struct {
	Status string `json:"status" yaml:"status"`
}

// Breakdown lists the weighted contribution of each factor.
type Breakdown struct {
	Rating         float64 `json:"rating_factor"`
	Completion     float64 `json:"completion_rate"`
	Responsiveness float64 `json:"response_time"`
	Quality        float64 `json:"quality"`
	HasHistory     bool    `json:"has_history"`
	Total          float64 `json:"total"`
}

// Scorer is a stateless weighted-formula scorer.
type Scorer struct {
	weights  Weights
	defaults Defaults
}

// New creates a scorer with explicit weights and defaults.
func New(weights Weights, defaults Defaults) *Scorer {
	return &Scorer{weights: weights, defaults: defaults}
}

// NewDefault creates a scorer with the standard weights and defaults.
func NewDefault() *Scorer {
	return New(DefaultWeights(), DefaultDefaults())
}

// Score returns the supplier score in [0,1].
func (s *Scorer) Score(supplier Supplier, orders []Order) float64 {
	return s.Breakdown(supplier, orders).Total
}

// Breakdown computes every weighted component and the clamped total.
// Individual components are not clamped; only the total is.
func (s *Scorer) Breakdown(supplier Supplier, orders []Order) Breakdown {
	b := Breakdown{
		Rating:         s.weights.Rating * supplier.Rating,
		Responsiveness: s.weights.Responsiveness * responsiveness(valueOr(supplier.AvgResponseTime, s.defaults.ResponseHours)),
		Quality:        s.weights.Quality * valueOr(supplier.QualityScore, s.defaults.Quality),
	}

	if len(orders) > 0 {
		b.HasHistory = true
		b.Completion = s.weights.Completion * completionRate(orders)
	}

	b.Total = clamp(b.Rating+b.Completion+b.Responsiveness+b.Quality, 0, 1)
	return b
}

// completionRate is the share of delivered orders.
func completionRate(orders []Order) float64 {
	delivered := 0
	for _, o := range orders {
		if o.Status == StatusDelivered {
			delivered++
		}
	}
	return float64(delivered) / float64(len(orders))
}

// responsiveness maps hours to [0,1]: 1 at one hour, 0 at 49 hours or more.
func responsiveness(hours float64) float64 {
	return clamp(1-(hours-responseFloorHours)/responseWindowHours, 0, 1)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Min(hi, math.Max(lo, x))
}
