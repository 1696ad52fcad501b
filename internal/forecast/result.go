package forecast

import "math"

const (
	minConfidence = 0.5
	maxConfidence = 0.95
)

// Trend is the direction of a forecast relative to previous demand.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// Forecast is the result of a demand query. The zero value is the untrained
// result: no forecast, no confidence, no trend, Trained false.
type Forecast struct {
	Forecast   int     `json:"forecast"`
	Confidence float64 `json:"confidence"`
	Trend      Trend   `json:"trend,omitempty"`
	Trained    bool    `json:"trained"`
}

// Evaluate turns a raw model output into a Forecast.
//
// The point forecast is truncated toward zero, not rounded. Confidence is
// 1 - |raw-previous|/max(raw,1) clamped to [0.5, 0.95]. A forecast equal to
// previous demand reports a decreasing trend.
func Evaluate(raw, previous float64) Forecast {
	confidence := 1 - math.Abs(raw-previous)/math.Max(raw, 1)
	confidence = math.Min(maxConfidence, math.Max(minConfidence, confidence))

	trend := TrendDecreasing
	if raw > previous {
		trend = TrendIncreasing
	}

	return Forecast{
		Forecast:   int(raw),
		Confidence: confidence,
		Trend:      trend,
		Trained:    true,
	}
}
