/*
Package forecast implements demand forecasting with a seeded random forest.

The model regresses observed demand on four numeric features
(category code, season code, month, previous-period demand). Training is
deterministic for a given example set and seed.
*/
package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// numFeatures is the width of the feature vector.
const numFeatures = 4

// DemandExample is one labelled training observation.
type DemandExample struct {
	Category       int     `json:"product_category" yaml:"product_category"`
	Season         int     `json:"season" yaml:"season"`
	Month          int     `json:"month" yaml:"month"`
	PreviousDemand float64 `json:"previous_demand" yaml:"previous_demand"`
	Demand         float64 `json:"demand" yaml:"demand"`
}

// Product describes what to forecast.
type Product struct {
	Category       int     `json:"category" yaml:"category"`
	Season         int     `json:"season" yaml:"season"`
	Month          int     `json:"month" yaml:"month"`
	PreviousDemand float64 `json:"previous_demand" yaml:"previous_demand"`
}

func (p Product) features() []float64 {
	return []float64{float64(p.Category), float64(p.Season), float64(p.Month), p.PreviousDemand}
}

// Params controls forest training.
type Params struct {
	Estimators      int     `json:"estimators"`
	Seed            int64   `json:"seed"`
	ValidationRatio float64 `json:"validation_ratio"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MaxDepth        int     `json:"max_depth"` // 0 means unlimited
}

// DefaultParams returns 100 trees, seed 42 and an 80/20 split.
func DefaultParams() Params {
	return Params{
		Estimators:      100,
		Seed:            42,
		ValidationRatio: 0.2,
		MinSamplesSplit: 2,
	}
}

// Validation summarises the model on the held-out partition.
type Validation struct {
	Count int     `json:"count"`
	MAE   float64 `json:"mae"`
	RMSE  float64 `json:"rmse"`
}

// Model is a trained forest. It is immutable once Train returns.
type Model struct {
	Params       Params     `json:"params"`
	Trees        []Tree     `json:"trees"`
	TrainingSize int        `json:"training_size"`
	Validation   Validation `json:"validation"`
}

// Split partitions examples with a seeded shuffle. The validation partition
// holds ceil(ratio*n) examples but never consumes the whole set.
func Split(examples []DemandExample, ratio float64, seed int64) (train, validation []DemandExample) {
	n := len(examples)
	if n == 0 {
		return nil, nil
	}

	nVal := int(math.Ceil(ratio*float64(n) - 1e-9))
	if nVal >= n {
		nVal = n - 1
	}
	if nVal < 0 {
		nVal = 0
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	validation = make([]DemandExample, 0, nVal)
	train = make([]DemandExample, 0, n-nVal)
	for i, p := range perm {
		if i < nVal {
			validation = append(validation, examples[p])
		} else {
			train = append(train, examples[p])
		}
	}

	return train, validation
}

// Train fits a forest on the training partition of examples.
//
// Empty input returns a nil model and no error. The context is checked
// between trees.
func Train(ctx context.Context, examples []DemandExample, params Params) (*Model, error) {
	if len(examples) == 0 {
		return nil, nil
	}
	if params.Estimators <= 0 {
		return nil, fmt.Errorf("estimators must be positive, got %d", params.Estimators)
	}
	if params.MinSamplesSplit < 2 {
		params.MinSamplesSplit = 2
	}

	train, validation := Split(examples, params.ValidationRatio, params.Seed)

	x := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, e := range train {
		x[i] = Product{Category: e.Category, Season: e.Season, Month: e.Month, PreviousDemand: e.PreviousDemand}.features()
		y[i] = e.Demand
	}

	rng := rand.New(rand.NewSource(params.Seed))
	trees := make([]Tree, 0, params.Estimators)
	for t := 0; t < params.Estimators; t++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("forest training interrupted after %d trees: %w", t, err)
		}

		sample := make([]int, len(train))
		for i := range sample {
			sample[i] = rng.Intn(len(train))
		}
		trees = append(trees, growTree(x, y, sample, params, rng))
	}

	model := &Model{
		Params:       params,
		Trees:        trees,
		TrainingSize: len(train),
	}
	model.Validation = model.evaluate(validation)

	return model, nil
}

// Predict returns the mean tree output for a product.
func (m *Model) Predict(p Product) float64 {
	if m == nil || len(m.Trees) == 0 {
		return 0
	}

	x := p.features()
	var sum float64
	for _, t := range m.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(m.Trees))
}

// Forecast predicts and summarises demand for a product. A nil model yields
// the untrained zero Forecast.
func (m *Model) Forecast(p Product) Forecast {
	if m == nil || len(m.Trees) == 0 {
		return Forecast{}
	}
	return Evaluate(m.Predict(p), p.PreviousDemand)
}

func (m *Model) evaluate(examples []DemandExample) Validation {
	if len(examples) == 0 {
		return Validation{}
	}

	var absSum, sqSum float64
	for _, e := range examples {
		diff := m.Predict(Product{Category: e.Category, Season: e.Season, Month: e.Month, PreviousDemand: e.PreviousDemand}) - e.Demand
		absSum += math.Abs(diff)
		sqSum += diff * diff
	}

	n := float64(len(examples))
	return Validation{
		Count: len(examples),
		MAE:   absSum / n,
		RMSE:  math.Sqrt(sqSum / n),
	}
}

// Validate checks that a deserialized model is well formed.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("model is missing")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	for i, t := range m.Trees {
		if err := t.validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
