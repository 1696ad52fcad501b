package similarity

import (
	"context"
	"fmt"
	"sort"
)

const (
	// defaultCategory is used for suppliers without a category tag.
	defaultCategory = "general"

	matchReason   = "High compatibility based on business type and requirements"
	similarReason = "Comparable offering to %s"
)

// Index is a trained similarity model. It is immutable once Train returns.
type Index struct {
	Vocabulary *Vocabulary    `json:"vocabulary"`
	Vectors    []SparseVector `json:"vectors"`
	Matrix     [][]float64    `json:"matrix"`
	Suppliers  []SupplierRef  `json:"suppliers"`
}

// Train builds an index from supplier profiles.
//
// An empty supplier list returns a nil index and no error; callers keep
// whatever state they already have. The context is checked while the
// similarity matrix is filled so large corpora can be bounded by a deadline.
func Train(ctx context.Context, suppliers []SupplierRecord, maxFeatures int) (*Index, error) {
	if len(suppliers) == 0 {
		return nil, nil
	}

	analyzer, err := sharedAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer: %w", err)
	}

	docs := make([][]string, len(suppliers))
	refs := make([]SupplierRef, len(suppliers))
	for i, s := range suppliers {
		docs[i] = analyzer.Terms(s.Text())

		category := s.Category
		if category == "" {
			category = defaultCategory
		}
		refs[i] = SupplierRef{CompanyName: s.CompanyName, Category: category}
	}

	vocab := FitVocabulary(docs, maxFeatures)

	vectors := make([]SparseVector, len(docs))
	for i, doc := range docs {
		vectors[i] = vocab.Transform(doc)
	}

	n := len(vectors)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("similarity matrix interrupted at row %d: %w", i, err)
		}
		matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			s := cosine(vectors[i], vectors[j])
			matrix[i][j] = s
			matrix[j][i] = s
		}
	}

	return &Index{
		Vocabulary: vocab,
		Vectors:    vectors,
		Matrix:     matrix,
		Suppliers:  refs,
	}, nil
}

// Len returns the number of suppliers in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Vectors)
}

// Recommend ranks suppliers against a buyer profile.
//
// The buyer text is projected into the trained vocabulary and compared with
// each supplier's own vector. Results are ordered by similarity descending,
// ties by ascending supplier index, and cut to topN.
func (idx *Index) Recommend(buyer BuyerQuery, topN int) []Recommendation {
	if idx.Len() == 0 || topN <= 0 {
		return []Recommendation{}
	}

	analyzer, err := sharedAnalyzer()
	if err != nil {
		return []Recommendation{}
	}

	query := idx.Vocabulary.Transform(analyzer.Terms(buyer.Text()))

	scores := make([]float64, len(idx.Vectors))
	for i, vec := range idx.Vectors {
		scores[i] = cosine(query, vec)
	}

	return idx.rank(scores, topN, -1, func(int) string { return matchReason })
}

// Similar ranks the other suppliers by their precomputed similarity to the
// supplier at position i.
func (idx *Index) Similar(i, topN int) []Recommendation {
	if i < 0 || i >= idx.Len() || topN <= 0 {
		return []Recommendation{}
	}

	reason := fmt.Sprintf(similarReason, idx.Suppliers[i].CompanyName)
	return idx.rank(idx.Matrix[i], topN, i, func(int) string { return reason })
}

// rank orders candidate indices by score; skip excludes one index (-1 for none).
func (idx *Index) rank(scores []float64, topN, skip int, reason func(int) string) []Recommendation {
	order := make([]int, 0, len(scores))
	for i := range scores {
		if i != skip {
			order = append(order, i)
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topN < len(order) {
		order = order[:topN]
	}

	results := make([]Recommendation, 0, len(order))
	for _, i := range order {
		results = append(results, Recommendation{
			SupplierIndex:   i,
			CompanyName:     idx.Suppliers[i].CompanyName,
			SimilarityScore: scores[i],
			Reason:          reason(i),
		})
	}

	return results
}

// Validate checks that a deserialized index is internally consistent.
func (idx *Index) Validate() error {
	if idx == nil {
		return fmt.Errorf("index is missing")
	}
	if err := idx.Vocabulary.validate(); err != nil {
		return err
	}

	n := len(idx.Vectors)
	if len(idx.Matrix) != n || len(idx.Suppliers) != n {
		return fmt.Errorf("index shape mismatch: %d vectors, %d matrix rows, %d suppliers",
			n, len(idx.Matrix), len(idx.Suppliers))
	}

	size := idx.Vocabulary.Size()
	for i, vec := range idx.Vectors {
		if len(vec.Indices) != len(vec.Values) {
			return fmt.Errorf("vector %d has %d indices but %d values", i, len(vec.Indices), len(vec.Values))
		}
		for _, term := range vec.Indices {
			if term < 0 || term >= size {
				return fmt.Errorf("vector %d references term %d outside vocabulary of %d", i, term, size)
			}
		}
		if len(idx.Matrix[i]) != n {
			return fmt.Errorf("matrix row %d has %d columns, want %d", i, len(idx.Matrix[i]), n)
		}
	}

	return nil
}
