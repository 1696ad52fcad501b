package similarity

import (
	"fmt"
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 1000

// Vocabulary maps terms to vector positions and carries their IDF weights.
// A Vocabulary is never mutated after FitVocabulary returns.
type Vocabulary struct {
	Terms map[string]int `json:"terms"`
	IDF   []float64      `json:"idf"`
}

// SparseVector is an L2-normalised term vector; Indices are ascending.
type SparseVector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
}

// IsZero reports whether the vector has no weighted terms.
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// FitVocabulary builds a vocabulary from analyzed documents.
//
// When more than maxFeatures distinct terms occur, the terms with the highest
// corpus frequency are kept (ties broken lexically). Kept terms are indexed
// in lexical order. IDF uses the smoothed form ln((1+n)/(1+df)) + 1.
func FitVocabulary(docs [][]string, maxFeatures int) *Vocabulary {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			corpusFreq[term]++
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}

	terms := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		terms = append(terms, term)
	}

	if len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
				return corpusFreq[terms[i]] > corpusFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	vocab := &Vocabulary{
		Terms: make(map[string]int, len(terms)),
		IDF:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		vocab.Terms[term] = i
		vocab.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return vocab
}

// Size returns the number of terms in the vocabulary.
func (v *Vocabulary) Size() int {
	if v == nil {
		return 0
	}
	return len(v.IDF)
}

// Transform projects analyzed terms into the vocabulary. Terms outside the
// vocabulary contribute nothing.
func (v *Vocabulary) Transform(terms []string) SparseVector {
	if v == nil || len(terms) == 0 {
		return SparseVector{}
	}

	counts := make(map[int]float64)
	for _, term := range terms {
		if idx, ok := v.Terms[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.IDF[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}

	norm = math.Sqrt(norm)
	for i := range vec.Values {
		vec.Values[i] /= norm
	}

	return vec
}

// validate checks internal consistency after deserialization.
func (v *Vocabulary) validate() error {
	if v == nil {
		return fmt.Errorf("vocabulary is missing")
	}
	if len(v.Terms) != len(v.IDF) {
		return fmt.Errorf("vocabulary has %d terms but %d idf weights", len(v.Terms), len(v.IDF))
	}
	for term, idx := range v.Terms {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("term %q has out-of-range index %d", term, idx)
		}
	}
	return nil
}

// cosine returns the cosine similarity of two normalised vectors, clamped to [0,1].
func cosine(a, b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return clamp01(dot)
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
