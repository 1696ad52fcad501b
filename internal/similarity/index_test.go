package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSuppliers() []SupplierRecord {
	return []SupplierRecord{
		{CompanyName: "Northwind", BusinessType: "manufacturer", Description: "organic cotton textiles and fabrics", Category: "textiles", Rating: 0.9},
		{CompanyName: "Contoso", BusinessType: "manufacturer", Description: "organic cotton textiles and fabrics", Category: "textiles", Rating: 0.7},
		{CompanyName: "Fabrikam", BusinessType: "distributor", Description: "industrial steel fasteners and bolts", Category: "hardware", Rating: 0.8},
		{CompanyName: "Tailspin", BusinessType: "wholesaler", Description: "fresh produce and frozen seafood", Rating: 0.6},
	}
}

func trainSample(t *testing.T) *Index {
	t.Helper()
	idx, err := Train(context.Background(), sampleSuppliers(), DefaultMaxFeatures)
	require.NoError(t, err)
	require.NotNil(t, idx)
	return idx
}

func TestTrain_EmptyInputReturnsNil(t *testing.T) {
	idx, err := Train(context.Background(), nil, DefaultMaxFeatures)
	assert.NoError(t, err)
	assert.Nil(t, idx)
}

func TestTrain_MatrixProperties(t *testing.T) {
	idx := trainSample(t)

	n := idx.Len()
	require.Len(t, idx.Matrix, n)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, idx.Matrix[i][i], "diagonal %d", i)
		for j := 0; j < n; j++ {
			assert.Equal(t, idx.Matrix[i][j], idx.Matrix[j][i], "symmetry at %d,%d", i, j)
			assert.GreaterOrEqual(t, idx.Matrix[i][j], 0.0)
			assert.LessOrEqual(t, idx.Matrix[i][j], 1.0)
		}
	}

	// Same description, different company names.
	assert.Greater(t, idx.Matrix[0][1], idx.Matrix[0][2])
}

func TestTrain_DefaultCategory(t *testing.T) {
	idx := trainSample(t)
	assert.Equal(t, "general", idx.Suppliers[3].Category)
	assert.Equal(t, "textiles", idx.Suppliers[0].Category)
}

func TestTrain_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx, err := Train(ctx, sampleSuppliers(), DefaultMaxFeatures)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, idx)
}

func TestRecommend_ExactMatchRanksFirst(t *testing.T) {
	idx := trainSample(t)

	buyer := BuyerQuery{CompanyName: "Contoso", BusinessType: "manufacturer", Description: "organic cotton textiles and fabrics"}
	recs := idx.Recommend(buyer, 2)

	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].SupplierIndex)
	assert.InDelta(t, 1.0, recs[0].SimilarityScore, 1e-9)
	assert.Equal(t, "Contoso", recs[0].CompanyName)
	assert.Equal(t, 0, recs[1].SupplierIndex)
	assert.Equal(t, matchReason, recs[0].Reason)
}

func TestRecommend_SortedAndBounded(t *testing.T) {
	idx := trainSample(t)

	buyer := BuyerQuery{BusinessType: "distributor", Description: "steel bolts for cotton mills"}
	for topN := 1; topN <= 6; topN++ {
		recs := idx.Recommend(buyer, topN)
		assert.LessOrEqual(t, len(recs), topN)
		assert.LessOrEqual(t, len(recs), idx.Len())

		for i := 1; i < len(recs); i++ {
			prev, cur := recs[i-1], recs[i]
			assert.GreaterOrEqual(t, prev.SimilarityScore, cur.SimilarityScore)
			if prev.SimilarityScore == cur.SimilarityScore {
				assert.Less(t, prev.SupplierIndex, cur.SupplierIndex)
			}
		}
	}
}

func TestRecommend_TopNLargerThanCorpus(t *testing.T) {
	idx := trainSample(t)
	recs := idx.Recommend(BuyerQuery{Description: "seafood"}, 50)
	assert.Len(t, recs, idx.Len())
}

func TestRecommend_EmptyBuyerFallsBackToIndexOrder(t *testing.T) {
	idx := trainSample(t)

	recs := idx.Recommend(BuyerQuery{}, 10)
	require.Len(t, recs, 4)
	for i, rec := range recs {
		assert.Equal(t, i, rec.SupplierIndex)
		assert.Equal(t, 0.0, rec.SimilarityScore)
	}
}

func TestRecommend_OutOfVocabularyTerms(t *testing.T) {
	idx := trainSample(t)

	recs := idx.Recommend(BuyerQuery{Description: "quantum blockchain zeppelins"}, 3)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, 0.0, rec.SimilarityScore)
	}
}

func TestRecommend_NonPositiveTopN(t *testing.T) {
	idx := trainSample(t)
	assert.Empty(t, idx.Recommend(BuyerQuery{Description: "cotton"}, 0))
	assert.Empty(t, idx.Recommend(BuyerQuery{Description: "cotton"}, -3))
}

func TestRecommend_NilIndex(t *testing.T) {
	var idx *Index
	recs := idx.Recommend(BuyerQuery{Description: "cotton"}, 5)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestSimilar_ExcludesSelf(t *testing.T) {
	idx := trainSample(t)

	recs := idx.Similar(0, 10)
	require.Len(t, recs, 3)
	assert.Equal(t, 1, recs[0].SupplierIndex)
	for _, rec := range recs {
		assert.NotEqual(t, 0, rec.SupplierIndex)
		assert.Equal(t, idx.Matrix[0][rec.SupplierIndex], rec.SimilarityScore)
	}

	assert.Empty(t, idx.Similar(99, 3))
	assert.Empty(t, idx.Similar(-1, 3))
}

func TestValidate(t *testing.T) {
	idx := trainSample(t)
	require.NoError(t, idx.Validate())

	broken := *idx
	broken.Matrix = broken.Matrix[:2]
	assert.Error(t, broken.Validate())

	var missing *Index
	assert.Error(t, missing.Validate())
}

func TestCosine(t *testing.T) {
	a := SparseVector{Indices: []int{0, 2}, Values: []float64{1 / math.Sqrt2, 1 / math.Sqrt2}}
	b := SparseVector{Indices: []int{2}, Values: []float64{1}}

	assert.InDelta(t, 1/math.Sqrt2, cosine(a, b), 1e-12)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-12)
	assert.Equal(t, 0.0, cosine(a, SparseVector{}))
}
