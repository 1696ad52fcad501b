/*
Package similarity implements supplier matching over free-text profiles.

Supplier profiles are analyzed into terms, weighted with TF-IDF against the
training corpus, and compared with cosine similarity. A trained Index holds
the vocabulary, one weighted vector per supplier, and the supplier×supplier
similarity matrix.
*/
package similarity

import "strings"

// SupplierRecord is a supplier profile used as training input.
type SupplierRecord struct {
	CompanyName  string  `json:"company_name" yaml:"company_name"`
	BusinessType string  `json:"business_type" yaml:"business_type"`
	Description  string  `json:"description" yaml:"description"`
	Category     string  `json:"category" yaml:"category"`
	Rating       float64 `json:"rating" yaml:"rating"`
}

// Text returns the blob that is analyzed for this supplier.
func (s SupplierRecord) Text() string {
	return joinText(s.CompanyName, s.BusinessType, s.Description)
}

// BuyerQuery is a buyer profile matched against the supplier corpus.
type BuyerQuery struct {
	CompanyName  string `json:"company_name" yaml:"company_name"`
	BusinessType string `json:"business_type" yaml:"business_type"`
	Description  string `json:"description" yaml:"description"`
}

// Text returns the blob that is analyzed for this buyer.
func (b BuyerQuery) Text() string {
	return joinText(b.CompanyName, b.BusinessType, b.Description)
}

// SupplierRef identifies a supplier inside a trained index.
type SupplierRef struct {
	CompanyName string `json:"company_name"`
	Category    string `json:"category"`
}

// Recommendation is a single ranked match.
type Recommendation struct {
	SupplierIndex   int     `json:"supplier_index"`
	CompanyName     string  `json:"company_name,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
	Reason          string  `json:"recommendation_reason"`
}

func joinText(parts ...string) string {
	return strings.Join(parts, " ")
}
