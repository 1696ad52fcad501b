package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/khanglvm/supply-intel/internal/similarity"
)

// confidenceLevel buckets a forecast confidence for display.
func confidenceLevel(confidence float64) string {
	switch {
	case confidence > 0.8:
		return "high"
	case confidence > 0.6:
		return "medium"
	default:
		return "low"
	}
}

// scoreVerdict buckets a supplier score for display.
func scoreVerdict(score float64) string {
	switch {
	case score > 0.8:
		return "Highly recommended"
	case score > 0.6:
		return "Recommended"
	default:
		return "Consider alternatives"
	}
}

func printRecommendations(w io.Writer, recs []similarity.Recommendation) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No suppliers to recommend.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tINDEX\tSUPPLIER\tSCORE\tREASON")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.4f\t%s\n", i+1, r.SupplierIndex, r.CompanyName, r.SimilarityScore, r.Reason)
	}
	tw.Flush()
}
