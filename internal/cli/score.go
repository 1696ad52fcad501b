package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/khanglvm/supply-intel/internal/scoring"
	"github.com/spf13/cobra"
)

type scoreOutput struct {
	Score          float64           `json:"ai_score"`
	Breakdown      scoring.Breakdown `json:"score_breakdown"`
	Recommendation string            `json:"recommendation"`
}

// NewScoreCmd creates the 'score' command.
func NewScoreCmd() *cobra.Command {
	var supplierFile, ordersFile, statuses string
	var rating, responseHours, quality float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a supplier from rating, order history, responsiveness and quality",
		Long: `Compute the weighted supplier score in [0,1].

The supplier comes from --supplier FILE or the --rating, --response-hours and
--quality flags; order history from --orders FILE or --statuses. Without
order history the completion factor is left out, capping the score at 0.7.`,
		Example: `  supply-intel score --rating 0.9 --statuses delivered,delivered,cancelled
  supply-intel score --supplier vendor.yaml --orders orders.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var supplier scoring.Supplier
			if supplierFile != "" {
				if err := decodeFile(supplierFile, &supplier); err != nil {
					return err
				}
			} else {
				supplier.Rating = rating
				if cmd.Flags().Changed("response-hours") {
					supplier.AvgResponseTime = &responseHours
				}
				if cmd.Flags().Changed("quality") {
					supplier.QualityScore = &quality
				}
			}

			var orders []scoring.Order
			if ordersFile != "" {
				if err := decodeFile(ordersFile, &orders); err != nil {
					return err
				}
			}
			orders = append(orders, parseStatuses(statuses)...)

			return runScore(cmd, supplier, orders, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&supplierFile, "supplier", "", "Supplier file (JSON or YAML)")
	cmd.Flags().StringVar(&ordersFile, "orders", "", "Order history file (JSON or YAML list)")
	cmd.Flags().StringVar(&statuses, "statuses", "", "Comma-separated order statuses")
	cmd.Flags().Float64Var(&rating, "rating", 0, "Supplier rating in [0,1]")
	cmd.Flags().Float64Var(&responseHours, "response-hours", 0, "Average response time in hours (default from config)")
	cmd.Flags().Float64Var(&quality, "quality", 0, "Quality score in [0,1] (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func parseStatuses(s string) []scoring.Order {
	var orders []scoring.Order
	for _, part := range strings.Split(s, ",") {
		if status := strings.TrimSpace(part); status != "" {
			orders = append(orders, scoring.Order{Status: strings.ToLower(status)})
		}
	}
	return orders
}

func runScore(cmd *cobra.Command, supplier scoring.Supplier, orders []scoring.Order, jsonOutput bool) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	b := e.svc.ScoreBreakdown(supplier, orders)
	out := scoreOutput{
		Score:          round2(b.Total),
		Breakdown:      b,
		Recommendation: scoreVerdict(b.Total),
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Score: %.2f (%s)\n", b.Total, out.Recommendation)
	fmt.Fprintf(w, "  rating:         %.3f\n", b.Rating)
	if b.HasHistory {
		fmt.Fprintf(w, "  completion:     %.3f (%d orders)\n", b.Completion, len(orders))
	} else {
		fmt.Fprintf(w, "  completion:     n/a (no order history)\n")
	}
	fmt.Fprintf(w, "  responsiveness: %.3f\n", b.Responsiveness)
	fmt.Fprintf(w, "  quality:        %.3f\n", b.Quality)
	return nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
