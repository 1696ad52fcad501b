package cli

import (
	"fmt"

	"github.com/khanglvm/supply-intel/internal/similarity"
	"github.com/spf13/cobra"
)

type recommendOutput struct {
	Ready           bool                        `json:"ready"`
	Recommendations []similarity.Recommendation `json:"recommendations"`
}

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd() *cobra.Command {
	var buyerFile, suppliersFile string
	var buyer similarity.BuyerQuery
	var topN int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend suppliers for a buyer profile",
		Long: `Rank trained suppliers by text similarity to a buyer profile.

If the model has no supplier index yet and --suppliers is given, the index is
trained from that file first and saved.`,
		Example: `  supply-intel recommend --description "steel castings for automotive parts"
  supply-intel recommend --buyer buyer.yaml --top 10 --json
  supply-intel recommend --buyer buyer.yaml --suppliers suppliers.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if buyerFile != "" {
				if err := decodeFile(buyerFile, &buyer); err != nil {
					return err
				}
			}
			return runRecommend(cmd, buyer, suppliersFile, topN, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&buyerFile, "buyer", "b", "", "Buyer profile file (JSON or YAML)")
	cmd.Flags().StringVar(&buyer.CompanyName, "company", "", "Buyer company name")
	cmd.Flags().StringVar(&buyer.BusinessType, "business-type", "", "Buyer business type")
	cmd.Flags().StringVar(&buyer.Description, "description", "", "Buyer description")
	cmd.Flags().StringVarP(&suppliersFile, "suppliers", "s", "", "Train from this supplier file if the model is untrained")
	cmd.Flags().IntVarP(&topN, "top", "n", 0, "Number of suppliers to return (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runRecommend(cmd *cobra.Command, buyer similarity.BuyerQuery, suppliersFile string, topN int, jsonOutput bool) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.loadModel(cmd); err != nil {
		return err
	}

	if suppliersFile != "" {
		var suppliers []similarity.SupplierRecord
		if err := decodeFile(suppliersFile, &suppliers); err != nil {
			return err
		}

		trained, err := e.svc.EnsureSupplierMatching(cmd.Context(), suppliers)
		if err != nil {
			return err
		}
		if trained {
			if err := e.svc.Save(cmd.Context(), e.cfg.Model.Path); err != nil {
				return err
			}
		}
	}

	if topN == 0 {
		topN = e.cfg.Similarity.DefaultTopN
	}

	recs, ready := e.svc.Recommend(buyer, topN)
	return printRanked(cmd, recs, ready, jsonOutput)
}

// NewSimilarCmd creates the 'similar' command.
func NewSimilarCmd() *cobra.Command {
	var index, topN int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "similar",
		Short: "List suppliers similar to a trained supplier",
		Example: `  supply-intel similar --supplier 3
  supply-intel similar --supplier 0 --top 10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimilar(cmd, index, topN, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&index, "supplier", "i", 0, "Supplier index in the training set")
	cmd.Flags().IntVarP(&topN, "top", "n", 0, "Number of suppliers to return (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.MarkFlagRequired("supplier")

	return cmd
}

func runSimilar(cmd *cobra.Command, index, topN int, jsonOutput bool) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.loadModel(cmd); err != nil {
		return err
	}

	if topN == 0 {
		topN = e.cfg.Similarity.DefaultTopN
	}

	recs, ready := e.svc.SimilarSuppliers(index, topN)
	return printRanked(cmd, recs, ready, jsonOutput)
}

func printRanked(cmd *cobra.Command, recs []similarity.Recommendation, ready, jsonOutput bool) error {
	out := cmd.OutOrStdout()

	if jsonOutput {
		return writeJSON(out, recommendOutput{Ready: ready, Recommendations: recs})
	}

	if !ready {
		fmt.Fprintln(cmd.ErrOrStderr(), "Supplier matching is not trained. Run 'supply-intel train --suppliers FILE' first.")
		return nil
	}

	printRecommendations(out, recs)
	return nil
}
