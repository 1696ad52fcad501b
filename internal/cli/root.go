package cli

import (
	"github.com/khanglvm/supply-intel/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the supply-intel command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "supply-intel",
		Short: "Supplier matching, demand forecasting and supplier scoring",
		Long: `supply-intel is the analytics engine behind a B2B supply-chain marketplace.

It trains two models and persists them as one artifact:
  • supplier matching  - TF-IDF similarity between buyer and supplier profiles
  • demand forecasting - random forest over category, season, month and prior demand

Supplier scoring is a fixed weighted formula and needs no training.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(root)

	root.AddCommand(NewTrainCmd())
	root.AddCommand(NewRecommendCmd())
	root.AddCommand(NewSimilarCmd())
	root.AddCommand(NewForecastCmd())
	root.AddCommand(NewScoreCmd())
	root.AddCommand(NewStatusCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewVersionCmd())

	return root
}
