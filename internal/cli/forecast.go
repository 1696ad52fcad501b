package cli

import (
	"fmt"

	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/spf13/cobra"
)

type forecastOutput struct {
	forecast.Forecast
	ConfidenceLevel string `json:"confidence_level,omitempty"`
}

// NewForecastCmd creates the 'forecast' command.
func NewForecastCmd() *cobra.Command {
	var product forecast.Product
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast demand for a product",
		Example: `  supply-intel forecast --category 1 --season 1 --month 1 --previous 125
  supply-intel forecast --category 2 --season 3 --month 8 --previous 40 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, product, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&product.Category, "category", 0, "Product category code")
	cmd.Flags().IntVar(&product.Season, "season", 0, "Season code")
	cmd.Flags().IntVar(&product.Month, "month", 0, "Month (1-12)")
	cmd.Flags().Float64Var(&product.PreviousDemand, "previous", 0, "Previous period demand")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runForecast(cmd *cobra.Command, product forecast.Product, jsonOutput bool) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.loadModel(cmd); err != nil {
		return err
	}

	f := e.svc.ForecastDemand(product)
	out := forecastOutput{Forecast: f}
	if f.Trained {
		out.ConfidenceLevel = confidenceLevel(f.Confidence)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	if !f.Trained {
		fmt.Fprintln(cmd.ErrOrStderr(), "Demand forecasting is not trained. Run 'supply-intel train --demand FILE' first.")
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Forecast:   %d\n", f.Forecast)
	fmt.Fprintf(w, "Confidence: %.2f (%s)\n", f.Confidence, out.ConfidenceLevel)
	fmt.Fprintf(w, "Trend:      %s\n", f.Trend)
	return nil
}
