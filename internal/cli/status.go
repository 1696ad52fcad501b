package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/khanglvm/supply-intel/internal/intel"
	"github.com/khanglvm/supply-intel/internal/storage"
	"github.com/spf13/cobra"
)

const (
	statusRecentRuns  = 5
	statusQueryWindow = 7 * 24 * time.Hour
)

type statusOutput struct {
	Model      string                `json:"model"`
	Status     intel.Status          `json:"status"`
	Activity   bool                  `json:"activity_enabled"`
	RecentRuns []storage.TrainingRun `json:"recent_runs"`
	Queries    []storage.QueryCount  `json:"queries_last_7_days"`
}

// NewStatusCmd creates the 'status' command.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show model state and recent activity",
		Example: `  supply-intel status
  supply-intel status --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.loadModel(cmd); err != nil {
		return err
	}

	// Activity queries degrade to empty results when the log is disabled
	out := statusOutput{
		Model:    e.cfg.Model.Path,
		Status:   e.svc.Status(),
		Activity: e.store.Enabled(),
	}
	if out.RecentRuns, err = e.store.RecentTrainingRuns("", statusRecentRuns); err != nil {
		return err
	}
	if out.Queries, err = e.store.QueryCounts(time.Now().Add(-statusQueryWindow)); err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	st := out.Status
	fmt.Fprintf(w, "Model: %s\n\n", out.Model)

	if st.SimilarityTrained {
		fmt.Fprintf(w, "Supplier matching:  trained %s (%d suppliers, %d terms)\n",
			st.SimilarityTrainedAt.Local().Format(time.RFC3339), st.Suppliers, st.VocabularySize)
	} else {
		fmt.Fprintln(w, "Supplier matching:  not trained")
	}

	if st.ForecastTrained {
		fmt.Fprintf(w, "Demand forecasting: trained %s (%d trees, %d examples)\n",
			st.ForecastTrainedAt.Local().Format(time.RFC3339), st.Trees, st.TrainingSize)
		if st.Validation != nil {
			fmt.Fprintf(w, "  validation: MAE %.2f, RMSE %.2f over %d examples\n",
				st.Validation.MAE, st.Validation.RMSE, st.Validation.Count)
		}
	} else {
		fmt.Fprintln(w, "Demand forecasting: not trained")
	}

	if !out.Activity {
		fmt.Fprintln(w, "\nActivity log disabled.")
		return nil
	}

	if len(out.RecentRuns) > 0 {
		fmt.Fprintln(w, "\nRecent training runs:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tMODEL\tRECORDS\tDURATION\tRESULT")
		for _, r := range out.RecentRuns {
			result := "ok"
			if !r.Success {
				result = "failed: " + r.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				r.Timestamp.Local().Format(time.DateTime), r.Model, r.Records, r.Duration.Round(time.Millisecond), result)
		}
		tw.Flush()
	}

	if len(out.Queries) > 0 {
		fmt.Fprintln(w, "\nQueries (last 7 days):")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "OPERATION\tTOTAL\tUNTRAINED")
		for _, q := range out.Queries {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", q.Operation, q.Total, q.NotReady)
		}
		tw.Flush()
	}

	return nil
}
