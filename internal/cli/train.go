package cli

import (
	"fmt"

	"github.com/khanglvm/supply-intel/internal/forecast"
	"github.com/khanglvm/supply-intel/internal/similarity"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewTrainCmd creates the 'train' command.
func NewTrainCmd() *cobra.Command {
	var suppliersFile, demandFile string
	var fresh bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train supplier matching and/or demand forecasting and save the model",
		Long: `Train one or both models and persist the bundle to the model path.

The existing bundle is loaded first, so training only suppliers keeps a
previously trained forecast model (and vice versa). Use --fresh to start
from an empty bundle. Input files may be JSON or YAML lists.`,
		Example: `  supply-intel train --suppliers suppliers.yaml
  supply-intel train --demand history.json
  supply-intel train --suppliers suppliers.yaml --demand history.json --model redis://localhost:6379/0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, suppliersFile, demandFile, fresh)
		},
	}

	cmd.Flags().StringVarP(&suppliersFile, "suppliers", "s", "", "Supplier profiles file")
	cmd.Flags().StringVarP(&demandFile, "demand", "d", "", "Demand history file")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore the existing model bundle")

	return cmd
}

func runTrain(cmd *cobra.Command, suppliersFile, demandFile string, fresh bool) error {
	if suppliersFile == "" && demandFile == "" {
		return fmt.Errorf("nothing to train: pass --suppliers and/or --demand")
	}

	var suppliers []similarity.SupplierRecord
	if suppliersFile != "" {
		if err := decodeFile(suppliersFile, &suppliers); err != nil {
			return err
		}
	}

	var examples []forecast.DemandExample
	if demandFile != "" {
		if err := decodeFile(demandFile, &examples); err != nil {
			return err
		}
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !fresh {
		if err := e.loadModel(cmd); err != nil {
			return err
		}
	}

	if suppliersFile != "" {
		if len(suppliers) == 0 {
			fmt.Fprintf(out, "No suppliers in %s; supplier matching left unchanged.\n", suppliersFile)
		}
		if err := e.svc.TrainSupplierMatching(ctx, suppliers); err != nil {
			return err
		}
	}

	if demandFile != "" {
		if len(examples) == 0 {
			fmt.Fprintf(out, "No demand examples in %s; forecasting left unchanged.\n", demandFile)
		}
		if err := e.svc.TrainDemandForecasting(ctx, examples); err != nil {
			return err
		}
	}

	if err := e.svc.Save(ctx, e.cfg.Model.Path); err != nil {
		return err
	}

	if r := e.cfg.Storage.Retention(); r > 0 {
		if err := e.store.Cleanup(r); err != nil {
			e.logger.Warn("activity log cleanup failed", zap.Error(err))
		}
	}

	st := e.svc.Status()
	if st.SimilarityTrained {
		fmt.Fprintf(out, "Supplier matching: %d suppliers, %d terms\n", st.Suppliers, st.VocabularySize)
	}
	if st.ForecastTrained {
		fmt.Fprintf(out, "Demand forecasting: %d trees on %d examples", st.Trees, st.TrainingSize)
		if st.Validation != nil {
			fmt.Fprintf(out, " (validation MAE %.2f over %d)", st.Validation.MAE, st.Validation.Count)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Saved model to %s\n", e.cfg.Model.Path)

	return nil
}
