package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/happyhackingspace/weaklabel"
	"github.com/spf13/cobra"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var datasetPath string
	var configPath string
	var threshold float64

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Score both label models against a dataset's gold labels",
		Example: `  weaklabel evaluate --dataset data/spam.json --threshold 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Evaluating", "dataset", datasetPath, "threshold", threshold)
			start := time.Now()
			result, err := weaklabel.Evaluate(datasetPath, &weaklabel.EvalConfig{
				ConfigPath: configPath,
				Threshold:  &threshold,
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Printf("Generative model accuracy: %.1f%% (%d/%d)\n",
				result.GenerativeAccuracy*100, result.GenerativeCorrect, result.Total)
			fmt.Printf("Noise-aware model accuracy: %.1f%% (%d/%d)\n",
				result.NoiseAwareAccuracy*100, result.NoiseAwareCorrect, result.Total)
			printLFReport(result.LabelFunctions)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "data/dataset.json", "Path to dataset file with gold labels")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML hyperparameter file")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Marginals above this count as positive")
	return cmd
}

func printLFReport(lfs []weaklabel.LFResult) {
	width := len("label function")
	for _, lf := range lfs {
		width = max(width, len(lf.Name))
	}
	fmt.Printf("\nPer-label-function metrics:\n")
	fmt.Printf("%*s  %6s  %6s  %6s  %6s  %8s\n", width, "label function", "cov", "ovl", "conf", "acc", "weight")
	for _, lf := range lfs {
		fmt.Printf("%*s  %5.1f%%  %5.1f%%  %5.1f%%  %5.1f%%  %8.3f\n", width, lf.Name,
			lf.Coverage*100, lf.Overlaps*100, lf.Conflicts*100, lf.EmpiricalAccuracy*100, lf.LearnedAccuracy)
	}
}
