package cli

import (
	"log/slog"
	"time"

	"github.com/happyhackingspace/weaklabel"
	"github.com/spf13/cobra"
)

func (c *CLI) newNoiseCommand() *cobra.Command {
	var datasetPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "noise",
		Short: "Fit the noise-aware linear model to a dataset's votes",
		Example: `  weaklabel noise --dataset data/spam.json
  weaklabel noise --dataset data/spam.json --config weaklabel.yaml -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Training noise-aware model", "dataset", datasetPath)
			start := time.Now()
			result, err := weaklabel.NoiseAware(datasetPath, &weaklabel.TrainConfig{
				ConfigPath: configPath,
				Verbose:    c.verbose,
			})
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start),
				"steps", result.Report.Steps, "converged", result.Report.Converged)
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "data/dataset.json", "Path to dataset file")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML hyperparameter file")
	return cmd
}
