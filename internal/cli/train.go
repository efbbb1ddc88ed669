package cli

import (
	"log/slog"
	"time"

	"github.com/happyhackingspace/weaklabel"
	"github.com/spf13/cobra"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var datasetPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a generative label model on a dataset",
		Args:  cobra.ExactArgs(1),
		Example: `  weaklabel train model.json --dataset data/spam.json
  weaklabel train model.json --dataset data/spam.json --config weaklabel.yaml -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]
			slog.Info("Training model", "dataset", datasetPath, "output", modelPath)
			start := time.Now()
			m, err := weaklabel.Train(datasetPath, &weaklabel.TrainConfig{ConfigPath: configPath})
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := m.Save(modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath, "id", m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "data/dataset.json", "Path to dataset file")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML hyperparameter file")
	return cmd
}
