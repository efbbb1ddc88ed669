package cli

import (
	"log/slog"
	"time"

	"github.com/happyhackingspace/weaklabel"
	"github.com/spf13/cobra"
)

type marginalsOutput struct {
	Model     string    `json:"model"`
	Marginals []float64 `json:"marginals"`
}

func (c *CLI) newRunCommand() *cobra.Command {
	var datasetPath string

	cmd := &cobra.Command{
		Use:   "run <modelfile>",
		Short: "Print P(positive) for every candidate of a dataset",
		Args:  cobra.ExactArgs(1),
		Example: `  weaklabel run model.json --dataset data/unlabeled.json

  # Silent mode
  weaklabel run model.json --dataset data/unlabeled.json -s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			m, err := weaklabel.Load(args[0])
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "id", m.ID, "trained_at", m.TrainedAt, "duration", time.Since(start))

			probs, err := m.MarginalsFile(datasetPath)
			if err != nil {
				return err
			}
			slog.Debug("Marginals computed", "candidates", len(probs), "duration", time.Since(start))
			return printJSON(marginalsOutput{Model: m.ID, Marginals: probs})
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "data/dataset.json", "Path to dataset file")
	return cmd
}
