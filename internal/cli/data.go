package cli

import (
	"fmt"
	"path/filepath"

	"github.com/happyhackingspace/weaklabel/internal/storage"
	"github.com/happyhackingspace/weaklabel/labels"
	"github.com/spf13/cobra"
)

func (c *CLI) newDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect dataset files",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var dataFolder string
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List the datasets in a data folder",
		Example: `  weaklabel data list --data-folder data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dataList(dataFolder)
		},
	}
	listCmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Path to dataset folder")

	statsCmd := &cobra.Command{
		Use:     "stats <dataset>",
		Short:   "Show per-label-function coverage, overlap and conflict",
		Args:    cobra.ExactArgs(1),
		Example: `  weaklabel data stats data/spam.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dataStats(args[0])
		},
	}

	dataCmd.AddCommand(listCmd)
	dataCmd.AddCommand(statsCmd)
	return dataCmd
}

func dataList(folder string) error {
	store := storage.NewStorage(folder)
	names, err := store.Datasets()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("No datasets found in %s.\n", folder)
		return nil
	}
	for _, name := range names {
		d, err := store.Load(name)
		if err != nil {
			fmt.Printf("%-24s  error: %v\n", name, err)
			continue
		}
		rows, cols := d.Labels.Dims()
		gold := "no"
		if d.HasGold() {
			gold = "yes"
		}
		fmt.Printf("%-24s  %6d candidates  %3d label functions  %3d dependencies  gold: %s\n",
			name, rows, cols, len(d.Dependencies), gold)
	}
	return nil
}

func dataStats(path string) error {
	d, err := storage.LoadDataset(path)
	if err != nil {
		return err
	}
	rows, _ := d.Labels.Dims()
	fmt.Printf("%s: %d candidates\n", filepath.Base(path), rows)

	width := len("label function")
	for _, name := range d.LabelFunctions {
		width = max(width, len(name))
	}
	fmt.Printf("%*s  %6s  %6s  %6s  %5s  %5s\n", width, "label function", "cov", "ovl", "conf", "pos", "neg")
	for j, s := range labels.Summarize(d.Labels) {
		fmt.Printf("%*s  %5.1f%%  %5.1f%%  %5.1f%%  %5d  %5d\n", width, d.LabelFunctions[j],
			s.Coverage*100, s.Overlaps*100, s.Conflicts*100, s.Positive, s.Negative)
	}
	return nil
}
