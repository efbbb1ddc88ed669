// Package storage reads and writes label datasets: label function names,
// the label matrix, optional gold labels and label function dependencies.
package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/labels"
)

// Dataset is a label matrix with its metadata.
type Dataset struct {
	LabelFunctions []string
	Labels         *labels.Matrix
	Gold           []int // per candidate: 1, -1, or 0 when unknown; nil if absent
	Dependencies   []depgraph.Dependency
}

// HasGold reports whether any candidate carries a gold label.
func (d *Dataset) HasGold() bool {
	for _, g := range d.Gold {
		if g != 0 {
			return true
		}
	}
	return false
}

// datasetJSON is the on-disk layout of a dataset file.
type datasetJSON struct {
	LabelFunctions []string         `json:"label_functions"`
	Labels         [][]int          `json:"labels"`
	Gold           []int            `json:"gold,omitempty"`
	Dependencies   []dependencyJSON `json:"dependencies,omitempty"`
}

type dependencyJSON struct {
	LF1  string `json:"lf1"`
	LF2  string `json:"lf2"`
	Kind string `json:"kind"`
}

// Storage wraps a folder of dataset files.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given data folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// Datasets lists the dataset names (file names without .json) in sorted order.
func (s *Storage) Datasets() ([]string, error) {
	entries, err := os.ReadDir(s.Folder)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the named dataset from the folder.
func (s *Storage) Load(name string) (*Dataset, error) {
	return LoadDataset(filepath.Join(s.Folder, name+".json"))
}

// LoadDataset reads a dataset file. Label function names default to lf_0,
// lf_1, ... when the file does not list them; dependencies refer to label
// functions by name.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw datasetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	L, err := labels.New(raw.Labels)
	if err == nil {
		err = L.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	rows, cols := L.Dims()

	names := raw.LabelFunctions
	if len(names) == 0 {
		names = make([]string, cols)
		for j := range names {
			names[j] = fmt.Sprintf("lf_%d", j)
		}
	}
	if rows > 0 && len(names) != cols {
		return nil, fmt.Errorf("dataset %s: %d label function names for %d columns", path, len(names), cols)
	}

	alphabet := NewAlphabet()
	for _, name := range names {
		if alphabet.Get(name) >= 0 {
			return nil, fmt.Errorf("dataset %s: duplicate label function %q", path, name)
		}
		alphabet.Add(name)
	}

	if raw.Gold != nil && len(raw.Gold) != rows {
		return nil, fmt.Errorf("dataset %s: %d gold labels for %d candidates", path, len(raw.Gold), rows)
	}
	for i, g := range raw.Gold {
		if g < labels.Negative || g > labels.Positive {
			return nil, fmt.Errorf("dataset %s: gold label %d of candidate %d", path, g, i)
		}
	}

	deps := make([]depgraph.Dependency, 0, len(raw.Dependencies))
	for _, d := range raw.Dependencies {
		kind, err := depgraph.ParseKind(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", path, err)
		}
		j, k := alphabet.Get(d.LF1), alphabet.Get(d.LF2)
		if j < 0 || k < 0 {
			return nil, fmt.Errorf("dataset %s: dependency (%s, %s) names an unknown label function", path, d.LF1, d.LF2)
		}
		deps = append(deps, depgraph.Dependency{J: j, K: k, Kind: kind})
	}

	slog.Debug("Loaded dataset", "path", path, "candidates", rows, "label_functions", len(names),
		"dependencies", len(deps))
	return &Dataset{
		LabelFunctions: alphabet.ToStr,
		Labels:         L,
		Gold:           raw.Gold,
		Dependencies:   deps,
	}, nil
}

// SaveDataset writes d to path.
func SaveDataset(d *Dataset, path string) error {
	rows, _ := d.Labels.Dims()
	raw := datasetJSON{
		LabelFunctions: d.LabelFunctions,
		Labels:         make([][]int, rows),
		Gold:           d.Gold,
	}
	for i := range rows {
		raw.Labels[i] = d.Labels.Row(i)
	}
	for _, dep := range d.Dependencies {
		raw.Dependencies = append(raw.Dependencies, dependencyJSON{
			LF1:  d.LabelFunctions[dep.J],
			LF2:  d.LabelFunctions[dep.K],
			Kind: dep.Kind.String(),
		})
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
