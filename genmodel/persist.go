package genmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/factorgraph"
)

// File is the serialized form of a trained model.
type File struct {
	ID             string          `json:"id"`
	TrainedAt      time.Time       `json:"trained_at"`
	LabelFunctions []string        `json:"label_functions"`
	Config         Config          `json:"config"`
	Weights        *LearnedWeights `json:"weights"`
}

// Model rebuilds the trained model the file describes.
func (f *File) Model() (*Model, error) {
	if f.Weights == nil {
		return nil, ErrModelNotTrained
	}
	n := len(f.LabelFunctions)
	if got := f.Weights.LabelFunctions(); got != n {
		return nil, fmt.Errorf("%w: %d accuracy weights for %d label functions", ErrShape, got, n)
	}
	for g, w := range f.Weights.Optional {
		if w != nil && len(w) != n {
			return nil, fmt.Errorf("%w: %s has %d weights for %d label functions",
				ErrShape, factorgraph.OptionalGroup(g), len(w), n)
		}
	}
	for kind, edges := range f.Weights.Dependencies {
		for _, e := range edges {
			if e.J < 0 || e.J >= n || e.K < 0 || e.K >= n || e.J == e.K {
				return nil, fmt.Errorf("%w: %s edge (%d, %d) outside %d label functions",
					ErrShape, depgraph.Kind(kind), e.J, e.K, n)
			}
		}
	}
	return FromWeights(f.Config, f.Weights), nil
}

// SaveModel serializes the model file to JSON.
func SaveModel(f *File, path string) error {
	data, err := MarshalModel(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadModel deserializes a model file from JSON.
func LoadModel(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalModel(data)
}

// MarshalModel serializes the model file to indented JSON bytes.
func MarshalModel(f *File) ([]byte, error) {
	if f == nil || f.Weights == nil {
		return nil, errors.New("genmodel: nothing to save, model is not trained")
	}
	return json.MarshalIndent(f, "", "  ")
}

// UnmarshalModel deserializes a model file from JSON bytes.
func UnmarshalModel(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
