// Package weaklabel turns noisy votes from label functions into calibrated
// probabilities for each candidate's true class.
//
// It learns how accurate each label function is, and how label functions
// depend on each other, from the votes alone. No ground truth is needed.
//
//	m, _ := weaklabel.Train("data/spam.json", nil)
//	_ = m.Save("model.json")
//	probs, _ := m.MarginalsFile("data/unlabeled.json")
//	for i, p := range probs {
//	    fmt.Println(i, p) // P(candidate i is positive)
//	}
package weaklabel

import (
	"fmt"
	"slices"
	"time"

	"github.com/happyhackingspace/weaklabel/genmodel"
	"github.com/happyhackingspace/weaklabel/internal/storage"
	"github.com/happyhackingspace/weaklabel/labels"
)

// Model is a trained generative label model.
type Model struct {
	ID             string
	TrainedAt      time.Time
	LabelFunctions []string

	gm *genmodel.Model
}

// Load loads a trained model from a model file.
func Load(path string) (*Model, error) {
	f, err := genmodel.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	gm, err := f.Model()
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %s: %w", path, err)
	}
	return &Model{
		ID:             f.ID,
		TrainedAt:      f.TrainedAt,
		LabelFunctions: f.LabelFunctions,
		gm:             gm,
	}, nil
}

// Save writes the model to a model file.
func (m *Model) Save(path string) error {
	if m.gm == nil || !m.gm.Trained() {
		return fmt.Errorf("weaklabel: model not trained")
	}
	f := &genmodel.File{
		ID:             m.ID,
		TrainedAt:      m.TrainedAt,
		LabelFunctions: m.LabelFunctions,
		Config:         m.gm.Config(),
		Weights:        m.gm.Weights(),
	}
	if err := genmodel.SaveModel(f, path); err != nil {
		return fmt.Errorf("weaklabel: %w", err)
	}
	return nil
}

// Weights returns the learned weights.
func (m *Model) Weights() *genmodel.LearnedWeights {
	if m.gm == nil {
		return nil
	}
	return m.gm.Weights()
}

// Marginals returns P(positive) for each row of votes. Rows must have one
// vote per label function, in the model's label function order.
func (m *Model) Marginals(rows [][]int) ([]float64, error) {
	if m.gm == nil {
		return nil, fmt.Errorf("weaklabel: model not trained")
	}
	L, err := labels.New(rows)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	if err := L.Validate(); err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	p, err := m.gm.Marginals(L)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	return p, nil
}

// MarginalsFile returns P(positive) for each candidate of a dataset file.
// The dataset must list the same label functions as the model, in order.
func (m *Model) MarginalsFile(datasetPath string) ([]float64, error) {
	if m.gm == nil {
		return nil, fmt.Errorf("weaklabel: model not trained")
	}
	d, err := storage.LoadDataset(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	if !slices.Equal(d.LabelFunctions, m.LabelFunctions) {
		return nil, fmt.Errorf("weaklabel: dataset label functions %v do not match model %v",
			d.LabelFunctions, m.LabelFunctions)
	}
	p, err := m.gm.Marginals(d.Labels)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	return p, nil
}
