// Package genmodel implements the generative label model: it compiles label
// function outputs into a factor graph, hands it to a weight learner, and
// turns the learned weights back into per-candidate probabilities.
package genmodel

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/factorgraph"
	"github.com/happyhackingspace/weaklabel/labels"
)

var (
	// ErrModelNotTrained is returned when marginals are requested before Train.
	ErrModelNotTrained = errors.New("must fit model with Train before computing marginal probabilities")
	// ErrWeightCount is returned when a learner returns the wrong number of weights.
	ErrWeightCount = errors.New("learned weight count does not match compiled graph")
	// ErrShape is returned when a label matrix does not match the trained model.
	ErrShape = errors.New("label matrix shape mismatch")
)

// Learner runs sampling-based weight learning over a compiled graph and
// returns the final weights, indexed like g.Weights.
type Learner interface {
	Learn(g *factorgraph.Graph, epochs int) ([]float64, error)
}

// LearnerFunc adapts a function to the Learner interface.
type LearnerFunc func(g *factorgraph.Graph, epochs int) ([]float64, error)

// Learn calls f.
func (f LearnerFunc) Learn(g *factorgraph.Graph, epochs int) ([]float64, error) {
	return f(g, epochs)
}

// Config holds generative model settings.
type Config struct {
	LFPrior           bool   `json:"lf_prior" yaml:"lf_prior"`
	LFPropensity      bool   `json:"lf_propensity" yaml:"lf_propensity"`
	LFClassPropensity bool   `json:"lf_class_propensity" yaml:"lf_class_propensity"`
	Seed              uint64 `json:"seed" yaml:"seed"`
	Epochs            int    `json:"epochs" yaml:"epochs"`
}

// DefaultConfig enables every optional factor group.
func DefaultConfig() Config {
	return Config{
		LFPrior:           true,
		LFPropensity:      true,
		LFClassPropensity: true,
		Seed:              271828,
		Epochs:            100,
	}
}

// Options returns the compiler options selected by the config.
func (c Config) Options() factorgraph.Options {
	return factorgraph.Options{
		LFPrior:           c.LFPrior,
		LFPropensity:      c.LFPropensity,
		LFClassPropensity: c.LFClassPropensity,
	}
}

// Model is a generative model over label function outputs. It is not safe
// for concurrent use.
type Model struct {
	config  Config
	learner Learner
	rng     *rand.Rand
	weights *LearnedWeights
}

// New creates an untrained model that learns weights with learner.
func New(config Config, learner Learner) *Model {
	return &Model{
		config:  config,
		learner: learner,
		rng:     rand.New(rand.NewPCG(config.Seed, config.Seed)),
	}
}

// FromWeights rebuilds a trained model from previously learned weights.
func FromWeights(config Config, weights *LearnedWeights) *Model {
	m := New(config, nil)
	m.weights = weights
	return m
}

// Config returns the model settings.
func (m *Model) Config() Config {
	return m.config
}

// Weights returns the learned weights, or nil before training.
func (m *Model) Weights() *LearnedWeights {
	return m.weights
}

// Trained reports whether the model holds learned weights.
func (m *Model) Trained() bool {
	return m.weights != nil
}

// Train compiles L and deps into a factor graph, learns its weights and
// stores them in the model. A failed call leaves previous weights in place.
func (m *Model) Train(L *labels.Matrix, deps []depgraph.Dependency) error {
	if m.learner == nil {
		return errors.New("genmodel: no learner configured")
	}
	rows, cols := L.Dims()

	store := depgraph.NewStore(cols)
	if err := store.AddAll(deps); err != nil {
		return err
	}
	graph := store.Freeze()

	fg, err := factorgraph.Compile(L, graph, m.config.Options(), m.rng)
	if err != nil {
		return fmt.Errorf("compile factor graph: %w", err)
	}
	slog.Debug("Compiled factor graph",
		"candidates", rows,
		"label_functions", cols,
		"weights", len(fg.Weights),
		"variables", len(fg.Variables),
		"factors", len(fg.Factors),
		"edges", fg.EdgeCount,
	)

	w, err := m.learner.Learn(fg, m.config.Epochs)
	if err != nil {
		return fmt.Errorf("learn weights: %w", err)
	}

	weights, err := sliceWeights(w, cols, m.config.Options(), graph)
	if err != nil {
		return err
	}
	m.weights = weights
	slog.Debug("Learned generative model weights", "class_prior", weights.ClassPrior)
	return nil
}
