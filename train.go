package weaklabel

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/happyhackingspace/weaklabel/genmodel"
	"github.com/happyhackingspace/weaklabel/gibbs"
	"github.com/happyhackingspace/weaklabel/internal/config"
	"github.com/happyhackingspace/weaklabel/internal/storage"
	"github.com/happyhackingspace/weaklabel/labels"
	"github.com/happyhackingspace/weaklabel/noiseaware"
	"github.com/happyhackingspace/weaklabel/sparse"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	ConfigPath string // YAML hyperparameter file; empty uses the defaults
	Verbose    bool   // log noise-aware learner progress at Info
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	ConfigPath string
	Threshold  *float64 // marginals above it count as positive; nil means 0.5
}

// LFResult describes one label function in an evaluation.
type LFResult struct {
	Name              string  `json:"name"`
	Coverage          float64 `json:"coverage"`
	Overlaps          float64 `json:"overlaps"`
	Conflicts         float64 `json:"conflicts"`
	EmpiricalAccuracy float64 `json:"empirical_accuracy"` // on gold-labeled candidates it voted on
	LearnedAccuracy   float64 `json:"learned_accuracy"`   // accuracy factor weight
}

// EvalResult holds the accuracy of both label models against gold labels.
type EvalResult struct {
	GenerativeAccuracy float64    `json:"generative_accuracy"`
	GenerativeCorrect  int        `json:"generative_correct"`
	NoiseAwareAccuracy float64    `json:"noise_aware_accuracy"`
	NoiseAwareCorrect  int        `json:"noise_aware_correct"`
	Total              int        `json:"total"`
	LabelFunctions     []LFResult `json:"label_functions"`
}

// NoiseResult holds a fitted noise-aware model and its marginals.
type NoiseResult struct {
	Weights   []float64         `json:"weights"`
	Marginals []float64         `json:"marginals"`
	Report    noiseaware.Report `json:"report"`
}

// Train trains a generative model on the label matrix of a dataset file.
func Train(datasetPath string, config *TrainConfig) (*Model, error) {
	d, cfg, err := loadInputs(datasetPath, configPath(config))
	if err != nil {
		return nil, err
	}
	gm, err := trainGenerative(d, cfg)
	if err != nil {
		return nil, err
	}
	return &Model{
		ID:             uuid.NewString(),
		TrainedAt:      time.Now().UTC(),
		LabelFunctions: d.LabelFunctions,
		gm:             gm,
	}, nil
}

// Evaluate trains both label models on a dataset without its gold labels
// and scores their thresholded marginals against them.
func Evaluate(datasetPath string, config *EvalConfig) (*EvalResult, error) {
	threshold := 0.5
	path := ""
	if config != nil {
		if config.Threshold != nil {
			threshold = *config.Threshold
		}
		path = config.ConfigPath
	}

	d, cfg, err := loadInputs(datasetPath, path)
	if err != nil {
		return nil, err
	}
	if !d.HasGold() {
		return nil, fmt.Errorf("weaklabel: %s has no gold labels", datasetPath)
	}

	gm, err := trainGenerative(d, cfg)
	if err != nil {
		return nil, err
	}
	genMarginals, err := gm.Marginals(d.Labels)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	noise, err := trainNoiseAware(d, cfg, false)
	if err != nil {
		return nil, err
	}

	result := &EvalResult{}
	for i, g := range d.Gold {
		if g == labels.Abstain {
			continue
		}
		result.Total++
		if predict(genMarginals[i], threshold) == g {
			result.GenerativeCorrect++
		}
		if predict(noise.Marginals[i], threshold) == g {
			result.NoiseAwareCorrect++
		}
	}
	result.GenerativeAccuracy = float64(result.GenerativeCorrect) / float64(result.Total)
	result.NoiseAwareAccuracy = float64(result.NoiseAwareCorrect) / float64(result.Total)

	learned := gm.Weights().Accuracy
	for j, s := range labels.Summarize(d.Labels) {
		result.LabelFunctions = append(result.LabelFunctions, LFResult{
			Name:              d.LabelFunctions[j],
			Coverage:          s.Coverage,
			Overlaps:          s.Overlaps,
			Conflicts:         s.Conflicts,
			EmpiricalAccuracy: empiricalAccuracy(d.Labels, d.Gold, j),
			LearnedAccuracy:   learned[j],
		})
	}
	slog.Info("Evaluation finished", "candidates", result.Total,
		"generative_accuracy", result.GenerativeAccuracy,
		"noise_aware_accuracy", result.NoiseAwareAccuracy)
	return result, nil
}

// NoiseAware fits the noise-aware linear model to the label matrix of a
// dataset, using each label function's votes as a feature. Gold labels, when
// present, are used as evidence.
func NoiseAware(datasetPath string, config *TrainConfig) (*NoiseResult, error) {
	d, cfg, err := loadInputs(datasetPath, configPath(config))
	if err != nil {
		return nil, err
	}
	if config != nil && config.Verbose {
		cfg.NoiseAware.Verbose = true
	}
	return trainNoiseAware(d, cfg, true)
}

func configPath(c *TrainConfig) string {
	if c == nil {
		return ""
	}
	return c.ConfigPath
}

func loadInputs(datasetPath, configPath string) (*storage.Dataset, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("weaklabel: %w", err)
	}
	d, err := storage.LoadDataset(datasetPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("weaklabel: %w", err)
	}
	rows, cols := d.Labels.Dims()
	if rows == 0 {
		return nil, cfg, fmt.Errorf("weaklabel: no candidates found in %s", datasetPath)
	}
	if cols == 0 {
		return nil, cfg, fmt.Errorf("weaklabel: no label functions found in %s", datasetPath)
	}
	return d, cfg, nil
}

func trainGenerative(d *storage.Dataset, cfg config.Config) (*genmodel.Model, error) {
	gm := genmodel.New(cfg.Generative, gibbs.New(cfg.Sampler))
	if err := gm.Train(d.Labels, d.Dependencies); err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	return gm, nil
}

// trainNoiseAware fits the noise-aware model to the votes of d, clamping
// gold-labeled rows when withGold is set.
func trainNoiseAware(d *storage.Dataset, cfg config.Config, withGold bool) (*NoiseResult, error) {
	X := featureMatrix(d.Labels, cfg.NoiseAware.BiasTerm, cfg.NoiseAware.Sparse)

	tc := cfg.NoiseAware.TrainConfig()
	if withGold && d.HasGold() {
		tc.Evidence = make([]float64, len(d.Gold))
		for i, g := range d.Gold {
			tc.Evidence[i] = float64(g)
		}
	}

	m := noiseaware.New(cfg.NoiseAware.BiasTerm)
	report, err := m.Train(X, tc)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	p, err := m.Marginals(X)
	if err != nil {
		return nil, fmt.Errorf("weaklabel: %w", err)
	}
	return &NoiseResult{Weights: m.W, Marginals: p, Report: report}, nil
}

// featureMatrix converts votes to features, appending a constant column
// when a bias term is requested.
func featureMatrix(L *labels.Matrix, biasTerm, useSparse bool) mat.Matrix {
	X := L.Dense()
	if biasTerm {
		rows, cols := X.Dims()
		withBias := mat.NewDense(rows, cols+1, nil)
		withBias.Copy(X)
		for i := range rows {
			withBias.Set(i, cols, 1)
		}
		X = withBias
	}
	if useSparse {
		s := sparse.FromDense(X)
		rows, cols := s.Dims()
		slog.Debug("Built sparse feature matrix", "rows", rows, "cols", cols, "nnz", s.Nnz())
		return s
	}
	return X
}

func predict(p, threshold float64) int {
	if p > threshold {
		return labels.Positive
	}
	return labels.Negative
}

func empiricalAccuracy(L *labels.Matrix, gold []int, j int) float64 {
	correct, total := 0, 0
	for i, g := range gold {
		v := L.At(i, j)
		if g == labels.Abstain || v == labels.Abstain {
			continue
		}
		total++
		if v == g {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
