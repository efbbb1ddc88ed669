// Package noiseaware learns a feature accuracy weight vector by elastic-net
// regularized SGD over the expected correctness of each feature (typically a
// label function output), and uses it as a noise model:
// P(positive | x) = sigmoid(x·w).
package noiseaware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimension is returned when inputs disagree with the feature matrix shape.
	ErrDimension = errors.New("dimension mismatch")
	// ErrNotTrained is returned when marginals are requested before Train.
	ErrNotTrained = errors.New("noise-aware model has no weights")
)

// TrainConfig holds SGD hyperparameters.
type TrainConfig struct {
	Iterations     int
	InitialWeights []float64 // nil: ones, or the current weights on a warm start
	Rate           float64   // step size
	Alpha          float64   // elastic-net mixing: 0 ridge, 1 lasso
	Mu             float64   // elastic-net strength
	Sample         bool      // Monte-Carlo expectations instead of exact ones
	Samples        int
	Evidence       []float64 // per-row ground truth, 0 where unknown
	WarmStart      bool
	Tolerance      float64
	Verbose        bool
	Seed           uint64
}

// DefaultTrainConfig returns the default hyperparameters.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Iterations: 1000,
		Rate:       0.01,
		Alpha:      0.5,
		Mu:         1e-6,
		Samples:    100,
		Tolerance:  1e-6,
		Seed:       1,
	}
}

// Report summarizes a training run.
type Report struct {
	Steps        int     // weight updates applied
	GradientNorm float64 // at the last step
	Converged    bool
}

// Model is a noise-aware linear model.
type Model struct {
	BiasTerm bool      `json:"bias_term"` // last column is an unregularized bias
	W        []float64 `json:"w"`
}

// New creates an untrained model.
func New(biasTerm bool) *Model {
	return &Model{BiasTerm: biasTerm}
}

// Train fits the weights to X. Running out of iterations is not an error:
// the last weights are kept and the report says the run did not converge.
func (m *Model) Train(X mat.Matrix, config TrainConfig) (Report, error) {
	n, cols := X.Dims()
	if n == 0 || cols == 0 {
		return Report{}, fmt.Errorf("%w: empty feature matrix", ErrDimension)
	}
	if config.Evidence != nil && len(config.Evidence) != n {
		return Report{}, fmt.Errorf("%w: %d evidence values for %d rows", ErrDimension, len(config.Evidence), n)
	}

	var w []float64
	switch {
	case config.InitialWeights != nil:
		if len(config.InitialWeights) != cols {
			return Report{}, fmt.Errorf("%w: %d initial weights for %d features",
				ErrDimension, len(config.InitialWeights), cols)
		}
		w = append([]float64(nil), config.InitialWeights...)
	case config.WarmStart && len(m.W) == cols:
		w = append([]float64(nil), m.W...)
	default:
		w = make([]float64, cols)
		for j := range w {
			w[j] = 1
		}
	}

	level := slog.LevelDebug
	if config.Verbose {
		level = slog.LevelInfo
	}
	ctx := context.Background()
	slog.Log(ctx, level, "Training noise-aware model", "rows", n, "features", cols,
		"rate", config.Rate, "mu", config.Mu)

	op, absOp := newOperators(X)
	rng := rand.New(rand.NewPCG(config.Seed, config.Seed))
	g := make([]float64, cols)
	l := make([]float64, cols)
	var report Report

	for step := range config.Iterations {
		var t, f []float64
		if config.Sample {
			t, f = sampleData(op, w, n, config.Samples, rng)
		} else {
			t, f = exactData(op, w, config.Evidence)
		}
		pCorrect, nPred := transformSampleStats(op, absOp, t, f)

		// Empirical log odds; the clamp keeps sampled estimates finite.
		for j, p := range pCorrect {
			l[j] = clamp(logOdds(p), -10, 10)
		}

		total := floats.Sum(nPred)
		for j := range g {
			g0 := 0.0
			if total > 0 {
				g0 = nPred[j] * (w[j] - l[j]) / total
			}
			g[j] = 0.95*g0 + 0.05*g[j]
		}

		wn := floats.Norm(w, 2)
		gSize := floats.Norm(g, 2)
		report.Steps = step
		report.GradientNorm = gSize
		if step%250 == 0 {
			slog.Log(ctx, level, "Noise-aware learning epoch", "step", step, "gradient", gSize)
		}
		if step >= 10 && (wn < 1e-12 || gSize/wn < config.Tolerance) {
			report.Converged = true
			slog.Log(ctx, level, "SGD converged", "mu", config.Mu, "steps", step)
			break
		}

		floats.AddScaled(w, -config.Rate, g)
		bias := w[cols-1]
		applyElasticNet(w, config.Rate, config.Alpha, config.Mu)
		if m.BiasTerm {
			w[cols-1] = bias
		}
		report.Steps = step + 1
	}

	if !report.Converged {
		slog.Warn("SGD did not converge", "rate", config.Rate, "mu", config.Mu,
			"steps", report.Steps, "gradient", report.GradientNorm)
	}
	m.W = w
	return report, nil
}

// applyElasticNet soft-thresholds w by rate·alpha·mu (L1) and then shrinks it
// by 1 + rate·(1-alpha)·mu (L2).
func applyElasticNet(w []float64, rate, alpha, mu float64) {
	threshold := rate * alpha * mu
	ridge := 1 + (1-alpha)*rate*mu
	for j, v := range w {
		soft := math.Abs(v) - threshold
		if soft <= 0 {
			w[j] = 0
			continue
		}
		w[j] = math.Copysign(soft, v) / ridge
	}
}

// Marginals returns sigmoid(X·w) per row.
func (m *Model) Marginals(X mat.Matrix) ([]float64, error) {
	if m.W == nil {
		return nil, ErrNotTrained
	}
	rows, cols := X.Dims()
	if cols != len(m.W) {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrDimension, cols, len(m.W))
	}
	if rows == 0 {
		return []float64{}, nil
	}
	p := newOperator(X).mulVec(m.W)
	for i := range p {
		p[i] = oddsToProb(p[i])
	}
	return p, nil
}
