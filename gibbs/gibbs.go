// Package gibbs learns factor graph weights by contrasting Gibbs samples
// drawn with evidence clamped against samples drawn from the free model.
//
// Learner satisfies genmodel.Learner.
package gibbs

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/happyhackingspace/weaklabel/factorgraph"
)

// Config holds sampler hyperparameters.
type Config struct {
	StepSize float64 `json:"step_size" yaml:"step_size"`
	Decay    float64 `json:"decay" yaml:"decay"` // step size multiplier per epoch
	Reg      float64 `json:"reg" yaml:"reg"`     // L2 regularization
	Seed     uint64  `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the default sampler settings.
func DefaultConfig() Config {
	return Config{
		StepSize: 0.01,
		Decay:    0.95,
		Seed:     1,
	}
}

// Learner runs contrastive Gibbs weight learning.
type Learner struct {
	config Config
}

// New creates a Learner.
func New(config Config) *Learner {
	return &Learner{config: config}
}

// Learn runs epochs of learning over g and returns the weights, indexed like
// g.Weights. Evidence variables keep their observed values in the clamped
// chain; fixed weights are never updated.
func (l *Learner) Learn(g *factorgraph.Graph, epochs int) ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if epochs < 0 {
		return nil, fmt.Errorf("gibbs: negative epoch count %d", epochs)
	}

	rng := rand.New(rand.NewPCG(l.config.Seed, l.config.Seed^0x9e3779b97f4a7c15))
	s := newSampler(g, rng)

	uses := make([]float64, len(g.Weights))
	for _, f := range g.Factors {
		uses[f.WeightID]++
	}

	grad := make([]float64, len(g.Weights))
	step := l.config.StepSize
	for epoch := range epochs {
		s.sweep(s.clamped, false)
		s.sweep(s.free, true)

		clear(grad)
		for _, f := range g.Factors {
			diff := s.value(f, s.clamped) - s.value(f, s.free)
			grad[f.WeightID] += f.FeatureValue * diff
		}
		for id := range s.weights {
			if g.Weights[id].IsFixed || uses[id] == 0 {
				continue
			}
			s.weights[id] += step * (grad[id]/uses[id] - l.config.Reg*s.weights[id])
		}
		step *= l.config.Decay

		slog.Debug("Gibbs learning epoch", "epoch", epoch+1, "gradient", floats.Norm(grad, 2), "step", step)
	}

	return s.weights, nil
}

// sampler holds two chains over the same graph: clamped keeps evidence at its
// observed values, free resamples every variable.
type sampler struct {
	g          *factorgraph.Graph
	rng        *rand.Rand
	weights    []float64
	varFactors [][]int
	clamped    []int
	free       []int
	vals       []int
	energy     []float64
}

func newSampler(g *factorgraph.Graph, rng *rand.Rand) *sampler {
	s := &sampler{
		g:          g,
		rng:        rng,
		weights:    make([]float64, len(g.Weights)),
		varFactors: make([][]int, len(g.Variables)),
		clamped:    make([]int, len(g.Variables)),
		free:       make([]int, len(g.Variables)),
	}
	for i, w := range g.Weights {
		s.weights[i] = w.InitialValue
	}
	maxCard := 0
	for i, v := range g.Variables {
		s.clamped[i] = v.InitialValue
		s.free[i] = v.InitialValue
		maxCard = max(maxCard, v.Cardinality)
	}
	maxArity := 0
	for _, f := range g.Factors {
		maxArity = max(maxArity, f.Arity)
		for a := range f.Arity {
			vid := g.Edges[f.EdgeOffset+a].VariableID
			s.varFactors[vid] = append(s.varFactors[vid], f.ID)
		}
	}
	s.vals = make([]int, maxArity)
	s.energy = make([]float64, maxCard)
	return s
}

// value evaluates factor f in world.
func (s *sampler) value(f factorgraph.Factor, world []int) float64 {
	vals := s.vals[:f.Arity]
	for a := range f.Arity {
		vals[a] = world[s.g.Edges[f.EdgeOffset+a].VariableID]
	}
	return Evaluate(f.Function, vals)
}

// sweep resamples the variables of world in id order. Evidence variables are
// skipped unless all is set.
func (s *sampler) sweep(world []int, all bool) {
	for vid, v := range s.g.Variables {
		if v.IsEvidence && !all {
			continue
		}
		world[vid] = s.draw(vid, v.Cardinality, world)
	}
}

func (s *sampler) draw(vid, card int, world []int) int {
	energy := s.energy[:card]
	for x := range card {
		world[vid] = x
		e := 0.0
		for _, fid := range s.varFactors[vid] {
			f := s.g.Factors[fid]
			e += s.weights[f.WeightID] * f.FeatureValue * s.value(f, world)
		}
		energy[x] = e
	}

	logZ := floats.LogSumExp(energy)
	u := s.rng.Float64()
	acc := 0.0
	for x := range card {
		acc += math.Exp(energy[x] - logZ)
		if u < acc {
			return x
		}
	}
	return card - 1
}
