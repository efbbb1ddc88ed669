package genmodel

import (
	"fmt"
	"math"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/factorgraph"
	"github.com/happyhackingspace/weaklabel/labels"
)

// Marginals estimates P(class = positive | votes) for every candidate in L
// in closed form from the learned weights.
//
// The two log terms are summed, not subtracted, and the prior, propensity,
// similar and exclusive weights do not contribute. Saturated results are
// moved to the nearest float inside (0, 1).
func (m *Model) Marginals(L *labels.Matrix) ([]float64, error) {
	if m.weights == nil {
		return nil, ErrModelNotTrained
	}
	rows, cols := L.Dims()
	if cols != m.weights.LabelFunctions() {
		return nil, fmt.Errorf("%w: %d label functions, model has %d", ErrShape, cols, m.weights.LabelFunctions())
	}

	accuracy := m.weights.Accuracy
	classPropensity := m.weights.Optional[factorgraph.GroupLFClassPropensity]
	if len(classPropensity) != cols {
		classPropensity = make([]float64, cols)
	}
	fixing := m.weights.DependencyMatrix(depgraph.Fixing)
	reinforcing := m.weights.DependencyMatrix(depgraph.Reinforcing)

	out := make([]float64, rows)
	for cand := range rows {
		logpTrue := m.weights.ClassPrior
		logpFalse := -m.weights.ClassPrior

		for lf := range cols {
			vote := L.At(cand, lf)
			switch vote {
			case labels.Positive:
				logpTrue += accuracy[lf]
				logpFalse -= accuracy[lf]
				logpTrue += classPropensity[lf]
				logpFalse -= classPropensity[lf]
			case labels.Negative:
				logpTrue -= accuracy[lf]
				logpFalse += accuracy[lf]
				logpTrue += classPropensity[lf]
				logpFalse -= classPropensity[lf]
			}

			for other := range cols {
				otherVote := L.At(cand, other)
				if lf == other || (vote == labels.Abstain && otherVote != labels.Abstain) {
					continue
				}
				switch {
				case vote == labels.Negative && otherVote == labels.Positive:
					logpTrue += fixing[lf][other]
				case vote == labels.Positive && otherVote == labels.Negative:
					logpFalse += fixing[lf][other]
				}
				switch {
				case vote == labels.Positive && otherVote == labels.Positive:
					logpTrue += reinforcing[lf][other]
				case vote == labels.Negative && otherVote == labels.Negative:
					logpFalse += reinforcing[lf][other]
				}
			}
		}

		out[cand] = openUnit(sigmoid(logpTrue + logpFalse))
	}
	return out, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

var (
	minMarginal = math.Nextafter(0, 1)
	maxMarginal = math.Nextafter(1, 0)
)

// openUnit keeps p inside (0, 1) when the sigmoid saturates.
func openUnit(p float64) float64 {
	return min(max(p, minMarginal), maxMarginal)
}
