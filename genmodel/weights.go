package genmodel

import (
	"fmt"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/factorgraph"
)

// EdgeWeight is the learned weight of one dependency edge.
type EdgeWeight struct {
	J      int     `json:"j"`
	K      int     `json:"k"`
	Weight float64 `json:"weight"`
}

// LearnedWeights is the learned weight vector split into named groups.
type LearnedWeights struct {
	ClassPrior float64   `json:"class_prior"`
	Accuracy   []float64 `json:"accuracy"`

	// Optional is indexed by factorgraph.OptionalGroup. Disabled groups hold
	// zeros.
	Optional [factorgraph.NumOptionalGroups][]float64 `json:"optional"`

	// Dependencies is indexed by depgraph.Kind, edges in adjacency order.
	Dependencies [depgraph.NumKinds][]EdgeWeight `json:"dependencies"`
}

// LabelFunctions returns the number of label functions the weights cover.
func (lw *LearnedWeights) LabelFunctions() int {
	return len(lw.Accuracy)
}

// DependencyMatrix returns the weights of kind as a dense n x n matrix, zero
// where no edge exists.
func (lw *LearnedWeights) DependencyMatrix(kind depgraph.Kind) [][]float64 {
	n := lw.LabelFunctions()
	out := make([][]float64, n)
	for j := range out {
		out[j] = make([]float64, n)
	}
	for _, ew := range lw.Dependencies[kind] {
		out[ew.J][ew.K] = ew.Weight
	}
	return out
}

// sliceWeights splits a flat weight vector using the same layout the
// compiler assigned: class prior, accuracy, enabled optional groups, then
// one weight per dependency edge kind by kind.
func sliceWeights(w []float64, n int, opts factorgraph.Options, deps *depgraph.Graph) (*LearnedWeights, error) {
	want := 1 + n + n*opts.EnabledCount() + deps.Len()
	if len(w) != want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWeightCount, len(w), want)
	}

	lw := &LearnedWeights{
		ClassPrior: w[0],
		Accuracy:   append([]float64(nil), w[1:1+n]...),
	}
	off := 1 + n
	for _, g := range factorgraph.OptionalGroups {
		if opts.Enabled(g) {
			lw.Optional[g] = append([]float64(nil), w[off:off+n]...)
			off += n
		} else {
			lw.Optional[g] = make([]float64, n)
		}
	}
	for _, kind := range depgraph.Kinds {
		edges := deps.Adjacency(kind).Edges()
		lw.Dependencies[kind] = make([]EdgeWeight, len(edges))
		for e, edge := range edges {
			lw.Dependencies[kind][e] = EdgeWeight{J: edge.J, K: edge.K, Weight: w[off]}
			off++
		}
	}
	return lw, nil
}
