// Package factorgraph compiles a label matrix and a dependency graph into a
// flat, index-addressed factor graph for a sampling-based weight learner.
package factorgraph

import (
	"errors"
	"fmt"
)

// ErrInternalConsistency is returned when a compiled graph disagrees with its
// precomputed sizing. It indicates a bug in the compiler, not bad input.
var ErrInternalConsistency = errors.New("factor graph internal consistency fault")

// Function identifies the factor function evaluated by a factor.
type Function int

const (
	ClassPrior Function = iota
	LFAccuracy
	LFPrior
	LFPropensity
	LFClassPropensity
	DepSimilar
	DepFixing
	DepReinforcing
	DepExclusive
)

var functionNames = [...]string{
	ClassPrior:        "FUNC_DP_GEN_CLASS_PRIOR",
	LFAccuracy:        "FUNC_DP_GEN_LF_ACCURACY",
	LFPrior:           "FUNC_DP_GEN_LF_PRIOR",
	LFPropensity:      "FUNC_DP_GEN_LF_PROPENSITY",
	LFClassPropensity: "FUNC_DP_GEN_LF_CLASS_PROPENSITY",
	DepSimilar:        "FUNC_DP_GEN_DEP_SIMILAR",
	DepFixing:         "FUNC_DP_GEN_DEP_FIXING",
	DepReinforcing:    "FUNC_DP_GEN_DEP_REINFORCING",
	DepExclusive:      "FUNC_DP_GEN_DEP_EXCLUSIVE",
}

func (f Function) String() string {
	if f < 0 || int(f) >= len(functionNames) {
		return fmt.Sprintf("Function(%d)", int(f))
	}
	return functionNames[f]
}

// Categorical is the data type of every variable in a generative model graph.
const Categorical = 1

// Label variable values, as stored in the compiled graph.
const (
	ValueNegative = 0
	ValueAbstain  = 1
	ValuePositive = 2
)

// Weight is a learnable factor weight.
type Weight struct {
	ID           int
	IsFixed      bool
	InitialValue float64
}

// Variable is a latent class or an observed label function output.
type Variable struct {
	ID           int
	IsEvidence   bool
	InitialValue int
	DataType     int
	Cardinality  int
}

// Factor applies Function to Arity variables starting at EdgeOffset in the
// edge array, scaled by weight WeightID.
type Factor struct {
	ID           int
	Function     Function
	WeightID     int
	FeatureValue float64
	Arity        int
	EdgeOffset   int
}

// Edge connects the factor owning its position to a variable.
type Edge struct {
	VariableID int
}

// Graph is a compiled factor graph.
type Graph struct {
	Candidates     int
	LabelFunctions int

	Weights    []Weight
	Variables  []Variable
	Factors    []Factor
	Edges      []Edge
	DomainMask []bool
	EdgeCount  int
}

// ClassVariable returns the id of candidate i's latent class variable.
func (g *Graph) ClassVariable(i int) int {
	return i
}

// LabelVariable returns the id of the variable observing label function j on
// candidate i.
func (g *Graph) LabelVariable(i, j int) int {
	return g.Candidates + g.LabelFunctions*i + j
}

// FactorVariables returns the variable ids of factor f in edge order.
func (g *Graph) FactorVariables(f Factor) []int {
	vids := make([]int, f.Arity)
	for a := range f.Arity {
		vids[a] = g.Edges[f.EdgeOffset+a].VariableID
	}
	return vids
}

// Validate checks the structural invariants of the graph: ids match
// positions, factor edge ranges tile the edge array, and every reference is
// in range.
func (g *Graph) Validate() error {
	if len(g.Edges) != g.EdgeCount {
		return fmt.Errorf("%w: edge count %d, %d edges", ErrInternalConsistency, g.EdgeCount, len(g.Edges))
	}
	if len(g.DomainMask) != len(g.Variables) {
		return fmt.Errorf("%w: domain mask has %d entries for %d variables",
			ErrInternalConsistency, len(g.DomainMask), len(g.Variables))
	}
	for i, w := range g.Weights {
		if w.ID != i {
			return fmt.Errorf("%w: weight %d has id %d", ErrInternalConsistency, i, w.ID)
		}
	}
	for i, v := range g.Variables {
		if v.ID != i {
			return fmt.Errorf("%w: variable %d has id %d", ErrInternalConsistency, i, v.ID)
		}
		if v.InitialValue < 0 || v.InitialValue >= v.Cardinality {
			return fmt.Errorf("%w: variable %d value %d outside cardinality %d",
				ErrInternalConsistency, i, v.InitialValue, v.Cardinality)
		}
	}
	next := 0
	for i, f := range g.Factors {
		if f.ID != i {
			return fmt.Errorf("%w: factor %d has id %d", ErrInternalConsistency, i, f.ID)
		}
		if f.WeightID < 0 || f.WeightID >= len(g.Weights) {
			return fmt.Errorf("%w: factor %d references weight %d", ErrInternalConsistency, i, f.WeightID)
		}
		if f.EdgeOffset != next {
			return fmt.Errorf("%w: factor %d edge offset %d, want %d", ErrInternalConsistency, i, f.EdgeOffset, next)
		}
		next += f.Arity
		if next > len(g.Edges) {
			return fmt.Errorf("%w: factor %d edges overflow %d", ErrInternalConsistency, i, len(g.Edges))
		}
	}
	if next != len(g.Edges) {
		return fmt.Errorf("%w: factors cover %d of %d edges", ErrInternalConsistency, next, len(g.Edges))
	}
	for e, edge := range g.Edges {
		if edge.VariableID < 0 || edge.VariableID >= len(g.Variables) {
			return fmt.Errorf("%w: edge %d references variable %d", ErrInternalConsistency, e, edge.VariableID)
		}
	}
	return nil
}
