package factorgraph

import (
	"fmt"
	"math/rand/v2"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/labels"
)

// OptionalGroup is a per-label-function factor group that can be toggled.
type OptionalGroup int

const (
	GroupLFPrior OptionalGroup = iota
	GroupLFPropensity
	GroupLFClassPropensity

	// NumOptionalGroups is the number of optional groups.
	NumOptionalGroups
)

// OptionalGroups lists the optional groups in compilation order.
var OptionalGroups = [NumOptionalGroups]OptionalGroup{GroupLFPrior, GroupLFPropensity, GroupLFClassPropensity}

func (o OptionalGroup) String() string {
	switch o {
	case GroupLFPrior:
		return "lf_prior"
	case GroupLFPropensity:
		return "lf_propensity"
	case GroupLFClassPropensity:
		return "lf_class_propensity"
	}
	return fmt.Sprintf("OptionalGroup(%d)", int(o))
}

// Options selects the optional factor groups.
type Options struct {
	LFPrior           bool
	LFPropensity      bool
	LFClassPropensity bool
}

// AllGroups enables every optional group.
func AllGroups() Options {
	return Options{LFPrior: true, LFPropensity: true, LFClassPropensity: true}
}

// Enabled reports whether group g is compiled.
func (o Options) Enabled(g OptionalGroup) bool {
	switch g {
	case GroupLFPrior:
		return o.LFPrior
	case GroupLFPropensity:
		return o.LFPropensity
	case GroupLFClassPropensity:
		return o.LFClassPropensity
	}
	return false
}

// EnabledCount returns the number of enabled optional groups.
func (o Options) EnabledCount() int {
	count := 0
	for _, g := range OptionalGroups {
		if o.Enabled(g) {
			count++
		}
	}
	return count
}

// outputVar maps (candidate, label function) to a variable id.
type outputVar func(g *Graph, cand, lf int) int

// depVar maps (candidate, dependency edge) to a variable id.
type depVar func(g *Graph, cand int, e depgraph.Edge) int

type outputGroup struct {
	fn   Function
	vars []outputVar
}

type depGroup struct {
	fn   Function
	vars []depVar
}

var (
	classOf outputVar = func(g *Graph, cand, _ int) int { return g.ClassVariable(cand) }
	labelOf outputVar = func(g *Graph, cand, lf int) int { return g.LabelVariable(cand, lf) }

	depClass  depVar = func(g *Graph, cand int, _ depgraph.Edge) int { return g.ClassVariable(cand) }
	depSource depVar = func(g *Graph, cand int, e depgraph.Edge) int { return g.LabelVariable(cand, e.J) }
	depTarget depVar = func(g *Graph, cand int, e depgraph.Edge) int { return g.LabelVariable(cand, e.K) }
)

var accuracyGroup = outputGroup{LFAccuracy, []outputVar{classOf, labelOf}}

var optionalGroups = [NumOptionalGroups]outputGroup{
	GroupLFPrior:           {LFPrior, []outputVar{labelOf}},
	GroupLFPropensity:      {LFPropensity, []outputVar{labelOf}},
	GroupLFClassPropensity: {LFClassPropensity, []outputVar{classOf, labelOf}},
}

var dependencyGroups = [depgraph.NumKinds]depGroup{
	depgraph.Similar:     {DepSimilar, []depVar{depSource, depTarget}},
	depgraph.Fixing:      {DepFixing, []depVar{depClass, depSource, depTarget}},
	depgraph.Reinforcing: {DepReinforcing, []depVar{depClass, depSource, depTarget}},
	depgraph.Exclusive:   {DepExclusive, []depVar{depSource, depTarget}},
}

// classPriorArity is the arity of the class prior factor.
const classPriorArity = 1

// Size holds the analytically computed array lengths of a compiled graph.
type Size struct {
	Weights   int
	Variables int
	Factors   int
	Edges     int
}

// Sizing computes the graph size for m candidates, n label functions, the
// given dependencies and optional groups.
func Sizing(m, n int, deps *depgraph.Graph, opts Options) Size {
	weights := 1 + n
	edgesPerCandidate := classPriorArity + len(accuracyGroup.vars)*n
	for _, og := range OptionalGroups {
		if opts.Enabled(og) {
			weights += n
			edgesPerCandidate += len(optionalGroups[og].vars) * n
		}
	}
	for _, kind := range depgraph.Kinds {
		count := deps.Adjacency(kind).Len()
		weights += count
		edgesPerCandidate += len(dependencyGroups[kind].vars) * count
	}
	return Size{
		Weights:   weights,
		Variables: m + m*n,
		Factors:   m * weights,
		Edges:     m * edgesPerCandidate,
	}
}

// Compile builds the factor graph of a generative model over L with the given
// dependencies. rng drives the initial weight and latent variable values, so
// equal seeds give identical graphs.
func Compile(L *labels.Matrix, deps *depgraph.Graph, opts Options, rng *rand.Rand) (*Graph, error) {
	m, n := L.Dims()
	if deps.LabelFunctions() != n {
		return nil, fmt.Errorf("%w: dependency graph covers %d label functions, label matrix has %d",
			depgraph.ErrInvalidDependency, deps.LabelFunctions(), n)
	}

	size := Sizing(m, n, deps, opts)
	g := &Graph{
		Candidates:     m,
		LabelFunctions: n,
		Weights:        make([]Weight, 0, size.Weights),
		Variables:      make([]Variable, 0, size.Variables),
		Factors:        make([]Factor, 0, size.Factors),
		Edges:          make([]Edge, 0, size.Edges),
		DomainMask:     make([]bool, size.Variables),
		EdgeCount:      size.Edges,
	}
	c := &compiler{g: g}

	c.compileWeights(size.Weights, rng)
	if err := c.compileVariables(L, rng); err != nil {
		return nil, err
	}

	c.compileClassPrior()
	c.compileOutputs(accuracyGroup)
	for _, og := range OptionalGroups {
		if opts.Enabled(og) {
			c.compileOutputs(optionalGroups[og])
		}
	}
	for _, kind := range depgraph.Kinds {
		for _, e := range deps.Adjacency(kind).Edges() {
			c.compileDependency(dependencyGroups[kind], e)
		}
	}

	if err := c.verify(size); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

type compiler struct {
	g          *Graph
	nextWeight int
}

func (c *compiler) compileWeights(count int, rng *rand.Rand) {
	for id := range count {
		w := Weight{ID: id}
		if id == 0 {
			// Label distributions usually lean negative.
			w.InitialValue = -1
		} else {
			w.InitialValue = 0.9 + 0.2*rng.Float64()
		}
		c.g.Weights = append(c.g.Weights, w)
	}
}

func (c *compiler) compileVariables(L *labels.Matrix, rng *rand.Rand) error {
	m, n := L.Dims()
	for range m {
		c.g.Variables = append(c.g.Variables, Variable{
			ID:           len(c.g.Variables),
			InitialValue: rng.IntN(2),
			DataType:     Categorical,
			Cardinality:  2,
		})
	}
	for cand := range m {
		for lf := range n {
			var value int
			switch raw := L.At(cand, lf); raw {
			case labels.Positive:
				value = ValuePositive
			case labels.Abstain:
				value = ValueAbstain
			case labels.Negative:
				value = ValueNegative
			default:
				return &labels.ValueError{Row: cand, Col: lf, Value: raw}
			}
			c.g.Variables = append(c.g.Variables, Variable{
				ID:           len(c.g.Variables),
				IsEvidence:   true,
				InitialValue: value,
				DataType:     Categorical,
				Cardinality:  3,
			})
		}
	}
	return nil
}

func (c *compiler) addFactor(fn Function, weightID int, vids ...int) {
	c.g.Factors = append(c.g.Factors, Factor{
		ID:           len(c.g.Factors),
		Function:     fn,
		WeightID:     weightID,
		FeatureValue: 1,
		Arity:        len(vids),
		EdgeOffset:   len(c.g.Edges),
	})
	for _, vid := range vids {
		c.g.Edges = append(c.g.Edges, Edge{VariableID: vid})
	}
}

func (c *compiler) compileClassPrior() {
	weightID := c.nextWeight
	for cand := range c.g.Candidates {
		c.addFactor(ClassPrior, weightID, c.g.ClassVariable(cand))
	}
	c.nextWeight++
}

// compileOutputs emits one factor per (candidate, label function) sharing one
// weight per label function.
func (c *compiler) compileOutputs(group outputGroup) {
	base := c.nextWeight
	vids := make([]int, len(group.vars))
	for cand := range c.g.Candidates {
		for lf := range c.g.LabelFunctions {
			for a, vf := range group.vars {
				vids[a] = vf(c.g, cand, lf)
			}
			c.addFactor(group.fn, base+lf, vids...)
		}
	}
	c.nextWeight += c.g.LabelFunctions
}

// compileDependency emits one factor per candidate for dependency edge e,
// all sharing a single weight.
func (c *compiler) compileDependency(group depGroup, e depgraph.Edge) {
	weightID := c.nextWeight
	vids := make([]int, len(group.vars))
	for cand := range c.g.Candidates {
		for a, vf := range group.vars {
			vids[a] = vf(c.g, cand, e)
		}
		c.addFactor(group.fn, weightID, vids...)
	}
	c.nextWeight++
}

func (c *compiler) verify(size Size) error {
	checks := []struct {
		name       string
		want, have int
	}{
		{"weights", size.Weights, len(c.g.Weights)},
		{"weight ids", size.Weights, c.nextWeight},
		{"variables", size.Variables, len(c.g.Variables)},
		{"factors", size.Factors, len(c.g.Factors)},
		{"edges", size.Edges, len(c.g.Edges)},
	}
	for _, ch := range checks {
		if ch.want != ch.have {
			return fmt.Errorf("%w: allocated %d %s, wrote %d", ErrInternalConsistency, ch.want, ch.name, ch.have)
		}
	}
	return nil
}
