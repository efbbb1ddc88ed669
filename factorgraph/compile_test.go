package factorgraph

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/happyhackingspace/weaklabel/depgraph"
	"github.com/happyhackingspace/weaklabel/labels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix(t *testing.T) *labels.Matrix {
	t.Helper()
	L, err := labels.New([][]int{
		{1, 0, -1},
		{-1, -1, 0},
		{1, 1, 1},
		{0, 0, -1},
	})
	require.NoError(t, err)
	return L
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestCompileSizingWithoutDependencies(t *testing.T) {
	L := testMatrix(t)
	m, n := L.Dims()

	tests := []struct {
		name string
		opts Options
	}{
		{"none", Options{}},
		{"prior", Options{LFPrior: true}},
		{"propensity+class", Options{LFPropensity: true, LFClassPropensity: true}},
		{"all", AllGroups()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compile(L, depgraph.Empty(n), tt.opts, newRand(1))
			require.NoError(t, err)

			wantWeights := 1 + n*(1+tt.opts.EnabledCount())
			assert.Len(t, g.Weights, wantWeights)
			assert.Len(t, g.Variables, m+m*n)
			assert.Len(t, g.Factors, m*wantWeights)
			assert.Equal(t, g.EdgeCount, len(g.Edges))
			assertArity(t, g)
		})
	}
}

func assertArity(t *testing.T, g *Graph) {
	t.Helper()
	arity := map[Function]int{
		ClassPrior:        1,
		LFAccuracy:        2,
		LFPrior:           1,
		LFPropensity:      1,
		LFClassPropensity: 2,
		DepSimilar:        2,
		DepFixing:         3,
		DepReinforcing:    3,
		DepExclusive:      2,
	}
	next := 0
	for _, f := range g.Factors {
		assert.Equal(t, arity[f.Function], f.Arity, "factor %d (%s)", f.ID, f.Function)
		assert.Equal(t, next, f.EdgeOffset, "factor %d", f.ID)
		next += f.Arity
		for _, vid := range g.FactorVariables(f) {
			assert.Less(t, vid, len(g.Variables))
		}
	}
	assert.Equal(t, len(g.Edges), next)
}

func TestCompileDeterministic(t *testing.T) {
	L := testMatrix(t)
	s := depgraph.NewStore(3)
	require.NoError(t, s.AddEdge(0, 2, depgraph.Fixing))
	require.NoError(t, s.AddEdge(1, 0, depgraph.Similar))
	deps := s.Freeze()

	a, err := Compile(L, deps, AllGroups(), newRand(271828))
	require.NoError(t, err)
	b, err := Compile(L, deps, AllGroups(), newRand(271828))
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b))

	c, err := Compile(L, deps, AllGroups(), newRand(7))
	require.NoError(t, err)
	assert.False(t, reflect.DeepEqual(a.Weights, c.Weights))
}

func TestCompileWeightsAndVariables(t *testing.T) {
	L := testMatrix(t)
	m, n := L.Dims()
	g, err := Compile(L, depgraph.Empty(n), AllGroups(), newRand(3))
	require.NoError(t, err)

	assert.Equal(t, -1.0, g.Weights[0].InitialValue)
	for _, w := range g.Weights {
		assert.False(t, w.IsFixed)
		if w.ID > 0 {
			assert.GreaterOrEqual(t, w.InitialValue, 0.9)
			assert.Less(t, w.InitialValue, 1.1)
		}
	}

	for i := range m {
		v := g.Variables[i]
		assert.False(t, v.IsEvidence)
		assert.Equal(t, 2, v.Cardinality)
		assert.Contains(t, []int{0, 1}, v.InitialValue)
	}
	want := map[int]int{labels.Positive: ValuePositive, labels.Abstain: ValueAbstain, labels.Negative: ValueNegative}
	for i := range m {
		for j := range n {
			v := g.Variables[m+n*i+j]
			assert.True(t, v.IsEvidence)
			assert.Equal(t, 3, v.Cardinality)
			assert.Equal(t, want[L.At(i, j)], v.InitialValue, "cell (%d, %d)", i, j)
		}
	}
}

func TestCompileFactorLayout(t *testing.T) {
	L := testMatrix(t)
	m, n := L.Dims()
	s := depgraph.NewStore(n)
	require.NoError(t, s.AddEdge(2, 1, depgraph.Reinforcing))
	require.NoError(t, s.AddEdge(0, 1, depgraph.Exclusive))
	g, err := Compile(L, s.Freeze(), Options{LFClassPropensity: true}, newRand(5))
	require.NoError(t, err)

	// class prior block
	for i := range m {
		f := g.Factors[i]
		assert.Equal(t, ClassPrior, f.Function)
		assert.Equal(t, 0, f.WeightID)
		assert.Equal(t, []int{i}, g.FactorVariables(f))
	}

	// accuracy block: weights 1..n
	off := m
	for i := range m {
		for j := range n {
			f := g.Factors[off+n*i+j]
			assert.Equal(t, LFAccuracy, f.Function)
			assert.Equal(t, 1+j, f.WeightID)
			assert.Equal(t, []int{i, m + n*i + j}, g.FactorVariables(f))
		}
	}

	// class propensity block: weights 1+n..2n
	off += m * n
	f := g.Factors[off+n*2+1]
	assert.Equal(t, LFClassPropensity, f.Function)
	assert.Equal(t, 1+n+1, f.WeightID)
	assert.Equal(t, []int{2, m + n*2 + 1}, g.FactorVariables(f))

	// reinforcing (2, 1) then exclusive (0, 1)
	off += m * n
	for i := range m {
		f := g.Factors[off+i]
		assert.Equal(t, DepReinforcing, f.Function)
		assert.Equal(t, 1+2*n, f.WeightID)
		assert.Equal(t, []int{i, m + n*i + 2, m + n*i + 1}, g.FactorVariables(f))
	}
	off += m
	for i := range m {
		f := g.Factors[off+i]
		assert.Equal(t, DepExclusive, f.Function)
		assert.Equal(t, 2+2*n, f.WeightID)
		assert.Equal(t, []int{m + n*i, m + n*i + 1}, g.FactorVariables(f))
	}
	assert.Len(t, g.Weights, 3+2*n)
	assertArity(t, g)
}

func TestCompileEdgeCountWithDependencies(t *testing.T) {
	L := testMatrix(t)
	m, n := L.Dims()
	s := depgraph.NewStore(n)
	require.NoError(t, s.AddAll([]depgraph.Dependency{
		{J: 0, K: 1, Kind: depgraph.Similar},
		{J: 1, K: 2, Kind: depgraph.Fixing},
		{J: 2, K: 0, Kind: depgraph.Reinforcing},
		{J: 0, K: 2, Kind: depgraph.Exclusive},
		{J: 0, K: 1, Kind: depgraph.Fixing},
	}))
	deps := s.Freeze()

	g, err := Compile(L, deps, AllGroups(), newRand(9))
	require.NoError(t, err)

	perCandidate := 1 + 2*n + n + n + 2*n + 2*1 + 3*2 + 3*1 + 2*1
	assert.Equal(t, m*perCandidate, g.EdgeCount)
	assert.Len(t, g.Weights, 1+4*n+5)
	assert.Equal(t, Sizing(m, n, deps, AllGroups()), Size{
		Weights:   len(g.Weights),
		Variables: len(g.Variables),
		Factors:   len(g.Factors),
		Edges:     len(g.Edges),
	})
	assertArity(t, g)
}

func TestCompileInvalidLabelValue(t *testing.T) {
	L, err := labels.New([][]int{{1, 0}, {-1, 2}})
	require.NoError(t, err)

	_, err = Compile(L, depgraph.Empty(2), AllGroups(), newRand(1))
	require.ErrorIs(t, err, labels.ErrInvalidLabelValue)

	var ve *labels.ValueError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 1, ve.Row)
	assert.Equal(t, 1, ve.Col)
}

func TestCompileDependencyGraphMismatch(t *testing.T) {
	L := testMatrix(t)
	_, err := Compile(L, depgraph.Empty(5), Options{}, newRand(1))
	require.ErrorIs(t, err, depgraph.ErrInvalidDependency)
}

func TestValidateDetectsCorruption(t *testing.T) {
	L := testMatrix(t)
	g, err := Compile(L, depgraph.Empty(3), Options{}, newRand(1))
	require.NoError(t, err)

	g.Factors[3].Arity++
	require.ErrorIs(t, g.Validate(), ErrInternalConsistency)

	g.Factors[3].Arity--
	g.Edges[0].VariableID = len(g.Variables)
	require.ErrorIs(t, g.Validate(), ErrInternalConsistency)
}
