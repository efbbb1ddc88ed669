package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeRejectsSelfLoop(t *testing.T) {
	s := NewStore(4)
	for _, kind := range Kinds {
		for j := range 4 {
			err := s.AddEdge(j, j, kind)
			require.ErrorIs(t, err, ErrInvalidDependency, "kind=%s j=%d", kind, j)
		}
	}
}

func TestAddEdgeRejectsUnknownKind(t *testing.T) {
	s := NewStore(3)
	require.ErrorIs(t, s.AddEdge(0, 1, Kind(7)), ErrInvalidDependency)
	require.ErrorIs(t, s.AddEdge(0, 1, Kind(-1)), ErrInvalidDependency)
}

func TestAddEdgeRejectsOutOfRange(t *testing.T) {
	s := NewStore(3)
	require.ErrorIs(t, s.AddEdge(0, 3, Similar), ErrInvalidDependency)
	require.ErrorIs(t, s.AddEdge(-1, 2, Similar), ErrInvalidDependency)
}

func TestFreezeOrderAndIdempotence(t *testing.T) {
	s := NewStore(5)
	require.NoError(t, s.AddAll([]Dependency{
		{J: 3, K: 1, Kind: Fixing},
		{J: 0, K: 4, Kind: Fixing},
		{J: 0, K: 2, Kind: Fixing},
		{J: 0, K: 2, Kind: Fixing},
		{J: 0, K: 2, Kind: Reinforcing},
	}))

	g := s.Freeze()
	fixing := g.Adjacency(Fixing)
	assert.Equal(t, 3, fixing.Len())
	assert.Equal(t, []Edge{{0, 2}, {0, 4}, {3, 1}}, fixing.Edges())
	assert.Equal(t, fixing.Edges(), g.Adjacency(Fixing).Edges())

	assert.Equal(t, 1, g.Adjacency(Reinforcing).Len())
	assert.Zero(t, g.Adjacency(Similar).Len())
	assert.Equal(t, 4, g.Len())

	assert.True(t, fixing.Has(3, 1))
	assert.False(t, fixing.Has(1, 3))
}

func TestFreezeIsSnapshot(t *testing.T) {
	s := NewStore(3)
	require.NoError(t, s.AddEdge(0, 1, Exclusive))
	g := s.Freeze()
	require.NoError(t, s.AddEdge(1, 2, Exclusive))

	assert.Equal(t, 1, g.Adjacency(Exclusive).Len())
	assert.Equal(t, 2, s.Freeze().Adjacency(Exclusive).Len())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"similar", Similar},
		{"Fixing", Fixing},
		{" reinforcing ", Reinforcing},
		{"EXCLUSIVE", Exclusive},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseKind("correlated")
	require.ErrorIs(t, err, ErrInvalidDependency)
}
