// Package depgraph stores directed pairwise dependencies between label
// functions, one adjacency per dependency kind.
package depgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidDependency is returned for self-loops, unknown kinds and
// out-of-range label function indices.
var ErrInvalidDependency = errors.New("invalid dependency")

// Kind is the relationship between two label functions.
type Kind int

const (
	Similar Kind = iota
	Fixing
	Reinforcing
	Exclusive

	// NumKinds is the number of dependency kinds.
	NumKinds
)

// Kinds lists every kind in compilation order.
var Kinds = [NumKinds]Kind{Similar, Fixing, Reinforcing, Exclusive}

var kindNames = [NumKinds]string{"similar", "fixing", "reinforcing", "exclusive"}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < NumKinds
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind converts a kind name (case-insensitive) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognized dependency type %q", ErrInvalidDependency, s)
}

// Edge is an ordered pair of label function indices.
type Edge struct {
	J int `json:"j"`
	K int `json:"k"`
}

// Dependency states that label function J depends on K with the given kind.
type Dependency struct {
	J    int
	K    int
	Kind Kind
}

// Store accumulates dependency edges before they are frozen into a Graph.
type Store struct {
	n     int
	edges [NumKinds]map[Edge]struct{}
}

// NewStore creates an empty store over n label functions.
func NewStore(n int) *Store {
	s := &Store{n: n}
	for k := range s.edges {
		s.edges[k] = make(map[Edge]struct{})
	}
	return s
}

// AddEdge marks (j, k) present under kind. Re-adding an edge is a no-op and
// a pair may carry several kinds at once.
func (s *Store) AddEdge(j, k int, kind Kind) error {
	if j == k {
		return fmt.Errorf("%w: label function %d cannot depend on itself", ErrInvalidDependency, j)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unrecognized dependency type %d", ErrInvalidDependency, int(kind))
	}
	if j < 0 || j >= s.n || k < 0 || k >= s.n {
		return fmt.Errorf("%w: edge (%d, %d) outside %d label functions", ErrInvalidDependency, j, k, s.n)
	}
	s.edges[kind][Edge{J: j, K: k}] = struct{}{}
	return nil
}

// AddAll adds every dependency, stopping at the first invalid one.
func (s *Store) AddAll(deps []Dependency) error {
	for _, d := range deps {
		if err := s.AddEdge(d.J, d.K, d.Kind); err != nil {
			return err
		}
	}
	return nil
}

// Freeze snapshots the store into an immutable Graph. The store may keep
// being used afterwards; the Graph does not see later edges.
func (s *Store) Freeze() *Graph {
	g := &Graph{n: s.n}
	for k, set := range s.edges {
		edges := make([]Edge, 0, len(set))
		for e := range set {
			edges = append(edges, e)
		}
		sort.Slice(edges, func(a, b int) bool {
			if edges[a].J != edges[b].J {
				return edges[a].J < edges[b].J
			}
			return edges[a].K < edges[b].K
		})
		g.adj[k] = Adjacency{edges: edges}
	}
	return g
}

// Graph is a frozen set of dependencies.
type Graph struct {
	n   int
	adj [NumKinds]Adjacency
}

// Empty returns a graph without dependencies over n label functions.
func Empty(n int) *Graph {
	return NewStore(n).Freeze()
}

// LabelFunctions returns the size of the label function index space.
func (g *Graph) LabelFunctions() int {
	return g.n
}

// Adjacency returns the directed adjacency for kind.
func (g *Graph) Adjacency(kind Kind) Adjacency {
	return g.adj[kind]
}

// Len returns the total number of edges across all kinds.
func (g *Graph) Len() int {
	total := 0
	for _, a := range g.adj {
		total += a.Len()
	}
	return total
}

// Adjacency is a sparse directed adjacency over label functions.
type Adjacency struct {
	edges []Edge
}

// Len returns the number of edges.
func (a Adjacency) Len() int {
	return len(a.edges)
}

// Edges returns the edges sorted by row then column.
func (a Adjacency) Edges() []Edge {
	out := make([]Edge, len(a.edges))
	copy(out, a.edges)
	return out
}

// Has reports whether (j, k) is present.
func (a Adjacency) Has(j, k int) bool {
	i := sort.Search(len(a.edges), func(i int) bool {
		e := a.edges[i]
		return e.J > j || (e.J == j && e.K >= k)
	})
	return i < len(a.edges) && a.edges[i] == Edge{J: j, K: k}
}
