package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDFSOrder mirrors original_source/tests/state_tests.py::test_dfs
// exactly: same graph shape, same expected golden order, hand-verified to
// follow from the LIFO stack-based walk (children pushed in declared
// order, popped from the end).
func TestDFSOrder(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	n := map[string]*State[int]{}
	for _, name := range names {
		n[name] = NewState[int]("pkg."+name, nil)
	}
	g := newGraph[int]()
	children := map[string][]string{
		"A": {"B", "C", "A"},
		"B": {"D", "E", "A"},
		"D": {"B", "A"},
		"E": {"B", "A"},
		"C": {"F", "G", "A"},
		"F": {"C", "A"},
		"G": {"C", "A"},
	}
	for src, kids := range children {
		for _, kid := range kids {
			g.addEdge(&Transition[int]{name: "t", source: n[src], target: n[kid], cost: 1})
		}
	}

	order := dfsOrder(g, n["A"])
	var gotNames []string
	for _, s := range order {
		gotNames = append(gotNames, s.Name())
	}
	assert.Equal(t, []string{"A", "C", "G", "F", "B", "E", "D"}, gotNames)
}

// TestShortestPathPicksCheapestPath mirrors scenario S1 from spec.md §8:
// Init -> S1 -> S2 -> {V1(cost 2), V2(cost 1)}, both -> S4. The cheapest
// path to S4 goes through V2.
func TestShortestPathPicksCheapestPath(t *testing.T) {
	initS := NewState[int]("pkg.Init", nil)
	s1 := NewState[int]("pkg.S1", nil)
	s2 := NewState[int]("pkg.S2", nil)
	v1 := NewState[int]("pkg.V1", nil)
	v2 := NewState[int]("pkg.V2", nil)
	s4 := NewState[int]("pkg.S4", nil)

	g := newGraph[int]()
	g.addEdge(&Transition[int]{name: "t", source: initS, target: s1, cost: 1})
	g.addEdge(&Transition[int]{name: "t", source: s1, target: s2, cost: 1})
	g.addEdge(&Transition[int]{name: "t", source: s2, target: v1, cost: 2})
	g.addEdge(&Transition[int]{name: "t", source: s2, target: v2, cost: 1})
	g.addEdge(&Transition[int]{name: "t", source: v1, target: s4, cost: 1})
	g.addEdge(&Transition[int]{name: "t", source: v2, target: s4, cost: 1})

	adj := g.filteredAdjacency(initS, newOrderedSet[*State[int]](), newOrderedSet[edgeKey[int]]())
	path := shortestPath(g, adj, initS, s4)
	require.NotNil(t, path)

	var names []string
	for _, s := range path {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"Init", "S1", "S2", "V2", "S4"}, names)
}

func TestShortestPathReturnsNilWhenUnreachable(t *testing.T) {
	a := NewState[int]("pkg.A", nil)
	b := NewState[int]("pkg.B", nil)
	g := newGraph[int]()
	g.ensureNode(a)
	g.ensureNode(b)

	adj := g.filteredAdjacency(a, newOrderedSet[*State[int]](), newOrderedSet[edgeKey[int]]())
	path := shortestPath(g, adj, a, b)
	assert.Nil(t, path)
}
