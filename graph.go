package crawler

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// orderedSet is a minimal insertion-ordered set built on top of
// go-ordered-map, used everywhere the crawler needs deterministic
// iteration: adjacency lists (so DFS and shortest-path tie-breaking are
// reproducible), and the growing exclusion/visited sets (so error messages
// that join state names are stable across runs).
type orderedSet[T comparable] struct {
	m *orderedmap.OrderedMap[T, struct{}]
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{m: orderedmap.New[T, struct{}]()}
}

func (s *orderedSet[T]) Add(v T) {
	if s.m == nil {
		s.m = orderedmap.New[T, struct{}]()
	}
	s.m.Set(v, struct{}{})
}

func (s *orderedSet[T]) Has(v T) bool {
	if s.m == nil {
		return false
	}
	_, ok := s.m.Get(v)
	return ok
}

func (s *orderedSet[T]) Len() int {
	if s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Slice returns the set's elements in insertion order.
func (s *orderedSet[T]) Slice() []T {
	if s.m == nil {
		return nil
	}
	out := make([]T, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// edgeKey identifies a (source, target) pair in the transition map.
type edgeKey[S any] struct {
	source, target *State[S]
}

// graph is the frozen adjacency + transition map built by the registry.
// Nodes are *State[S]; edges are *Transition[S]. When multiple declared
// transitions share a (source, target) pair, the one with the lowest cost
// wins, ties broken by declaration order (invariant 2 of spec.md §3).
type graph[S any] struct {
	adjacency   *orderedmap.OrderedMap[*State[S], *orderedSet[*State[S]]]
	transitions *orderedmap.OrderedMap[edgeKey[S], *Transition[S]]
}

func newGraph[S any]() *graph[S] {
	return &graph[S]{
		adjacency:   orderedmap.New[*State[S], *orderedSet[*State[S]]](),
		transitions: orderedmap.New[edgeKey[S], *Transition[S]](),
	}
}

func (g *graph[S]) ensureNode(s *State[S]) *orderedSet[*State[S]] {
	set, ok := g.adjacency.Get(s)
	if !ok {
		set = newOrderedSet[*State[S]]()
		g.adjacency.Set(s, set)
	}
	return set
}

// addEdge registers transition t, keeping the lowest-cost transition when a
// (source, target) pair is declared more than once (ties keep the first
// one registered).
func (g *graph[S]) addEdge(t *Transition[S]) {
	g.ensureNode(t.source).Add(t.target)
	g.ensureNode(t.target)

	key := edgeKey[S]{source: t.source, target: t.target}
	if existing, ok := g.transitions.Get(key); ok {
		if t.cost < existing.cost {
			g.transitions.Set(key, t)
		}
		return
	}
	g.transitions.Set(key, t)
}

func (g *graph[S]) transitionFor(source, target *State[S]) *Transition[S] {
	t, _ := g.transitions.Get(edgeKey[S]{source: source, target: target})
	return t
}

// nodes returns every node in declaration order.
func (g *graph[S]) nodes() []*State[S] {
	out := make([]*State[S], 0, g.adjacency.Len())
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func (g *graph[S]) children(s *State[S]) []*State[S] {
	set, ok := g.adjacency.Get(s)
	if !ok {
		return nil
	}
	return set.Slice()
}

// filteredAdjacency computes the sub-graph reachable from entry,
// restricted to nodes not in excludedStates and edges not in
// excludedEdges. Nodes whose only incoming edges were all excluded drop
// out transitively, because the result is built by a reachability walk
// from entry rather than by filtering the full node list directly
// (spec.md §4.D, "Filtered adjacency").
func (g *graph[S]) filteredAdjacency(entry *State[S], excludedStates *orderedSet[*State[S]], excludedEdges *orderedSet[edgeKey[S]]) *orderedmap.OrderedMap[*State[S], *orderedSet[*State[S]]] {
	result := orderedmap.New[*State[S], *orderedSet[*State[S]]]()
	if excludedStates.Has(entry) {
		return result
	}

	visited := newOrderedSet[*State[S]]()
	stack := []*State[S]{entry}
	visited.Add(entry)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		set := newOrderedSet[*State[S]]()
		for _, child := range g.children(n) {
			if excludedStates.Has(child) {
				continue
			}
			if excludedEdges.Has(edgeKey[S]{source: n, target: child}) {
				continue
			}
			set.Add(child)
			if !visited.Has(child) {
				visited.Add(child)
				stack = append(stack, child)
			}
		}
		result.Set(n, set)
	}
	return result
}

// reachableFrom returns the set of nodes reachable from entry over the
// full (unfiltered) adjacency.
func (g *graph[S]) reachableFrom(entry *State[S]) *orderedSet[*State[S]] {
	visited := newOrderedSet[*State[S]]()
	stack := []*State[S]{entry}
	visited.Add(entry)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range g.children(n) {
			if !visited.Has(child) {
				visited.Add(child)
				stack = append(stack, child)
			}
		}
	}
	return visited
}

// missingNodes returns the complement of filtered's node set within full's
// node set - the states that have become unreachable due to the exclusion
// sets applied when building filtered (spec.md §4.D, "Missing nodes").
func missingNodes[S any](full *orderedSet[*State[S]], filtered *orderedmap.OrderedMap[*State[S], *orderedSet[*State[S]]]) *orderedSet[*State[S]] {
	out := newOrderedSet[*State[S]]()
	for _, n := range full.Slice() {
		if _, ok := filtered.Get(n); !ok {
			out.Add(n)
		}
	}
	return out
}
