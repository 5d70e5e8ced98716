package crawler

import orderedmap "github.com/wk8/go-ordered-map/v2"

// shortestPath finds the cheapest simple path from start to end over adj
// (an already-filtered adjacency), tracking cumulative transition cost.
// Ported from the original's _find_shortest_path: a plain recursive DFS
// that keeps the best-cost path seen so far rather than stopping at the
// first one found, since the cheapest path is not necessarily the
// shallowest. Returns nil if no path exists.
func shortestPath[S any](g *graph[S], adj *orderedmap.OrderedMap[*State[S], *orderedSet[*State[S]]], start, end *State[S]) []*State[S] {
	if start == end {
		return []*State[S]{start}
	}

	var best []*State[S]
	bestCost := -1

	var visit func(node *State[S], pathSoFar []*State[S], costSoFar int)
	visit = func(node *State[S], pathSoFar []*State[S], costSoFar int) {
		if best != nil && bestCost <= costSoFar {
			return
		}
		children, ok := adj.Get(node)
		if !ok {
			return
		}
		for _, child := range children.Slice() {
			if containsState(pathSoFar, child) {
				continue
			}
			t := g.transitionFor(node, child)
			if t == nil {
				continue
			}
			newCost := costSoFar + t.cost
			newPath := append(append([]*State[S]{}, pathSoFar...), child)
			if child == end {
				if best == nil || newCost < bestCost {
					best = newPath
					bestCost = newCost
				}
				continue
			}
			visit(child, newPath, newCost)
		}
	}

	visit(start, []*State[S]{start}, 0)
	return best
}

func containsState[S any](path []*State[S], s *State[S]) bool {
	for _, p := range path {
		if p == s {
			return true
		}
	}
	return false
}

// dfsOrder produces a deterministic linearization of every node reachable
// from root, over the full (unfiltered) graph. Ported from the original's
// _dfs: a stack-based walk that pushes a node's children in declared order
// and pops from the end, so children are actually visited in *reverse*
// declared order relative to one another, while still fully exploring each
// branch before backtracking (spec.md §4.D, "DFS ordering").
func dfsOrder[S any](g *graph[S], root *State[S]) []*State[S] {
	visited := newOrderedSet[*State[S]]()
	var order []*State[S]
	stack := []*State[S]{root}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Has(n) {
			continue
		}
		visited.Add(n)
		order = append(order, n)
		children := g.children(n)
		for _, c := range children {
			if !visited.Has(c) {
				stack = append(stack, c)
			}
		}
	}
	return order
}
