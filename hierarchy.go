package crawler

import "strings"

// Hierarchy groups a GraphView's states into a nested map keyed by each
// dot-separated segment of FullName, leaf values being the StateView
// itself. Ported from original_source's create_hierarchy: it lets a
// serializer draw Collection-materialized states as nested clusters
// without the crawler core knowing anything about "clusters" itself.
func (v GraphView) Hierarchy() map[string]any {
	root := map[string]any{}
	for name, state := range v {
		nodes := strings.Split(name, ".")
		cursor := root
		for i, node := range nodes {
			if i == len(nodes)-1 {
				cursor[node] = state
				break
			}
			next, ok := cursor[node].(map[string]any)
			if !ok {
				next = map[string]any{}
				cursor[node] = next
			}
			cursor = next
		}
	}
	return root
}
