// Package serialize renders a crawler.GraphView snapshot into the
// external formats the CLI and HTTP viewer expose.
package serialize

import (
	"fmt"
	"sort"
	"strings"

	crawler "github.com/pombredanne/state-machine-crawler"
)

const nodeTpl = "%s [style=filled label=\"%s\" shape=%s fillcolor=%s fontcolor=%s];"
const edgeTpl = "%s -> %s [color=%s fontcolor=%s label=\"%s\"];"

// DOT renders view as a Graphviz DOT document: one cluster subgraph per
// Collection namespace (derived from view.Hierarchy()), nodes colored by
// current/next/visited/failed status, edges colored the same way plus a
// cost label when cost != 1. Ported from
// original_source/state_machine_crawler/serializers/dot.py.
func DOT(view crawler.GraphView) string {
	var b strings.Builder
	b.WriteString("digraph StateMachine {splines=polyline; concentrate=true; rankdir=LR;\n")

	for name, sv := range view {
		if sv.EntryPoint {
			b.WriteString(dotNode(sv))
			b.WriteString("\n")
		}
		_ = name
	}

	clusterIndex := 0
	var walk func(node map[string]any, name string)
	walk = func(node map[string]any, name string) {
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		root := name == ""
		if !root {
			clusterIndex++
			fmt.Fprintf(&b, "subgraph cluster_%d {label=\"%s\";color=blue;fontcolor=blue;\n", clusterIndex, name)
		}
		for _, k := range keys {
			switch v := node[k].(type) {
			case map[string]any:
				walk(v, k)
			case crawler.StateView:
				if v.EntryPoint {
					continue
				}
				b.WriteString(dotNode(v))
				b.WriteString("\n")
			}
		}
		if !root {
			b.WriteString("}\n")
		}
	}
	walk(view.Hierarchy(), "")

	for _, name := range sortedNames(view) {
		sv := view[name]
		for _, target := range sortedTransitionTargets(sv.Transitions) {
			if view[target].EntryPoint {
				continue
			}
			b.WriteString(dotEdge(sv.Transitions[target]))
			b.WriteString("\n")
		}
	}

	b.WriteString("}")
	return b.String()
}

func dotNode(s crawler.StateView) string {
	shape := "box"
	label := shortName(s.FullName)
	if s.EntryPoint {
		shape = "doublecircle"
		label = "+"
	}

	var color, textColor string
	switch {
	case s.Current:
		color, textColor = "blue", "white"
	case s.Next:
		color, textColor = "dodgerblue", "black"
	case s.Failed && s.Visited:
		color, textColor = "orange", "black"
	case s.Failed:
		color, textColor = "red", "black"
	case s.Visited:
		color, textColor = "forestgreen", "white"
	default:
		color, textColor = "white", "black"
	}

	return fmt.Sprintf(nodeTpl, dotID(s.FullName), label, shape, color, textColor)
}

func dotEdge(t crawler.TransitionView) string {
	var color string
	switch {
	case t.Failed && t.Visited:
		color = "orange"
	case t.Failed:
		color = "red"
	case t.Current:
		color = "blue"
	case t.Visited:
		color = "forestgreen"
	default:
		color = "black"
	}

	label := " "
	if t.Cost != 1 {
		label = fmt.Sprintf("$%d", t.Cost)
	}

	return fmt.Sprintf(edgeTpl, dotID(t.Source), dotID(t.Target), color, color, label)
}

func dotID(fullName string) string {
	return strings.ReplaceAll(fullName, ".", "_")
}

func shortName(fullName string) string {
	idx := strings.LastIndex(fullName, ".")
	if idx < 0 {
		return fullName
	}
	return fullName[idx+1:]
}

func sortedNames(view crawler.GraphView) []string {
	names := make([]string, 0, len(view))
	for n := range view {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedTransitionTargets(m map[string]crawler.TransitionView) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
