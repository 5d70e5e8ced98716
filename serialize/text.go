package serialize

import (
	"fmt"
	"strings"

	crawler "github.com/pombredanne/state-machine-crawler"
)

// Text renders view as a flat, human-readable listing: one line per state
// with its status flags, followed by its outgoing transitions indented
// underneath. There is no original_source/serializers/text.py retained in
// the reference pack to port verbatim, so this follows the same
// walk-and-flag shape as DOT does, just plain text instead of a DOT node.
func Text(view crawler.GraphView) string {
	var b strings.Builder
	for _, name := range sortedNames(view) {
		sv := view[name]
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(flags(sv))
		b.WriteString("\n")
		for _, target := range sortedTransitionTargets(sv.Transitions) {
			t := sv.Transitions[target]
			fmt.Fprintf(&b, "  -> %s [%s, cost=%d]\n", target, t.Name, t.Cost)
		}
	}
	return b.String()
}

func flags(s crawler.StateView) string {
	var parts []string
	if s.EntryPoint {
		parts = append(parts, "entry")
	}
	if s.Current {
		parts = append(parts, "current")
	}
	if s.Next {
		parts = append(parts, "next")
	}
	if s.Visited {
		parts = append(parts, "visited")
	}
	if s.Failed {
		parts = append(parts, "failed")
	}
	if len(parts) == 0 {
		return "[]"
	}
	return "[" + strings.Join(parts, ",") + "]"
}
