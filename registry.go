package crawler

import (
	"reflect"
	"strings"
)

// Registry holds every State and Transition declared against a single
// crawler instance, and freezes them into a graph once construction is
// done (spec.md §4.B).
type Registry[S any] struct {
	entry *State[S]
	g     *graph[S]
	byKey map[string]*State[S] // full_name -> state, including EntryPoint
}

func newRegistry[S any]() *Registry[S] {
	entry := &State[S]{fullName: "_entry_point", typeName: "_entry_point", verify: func(S) (bool, error) { return true, nil }}
	r := &Registry[S]{entry: entry, g: newGraph[S](), byKey: map[string]*State[S]{}}
	r.g.ensureNode(entry)
	r.byKey[entry.fullName] = entry
	return r
}

// RegisterState adds a state and, transitively, every state and transition
// reachable from it through Transition/TransitionFrom declarations. It is
// safe to call more than once with the same state (no-op on repeat).
// Ported from the original's _create_transition_map_partial, which walks
// state.transition_map the same way.
func (r *Registry[S]) RegisterState(s *State[S]) {
	if s == nil {
		return
	}
	if _, ok := r.byKey[s.fullName]; ok {
		return
	}
	r.byKey[s.fullName] = s
	r.g.ensureNode(s)
	for _, t := range s.transitions {
		r.RegisterState(t.target)
		r.g.addEdge(t)
	}
}

// RegisterStates registers every state given.
func (r *Registry[S]) RegisterStates(states ...*State[S]) {
	for _, s := range states {
		r.RegisterState(s)
	}
}

// RegisterTransition adds a transition edge between two already-declared
// states. Both endpoints must be non-nil; RegisterState is called on each
// implicitly.
func (r *Registry[S]) RegisterTransition(t *Transition[S]) {
	if t == nil || t.source == nil || t.target == nil {
		return
	}
	r.RegisterState(t.source)
	r.RegisterState(t.target)
	r.g.addEdge(t)
}

// RegisterCollection materializes a Collection and registers every
// resulting state and transition. Returns the DeclarationError raised by
// materialization, if any (e.g. an unbound symbolic reference).
func (r *Registry[S]) RegisterCollection(c *Collection[S]) error {
	states, transitions, err := c.Materialize()
	if err != nil {
		return err
	}
	r.RegisterStates(states...)
	for _, t := range transitions {
		r.RegisterTransition(t)
	}
	return nil
}

// RegisterModule registers every *State[S]-typed exported field found on
// fields (normally a pointer to a struct literal grouping related states).
// It is the Go analog of the original's register_module, since Go has no
// module-level dir() introspection.
func (r *Registry[S]) RegisterModule(fields any) {
	for _, f := range structStateFields[S](fields) {
		r.RegisterState(f.value)
	}
}

type namedState[S any] struct {
	name  string
	value *State[S]
}

// structStateFields walks v (a struct or pointer-to-struct) and returns
// every field of type *State[S], in declaration order.
func structStateFields[S any](v any) []namedState[S] {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	target := reflect.TypeOf((*State[S])(nil))
	var out []namedState[S]
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)
		if fv.Type() != target {
			continue
		}
		s, _ := fv.Interface().(*State[S])
		if s == nil {
			continue
		}
		out = append(out, namedState[S]{name: field.Name, value: s})
	}
	return out
}

// finalize wires the EntryPoint escape edges (invariant 4) and the single
// EntryPoint -> initial edge (invariant 3), then returns the populated
// entry state. Must be called exactly once, after every other registration
// call, with the user's nominated initial state.
func (r *Registry[S]) finalize(initial *State[S]) (*State[S], error) {
	if initial == nil {
		return nil, newDeclarationError("no initial state given")
	}
	if _, ok := r.byKey[initial.fullName]; !ok {
		return nil, newDeclarationError("%q is not a registered State", initial.FullName())
	}

	r.g.addEdge(&Transition[S]{name: "init", source: r.entry, target: initial, cost: 1})

	for _, s := range r.g.nodes() {
		if s == r.entry {
			continue
		}
		r.g.addEdge(&Transition[S]{name: "tempo", source: s, target: r.entry, cost: 1})
	}
	return r.entry, nil
}

// lookup resolves target, which is either a *State[S] or a string matched
// by substring against FullName/Name, to a single registered state
// (spec.md §4.E, move() resolution rule).
func (r *Registry[S]) lookup(target any) (*State[S], error) {
	switch v := target.(type) {
	case *State[S]:
		for _, s := range r.byKey {
			if s == v {
				return v, nil
			}
		}
		return nil, newNonExistentStateError("%q is not a registered State", v.FullName())
	case string:
		var matches []*State[S]
		for _, s := range r.g.nodes() {
			if s == r.entry {
				continue
			}
			if strings.Contains(strings.ToLower(s.fullName), strings.ToLower(v)) || strings.Contains(strings.ToLower(s.typeName), strings.ToLower(v)) {
				matches = append(matches, s)
			}
		}
		switch len(matches) {
		case 0:
			return nil, newNonExistentStateError("No state matches %q", v)
		case 1:
			return matches[0], nil
		default:
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = m.FullName()
			}
			return nil, newMultipleStatesError("Ambiguous state reference %q matches: %v", v, names)
		}
	default:
		return nil, newNonExistentStateError("%v is neither a State nor a string reference", target)
	}
}

