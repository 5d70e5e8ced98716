package crawler

import "fmt"

// StateRef is a symbolic reference to a state used inside a Collection
// template, resolved to a concrete *State[S] only when the collection is
// materialized. Build one with Self or Ref.
type StateRef[S any] struct {
	self bool
	key  string
}

// Self refers to the template state the transition is declared on - the Go
// equivalent of the original's target_state = "self".
func Self[S any]() StateRef[S] { return StateRef[S]{self: true} }

// Ref refers to another state by symbolic key: either a sibling template
// declared in the same Collection, or an entry of the Collection's context
// map (see Collection.Bind).
func Ref[S any](key string) StateRef[S] { return StateRef[S]{key: key} }

type templateState[S any] struct {
	key    string
	verify VerifyFunc[S]
}

type templateTransition[S any] struct {
	owner  string // symbolic key of the template state this was declared against
	name   string
	target *StateRef[S] // exactly one of target/source is set
	source *StateRef[S]
	cost   int
	move   MoveFunc[S]
}

// Template is a named group of template states and transitions, declared
// independently of any one Collection. The same Template may be registered
// into more than one Collection (via Collection.RegisterTemplate), each
// supplying its own context map - the Go analog of passing the same
// TplState classes to register_state on two different StateCollections, so
// one declared shape can be materialized more than once with different
// bindings (spec.md §8 scenario S6).
type Template[S any] struct {
	states      map[string]*templateState[S]
	order       []string // declaration order of state keys, for deterministic materialization
	transitions []*templateTransition[S]
}

// NewTemplate declares an empty, reusable Template.
func NewTemplate[S any]() *Template[S] {
	return &Template[S]{states: map[string]*templateState[S]{}}
}

// State declares a template state under the given symbolic key (usually
// the same as its eventual TypeName). The returned builder is used to
// attach template transitions to it.
func (tpl *Template[S]) State(key string, verify VerifyFunc[S]) *TemplateStateBuilder[S] {
	tpl.states[key] = &templateState[S]{key: key, verify: verify}
	tpl.order = append(tpl.order, key)
	return &TemplateStateBuilder[S]{tpl: tpl, key: key}
}

// TemplateStateBuilder attaches template transitions to a state declared
// on a Template.
type TemplateStateBuilder[S any] struct {
	tpl *Template[S]
	key string
}

// Transition declares a template transition from this state to target.
func (b *TemplateStateBuilder[S]) Transition(name string, target StateRef[S]) *TemplateTransitionBuilder[S] {
	t := &templateTransition[S]{owner: b.key, name: name, target: &target, cost: 1}
	b.tpl.transitions = append(b.tpl.transitions, t)
	return &TemplateTransitionBuilder[S]{t: t}
}

// TransitionFrom declares a template transition from source to this state.
func (b *TemplateStateBuilder[S]) TransitionFrom(name string, source StateRef[S]) *TemplateTransitionBuilder[S] {
	t := &templateTransition[S]{owner: b.key, name: name, source: &source, cost: 1}
	b.tpl.transitions = append(b.tpl.transitions, t)
	return &TemplateTransitionBuilder[S]{t: t}
}

// Collection is a namespaced template binder: a set of Templates (plus
// nested sub-collections) that, once materialized against a context map,
// yields fresh, concretely-named states wired into a Registry (spec.md
// §4.C).
type Collection[S any] struct {
	name        string
	contextMap  map[string]*State[S]
	templates   []*Template[S]
	own         *Template[S] // lazily created by State, for the single-collection convenience case
	collections []*Collection[S]
}

// NewCollection declares an empty, named Collection.
func NewCollection[S any](name string) *Collection[S] {
	return &Collection[S]{
		name:       name,
		contextMap: map[string]*State[S]{},
	}
}

// Bind adds an entry to the collection's context map: references to key
// made from inside this collection (via Ref) resolve to state.
func (c *Collection[S]) Bind(key string, state *State[S]) *Collection[S] {
	c.contextMap[key] = state
	return c
}

// RegisterTemplate attaches tpl's states and transitions to this
// collection. The same Template can be attached to more than one
// Collection; each gets its own materialized copy, prefixed and bound
// independently.
func (c *Collection[S]) RegisterTemplate(tpl *Template[S]) *Collection[S] {
	c.templates = append(c.templates, tpl)
	return c
}

// RegisterCollection adds a sub-collection, materialized recursively and
// prefixed with this collection's name.
func (c *Collection[S]) RegisterCollection(sub *Collection[S]) *Collection[S] {
	c.collections = append(c.collections, sub)
	return c
}

// State declares a template state directly on this collection, the
// convenience path for the common case where a template is only ever
// used by one Collection. It lazily creates a private Template the first
// time it's called and delegates to it; reach for NewTemplate plus
// RegisterTemplate instead when the same shape needs to be shared across
// collections.
func (c *Collection[S]) State(key string, verify VerifyFunc[S]) *TemplateStateBuilder[S] {
	if c.own == nil {
		c.own = NewTemplate[S]()
		c.templates = append(c.templates, c.own)
	}
	return c.own.State(key, verify)
}

// TemplateTransitionBuilder configures a template transition's cost and
// move function. There is no separate Build step - the transition is
// already registered on the owning Template; this builder only exists to
// make Cost/Move chainable the same way TransitionBuilder does.
type TemplateTransitionBuilder[S any] struct{ t *templateTransition[S] }

func (b *TemplateTransitionBuilder[S]) Cost(cost int) *TemplateTransitionBuilder[S] {
	if cost <= 0 {
		cost = 1
	}
	b.t.cost = cost
	return b
}

func (b *TemplateTransitionBuilder[S]) Move(move MoveFunc[S]) *TemplateTransitionBuilder[S] {
	b.t.move = move
	return b
}

// FromModule builds a Collection with one template state per exported
// *State[S] field of the fields struct, in struct-field order, keyed by the
// field name and reusing that state's verify function. The transitions
// declared on those states are not copied into the template. It is the
// Go analog of the original's StateCollection.from_module: there is no
// dir(module) in Go, so a plain struct literal stands in for "the public
// States of a module".
func FromModule[S any](name string, fields any) *Collection[S] {
	c := NewCollection[S](name)
	tpl := NewTemplate[S]()
	for _, f := range structStateFields[S](fields) {
		state := f.value
		tpl.states[f.name] = &templateState[S]{key: f.name, verify: state.verify}
		tpl.order = append(tpl.order, f.name)
	}
	c.templates = append(c.templates, tpl)
	return c
}

// Materialize builds the concrete states and transitions this collection
// (and its sub-collections) describe. It is side-effect free and may be
// called more than once; calling it twice with the same context map
// produces states with identical FullNames each time (spec.md's
// idempotency requirement), though distinct pointers - callers register
// the result into a Registry, which deduplicates by FullName.
func (c *Collection[S]) Materialize() ([]*State[S], []*Transition[S], error) {
	return c.materialize(c.name)
}

func (c *Collection[S]) materialize(prefix string) ([]*State[S], []*Transition[S], error) {
	concrete := map[string]*State[S]{}
	var states []*State[S]

	for _, tpl := range c.templates {
		for _, key := range tpl.order {
			tmplState := tpl.states[key]
			s := &State[S]{
				fullName: prefix + "." + key,
				typeName: key,
				verify:   tmplState.verify,
			}
			concrete[key] = s
			states = append(states, s)
		}
	}

	resolve := func(ref *StateRef[S], owner string) (*State[S], error) {
		if ref == nil {
			return nil, nil
		}
		if ref.self {
			return concrete[owner], nil
		}
		if s, ok := concrete[ref.key]; ok {
			return s, nil
		}
		if s, ok := c.contextMap[ref.key]; ok {
			return s, nil
		}
		return nil, newDeclarationError("No substitution found for %q in collection %q", ref.key, c.name)
	}

	var transitions []*Transition[S]
	for _, tpl := range c.templates {
		for _, tmpl := range tpl.transitions {
			source, err := resolve(tmpl.source, tmpl.owner)
			if err != nil {
				return nil, nil, err
			}
			target, err := resolve(tmpl.target, tmpl.owner)
			if err != nil {
				return nil, nil, err
			}
			if tmpl.target != nil {
				source = concrete[tmpl.owner]
			} else {
				target = concrete[tmpl.owner]
			}
			transitions = append(transitions, &Transition[S]{
				name: tmpl.name, source: source, target: target, cost: tmpl.cost, move: tmpl.move,
			})
		}
	}

	for _, sub := range c.collections {
		subStates, subTransitions, err := sub.materialize(prefix + "." + sub.name)
		if err != nil {
			return nil, nil, fmt.Errorf("materializing sub-collection %q: %w", sub.name, err)
		}
		states = append(states, subStates...)
		transitions = append(transitions, subTransitions...)
	}

	return states, transitions, nil
}
