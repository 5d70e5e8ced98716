package crawler

// MoveFunc performs the imperative action that moves sut from a
// transition's source state to its target state. A non-nil error is a
// transition failure.
type MoveFunc[S any] func(sut S) error

// Transition is a first-class, weighted move between two States.
//
// Two transitions are equivalent iff they are literally the same declared
// entity (same *Transition pointer, reached via Original) and their
// (source, target) pair matches - transitions inherited into distinct
// Collection clones are never equivalent to one another or to their
// template, see Equivalent.
type Transition[S any] struct {
	name   string
	source *State[S]
	target *State[S]
	cost   int
	move   MoveFunc[S]

	// original points back at the transition this one was copied from by
	// Retarget; it is nil for a transition declared directly (including
	// the ones a Collection materializes).
	original *Transition[S]
}

// Name returns the transition's identifier.
func (t *Transition[S]) Name() string { return t.name }

// Source returns the state the transition moves out of.
func (t *Transition[S]) Source() *State[S] { return t.source }

// Target returns the state the transition moves into.
func (t *Transition[S]) Target() *State[S] { return t.target }

// Cost returns the transition's relative price, used by the planner to pick
// the cheapest path.
func (t *Transition[S]) Cost() int { return t.cost }

// Original returns the transition this one was retargeted from, or t
// itself if it was declared directly.
func (t *Transition[S]) Original() *Transition[S] {
	if t.original == nil {
		return t
	}
	return t.original
}

// Move runs the transition's action against sut.
func (t *Transition[S]) Move(sut S) error {
	if t.move == nil {
		return nil
	}
	return t.move(sut)
}

// Equivalent reports whether a and b are the same declared transition
// applied to the same (source, target) pair. Declarations inherited into
// distinct Collection clones are never equivalent, even when they share a
// template.
func Equivalent[S any](a, b *Transition[S]) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Original() == b.Original() && a.source == b.source && a.target == b.target
}

// TransitionBuilder provides the fluent API for declaring a Transition.
// A builder may only be used once; calling Build twice panics.
type TransitionBuilder[S any] struct {
	t    *Transition[S]
	used bool
}

func newTransitionBuilder[S any](name string, source, target *State[S]) *TransitionBuilder[S] {
	return &TransitionBuilder[S]{t: &Transition[S]{name: name, source: source, target: target, cost: 1}}
}

// Declare starts a low-level transition declaration with neither endpoint
// bound. Use Source and Target to bind both; Build panics with a
// DeclarationError if either is left unbound. This is the Go equivalent of
// the original's bare @transition() decorator used with no kwargs.
func Declare[S any](name string) *TransitionBuilder[S] {
	return &TransitionBuilder[S]{t: &Transition[S]{name: name, cost: 1}}
}

// Source binds the transition's source state.
func (b *TransitionBuilder[S]) Source(source *State[S]) *TransitionBuilder[S] {
	b.t.source = source
	return b
}

// Target binds the transition's target state.
func (b *TransitionBuilder[S]) Target(target *State[S]) *TransitionBuilder[S] {
	b.t.target = target
	return b
}

// Cost sets the transition's cost. Must be a strictly positive integer;
// values <= 0 are silently floored to 1 (the declared default), matching
// the spec's "cost: strictly positive integer; default 1" rule without
// requiring every caller to validate it themselves.
func (b *TransitionBuilder[S]) Cost(cost int) *TransitionBuilder[S] {
	if cost <= 0 {
		cost = 1
	}
	b.t.cost = cost
	return b
}

// Move sets the transition's imperative action.
func (b *TransitionBuilder[S]) Move(move MoveFunc[S]) *TransitionBuilder[S] {
	b.t.move = move
	return b
}

// Build finalizes the transition, attaching it to its source state's
// transition list, and returns it. Build panics if called twice on the
// same builder, and panics with a *DeclarationError if Source or Target
// (or both) was never bound.
func (b *TransitionBuilder[S]) Build() *Transition[S] {
	if b.used {
		panic("state machine declaration error: transition builder " + b.t.name + " used twice")
	}
	b.used = true
	if b.t.source == nil && b.t.target == nil {
		panic(newDeclarationError("No target nor source state is defined for %q", b.t.name))
	}
	if b.t.source == nil || b.t.target == nil {
		panic(newDeclarationError("Transition %q must have both a source and a target state bound", b.t.name))
	}
	b.t.source.transitions = append(b.t.source.transitions, b.t)
	return b.t
}

// Retarget returns a new Transition sharing this one's name, cost, and move
// function but bound to a different (source, target) pair. This is the Go
// analog of the original's Transition.link classmethod: it lets several
// states perform "the same kind of move" (e.g. a generic reset) without
// redeclaring the move function for each one.
func (t *Transition[S]) Retarget(source, target *State[S]) *Transition[S] {
	return &Transition[S]{
		name:     t.name,
		source:   source,
		target:   target,
		cost:     t.cost,
		move:     t.move,
		original: t.Original(),
	}
}
