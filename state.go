package crawler

// VerifyFunc checks whether sut currently matches a State. A non-nil error
// is treated exactly like returning false - the orchestrator records a
// verification failure either way.
type VerifyFunc[S any] func(sut S) (bool, error)

// State is a named, declarative node of the crawler's graph: a predicate
// over the SUT (Verify) plus the transitions that connect it to other
// states. States are immutable after they are built; a Collection produces
// fresh States instead of mutating an existing one.
type State[S any] struct {
	fullName string
	typeName string
	verify   VerifyFunc[S]

	// transitions holds every Transition built with this state as its
	// resolved source, regardless of whether it was declared via
	// Transition or TransitionFrom. The registry walks this list
	// transitively from every explicitly registered state to discover
	// the full reachable graph, the same way the original's metaclass
	// populates transition_map off of whichever state ends up as source.
	transitions []*Transition[S]
}

// FullName returns the stable, dotted identifier of the state: the name
// given to NewState (conventionally "<package>.<Name>"), or
// "<collection>.<Name>" for a state materialized by a Collection.
func (s *State[S]) FullName() string {
	if s == nil {
		return ""
	}
	return s.fullName
}

// Name returns the short, un-prefixed name of the state.
func (s *State[S]) Name() string {
	if s == nil {
		return ""
	}
	return s.typeName
}

func (s *State[S]) String() string { return s.FullName() }

// Verify runs the state's predicate against sut.
func (s *State[S]) Verify(sut S) (bool, error) {
	if s.verify == nil {
		return true, nil
	}
	return s.verify(sut)
}

// NewState declares a new, concrete, top-level State. fullName is used as
// given (there is no default); "<pkg>.<name>" style identifiers are the
// caller's responsibility - the registry only requires that fullName be
// unique. Name is the part of fullName after its last dot.
func NewState[S any](fullName string, verify VerifyFunc[S]) *State[S] {
	return &State[S]{fullName: fullName, typeName: shortName(fullName), verify: verify}
}

func shortName(fullName string) string {
	for i := len(fullName) - 1; i >= 0; i-- {
		if fullName[i] == '.' {
			return fullName[i+1:]
		}
	}
	return fullName
}

// Transition creates a builder for a new transition from s to target, fired
// by the name given. Use TransitionFrom to declare a transition whose
// *source* is some other state and whose target is s (the "only
// source_state is given" rule from the declaration model).
func (s *State[S]) Transition(name string, target *State[S]) *TransitionBuilder[S] {
	return newTransitionBuilder(name, s, target)
}

// TransitionFrom creates a builder for a new transition whose source is the
// given state and whose target is s.
func (s *State[S]) TransitionFrom(name string, source *State[S]) *TransitionBuilder[S] {
	return newTransitionBuilder(name, source, s)
}

// AddTransition is a convenience method equivalent to
// s.Transition(name, target).Build().
func (s *State[S]) AddTransition(name string, target *State[S]) *Transition[S] {
	return s.Transition(name, target).Build()
}
