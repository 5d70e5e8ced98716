package crawler

import (
	"errors"
	"regexp"
	"strings"
)

// Builder accumulates State/Transition/Collection registrations before the
// registry is frozen into a Crawler (spec.md §4.B, "After all registration,
// the registry freezes into (adjacency, transition map)").
type Builder[S any] struct {
	reg *Registry[S]
	err error
}

// NewBuilder starts an empty registry.
func NewBuilder[S any]() *Builder[S] {
	return &Builder[S]{reg: newRegistry[S]()}
}

func (b *Builder[S]) RegisterState(s *State[S]) *Builder[S] {
	b.reg.RegisterState(s)
	return b
}

func (b *Builder[S]) RegisterStates(states ...*State[S]) *Builder[S] {
	b.reg.RegisterStates(states...)
	return b
}

func (b *Builder[S]) RegisterTransition(t *Transition[S]) *Builder[S] {
	b.reg.RegisterTransition(t)
	return b
}

// RegisterModule registers every *State[S] field of fields, named after the
// field (spec.md's register_module, adapted to Go's lack of module
// introspection - see Registry.RegisterModule).
func (b *Builder[S]) RegisterModule(fields any) *Builder[S] {
	b.reg.RegisterModule(fields)
	return b
}

// RegisterCollection materializes c and registers the result. The first
// DeclarationError encountered across any RegisterCollection call is
// remembered and returned by Build.
func (b *Builder[S]) RegisterCollection(c *Collection[S]) *Builder[S] {
	if b.err == nil {
		b.err = b.reg.RegisterCollection(c)
	}
	return b
}

// Option configures a Crawler at construction time.
type Option[S any] func(*Crawler[S])

// WithLogger overrides the crawler's default stderr slog logger.
func WithLogger[S any](l Logger) Option[S] {
	return func(c *Crawler[S]) { c.log = l }
}

// WithOnChangeHandler installs the observer invoked after every internal
// status change, equivalent to calling SetOnStateChangeHandler after Build.
func WithOnChangeHandler[S any](h OnChangeFunc) Option[S] {
	return func(c *Crawler[S]) { c.onChange = h }
}

// Build finalizes the registry against initial (the state EntryPoint's sole
// "init" edge leads to) and returns a ready-to-drive Crawler.
func (b *Builder[S]) Build(sut S, initial *State[S], opts ...Option[S]) (*Crawler[S], error) {
	if b.err != nil {
		return nil, b.err
	}
	entry, err := b.reg.finalize(initial)
	if err != nil {
		return nil, err
	}
	c := &Crawler[S]{
		sut:           sut,
		reg:           b.reg,
		entry:         entry,
		current:       entry,
		errorStates:   newOrderedSet[*State[S]](),
		errorEdges:    newOrderedSet[edgeKey[S]](),
		visitedStates: newOrderedSet[*State[S]](),
		visitedEdges:  newOrderedSet[edgeKey[S]](),
		onChange:      func() {},
		log:           defaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log.Info("state machine crawler initialized")
	return c, nil
}

// Crawler is the execution orchestrator: it drives sut between registered
// States along the cheapest live path, tracking failures so repeated moves
// don't keep retrying a path known to be broken (spec.md §4.E).
type Crawler[S any] struct {
	sut   S
	reg   *Registry[S]
	entry *State[S]

	current           *State[S]
	currentTransition *Transition[S]

	errorStates   *orderedSet[*State[S]]
	errorEdges    *orderedSet[edgeKey[S]]
	visitedStates *orderedSet[*State[S]]
	visitedEdges  *orderedSet[edgeKey[S]]

	onChange OnChangeFunc
	log      Logger
}

// State returns the current registered state (initially EntryPoint).
func (c *Crawler[S]) State() *State[S] { return c.current }

// SetOnStateChangeHandler installs the observer invoked after every
// internal status change.
func (c *Crawler[S]) SetOnStateChangeHandler(h OnChangeFunc) {
	if h == nil {
		h = func() {}
	}
	c.onChange = h
}

func (c *Crawler[S]) notify() { c.onChange() }

// Clear resets the accumulated exclusion sets and returns the crawler to
// EntryPoint. Visited history from verify_all_states is untouched.
func (c *Crawler[S]) Clear() {
	c.errorStates = newOrderedSet[*State[S]]()
	c.errorEdges = newOrderedSet[edgeKey[S]]()
	c.current = c.entry
	c.notify()
}

// Move drives the crawler from its current state to target, which is
// either a *State[S] registered with this crawler or a string matched by
// substring against FullName/Name.
func (c *Crawler[S]) Move(target any) error {
	state, err := c.reg.lookup(target)
	if err != nil {
		return err
	}

	filtered := c.reg.g.filteredAdjacency(c.entry, c.errorStates, c.errorEdges)
	path := shortestPath(c.reg.g, filtered, c.current, state)
	if path == nil {
		return newUnreachableStateError("There is no way to achieve state %q", state.FullName())
	}

	var steps []*State[S]
	if state == c.current {
		steps = []*State[S]{state}
	} else {
		steps = path[1:]
	}

	cursor := c.current
	for _, next := range steps {
		if err := c.step(cursor, next); err != nil {
			return err
		}
		cursor = next
	}
	return nil
}

func (c *Crawler[S]) step(cur, next *State[S]) error {
	t := c.reg.g.transitionFor(cur, next)
	if t == nil {
		return newTransitionError(nil, "no transition from %s to %s", cur.FullName(), next.FullName())
	}

	c.currentTransition = t
	c.notify()

	c.log.Info("transition started", "target", next.FullName())
	moveErr := t.Move(c.sut)
	c.log.Info("transition finished", "target", next.FullName())
	c.notify()

	if moveErr != nil {
		c.errorEdges.Add(edgeKey[S]{source: cur, target: next})
		c.markOutgoingFailed(next)
		c.current = c.entry
		c.log.Error("transition failed", "target", next.FullName(), "err", moveErr)
		c.notify()
		return newTransitionError(moveErr, "Move from state %s to state %s has failed: transition failure", cur.FullName(), next.FullName())
	}

	c.log.Info("verification started", "target", next.FullName())
	ok, verErr := next.Verify(c.sut)
	c.log.Info("verification finished", "target", next.FullName())

	if !ok || verErr != nil {
		c.errorStates.Add(next)
		c.cascadeExclusions()
		c.current = c.entry
		c.log.Error("state verification error", "target", next.FullName(), "err", verErr)
		c.notify()
		return newTransitionError(verErr, "Move from state %s to state %s has failed: verification failure", cur.FullName(), next.FullName())
	}

	c.current = next
	if next != c.entry {
		c.visitedStates.Add(next)
	}
	c.visitedEdges.Add(edgeKey[S]{source: cur, target: next})
	c.log.Info("state changed", "target", next.FullName())
	c.notify()
	return nil
}

func (c *Crawler[S]) markOutgoingFailed(s *State[S]) {
	for _, child := range c.reg.g.children(s) {
		c.errorEdges.Add(edgeKey[S]{source: s, target: child})
	}
}

// cascadeExclusions recomputes, to a fixpoint, every state that has become
// unreachable from EntryPoint given the current exclusion sets, adding
// each one to errorStates, then marks every outgoing edge of every
// excluded state as failed. This is the "stricter" reading of spec.md's
// cascading rule: a verification failure doesn't just poison its own
// state, it poisons everything that failure makes unreachable too, so a
// later move() never wastes a step re-entering a dead branch.
func (c *Crawler[S]) cascadeExclusions() {
	full := c.reg.g.reachableFrom(c.entry)
	for {
		filtered := c.reg.g.filteredAdjacency(c.entry, c.errorStates, c.errorEdges)
		missing := missingNodes(full, filtered)
		added := false
		for _, s := range missing.Slice() {
			if !c.errorStates.Has(s) {
				c.errorStates.Add(s)
				added = true
			}
		}
		if !added {
			break
		}
	}
	for _, s := range c.errorStates.Slice() {
		c.markOutgoingFailed(s)
	}
}

// VerifyAllStates walks every registered state reachable from EntryPoint in
// DFS order, driving the crawler to each one in turn (spec.md §4.F). States
// whose FullName doesn't match pattern are skipped; pattern == nil matches
// everything. When full is false, a state already in the visited set from
// a prior call is skipped instead of being re-verified.
func (c *Crawler[S]) VerifyAllStates(pattern *regexp.Regexp, full bool) error {
	order := dfsOrder(c.reg.g, c.entry)

	for _, s := range order {
		if s == c.entry {
			continue
		}
		if pattern != nil && !pattern.MatchString(s.FullName()) {
			continue
		}
		if !full && c.visitedStates.Has(s) {
			continue
		}
		if err := c.Move(s); err != nil {
			var te *TransitionError
			if errors.As(err, &te) {
				continue
			}
			return err
		}
	}

	var unvisited []string
	for _, s := range c.reg.g.nodes() {
		if s == c.entry {
			continue
		}
		if !c.visitedStates.Has(s) {
			unvisited = append(unvisited, s.FullName())
		}
	}
	c.notify()
	if len(unvisited) > 0 {
		return newTransitionError(nil, "Failed to visit the following states: %s", strings.Join(unvisited, ", "))
	}
	return nil
}

// AsGraph returns an immutable snapshot of the registry plus the crawler's
// live annotations, suitable for a CLI, HTTP viewer, or serializer to
// render without racing the crawler thread (spec.md §4.G).
func (c *Crawler[S]) AsGraph() GraphView {
	view := make(GraphView, len(c.reg.g.nodes()))
	for _, s := range c.reg.g.nodes() {
		sv := StateView{
			FullName:    s.FullName(),
			Current:     s == c.current,
			Next:        c.currentTransition != nil && c.currentTransition.Target() == s,
			Visited:     c.visitedStates.Has(s),
			Failed:      c.errorStates.Has(s),
			EntryPoint:  s == c.entry,
			Transitions: map[string]TransitionView{},
		}
		for _, child := range c.reg.g.children(s) {
			t := c.reg.g.transitionFor(s, child)
			if t == nil {
				continue
			}
			key := edgeKey[S]{source: s, target: child}
			sv.Transitions[child.FullName()] = TransitionView{
				Name:    t.Name(),
				Cost:    t.Cost(),
				Visited: c.visitedEdges.Has(key),
				Failed:  c.errorEdges.Has(key),
				Current: c.currentTransition == t,
				Target:  child.FullName(),
				Source:  s.FullName(),
			}
		}
		view[s.FullName()] = sv
	}
	return view
}
