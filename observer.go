package crawler

// OnChangeFunc is a no-arg observer invoked synchronously after every
// internal status change (spec.md §4.E / §5: transition start/end,
// verification start/end, state change, bulk-walk completion). Observers
// must be side-effect-light and must never call back into the Crawler.
type OnChangeFunc func()

// TransitionView is the read-only snapshot of one outgoing edge.
type TransitionView struct {
	Name    string
	Cost    int
	Visited bool
	Failed  bool
	Current bool
	Target  string
	Source  string
}

// StateView is the read-only snapshot of one state's position in the graph
// plus the crawler's live history against it (spec.md §4.G).
type StateView struct {
	FullName    string
	Current     bool
	Next        bool
	Visited     bool
	Failed      bool
	EntryPoint  bool
	Transitions map[string]TransitionView
}

// GraphView is an immutable, by-value snapshot of the whole registry plus
// live annotations, keyed by FullName. External consumers (CLI, HTTP
// viewer, serializers) only ever see a GraphView, never the live Crawler,
// so that reads from another goroutine can't race with the single crawler
// thread or observe a value changing mid-read.
type GraphView map[string]StateView
