package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// sutRecorder stands in for the "SUT mock recording calls" used throughout
// spec.md §8's end-to-end scenarios (S1-S5). It is the Go analog of
// unittest.mock.Mock(): every move records a call on the embedded
// mock.Mock, and initVerifies gates the Init state's verification outcome
// for the scenarios that need to flip it.
type sutRecorder struct {
	mock.Mock
	initVerifies bool
}

func newSutRecorder() *sutRecorder { return &sutRecorder{initVerifies: true} }

func (s *sutRecorder) Enter() error     { s.Called(); return nil }
func (s *sutRecorder) Unique() error    { s.Called(); return nil }
func (s *sutRecorder) NonUnique() error { s.Called(); return nil }
func (s *sutRecorder) Reset() error     { s.Called(); return nil }

// buildS1Graph wires Init -> S1 -> S2 -> {V1(cost 2), V2(cost 1)}, both ->
// S4, exactly as described by scenario S1.
func buildS1Graph(t *testing.T) (*Crawler[*sutRecorder], *sutRecorder) {
	t.Helper()
	initS := NewState[*sutRecorder]("pkg.Init", func(r *sutRecorder) (bool, error) { return r.initVerifies, nil })
	s1 := NewState[*sutRecorder]("pkg.S1", nil)
	s2 := NewState[*sutRecorder]("pkg.S2", nil)
	v1 := NewState[*sutRecorder]("pkg.V1", nil)
	v2 := NewState[*sutRecorder]("pkg.V2", nil)
	s4 := NewState[*sutRecorder]("pkg.S4", nil)

	initS.Transition("enter", s1).Move(func(r *sutRecorder) error { return r.Enter() }).Build()
	s1.Transition("unique", s2).Move(func(r *sutRecorder) error {
		if err := r.Unique(); err != nil {
			return err
		}
		return r.NonUnique()
	}).Build()
	s2.Transition("branch", v1).Cost(2).Move(func(r *sutRecorder) error { return r.Unique() }).Build()
	s2.Transition("branch", v2).Cost(1).Move(func(r *sutRecorder) error { return r.Unique() }).Build()
	v1.Transition("converge", s4).Move(func(r *sutRecorder) error { return r.Unique() }).Build()
	v2.Transition("converge", s4).Move(func(r *sutRecorder) error { return r.Unique() }).Build()

	recorder := newSutRecorder()
	recorder.On("Enter").Return()
	recorder.On("Unique").Return()
	recorder.On("NonUnique").Return()

	c, err := NewBuilder[*sutRecorder]().RegisterStates(initS, s1, s2, v1, v2, s4).Build(recorder, initS)
	require.NoError(t, err)
	return c, recorder
}

func TestScenarioS1CheapestPathCallCounts(t *testing.T) {
	c, recorder := buildS1Graph(t)

	s4, err := c.reg.lookup("pkg.S4")
	require.NoError(t, err)
	require.NoError(t, c.Move(s4))

	assert.Same(t, s4, c.State())
	recorder.AssertNumberOfCalls(t, "Enter", 1)
	recorder.AssertNumberOfCalls(t, "Unique", 3)
	recorder.AssertNumberOfCalls(t, "NonUnique", 1)
}

func TestScenarioS2ReturnViaEntryPoint(t *testing.T) {
	c, _ := buildS1Graph(t)

	s4, err := c.reg.lookup("pkg.S4")
	require.NoError(t, err)
	require.NoError(t, c.Move(s4))

	s2, err := c.reg.lookup("pkg.S2")
	require.NoError(t, err)
	require.NoError(t, c.Move(s2))

	assert.Same(t, s2, c.State())
}

func TestScenarioS3SelfTransitionInvokedOnce(t *testing.T) {
	a := NewState[*sutRecorder]("pkg.StateOne", nil)
	recorder := newSutRecorder()
	recorder.On("Reset").Return()

	entryReachable := NewState[*sutRecorder]("pkg.Gateway", nil)
	entryReachable.Transition("enter", a).Build()
	a.Transition("reset", a).Move(func(r *sutRecorder) error { return r.Reset() }).Build()

	c, err := NewBuilder[*sutRecorder]().RegisterStates(entryReachable, a).Build(recorder, entryReachable)
	require.NoError(t, err)

	require.NoError(t, c.Move(a))
	recorder.AssertNumberOfCalls(t, "Reset", 0)

	require.NoError(t, c.Move(a))
	recorder.AssertNumberOfCalls(t, "Reset", 1)
}

func TestScenarioS4VerificationFailureThenUnreachable(t *testing.T) {
	c, recorder := buildS1Graph(t)
	recorder.initVerifies = false

	initS, err := c.reg.lookup("pkg.Init")
	require.NoError(t, err)
	err = c.Move(initS)
	require.Error(t, err)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "Move from state")
	assert.Contains(t, te.Error(), "has failed")

	s1, err := c.reg.lookup("pkg.S1")
	require.NoError(t, err)
	err = c.Move(s1)
	var unreachable *UnreachableStateError
	assert.ErrorAs(t, err, &unreachable)
}

func TestScenarioS5VerifyAllStatesVisitsEveryNode(t *testing.T) {
	c, _ := buildS1Graph(t)

	require.NoError(t, c.VerifyAllStates(nil, true))

	want := map[string]bool{
		"pkg.Init": true, "pkg.S1": true, "pkg.S2": true,
		"pkg.V1": true, "pkg.V2": true, "pkg.S4": true,
	}
	for name := range want {
		s, err := c.reg.lookup(name)
		require.NoError(t, err)
		assert.True(t, c.visitedStates.Has(s), "expected %s to be visited", name)
	}
	assert.Equal(t, len(want), c.visitedStates.Len())
}
