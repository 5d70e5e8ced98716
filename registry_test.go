package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeWiresInitAndTempoEdges(t *testing.T) {
	r := newRegistry[int]()
	a := NewState[int]("pkg.A", nil)
	r.RegisterState(a)

	entry, err := r.finalize(a)
	require.NoError(t, err)

	initTransition := r.g.transitionFor(entry, a)
	require.NotNil(t, initTransition)
	assert.Equal(t, "init", initTransition.Name())

	tempo := r.g.transitionFor(a, entry)
	require.NotNil(t, tempo)
	assert.Equal(t, "tempo", tempo.Name())
}

func TestFinalizeRejectsUnregisteredInitial(t *testing.T) {
	r := newRegistry[int]()
	a := NewState[int]("pkg.A", nil)
	_, err := r.finalize(a)
	assert.Error(t, err)
	var declErr *DeclarationError
	assert.ErrorAs(t, err, &declErr)
}

func TestLookupBySubstring(t *testing.T) {
	r := newRegistry[int]()
	a := NewState[int]("pkg.Alpha", nil)
	b := NewState[int]("pkg.Beta", nil)
	r.RegisterState(a)
	r.RegisterState(b)
	_, err := r.finalize(a)
	require.NoError(t, err)

	got, err := r.lookup("Alph")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = r.lookup("nonexistent")
	var notFound *NonExistentStateError
	assert.ErrorAs(t, err, &notFound)
}

func TestLookupAmbiguous(t *testing.T) {
	r := newRegistry[int]()
	a := NewState[int]("pkg.StateOne", nil)
	b := NewState[int]("pkg.StateOneVariant", nil)
	r.RegisterState(a)
	r.RegisterState(b)
	_, err := r.finalize(a)
	require.NoError(t, err)

	_, err = r.lookup("StateOne")
	var multi *MultipleStatesError
	assert.ErrorAs(t, err, &multi)
}

type demoModule struct {
	Start *State[int]
	End   *State[int]
	label string
}

func TestRegisterModuleUsesExportedStateFields(t *testing.T) {
	mod := &demoModule{
		Start: NewState[int]("pkg.Start", nil),
		End:   NewState[int]("pkg.End", nil),
		label: "ignored",
	}
	r := newRegistry[int]()
	r.RegisterModule(mod)

	_, ok := r.byKey["pkg.Start"]
	assert.True(t, ok)
	_, ok = r.byKey["pkg.End"]
	assert.True(t, ok)
}
