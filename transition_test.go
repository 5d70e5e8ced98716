package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionCostDefaultsAndFloors(t *testing.T) {
	a := NewState[int]("pkg.A", nil)
	b := NewState[int]("pkg.B", nil)

	tr := a.Transition("go", b).Build()
	assert.Equal(t, 1, tr.Cost())

	tr2 := a.Transition("go2", b).Cost(5).Build()
	assert.Equal(t, 5, tr2.Cost())

	tr3 := a.Transition("go3", b).Cost(-3).Build()
	assert.Equal(t, 1, tr3.Cost())
}

func TestEquivalent(t *testing.T) {
	a := NewState[int]("pkg.A", nil)
	b := NewState[int]("pkg.B", nil)
	c := NewState[int]("pkg.C", nil)

	tr := a.Transition("go", b).Build()
	assert.True(t, Equivalent(tr, tr))

	retargeted := tr.Retarget(a, c)
	assert.False(t, Equivalent(tr, retargeted))
	assert.False(t, Equivalent[int](nil, tr))
}

func TestRetargetPreservesMoveAndCost(t *testing.T) {
	a := NewState[int]("pkg.A", nil)
	b := NewState[int]("pkg.B", nil)
	c := NewState[int]("pkg.C", nil)
	d := NewState[int]("pkg.D", nil)

	var called int
	tr := a.Transition("go", b).Cost(3).Move(func(n int) error { called++; return nil }).Build()

	retargeted := tr.Retarget(c, d)
	assert.Equal(t, 3, retargeted.Cost())
	assert.Same(t, c, retargeted.Source())
	assert.Same(t, d, retargeted.Target())
	assert.Same(t, tr, retargeted.Original())

	_ = retargeted.Move(0)
	assert.Equal(t, 1, called)
}
