package resources

import (
	"slices"
	"testing"

	"github.com/Carmen-Shannon/echoes/engine/handle"
	"github.com/stretchr/testify/assert"
)

func TestDependentsSwapRemove(t *testing.T) {
	arena := handle.NewArena[InstanceList](4)
	a := arena.Insert(InstanceList{})
	b := arena.Insert(InstanceList{})
	c := arena.Insert(InstanceList{})

	d := newDependents()
	d.add(a)
	d.add(b)
	d.add(c)
	d.add(b)
	assert.Equal(t, 3, d.len())
	assert.Equal(t, []handle.Handle[InstanceList]{a, b, c}, slices.Collect(d.all()))

	assert.True(t, d.remove(a))
	assert.False(t, d.remove(a))
	assert.False(t, d.contains(a))
	assert.True(t, d.contains(b))
	assert.True(t, d.contains(c))
	assert.Equal(t, []handle.Handle[InstanceList]{c, b}, slices.Collect(d.all()))

	assert.True(t, d.remove(b))
	assert.Equal(t, []handle.Handle[InstanceList]{c}, slices.Collect(d.all()))
}
