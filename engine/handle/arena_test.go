package handle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaInsertGet(t *testing.T) {
	a := NewArena[string](0)
	h1 := a.Insert("one")
	h2 := a.Insert("two")

	require.NotEqual(t, h1, h2)
	v, ok := a.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "one", *v)
	assert.Equal(t, "two", *a.MustGet(h2))
	assert.Equal(t, 2, a.Len())
}

func TestArenaZeroHandleNeverResolves(t *testing.T) {
	a := NewArena[int](1)
	a.Insert(7)

	var zero Handle[int]
	assert.True(t, zero.IsZero())
	assert.False(t, a.Contains(zero))
}

func TestArenaStaleAfterRemove(t *testing.T) {
	a := NewArena[int](4)
	old := a.Insert(1)

	v, ok := a.Remove(old)
	require.True(t, ok)
	assert.Equal(t, 1, v)

	reused := a.Insert(2)
	assert.Equal(t, old.Index(), reused.Index(), "slot should be reused")
	assert.NotEqual(t, old, reused)
	assert.False(t, a.Contains(old))
	assert.Equal(t, 2, *a.MustGet(reused))

	_, ok = a.Remove(old)
	assert.False(t, ok, "double remove must fail")
	assert.Equal(t, 1, a.Len())
}

func TestArenaMustGetPanicsOnStale(t *testing.T) {
	a := NewArena[int](1)
	h := a.Insert(1)
	a.Remove(h)
	assert.Panics(t, func() { a.MustGet(h) })
}

func TestArenaPointerStableAcrossGrowth(t *testing.T) {
	a := NewArena[int](1)
	h := a.Insert(10)
	p := a.MustGet(h)
	for i := range 100 {
		a.Insert(i)
	}
	*p = 42
	assert.Equal(t, 42, *a.MustGet(h))
}

func TestArenaAllSlotOrder(t *testing.T) {
	a := NewArena[int](0)
	h0 := a.Insert(0)
	h1 := a.Insert(1)
	h2 := a.Insert(2)
	a.Remove(h1)

	var seen []Handle[int]
	for h, v := range a.All() {
		seen = append(seen, h)
		assert.Equal(t, *a.MustGet(h), *v)
	}
	assert.Equal(t, []Handle[int]{h0, h2}, seen)
	assert.Equal(t, seen, a.Handles())
}

// Random insert/remove sequences: a handle resolves until its removal and never after.
func TestArenaHandleIdentityProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := NewArena[int](0)
	live := map[Handle[int]]int{}
	var dead []Handle[int]

	for i := range 5000 {
		if len(live) > 0 && rng.Intn(3) == 0 {
			for h, v := range live {
				got, ok := a.Remove(h)
				require.True(t, ok)
				require.Equal(t, v, got)
				delete(live, h)
				dead = append(dead, h)
				break
			}
		} else {
			h := a.Insert(i)
			_, dup := live[h]
			require.False(t, dup)
			live[h] = i
		}
	}

	for h, v := range live {
		assert.Equal(t, v, *a.MustGet(h))
	}
	for _, h := range dead {
		assert.False(t, a.Contains(h), "stale handle %v resolved", h)
	}
	assert.Equal(t, len(live), a.Len())
}

func TestArenaRetiresSlotOnGenerationWrap(t *testing.T) {
	a := NewArena[int](1)
	first := a.Insert(1)
	a.slots[first.index].generation = math.MaxUint32
	last := Handle[int]{index: first.index, generation: math.MaxUint32}

	_, ok := a.Remove(last)
	require.True(t, ok)
	assert.Zero(t, a.Len())

	next := a.Insert(2)
	assert.NotEqual(t, first.index, next.index)
	assert.False(t, a.Contains(first))
	assert.False(t, a.Contains(last))
	assert.Equal(t, 2, *a.MustGet(next))
}
