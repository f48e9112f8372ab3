package loop

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/echoes/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingStatsWindow(t *testing.T) {
	clock := common.NewManualClock(start)
	var reports []Stats
	s := NewTimingStats(clock, 2*time.Second, func(st Stats) { reports = append(reports, st) })

	for range 10 {
		clock.Advance(100 * time.Millisecond)
		s.Update()
		s.Render()
		s.Render()
	}
	assert.Empty(t, reports)
	assert.Zero(t, s.FPS())

	clock.Advance(time.Second)
	s.Render()
	require.Len(t, reports, 1)
	assert.Equal(t, 10, reports[0].Updates)
	assert.Equal(t, 21, reports[0].Renders)
	assert.InDelta(t, 5.0, s.UPS(), 1e-9)
	assert.InDelta(t, 10.5, s.FPS(), 1e-9)

	s.Update()
	assert.Len(t, reports, 1)
}

func TestTimingStatsReset(t *testing.T) {
	clock := common.NewManualClock(start)
	s := NewTimingStats(clock, time.Second, func(Stats) {})

	clock.Advance(time.Second)
	s.Render()
	require.NotZero(t, s.FPS())

	s.Reset()
	assert.Zero(t, s.FPS())
	assert.Zero(t, s.UPS())
	assert.Equal(t, Stats{}, s.Last())
}

func TestTimingStatsDefaultLogger(t *testing.T) {
	clock := common.NewManualClock(start)
	s := NewTimingStats(clock, 0, nil)

	clock.Advance(DefaultStatsWindow)
	assert.NotPanics(t, s.Update)
	assert.InDelta(t, 1.0/20, s.UPS(), 1e-9)
}
