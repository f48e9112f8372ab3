package loop

import (
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/echoes/common"
)

// DefaultStatsWindow is the length of one statistics window.
const DefaultStatsWindow = 20 * time.Second

// Stats is the result of one statistics window.
type Stats struct {
	Updates int
	Renders int
	Window  time.Duration
	UPS     float64
	FPS     float64
}

// TimingStats counts update and render invocations and, every window, computes the average
// updates and frames per second over it. It never influences scheduling.
type TimingStats struct {
	clock    common.Clock
	window   time.Duration
	reporter func(Stats)

	updates     int
	renders     int
	windowStart time.Time
	last        Stats

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewTimingStats creates timing statistics over windows of the given length.
// A nil reporter logs each window with heap and GC figures.
//
// Parameters:
//   - clock: the time source
//   - window: the statistics window, DefaultStatsWindow if not positive
//   - reporter: called with each completed window, may be nil
//
// Returns:
//   - *TimingStats: the statistics, with the first window starting now
func NewTimingStats(clock common.Clock, window time.Duration, reporter func(Stats)) *TimingStats {
	s := &TimingStats{
		clock:    clock,
		window:   window,
		reporter: reporter,
	}
	if s.window <= 0 {
		s.window = DefaultStatsWindow
	}
	if s.reporter == nil {
		s.reporter = s.logStats
	}
	s.Reset()
	return s
}

// Reset starts a new window and clears the last result.
func (s *TimingStats) Reset() {
	s.updates = 0
	s.renders = 0
	s.windowStart = s.clock.Now()
	s.last = Stats{}
}

// Update counts one update invocation.
func (s *TimingStats) Update() {
	s.updates++
	s.checkWindowEnd()
}

// Render counts one render invocation.
func (s *TimingStats) Render() {
	s.renders++
	s.checkWindowEnd()
}

// UPS returns the updates per second of the last completed window.
func (s *TimingStats) UPS() float64 {
	return s.last.UPS
}

// FPS returns the frames per second of the last completed window.
func (s *TimingStats) FPS() float64 {
	return s.last.FPS
}

// Last returns the last completed window, zero before the first one ends.
func (s *TimingStats) Last() Stats {
	return s.last
}

func (s *TimingStats) checkWindowEnd() {
	now := s.clock.Now()
	elapsed := now.Sub(s.windowStart)
	if elapsed < s.window {
		return
	}

	s.last = Stats{
		Updates: s.updates,
		Renders: s.renders,
		Window:  elapsed,
		UPS:     float64(s.updates) / elapsed.Seconds(),
		FPS:     float64(s.renders) / elapsed.Seconds(),
	}
	s.updates = 0
	s.renders = 0
	s.windowStart = now
	s.reporter(s.last)
}

func (s *TimingStats) logStats(st Stats) {
	runtime.ReadMemStats(&s.memStats)
	heapMB := float64(s.memStats.Alloc) / 1024 / 1024
	sysMB := float64(s.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(s.memStats.TotalAlloc-s.lastTotalAlloc) / 1024 / 1024 / st.Window.Seconds()

	// PauseNs is a ring of the last 256 pauses.
	gcCount := s.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = s.memStats.PauseNs[(gcCount-1)%256] / 1000
		start := s.lastGCCount
		if gcCount-start > 256 {
			start = gcCount - 256
		}
		for i := start; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, s.memStats.PauseNs[i%256]/1000)
		}
	}

	log.Printf("[TimingStats] FPS: %.2f | UPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		st.FPS, st.UPS, heapMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	s.lastGCCount = gcCount
	s.lastTotalAlloc = s.memStats.TotalAlloc
}
