package loop

import (
	"fmt"
	"time"
)

// ControlFlowKind tells the host how to wait before the next Tick.
type ControlFlowKind int

const (
	// Poll asks the host to process pending events and tick again without waiting.
	Poll ControlFlowKind = iota
	// WaitUntil asks the host to wait for events until Deadline, then tick.
	WaitUntil
)

func (k ControlFlowKind) String() string {
	switch k {
	case Poll:
		return "Poll"
	case WaitUntil:
		return "WaitUntil"
	default:
		return fmt.Sprintf("ControlFlowKind(%d)", int(k))
	}
}

// ControlFlow is the wake-up instruction returned by GameLoop.Tick.
type ControlFlow struct {
	Kind ControlFlowKind
	// Deadline is only set for WaitUntil.
	Deadline time.Time
}

// Timeout returns how long to wait from now, zero for Poll or a deadline in the past.
//
// Parameters:
//   - now: the current time
//
// Returns:
//   - time.Duration: the wait duration
func (c ControlFlow) Timeout(now time.Time) time.Duration {
	if c.Kind != WaitUntil {
		return 0
	}
	return max(c.Deadline.Sub(now), 0)
}
