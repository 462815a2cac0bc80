package ddbenv

import "fmt"

// State is the lifecycle phase of a Server. Transitions happen under the
// server's transition lock; State reads are lock-free so callers can poll
// without blocking behind a Start or Stop in progress.
type State int32

const (
	// StateStopped means no healthy engine is being supervised. A failed
	// start that left a process behind also lands here; Stop cleans the
	// leftover up.
	StateStopped State = iota

	// StateStarting means an engine process is being spawned and probed
	// for readiness.
	StateStarting

	// StateRunning means the engine answered a health probe after its most
	// recent start. The process can still die afterwards; IsRunning reports
	// current liveness.
	StateRunning

	// StateStopping means the shutdown escalation is executing.
	StateStopping
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
