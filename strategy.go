package ddbenv

import "fmt"

// ResetStrategy controls what Reset does to the engine's persisted state
// between the stop and the restart.
type ResetStrategy int

const (
	// ResetRestart stops and restarts the engine without touching its
	// database files. An in-memory engine loses all tables from the restart
	// alone; a persistent one keeps everything.
	ResetRestart ResetStrategy = iota

	// ResetWipe removes the contents of the data directory before the
	// restart, so the engine comes back to empty, freshly created database
	// files. Requires a persistent server.
	ResetWipe

	// ResetPurge drops the user tables inside every database file while
	// keeping the files and the engine's bookkeeping tables in place.
	// Requires a persistent server.
	ResetPurge
)

// IsValid reports whether s is a recognized ResetStrategy value.
func (s ResetStrategy) IsValid() bool {
	switch s {
	case ResetRestart, ResetWipe, ResetPurge:
		return true
	default:
		return false
	}
}

// String returns the name of the strategy.
func (s ResetStrategy) String() string {
	switch s {
	case ResetRestart:
		return "ResetRestart"
	case ResetWipe:
		return "ResetWipe"
	case ResetPurge:
		return "ResetPurge"
	default:
		return fmt.Sprintf("ResetStrategy(%d)", int(s))
	}
}
