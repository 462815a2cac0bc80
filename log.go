package ddbenv

import (
	"log/slog"

	"github.com/giantswarm/ddbenv/internal/logging"
)

// SetLogger replaces the package-level logger used by ddbenv.
// This allows applications to integrate ddbenv logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; ddbenv will not add additional attributes.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// Thread safety: SetLogger is safe to call concurrently with other ddbenv
// operations. Both the custom logger and the cached default are stored as
// atomic pointers, so loads and stores are data-race-free. A concurrent
// logger lookup during SetLogger always returns a valid *slog.Logger, though
// it may briefly return the previous logger until both atomic stores
// complete. For a strict happens-before guarantee, call SetLogger before
// starting goroutines that use the library (e.g., in TestMain before m.Run).
//
// Example:
//
//	ddbenv.SetLogger(myLogger.With("component", "ddbenv"))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}
