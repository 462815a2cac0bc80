package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger shared by ddbenv and its internal
// packages, stored as an atomic pointer for safe concurrent reads and writes.
//
// A nil value means no custom logger has been set; Logger() falls back to a
// cached default derived from slog.Default().
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches the default-derived logger (slog.Default() with the
// ddbenv component attribute) so it is not re-created on every Logger() call.
// If slog.SetDefault() changes after the first Logger() call, the cache does
// not reflect it until SetLogger(nil) clears it.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. If no custom logger has
// been set via SetLogger, it returns a cached logger derived from
// slog.Default() with the ddbenv component attribute. Safe to call from
// multiple goroutines.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	// CAS so a concurrently cached value is not overwritten; use the
	// winner's logger when another goroutine stored first.
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	// A concurrent SetLogger may have cleared the cache between the CAS and
	// this load; the locally created logger keeps the return non-nil.
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "ddbenv")
}

// SetLogger replaces the package-level logger. If l is nil, the logger resets
// to the default: slog.Default() with the component attribute, re-derived on
// the next Logger() call and then cached.
//
// Safe to call concurrently with running servers.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	// Clearing the cache lets SetLogger(nil) pick up slog.SetDefault()
	// changes on the next Logger() call.
	defaultLogger.Store(nil)
}
