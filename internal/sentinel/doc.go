// Package sentinel provides a const-able error type for sentinel errors.
//
// Error is a string-based error that can be declared as a const, so the
// package-level sentinels built on it cannot be reassigned by consumers.
// It stays compatible with errors.Is across wrapped chains.
package sentinel
