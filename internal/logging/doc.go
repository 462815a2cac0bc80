// Package logging holds the process-wide slog logger shared by ddbenv's
// public surface and its internal packages. The root package re-exports
// SetLogger; internals call Logger() for their default when no per-component
// logger was injected.
package logging
