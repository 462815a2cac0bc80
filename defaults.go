package ddbenv

import "time"

// Default configuration values for New.
// These constants are exported so callers can reference the defaults
// when building custom configurations relative to them (e.g.,
// 2 * DefaultHealthCheckRetries).
const (
	// DefaultHost is the hostname the engine is addressed and probed by.
	DefaultHost = "localhost"

	// DefaultHeapSize is the engine JVM's maximum heap, passed via -Xmx.
	// DynamoDB Local is modest; 256m covers typical test workloads.
	DefaultHeapSize = "256m"

	// DefaultJavaBinary is the binary name used to locate the engine JVM
	// in PATH.
	DefaultJavaBinary = "java"

	// DefaultInstallDir is the directory an installer is expected to have
	// unpacked the engine distribution into.
	DefaultInstallDir = "/usr/local/lib/dynamodb-local"

	// DefaultHealthCheckRetries is how many health probes Start issues
	// before giving up on a freshly spawned engine.
	DefaultHealthCheckRetries = 10

	// DefaultHealthCheckInterval is the pause between consecutive health
	// probes during Start. Together with DefaultHealthCheckRetries this
	// allows the engine roughly four seconds to come up.
	DefaultHealthCheckInterval = 400 * time.Millisecond

	// DefaultStopJoinTimeout is how long Stop waits for the engine process
	// to exit after the graceful shutdown signal before moving on to the
	// port polls.
	DefaultStopJoinTimeout = 10 * time.Second

	// DefaultPortCloseRetries is how many times Stop polls the engine port
	// after the graceful join before escalating to a forced kill.
	DefaultPortCloseRetries = 10

	// DefaultPortCloseInterval is the pause between those port polls.
	DefaultPortCloseInterval = 800 * time.Millisecond

	// DefaultKillPortCloseRetries is how many confirmation port polls Stop
	// runs after a forced kill.
	DefaultKillPortCloseRetries = 8

	// DefaultKillPortCloseInterval is the pause between the confirmation
	// polls after a forced kill.
	DefaultKillPortCloseInterval = 500 * time.Millisecond

	// DefaultDataLockTimeout bounds how long Start waits to acquire the
	// exclusive data directory lock when another process holds it.
	DefaultDataLockTimeout = 5 * time.Second
)
