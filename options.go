package ddbenv

import (
	"fmt"
	"os"
)

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("ddbenv: %s must not be empty", name))
	}
}

// Option configures a Server during construction via New.
// Each With* function returns an Option that sets a specific field.
//
// Several With* functions panic on invalid input (out-of-range ports, empty
// paths). These panics are intentional: option values are typically
// compile-time constants or package-level variables, so an invalid value
// indicates a programmer error rather than a runtime condition. The pattern
// mirrors [regexp.MustCompile]: fail fast during initialization instead of
// returning errors that would be universally fatal anyway.
type Option func(*serverConfig)

// WithPort pins the engine to a fixed TCP port. Without this option New
// reserves a free port for the server's lifetime.
//
// Panics if port is outside 1..65535.
func WithPort(port int) Option {
	if port <= 0 || port > 65535 {
		panic(fmt.Sprintf("ddbenv: port must be between 1 and 65535, got %d", port))
	}
	return func(c *serverConfig) {
		c.port = port
	}
}

// WithHost sets the hostname the engine is addressed and probed by.
//
// Default: localhost.
//
// Panics if host is empty.
func WithHost(host string) Option {
	requireNonEmpty("host", host)
	return func(c *serverConfig) {
		c.host = host
	}
}

// WithDataPath enables persistence: the engine keeps its database files in
// the given directory, which is created and locked on the first start. The
// path is resolved to an absolute path by New.
//
// Panics if path is empty; use WithInMemory to disable persistence.
func WithDataPath(path string) Option {
	requireNonEmpty("data path", path)
	return func(c *serverConfig) {
		c.dataPath = path
	}
}

// WithInMemory switches the engine to keep all tables in process memory,
// clearing any previously configured data path. All data is lost when the
// engine stops. This is the default mode.
func WithInMemory() Option {
	return func(c *serverConfig) {
		c.dataPath = ""
	}
}

// WithHeapSize sets the engine JVM's maximum heap, passed via -Xmx
// (e.g. "1g").
//
// Default: 256m.
//
// Panics if size is empty.
func WithHeapSize(size string) Option {
	requireNonEmpty("heap size", size)
	return func(c *serverConfig) {
		c.heapSize = size
	}
}

// WithDelayTransientStatuses makes the engine emulate DynamoDB's transient
// CREATING and DELETING table statuses instead of completing such operations
// instantly.
func WithDelayTransientStatuses(enabled bool) Option {
	return func(c *serverConfig) {
		c.delayTransientStatuses = enabled
	}
}

// WithOptimizeDBBeforeStartup makes the engine optimize its database files
// before it starts serving. Only meaningful for a persistent server.
func WithOptimizeDBBeforeStartup(enabled bool) Option {
	return func(c *serverConfig) {
		c.optimizeDBBeforeStartup = enabled
	}
}

// WithShareDB makes the engine use a single shared database file instead of
// one file per credential and region pair of incoming requests.
func WithShareDB(enabled bool) Option {
	return func(c *serverConfig) {
		c.shareDB = enabled
	}
}

// WithCORSOrigin records an allowed CORS origin in the configuration, for
// callers that place an HTTP layer in front of the engine. The engine
// command line itself is not affected.
//
// Panics if origin is empty.
func WithCORSOrigin(origin string) Option {
	requireNonEmpty("CORS origin", origin)
	return func(c *serverConfig) {
		c.corsOrigin = origin
	}
}

// WithInstallDir points the server at the directory holding the unpacked
// engine distribution (DynamoDBLocal.jar and its libraries).
//
// Default: /usr/local/lib/dynamodb-local.
//
// Panics if dir is empty.
func WithInstallDir(dir string) Option {
	requireNonEmpty("install dir", dir)
	return func(c *serverConfig) {
		c.installDir = dir
	}
}

// WithJavaBinary sets the java binary used to launch the engine.
//
// Default: "java", resolved through PATH.
//
// Panics if binPath is empty.
func WithJavaBinary(binPath string) Option {
	requireNonEmpty("java binary path", binPath)
	return func(c *serverConfig) {
		c.javaBinary = binPath
	}
}

// WithJavaHome exports JAVA_HOME to the engine process and prepends its bin
// directory to the child's PATH, so a bundled JRE takes precedence over the
// system one.
//
// Panics if dir is empty.
func WithJavaHome(dir string) Option {
	requireNonEmpty("java home", dir)
	return func(c *serverConfig) {
		c.javaHome = dir
	}
}

// WithSeedDatabase copies the given SQLite database file into the data
// directory as the shared database before the first start, when no shared
// database exists there yet. Requires a data path and shared database mode;
// New rejects the combination otherwise.
//
// Panics if dbPath is empty.
func WithSeedDatabase(dbPath string) Option {
	requireNonEmpty("seed database path", dbPath)
	return func(c *serverConfig) {
		c.seedDatabase = dbPath
	}
}

// FromEnv loads configuration from the DYNAMODB_* environment variables (see
// the Env* constants). Unset variables leave the configuration untouched, so
// FromEnv composes with other options; options after it win for the fields
// they set.
func FromEnv() Option {
	return func(c *serverConfig) {
		// A true DYNAMODB_IN_MEMORY takes precedence over a configured data
		// path; false or unset leaves the mode alone.
		if envBool(EnvInMemory) {
			c.dataPath = ""
		}
		if v := os.Getenv(EnvHeapSize); v != "" {
			c.heapSize = v
		}
		if envBool(EnvDelayTransientStatuses) {
			c.delayTransientStatuses = true
		}
		if envBool(EnvOptimizeDBBeforeStartup) {
			c.optimizeDBBeforeStartup = true
		}
		if envBool(EnvShareDB) {
			c.shareDB = true
		}
		if v := os.Getenv(EnvCORS); v != "" {
			c.corsOrigin = v
		}
	}
}
