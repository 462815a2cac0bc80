package ddbenv

import (
	"sync"

	"github.com/giantswarm/ddbenv/internal/logging"
	"github.com/giantswarm/ddbenv/internal/netutil"
)

// Singleton state for Default. Construction errors are not cached: a failed
// Default leaves the slot empty so a later call can retry, e.g. after the
// port pressure that failed the reservation has passed.
var (
	defaultMu     sync.Mutex
	defaultServer *Server
)

// ports hands out free TCP ports to servers constructed without WithPort.
// A process-wide registry, so concurrently constructed servers cannot be
// assigned the same port even before either one starts listening.
var ports = sync.OnceValue(func() *netutil.PortRegistry {
	return netutil.NewPortRegistry(logging.Logger())
})

// Default returns the process-wide Server, creating it on first use with
// configuration read from the DYNAMODB_* environment variables (see
// FromEnv). Subsequent calls return the same instance.
//
// For servers with explicit configuration, use New; Default exists for the
// common one-engine-per-test-binary case.
func Default() (*Server, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultServer != nil {
		return defaultServer, nil
	}
	srv, err := New(FromEnv())
	if err != nil {
		return nil, err
	}
	defaultServer = srv
	return srv, nil
}

// resetForTesting resets the singleton state so that the next call to
// Default creates a fresh server. This follows the Go stdlib pattern for
// test isolation within a single binary. It must only be called from tests;
// a previously returned server is not stopped.
func resetForTesting() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultServer = nil
}
