package netutil

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// maxPortRetries bounds the attempts to find a kernel port not already in
// the registry.
const maxPortRetries = 20

// PortRegistry tracks ports handed out by this process so two concurrently
// constructed servers cannot receive the same kernel-assigned port (the
// first caller closes its probe listener before the second opens theirs,
// and the kernel is free to repeat itself).
type PortRegistry struct {
	mu    sync.Mutex
	ports map[int]struct{}
	log   *slog.Logger
}

// NewPortRegistry creates a PortRegistry ready for use.
// If logger is nil, slog.Default() is used as a fallback.
func NewPortRegistry(logger *slog.Logger) *PortRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PortRegistry{
		ports: make(map[int]struct{}),
		log:   logger,
	}
}

// reserve registers a port. It reports false when the port is already taken.
func (r *PortRegistry) reserve(port int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ports[port]; ok {
		return false
	}
	r.ports[port] = struct{}{}
	return true
}

// Release removes a port from the registry, allowing it to be handed out
// again.
func (r *PortRegistry) Release(port int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ports, port)
}

// Free asks the kernel for a free TCP port on the loopback interface,
// skipping ports already in the registry. The port stays registered until
// the caller passes it to Release.
//
// The probe listener is closed before Free returns, so the port is merely
// likely free, not held: the engine process that binds it later is the
// actual owner. The registry only protects against this process racing
// itself.
func (r *PortRegistry) Free() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("resolve tcp address: %w", err)
	}

	for range maxPortRetries {
		l, err := net.ListenTCP("tcp", addr)
		if err != nil {
			return 0, fmt.Errorf("listen on tcp address: %w", err)
		}
		tcpAddr, ok := l.Addr().(*net.TCPAddr)
		if !ok {
			_ = l.Close()
			return 0, fmt.Errorf("unexpected address type: %T", l.Addr())
		}
		port := tcpAddr.Port
		if !r.reserve(port) {
			r.log.Debug("port already in registry, retrying", "port", port)
			_ = l.Close()
			continue
		}
		if err := l.Close(); err != nil {
			r.Release(port)
			return 0, fmt.Errorf("close probe listener: %w", err)
		}
		return port, nil
	}
	return 0, fmt.Errorf("allocate unique port: exhausted %d attempts", maxPortRetries)
}
