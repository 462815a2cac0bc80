package netutil

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// PortOpen reports whether something accepts TCP connections on host:port.
// A refused or timed-out dial counts as closed.
func PortOpen(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// WaitForPortClosed polls host:port until nothing accepts connections there,
// checking immediately and then every interval, for at most retries further
// attempts. It returns nil once the port is released and a wrapped timeout
// error when the attempts are exhausted or ctx is done first.
//
// Stateless and safe for concurrent use.
func WaitForPortClosed(ctx context.Context, host string, port int, interval time.Duration, retries int) error {
	if interval <= 0 {
		return fmt.Errorf("wait for port %d closed: interval must be positive", port)
	}
	if retries <= 0 {
		return fmt.Errorf("wait for port %d closed: retries must be positive", port)
	}

	timeout := interval * time.Duration(retries)
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(pollCtx context.Context) (bool, error) {
			return !PortOpen(host, port, interval), nil
		})
	if err != nil {
		return fmt.Errorf("port %d on %s still open after %s: %w", port, host, timeout, err)
	}
	return nil
}
