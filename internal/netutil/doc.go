// Package netutil provides the TCP plumbing around the engine's listen port:
// PortRegistry hands out kernel-assigned ephemeral ports while tracking them
// across the process to avoid duplicate allocation between concurrent
// callers, PortOpen probes a port with a single dial, and WaitForPortClosed
// polls until a stopping engine has released its port.
package netutil
