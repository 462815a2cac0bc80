// Package ddblocal knows how to launch and probe the DynamoDB Local engine.
//
// It locates an unpacked engine distribution on disk, builds the java
// command line and environment that start it, and probes a running engine
// through its DynamoDB endpoint. The package performs no process management
// itself; supervision lives with its callers.
package ddblocal
