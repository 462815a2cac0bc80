// Package process supervises external child processes.
//
// Watcher spawns a command, owns its single Wait call, drains its output into
// the logger, and respawns it after unexpected exits until restarting is
// disabled. WaitReady polls a readiness check against a running watcher, and
// Terminate/Kill/Snapshot operate on raw pids for stop escalation when a
// child outlives the graceful shutdown path.
package process
