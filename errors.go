package ddbenv

import (
	"github.com/giantswarm/ddbenv/internal/ddblocal"
	"github.com/giantswarm/ddbenv/internal/sentinel"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrHealthCheckTimeout is returned by Start when the engine never
	// answered a health probe within the bounded retries. The spawned
	// process stays under supervision so a later Stop can clean it up.
	ErrHealthCheckTimeout = sentinel.Error("health check timed out")

	// ErrServerStarted is returned by SetDataPath after the server has
	// started for the first time. The data path is frozen from then on.
	ErrServerStarted = sentinel.Error("server already started")

	// ErrServerRunning is returned by PersistedTableNames while an engine
	// process is alive. Database files are only inspected quiesced.
	ErrServerRunning = sentinel.Error("server is running")

	// ErrNotPersistent is returned by Reset and PersistedTableNames when
	// the server runs in-memory and has no database files on disk.
	ErrNotPersistent = sentinel.Error("server has no data path")

	// ErrEngineNotInstalled is returned by Start when the install directory
	// does not contain a launchable engine distribution.
	ErrEngineNotInstalled = ddblocal.ErrNotInstalled
)
