package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName is the name of the lock file placed inside a guarded data
// directory. WipeDir callers must keep it so the held flock stays valid.
const LockFileName = ".ddbenv.lock"

// lockRetryInterval is the interval between consecutive attempts to acquire
// a directory lock. 50ms keeps the wait short after the holder releases
// without busy-polling.
const lockRetryInterval = 50 * time.Millisecond

// DirLock is an exclusive cross-process lock on a data directory. Two engine
// processes writing the same SQLite database files corrupt them, so a server
// holds the lock for its data path from start until stop.
type DirLock struct {
	fl *flock.Flock
}

// LockDir acquires an exclusive lock on dir, creating it if needed.
// Acquisition retries at lockRetryInterval until it succeeds or ctx is done,
// so callers bound contention with a context deadline.
func LockDir(ctx context.Context, dir string) (*DirLock, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}

	fl := flock.New(filepath.Join(dir, LockFileName))
	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring lock on %s: %w", dir, err)
	}
	if !locked {
		// TryLockContext reports failure through err; cover the
		// (false, nil) case anyway.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring lock on %s: %w", dir, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring lock on %s: lock not acquired", dir)
	}

	return &DirLock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *DirLock) Path() string {
	return l.fl.Path()
}

// Release unlocks and closes the lock file descriptor. The lock file itself
// stays on disk: removing it races with another process acquiring a lock on
// the same inode, which would silently void that lock. Best-effort; errors
// are logged at debug level.
func (l *DirLock) Release(logger *slog.Logger) {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		logger.Debug("failed to release directory lock", "path", l.fl.Path(), "err", err)
	}
}
