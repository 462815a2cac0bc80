package process

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/ddbenv/internal/sentinel"
)

// ErrIntervalNotPositive indicates a non-positive poll interval.
const ErrIntervalNotPositive = sentinel.Error("interval must be positive")

// ErrTimeoutNotPositive indicates a non-positive timeout.
const ErrTimeoutNotPositive = sentinel.Error("timeout must be positive")

// ErrProcessExited indicates the supervised process retired before the
// readiness check ever passed.
const ErrProcessExited = sentinel.Error("process exited before becoming ready")

// ReadinessCheck probes whether a process is ready. The context is canceled
// when the polling loop times out or the caller cancels, so checks carrying
// network requests exit promptly. attempt is 1-based. Returning true stops
// polling as ready; a non-nil error aborts polling as fatal.
type ReadinessCheck func(ctx context.Context, attempt int) (ready bool, err error)

// WaitReadyConfig configures the readiness wait.
type WaitReadyConfig struct {
	Interval      time.Duration   // poll interval
	Timeout       time.Duration   // overall deadline
	Name          string          // for logging
	Port          int             // for logging context
	Logger        *slog.Logger    // nil means slog.Default()
	ProcessExited <-chan struct{} // abort immediately when closed; usually Watcher.Done()
}

// WaitReady polls check until it reports ready, returns a fatal error, or
// cfg.Timeout elapses. The first attempt runs immediately.
//
// When ProcessExited is a Watcher's Done channel, a crash-looping child keeps
// the polling alive (the watcher is still supervising) while a retired
// watcher aborts the wait with ErrProcessExited.
func WaitReady(ctx context.Context, cfg WaitReadyConfig, check ReadinessCheck) error {
	if cfg.Name == "" {
		return ErrEmptyName
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrIntervalNotPositive)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("wait for %s: %w", cfg.Name, ErrTimeoutNotPositive)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	// attempt needs no synchronization: PollUntilContextTimeout invokes the
	// condition sequentially, never concurrently with itself.
	attempt := 0
	if err := wait.PollUntilContextTimeout(ctx, cfg.Interval, cfg.Timeout, true,
		func(pollCtx context.Context) (bool, error) {
			// A retired process cannot become ready; abort instead of
			// polling out the full timeout.
			if cfg.ProcessExited != nil {
				select {
				case <-cfg.ProcessExited:
					return false, fmt.Errorf("process %s: %w", cfg.Name, ErrProcessExited)
				default:
				}
			}

			attempt++
			ready, err := check(pollCtx, attempt)
			if err != nil {
				return false, err
			}
			if ready {
				log.Debug("wait succeeded", "name", cfg.Name, "port", cfg.Port, "attempt", attempt)
			}
			return ready, nil
		}); err != nil {
		return fmt.Errorf("wait for %s readiness on port %d: %w", cfg.Name, cfg.Port, err)
	}
	return nil
}
