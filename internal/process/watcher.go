package process

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/ddbenv/internal/sentinel"
)

// ErrEmptyName is returned when a Config carries no process name.
const ErrEmptyName = sentinel.Error("process name must not be empty")

// ErrEmptyArgv is returned when a Config carries no command line.
const ErrEmptyArgv = sentinel.Error("argv must not be empty")

// ErrNotRunning is returned by Terminate when no child is currently alive.
const ErrNotRunning = sentinel.Error("process not running")

// DefaultRestartDelay is the pause between an unexpected child exit and the
// respawn attempt when auto-restart is enabled.
const DefaultRestartDelay = time.Second

// Config describes a command to supervise.
type Config struct {
	Name         string            // process name for logging
	Argv         []string          // Argv[0] is the binary path
	Env          map[string]string // merged over the current environment; overrides win
	Dir          string            // working directory; empty inherits the parent's
	AutoRestart  bool              // respawn the child after an exit nobody asked for
	RestartDelay time.Duration     // zero means DefaultRestartDelay
	Logger       *slog.Logger      // nil means slog.Default()
}

func (c *Config) validate() error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if len(c.Argv) == 0 || c.Argv[0] == "" {
		return fmt.Errorf("%s: %w", c.Name, ErrEmptyArgv)
	}
	return nil
}

// Watcher supervises one child command. It owns the single cmd.Wait call per
// spawn, drains the child's stdout and stderr into the logger, and respawns
// the child after unexpected exits while auto-restart is enabled.
//
// A Watcher is good for one supervision run: once Done() is closed it never
// spawns again. Restarting the service means constructing a fresh Watcher.
type Watcher struct {
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd // current child; nil between exit and respawn
	pid      int       // last known child pid; 0 before the first spawn
	restart  bool
	stopping bool
	lastExit error

	done chan struct{} // closed when the supervision loop retires
}

// Start spawns the configured command and begins supervising it. A spawn
// failure is returned immediately; there is no spawn retry for the first
// launch.
func Start(cfg Config) (*Watcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = DefaultRestartDelay
	}

	w := &Watcher{
		cfg:     cfg,
		log:     cfg.Logger,
		restart: cfg.AutoRestart,
		done:    make(chan struct{}),
	}

	waitDone, err := w.spawn()
	if err != nil {
		close(w.done)
		return nil, err
	}
	go w.supervise(waitDone)

	return w, nil
}

// spawn launches one incarnation of the command and returns the channel that
// delivers its cmd.Wait result. Exactly one goroutine calls cmd.Wait per
// spawn, after both pipe drains have finished: os/exec forbids Wait while
// pipe reads are still in flight.
func (w *Watcher) spawn() (<-chan error, error) {
	cmd := exec.Command(w.cfg.Argv[0], w.cfg.Argv[1:]...) //nolint:gosec // G204: argv comes from the command builder, not user input
	cmd.Dir = w.cfg.Dir
	cmd.Env = mergedEnv(w.cfg.Env)
	configureSysProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe for %s: %w", w.cfg.Name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe for %s: %w", w.cfg.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s process: %w", w.cfg.Name, err)
	}

	var drains errgroup.Group
	drains.Go(func() error {
		w.drain(stdout, "stdout")
		return nil
	})
	drains.Go(func() error {
		w.drain(stderr, "stderr")
		return nil
	})

	waitDone := make(chan error, 1)
	go func() {
		_ = drains.Wait()
		waitDone <- cmd.Wait()
	}()

	w.mu.Lock()
	w.cmd = cmd
	w.pid = cmd.Process.Pid
	w.mu.Unlock()

	w.log.Debug("process started", "process", w.cfg.Name, "pid", cmd.Process.Pid)
	return waitDone, nil
}

// supervise consumes child exits and respawns while permitted. It closes
// done when it retires, which is the signal consumed by Join, Done and the
// readiness poller.
func (w *Watcher) supervise(waitDone <-chan error) {
	defer close(w.done)

	for {
		err := <-waitDone

		w.mu.Lock()
		w.cmd = nil
		w.lastExit = err
		stopping := w.stopping
		respawn := w.restart && !stopping
		w.mu.Unlock()

		if stopping {
			if sigErr := expectSignalExit(err, w.cfg.Name); sigErr != nil {
				w.log.Debug("process exit during stop", "process", w.cfg.Name, "error", sigErr)
			} else {
				w.log.Debug("process stopped", "process", w.cfg.Name)
			}
			return
		}
		if !respawn {
			w.log.Warn("process exited", "process", w.cfg.Name, "error", err)
			return
		}

		w.log.Warn("process exited unexpectedly, restarting",
			"process", w.cfg.Name, "error", err, "delay", w.cfg.RestartDelay)
		time.Sleep(w.cfg.RestartDelay)

		// A stop may have arrived during the delay.
		w.mu.Lock()
		respawn = w.restart && !w.stopping
		w.mu.Unlock()
		if !respawn {
			return
		}

		next, spawnErr := w.spawn()
		if spawnErr != nil {
			w.log.Error("respawn failed, giving up supervision",
				"process", w.cfg.Name, "error", spawnErr)
			return
		}
		waitDone = next
	}
}

// drain copies one output stream into the logger line by line, with ANSI
// color sequences stripped.
func (w *Watcher) drain(r io.Reader, stream string) {
	sc := bufio.NewScanner(r)
	// Engine stack traces exceed Scanner's default 64K token limit.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		w.log.Debug("process output",
			"process", w.cfg.Name, "stream", stream, "line", stripANSI(sc.Text()))
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		w.log.Debug("process output drain ended",
			"process", w.cfg.Name, "stream", stream, "error", err)
	}
}

// DisableRestart turns off respawning. A child that exits afterwards retires
// the watcher.
func (w *Watcher) DisableRestart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.restart = false
}

// Terminate sends SIGTERM to the current child and marks the watcher as
// stopping, which also disables respawning. Returns ErrNotRunning when no
// child is alive to signal.
func (w *Watcher) Terminate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopping = true
	w.restart = false
	if w.cmd == nil || w.cmd.Process == nil {
		return ErrNotRunning
	}
	if err := w.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal %s process: %w", w.cfg.Name, err)
	}
	return nil
}

// Join waits until the supervision loop retires, at most timeout. It reports
// whether the watcher retired in time.
func (w *Watcher) Join(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-w.done:
		return true
	case <-t.C:
		return false
	}
}

// Done returns a channel closed when the supervision loop has retired: the
// child exited and no respawn will follow. Readable by any number of
// goroutines.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Alive reports whether a child process is currently running.
func (w *Watcher) Alive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cmd != nil
}

// PID returns the last known child pid. ok is false before the first spawn
// succeeded. After an exit the pid of the defunct child is still returned,
// since stop escalation needs a target even when the watcher has retired.
func (w *Watcher) PID() (pid int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pid, w.pid != 0
}

// ExitErr returns the cmd.Wait result of the most recent child exit, nil
// when the child has not exited or exited cleanly.
func (w *Watcher) ExitErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastExit
}

// expectSignalExit interprets an error from cmd.Wait after a termination
// signal was sent. Exits caused by SIGTERM or SIGKILL count as clean stops.
func expectSignalExit(err error, name string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			sig := status.Signal()
			if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
				return nil
			}
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}

// ansiSGR matches ANSI color escape sequences in process output.
var ansiSGR = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(line string) string {
	return ansiSGR.ReplaceAllString(line, "")
}

// mergedEnv overlays extra on the parent environment, in sorted key order.
// A nil return means the child inherits the environment untouched. Later
// entries win for duplicate keys, so the overlay overrides inherited values.
func mergedEnv(extra map[string]string) []string {
	if len(extra) == 0 {
		return nil
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
