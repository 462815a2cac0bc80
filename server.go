package ddbenv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/giantswarm/ddbenv/internal/dbfile"
	"github.com/giantswarm/ddbenv/internal/ddblocal"
	"github.com/giantswarm/ddbenv/internal/fileutil"
	"github.com/giantswarm/ddbenv/internal/logging"
	"github.com/giantswarm/ddbenv/internal/netutil"
	"github.com/giantswarm/ddbenv/internal/process"
)

// engineName is the supervised process name used in logs.
const engineName = "dynamodb-local"

// processSnapshotLimit caps the process table dump logged when the engine
// port stays open after a graceful stop.
const processSnapshotLimit = 64

// prober answers whether the engine serves requests. Satisfied by
// *ddblocal.HealthChecker; swapped out in tests.
type prober interface {
	Probe(ctx context.Context) (bool, error)
}

// commandFunc builds the engine argv and environment. Swapped out in tests
// to launch stub children instead of a JVM.
type commandFunc func(spec ddblocal.Spec, install ddblocal.Installation) (argv []string, env map[string]string)

// Server supervises one DynamoDB Local engine process: it spawns the JVM,
// waits until the engine answers requests, and tears it down with escalating
// force when asked to stop. A stopped server can be started again; Reset
// packages that as stop, clean, start.
//
// Synchronization:
//   - mu serializes Start, Stop and Reset; no two transitions interleave on
//     the same server.
//   - state and watcher are atomics, so State, IsRunning and IsUp never
//     block behind a transition in progress.
//   - the config is fixed at New except dataPath, which SetDataPath may swap
//     under mu until the first start.
type Server struct {
	cfg  serverConfig
	port int

	health     prober
	newCommand commandFunc

	state   atomic.Int32
	watcher atomic.Pointer[process.Watcher]

	mu          sync.Mutex
	startedOnce bool
	dirLock     *fileutil.DirLock
}

// New creates a Server from the given options. Without WithPort a free TCP
// port is reserved for the server's lifetime, so concurrently constructed
// servers never collide. New performs no other I/O; the engine process is
// spawned by Start.
//
// Panics if an option receives an invalid value; see the individual With*
// functions for their constraints.
func New(opts ...Option) (*Server, error) {
	cfg := defaultServerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	if cfg.dataPath != "" {
		abs, err := filepath.Abs(cfg.dataPath)
		if err != nil {
			return nil, fmt.Errorf("resolve data path: %w", err)
		}
		cfg.dataPath = abs
	}

	port := cfg.port
	if port == 0 {
		p, err := ports().Free()
		if err != nil {
			return nil, fmt.Errorf("reserve engine port: %w", err)
		}
		port = p
	}

	s := &Server{
		cfg:        cfg,
		port:       port,
		newCommand: ddblocal.Command,
	}
	s.health = ddblocal.NewHealthChecker(s.URL(), logging.Logger())
	return s, nil
}

// Host returns the hostname the engine is addressed by.
func (s *Server) Host() string { return s.cfg.host }

// Port returns the TCP port the engine listens on.
func (s *Server) Port() int { return s.port }

// Address returns the host:port pair of the engine endpoint.
func (s *Server) Address() string {
	return net.JoinHostPort(s.cfg.host, strconv.Itoa(s.port))
}

// URL returns the engine's HTTP endpoint.
func (s *Server) URL() string {
	return "http://" + s.Address()
}

// DataPath returns the directory the engine persists its database files
// into, or "" for an in-memory server.
func (s *Server) DataPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.dataPath
}

// InMemory reports whether the engine keeps all tables in process memory.
func (s *Server) InMemory() bool {
	return s.DataPath() == ""
}

// SetDataPath swaps the data directory, e.g. to redirect the engine at a
// snapshot copy. An empty path switches the server to in-memory mode. Only
// allowed before the first start: returns ErrServerStarted afterwards, since
// the running engine's files cannot be moved under it.
func (s *Server) SetDataPath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startedOnce {
		return ErrServerStarted
	}
	if path == "" {
		s.cfg.dataPath = ""
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve data path: %w", err)
	}
	s.cfg.dataPath = abs
	return nil
}

// State returns the server's lifecycle phase. Lock-free.
func (s *Server) State() State {
	return State(s.state.Load())
}

func (s *Server) setState(st State) {
	s.state.Store(int32(st))
}

// IsRunning reports whether a supervised engine process is currently alive.
// This is process liveness, not reachability: a freshly spawned engine may
// not accept connections yet. Lock-free.
func (s *Server) IsRunning() bool {
	w := s.watcher.Load()
	return w != nil && w.Alive()
}

// IsUp reports whether the engine answers requests on its endpoint. IsUp
// does not take the transition lock, so it can be polled while Start or
// Stop is in flight.
func (s *Server) IsUp(ctx context.Context) bool {
	up, err := s.health.Probe(ctx)
	return err == nil && up
}

// Start launches the engine and blocks until it answers health probes.
//
// Start is idempotent: when the engine is already running and healthy it
// returns (false, nil) without side effects. The bool reports whether this
// call spawned a process; when Start returns an error the bool is false.
// A previous start that left an unhealthy or dead process behind is retired
// before the fresh spawn.
//
// A spawn failure is fatal and returned immediately. When the process comes
// up but never answers a probe, the error wraps ErrHealthCheckTimeout and
// the process stays under supervision so a later Stop can clean it up.
func (s *Server) Start(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Evaluated fresh on every call rather than cached: a healthy engine
	// makes Start a no-op, a crashed or unreachable one gets replaced.
	if s.IsRunning() && s.IsUp(ctx) {
		return false, nil
	}

	if err := s.startLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Server) startLocked(ctx context.Context) error {
	log := logging.Logger()
	s.setState(StateStarting)

	// A previous start may have left a dead or unreachable process behind.
	// Retire it first so the port is free for the fresh spawn.
	if s.watcher.Load() != nil {
		res := s.stopLocked(ctx)
		log.Debug("retired stale engine process", "port", s.port, "clean", res.Clean())
		s.setState(StateStarting)
	}

	if err := s.prepareDataDir(ctx); err != nil {
		s.setState(StateStopped)
		return err
	}

	install := s.installation()
	if err := install.Validate(); err != nil {
		s.setState(StateStopped)
		return fmt.Errorf("validate engine installation: %w", err)
	}

	argv, env := s.newCommand(s.engineSpec(), install)
	log.Debug("starting engine", "port", s.port, "argv", strings.Join(argv, " "))

	w, err := process.Start(process.Config{
		Name:        engineName,
		Argv:        argv,
		Env:         env,
		AutoRestart: true,
		Logger:      log,
	})
	if err != nil {
		s.setState(StateStopped)
		return fmt.Errorf("start %s: %w", engineName, err)
	}
	s.watcher.Store(w)
	s.startedOnce = true

	if err := s.waitUntilUp(ctx, w); err != nil {
		// The process stays supervised for a later Stop to clean up, but
		// functionally the server is stopped: the engine never served.
		s.setState(StateStopped)
		return err
	}

	s.setState(StateRunning)
	log.Info("engine up", "address", s.Address(), "in_memory", s.cfg.dataPath == "")
	return nil
}

// prepareDataDir creates and locks the data directory, then seeds the shared
// database when configured. No-op for in-memory servers. The lock is held
// until a clean stop, so two servers never write the same database files.
func (s *Server) prepareDataDir(ctx context.Context) error {
	if s.cfg.dataPath == "" {
		return nil
	}

	if s.dirLock == nil {
		lockCtx, cancel := context.WithTimeout(ctx, s.cfg.dataLockTimeout)
		defer cancel()
		lock, err := fileutil.LockDir(lockCtx, s.cfg.dataPath)
		if err != nil {
			return fmt.Errorf("lock data dir: %w", err)
		}
		s.dirLock = lock
	}

	return s.seedSharedDB()
}

// seedSharedDB copies the configured seed database into the data directory
// as the shared database file. An existing shared database is never
// overwritten, so the seed applies only to a fresh directory.
func (s *Server) seedSharedDB() error {
	if s.cfg.seedDatabase == "" {
		return nil
	}
	dst := filepath.Join(s.cfg.dataPath, dbfile.SharedDBFileName)
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	opts := &fileutil.CopyFileOptions{Sync: true, Atomic: true}
	if err := fileutil.CopyFile(s.cfg.seedDatabase, dst, opts); err != nil {
		return fmt.Errorf("seed shared database: %w", err)
	}
	logging.Logger().Debug("seeded shared database", "from", s.cfg.seedDatabase, "to", dst)
	return nil
}

func (s *Server) installation() ddblocal.Installation {
	return ddblocal.Installation{
		Dir:      s.cfg.installDir,
		Java:     s.cfg.javaBinary,
		JavaHome: s.cfg.javaHome,
	}
}

// engineSpec snapshots the engine-facing configuration. Caller holds mu.
func (s *Server) engineSpec() ddblocal.Spec {
	return ddblocal.Spec{
		Port:                    s.port,
		DBPath:                  s.cfg.dataPath,
		HeapSize:                s.cfg.heapSize,
		DelayTransientStatuses:  s.cfg.delayTransientStatuses,
		OptimizeDBBeforeStartup: s.cfg.optimizeDBBeforeStartup,
		ShareDB:                 s.cfg.shareDB,
	}
}

// waitUntilUp polls the health probe until the engine answers or the bounded
// retries are spent. The watcher's Done channel aborts the wait early only
// when supervision has retired for good; a crash-looping child keeps being
// probed until the deadline.
func (s *Server) waitUntilUp(ctx context.Context, w *process.Watcher) error {
	err := process.WaitReady(ctx, process.WaitReadyConfig{
		Interval:      s.cfg.healthCheckInterval,
		Timeout:       s.cfg.healthCheckInterval * time.Duration(s.cfg.healthCheckRetries),
		Name:          engineName,
		Port:          s.port,
		Logger:        logging.Logger(),
		ProcessExited: w.Done(),
	}, func(checkCtx context.Context, _ int) (bool, error) {
		return s.health.Probe(checkCtx)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, process.ErrProcessExited) {
		if exitErr := w.ExitErr(); exitErr != nil {
			return fmt.Errorf("%s exited while waiting for readiness: %v: %w", engineName, exitErr, err)
		}
		return fmt.Errorf("%s exited while waiting for readiness: %w", engineName, err)
	}
	return fmt.Errorf("%s on %s not answering after %d probes: %w",
		engineName, s.Address(), s.cfg.healthCheckRetries, ErrHealthCheckTimeout)
}

// StopResult reports the outcome of each step of the stop escalation. Stop
// never fails as a whole; inspect the result (or the logs) to see how far
// the escalation had to go.
type StopResult struct {
	// SignalSent reports that the graceful shutdown signal reached the
	// engine process.
	SignalSent bool

	// Joined reports that the engine process exited within the join timeout
	// after the graceful signal.
	Joined bool

	// PortClosed reports that the engine port was observed closed by the
	// polls following the graceful shutdown.
	PortClosed bool

	// ForceKillAttempted reports that the escalation reached the forced
	// kill step because the port stayed open.
	ForceKillAttempted bool

	// Terminated and Killed report which forced signals were delivered to
	// the process.
	Terminated bool
	Killed     bool

	// PortClosedAfterKill reports that the confirmation polls after the
	// forced kill observed the port closed.
	PortClosedAfterKill bool
}

// Clean reports whether the engine released its port by the end of the
// escalation.
func (r StopResult) Clean() bool {
	return r.PortClosed || r.PortClosedAfterKill
}

// Stop shuts the engine down, escalating as needed: graceful signal, join,
// port polls, then a forced terminate and kill with confirmation polls.
// Stop never fails; every step is best-effort and its outcome lands in the
// StopResult and the logs. Stopping a server that never started is a no-op
// returning a zero StopResult.
//
// ctx bounds the waiting steps. With default configuration a fully
// escalated Stop blocks for roughly 22 seconds.
func (s *Server) Stop(ctx context.Context) StopResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.stopLocked(ctx)
	if s.watcher.Load() == nil {
		s.releaseDirLock()
	}
	return res
}

func (s *Server) stopLocked(ctx context.Context) StopResult {
	w := s.watcher.Load()
	if w == nil {
		return StopResult{}
	}

	log := logging.Logger()
	s.setState(StateStopping)
	res := s.escalate(ctx, log, w)

	// An unclean stop keeps the handle so a later Stop can retry the
	// escalation. startLocked retires it anyway before a fresh spawn.
	if res.Clean() {
		s.watcher.Store(nil)
	}
	s.setState(StateStopped)
	log.Debug("engine stopped", "port", s.port, "clean", res.Clean())
	return res
}

// escalate walks the shutdown ladder against one watcher and reports what
// each rung achieved.
func (s *Server) escalate(ctx context.Context, log *slog.Logger, w *process.Watcher) StopResult {
	var res StopResult

	w.DisableRestart()
	if err := w.Terminate(); err != nil {
		// Child already gone; the join below just reaps the watcher.
		log.Debug("terminate engine", "port", s.port, "err", err)
	} else {
		res.SignalSent = true
	}

	res.Joined = w.Join(s.cfg.stopJoinTimeout)
	if !res.Joined {
		log.Warn("engine did not exit within join timeout",
			"port", s.port, "timeout", s.cfg.stopJoinTimeout)
	}

	err := netutil.WaitForPortClosed(ctx, s.cfg.host, s.port, s.cfg.portCloseInterval, s.cfg.portCloseRetries)
	if err == nil {
		res.PortClosed = true
		return res
	}

	// The engine had its chance. Snapshot the process table so an operator
	// can see who is squatting on the port, then force the kill.
	log.Warn("engine port still open after graceful stop",
		"port", s.port,
		"err", err,
		"processes", strings.Join(process.Snapshot(ctx, processSnapshotLimit), "\n"))

	if pid, ok := w.PID(); ok {
		res.ForceKillAttempted = true
		if err := process.Terminate(ctx, pid); err != nil {
			log.Warn("force-terminate engine", "port", s.port, "pid", pid, "err", err)
		} else {
			res.Terminated = true
		}
		if err := process.Kill(ctx, pid); err != nil {
			log.Warn("force-kill engine", "port", s.port, "pid", pid, "err", err)
		} else {
			res.Killed = true
		}
	} else {
		log.Warn("engine pid unknown, skipping force kill", "port", s.port)
	}

	err = netutil.WaitForPortClosed(ctx, s.cfg.host, s.port, s.cfg.killPortCloseInterval, s.cfg.killPortCloseRetries)
	if err == nil {
		res.PortClosedAfterKill = true
	} else {
		log.Warn("engine port still open after force kill", "port", s.port, "err", err)
	}

	return res
}

// releaseDirLock drops the data directory lock after the engine is gone.
// Caller holds mu.
func (s *Server) releaseDirLock() {
	if s.dirLock != nil {
		s.dirLock.Release(logging.Logger())
		s.dirLock = nil
	}
}
