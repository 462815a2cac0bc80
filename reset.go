package ddbenv

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/giantswarm/ddbenv/internal/dbfile"
	"github.com/giantswarm/ddbenv/internal/fileutil"
	"github.com/giantswarm/ddbenv/internal/logging"
)

// Reset restores the engine to a clean state: stop, apply the strategy's
// mutation to the persisted state, start again. The whole cycle runs under
// the transition lock, so concurrent Start and Stop calls wait for it.
// Expect Reset to block about as long as a Stop plus a Start.
//
// ResetWipe and ResetPurge need database files to operate on and return
// ErrNotPersistent on an in-memory server. ResetRestart works on any server;
// an in-memory engine loses all tables from the restart alone.
//
// When the stop escalation cannot free the engine port, Reset aborts before
// mutating any files rather than rewrite a database the old process may
// still be writing.
func (s *Server) Reset(ctx context.Context, strategy ResetStrategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("invalid reset strategy: %v", strategy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strategy != ResetRestart && s.cfg.dataPath == "" {
		return fmt.Errorf("%v: %w", strategy, ErrNotPersistent)
	}

	wasSupervising := s.watcher.Load() != nil
	res := s.stopLocked(ctx)
	if wasSupervising && !res.Clean() {
		return fmt.Errorf("reset %v: engine still holds port %d after stop escalation", strategy, s.port)
	}

	switch strategy {
	case ResetRestart:
		// Nothing to mutate. The restart alone clears an in-memory engine;
		// a persistent one keeps its files.
	case ResetWipe:
		if err := fileutil.WipeDir(s.cfg.dataPath, fileutil.LockFileName); err != nil {
			return fmt.Errorf("wipe data dir: %w", err)
		}
		logging.Logger().Debug("wiped data dir", "path", s.cfg.dataPath)
	case ResetPurge:
		if err := s.purgeLocked(ctx); err != nil {
			return err
		}
	}

	return s.startLocked(ctx)
}

// purgeLocked drops the user tables from every database file in the data
// directory. The engine is stopped at this point; the files are quiesced.
func (s *Server) purgeLocked(ctx context.Context) error {
	files, err := dbfile.DatabaseFiles(s.cfg.dataPath)
	if err != nil {
		return fmt.Errorf("list database files: %w", err)
	}
	log := logging.Logger()
	for _, f := range files {
		if err := dbfile.DropUserTables(ctx, f, log); err != nil {
			return fmt.Errorf("purge %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// PersistedTableNames lists the user tables stored across the engine's
// database files, deduplicated and sorted. The files are only readable
// quiesced: returns ErrServerRunning while an engine process is alive and
// ErrNotPersistent for an in-memory server.
func (s *Server) PersistedTableNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.dataPath == "" {
		return nil, ErrNotPersistent
	}
	if s.IsRunning() {
		return nil, ErrServerRunning
	}

	files, err := dbfile.DatabaseFiles(s.cfg.dataPath)
	if err != nil {
		return nil, fmt.Errorf("list database files: %w", err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, f := range files {
		tables, err := dbfile.TableNames(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(f), err)
		}
		for _, tbl := range tables {
			if _, ok := seen[tbl]; ok {
				continue
			}
			seen[tbl] = struct{}{}
			names = append(names, tbl)
		}
	}
	slices.Sort(names)
	return names, nil
}
