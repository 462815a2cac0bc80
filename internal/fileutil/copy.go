package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/ddbenv/internal/sentinel"
)

// ErrEmptySrc is returned when a source path is empty.
const ErrEmptySrc = sentinel.Error("source path must not be empty")

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// CopyFileOptions configures file copy behavior.
type CopyFileOptions struct {
	Mode   *os.FileMode // set specific permissions on the destination (ignored on Windows)
	Sync   bool         // fsync the destination before closing
	Atomic bool         // write to a temp file in the destination directory, then rename
}

// CopyFile copies src to dst, creating parent directories as needed. A nil
// opts means no chmod, no sync, no atomic rename. When src and dst resolve to
// the same file, CopyFile returns nil without touching it (opening dst with
// O_TRUNC would otherwise destroy the source).
//
// With Atomic set, data goes to a temp file next to dst and is renamed into
// place, so concurrent readers never observe a partial file; the temp file is
// fsynced before the rename regardless of Sync.
func CopyFile(src, dst string, opts *CopyFileOptions) (retErr error) {
	if src == "" {
		return ErrEmptySrc
	}
	if dst == "" {
		return ErrEmptyDst
	}
	if sameFile(src, dst) {
		return nil
	}

	if err := EnsureDirForFile(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	srcFile, err := os.Open(src) //nolint:gosec // G304: paths are from controlled sources
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := srcFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close source: %w", closeErr)
		}
	}()

	var o CopyFileOptions
	if opts != nil {
		o = *opts
	}

	mode := os.FileMode(0o644)
	if o.Mode != nil {
		mode = *o.Mode
	}

	dstFile, writePath, err := openDst(dst, mode, o.Atomic)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(writePath)
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("copy: %w", err)
	}

	// Atomic writes fsync before the rename; a crash after rename must not
	// leave the final path with incomplete contents.
	if o.Sync || o.Atomic {
		if err := dstFile.Sync(); err != nil {
			_ = dstFile.Close()
			return fmt.Errorf("sync: %w", err)
		}
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	if writePath != dst {
		if err := os.Rename(writePath, dst); err != nil {
			return fmt.Errorf("rename temp file to destination: %w", err)
		}
	}
	return nil
}

// sameFile reports whether src and dst name the same existing file, following
// symlinks. Missing files never compare equal.
func sameFile(src, dst string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	di, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(si, di)
}

// openDst opens the write target. When atomic is true this is a temp file in
// dst's directory, chmodded up front so the final file never exists with
// broader permissions than requested.
func openDst(dst string, mode os.FileMode, atomic bool) (*os.File, string, error) {
	if atomic {
		tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-copy-*")
		if err != nil {
			return nil, "", fmt.Errorf("create temp file: %w", err)
		}
		if err := tmp.Chmod(mode); err != nil {
			name := tmp.Name()
			_ = tmp.Close()
			_ = os.Remove(name)
			return nil, "", fmt.Errorf("chmod temp file: %w", err)
		}
		return tmp, tmp.Name(), nil
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode) //nolint:gosec // G304: paths are from controlled sources
	if err != nil {
		return nil, "", fmt.Errorf("create destination: %w", err)
	}
	return f, dst, nil
}
