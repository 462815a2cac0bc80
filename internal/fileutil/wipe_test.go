package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWipeDir(t *testing.T) {
	t.Parallel()

	t.Run("removes files and subdirectories", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeTestFile(t, dir, "shared-local-instance.db", "data")
		writeTestFile(t, dir, "other.db", "data")
		if err := os.MkdirAll(filepath.Join(dir, "sub", "deep"), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}

		if err := WipeDir(dir); err != nil {
			t.Fatalf("WipeDir() error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("dir has %d entries after wipe, want 0", len(entries))
		}
		requireDir(t, dir)
	})

	t.Run("preserves kept entries", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeTestFile(t, dir, LockFileName, "")
		writeTestFile(t, dir, "shared-local-instance.db", "data")

		if err := WipeDir(dir, LockFileName); err != nil {
			t.Fatalf("WipeDir() error: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, LockFileName)); err != nil {
			t.Errorf("lock file removed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "shared-local-instance.db")); !os.IsNotExist(err) {
			t.Errorf("database file survived wipe: %v", err)
		}
	})

	t.Run("missing directory is not an error", func(t *testing.T) {
		t.Parallel()
		if err := WipeDir(filepath.Join(t.TempDir(), "absent")); err != nil {
			t.Fatalf("WipeDir() on missing dir error: %v", err)
		}
	})
}
