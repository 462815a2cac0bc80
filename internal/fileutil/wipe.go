package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WipeDir removes every entry inside dir while keeping dir itself, so the
// directory's ownership and mode survive the wipe. A missing dir is not an
// error.
//
// Entries named in keep are preserved (lock files, for one).
func WipeDir(dir string, keep ...string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	kept := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		kept[name] = struct{}{}
	}

	for _, entry := range entries {
		if _, ok := kept[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}
