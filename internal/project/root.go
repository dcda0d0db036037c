// Package project locates the root directory of a Python project.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RootMarkers are the directory entries that identify a project root,
// checked in order at each level of the walk.
var RootMarkers = []string{"pyproject.toml", ".git", ".hg"}

// FindRoot walks up from start and returns the first directory holding
// a root marker. When no marker exists the filesystem root is returned,
// so every path has a well-defined project root. A file path starts the
// walk from its parent directory.
func FindRoot(start string) (string, error) {
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, marker := range RootMarkers {
			candidate := filepath.Join(dir, marker)
			if _, statErr := os.Stat(candidate); statErr == nil {
				return dir, nil
			} else if !errors.Is(statErr, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, statErr)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir, nil
		}
		dir = parent
	}
}
