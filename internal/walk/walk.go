// Package walk discovers Python source files and fans work out over
// them.
//
// Discovery honours the project's .gitignore plus any configured
// exclude patterns; hidden directories and __pycache__ are always
// skipped.
package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cosinequanon/ufmt/internal/project"
)

// Files collects the Python files reachable from path, sorted for a
// deterministic processing order. A directory is walked recursively;
// a file path is returned as-is when it is a Python file that no
// pattern excludes. Exclude patterns and the root's .gitignore are
// both evaluated relative to the project root of path.
func Files(path string, excludes []string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}

	root, err := project.FindRoot(path)
	if err != nil {
		return nil, err
	}
	patterns, err := gitignorePatterns(root)
	if err != nil {
		return nil, err
	}
	matcher := NewMatcher(append(patterns, excludes...))

	if !info.IsDir() {
		if !pythonFile(path) {
			return nil, nil
		}
		if matcher.Match(relSlash(root, path), false) {
			return nil, nil
		}
		return []string{path}, nil
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == path {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "__pycache__" {
				return filepath.SkipDir
			}
			if matcher.Match(relSlash(root, p), true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !pythonFile(p) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if matcher.Match(relSlash(root, p), false) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(files)
	return files, nil
}

func pythonFile(path string) bool {
	switch filepath.Ext(path) {
	case ".py", ".pyi":
		return true
	}
	return false
}

// relSlash returns path relative to root in slash form, falling back
// to the path itself when no relative form exists.
func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// gitignorePatterns reads the project root's .gitignore, if present.
func gitignorePatterns(root string) ([]string, error) {
	raw, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read gitignore: %w", err)
	}
	return strings.Split(string(raw), "\n"), nil
}
