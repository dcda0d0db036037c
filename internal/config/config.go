// Package config resolves project-level ufmt settings.
//
// Settings live in the [tool.ufmt] table of the project's
// pyproject.toml. Unknown keys and a malformed table produce warnings,
// not failures. The single hard error is an excludes value of the
// wrong shape: that one controls which files get touched.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cosinequanon/ufmt/internal/log"
	"github.com/cosinequanon/ufmt/internal/project"
	"github.com/cosinequanon/ufmt/internal/pyproject"
)

// Config is the resolved project configuration for a start path.
type Config struct {
	// ProjectRoot is the directory that anchors relative exclude
	// patterns and the batch walk.
	ProjectRoot string
	// PyprojectPath is the configuration file consulted, empty when
	// the project has none.
	PyprojectPath string
	// Excludes holds gitignore-style patterns, verbatim from the file.
	Excludes []string
}

// ErrExcludesType reports an excludes setting that is not a list of
// strings.
var ErrExcludesType = errors.New("excludes must be a list of strings")

// Resolve determines the project root for path and loads [tool.ufmt].
// An empty path resolves from the current working directory. A missing
// pyproject.toml yields an empty configuration anchored at the
// detected root.
func Resolve(path string) (Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		path = cwd
	}

	root, err := project.FindRoot(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{ProjectRoot: root}

	// Only the root's own pyproject.toml counts. A root marked by
	// .git alone has no configuration even when an ancestor does.
	pyPath := filepath.Join(root, pyproject.FileName)
	info, statErr := os.Stat(pyPath)
	if statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to stat %q: %w", pyPath, statErr)
	}
	if !info.Mode().IsRegular() {
		return cfg, nil
	}
	cfg.PyprojectPath = pyPath

	doc, err := pyproject.LoadRaw(pyPath)
	if err != nil {
		return Config{}, err
	}

	raw, ok := pyproject.Tool(doc, "ufmt")
	if !ok {
		return cfg, nil
	}
	table, ok := pyproject.Table(raw)
	if !ok {
		log.WithComponent("config").Warn().
			Str("path", pyPath).
			Msg("tool.ufmt is not a table, ignoring")
		return cfg, nil
	}

	known := map[string]bool{}
	if rawExcludes, has := table["excludes"]; has {
		known["excludes"] = true
		// Non-string elements print fine as patterns; only a non-list
		// shape is unrecoverable.
		excludes, ok := pyproject.CoerceStrings(rawExcludes)
		if !ok {
			return Config{}, fmt.Errorf("%s: %w", pyPath, ErrExcludesType)
		}
		cfg.Excludes = excludes
	}

	var unknown []string
	for key := range table {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		log.WithComponent("config").Warn().
			Str("path", pyPath).
			Strs("keys", unknown).
			Msg("unknown configuration values ignored")
	}

	return cfg, nil
}
