package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cosinequanon/ufmt/internal/pyproject"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Set up ufmt configuration for a project",
	Long: `Initialize ufmt configuration by adding a [tool.ufmt] table to the
project's pyproject.toml, creating the file when the project has none.
If [path] is omitted, initializes the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit plants a [tool.ufmt] table in the target directory, creating
// the directory when the argument names one that does not exist yet. An
// existing pyproject.toml is extended in place; one that already carries
// a [tool.ufmt] table is refused rather than rewritten.
func runInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	arg := "."
	if len(args) == 1 {
		arg = args[0]
	}
	target, err := filepath.Abs(arg)
	if err != nil {
		return err
	}
	if err := ensureDir(target); err != nil {
		return err
	}

	created, err := plantConfigTable(filepath.Join(target, pyproject.FileName))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Initialized ufmt in %s\n", displayPath(target))
	if created {
		fmt.Fprintf(os.Stdout, "  - %s\n", pyproject.FileName)
	} else {
		fmt.Fprintf(os.Stdout, "  - %s (updated)\n", pyproject.FileName)
	}
	return nil
}

// ensureDir creates target when missing and rejects non-directories.
func ensureDir(target string) error {
	st, err := os.Stat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	case err != nil:
		return err
	case !st.IsDir():
		return fmt.Errorf("%q is not a directory", target)
	}
	return nil
}

// displayPath prefers the path relative to the working directory when
// that resolves cleanly.
func displayPath(target string) string {
	wd, err := os.Getwd()
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(wd, target)
	if err != nil {
		return target
	}
	return rel
}

// plantConfigTable writes the starter [tool.ufmt] table to pyPath,
// appending when the file already exists. created reports whether the
// file itself is new.
func plantConfigTable(pyPath string) (created bool, err error) {
	info, statErr := os.Stat(pyPath)
	if statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return false, statErr
		}
		if err := os.WriteFile(pyPath, []byte(defaultConfigTable()), 0o644); err != nil {
			return false, fmt.Errorf("failed to write %s: %w", pyPath, err)
		}
		return true, nil
	}

	doc, err := pyproject.LoadRaw(pyPath)
	if err != nil {
		return false, err
	}
	if _, ok := pyproject.Tool(doc, "ufmt"); ok {
		return false, fmt.Errorf("already configured: %s has a [tool.ufmt] table", pyPath)
	}

	current, err := os.ReadFile(pyPath)
	if err != nil {
		return false, err
	}
	out := append([]byte{}, current...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, '\n')
	out = append(out, []byte(defaultConfigTable())...)
	if err := os.WriteFile(pyPath, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to update %s: %w", pyPath, err)
	}
	return false, nil
}

// defaultConfigTable returns the starter [tool.ufmt] table. The excludes
// list is the only knob read from this table; sorter and styler options
// live under their own [tool.usort] and [tool.black] tables.
func defaultConfigTable() string {
	return `[tool.ufmt]
# Gitignore-style patterns, relative to the project root.
excludes = []
`
}
