package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cosinequanon/ufmt/internal/format"
	"github.com/cosinequanon/ufmt/internal/observ"
	"github.com/cosinequanon/ufmt/internal/source"
	"github.com/cosinequanon/ufmt/internal/textdiff"
	"github.com/cosinequanon/ufmt/internal/usort"
)

// Options configures a formatting run.
type Options struct {
	// DryRun reports what would change without touching any file.
	DryRun bool
	// Diff populates Result.Diff for changed files.
	Diff bool
	// Jobs caps how many files are processed concurrently.
	// Zero or negative means one worker per CPU.
	Jobs int
	// Progress receives per-file events when set.
	Progress ProgressSink
	// Timer records run phases when set.
	Timer *observ.Timer
}

// Result captures the outcome of formatting a single file.
type Result struct {
	Path    string
	Changed bool
	Written bool
	Diff    string
	Err     error
}

// StageObserver is told which pipeline stage is about to run for a file.
type StageObserver func(Stage)

// FormatString runs the import sorter and then the style passes over
// LF-normalized text. A pass that has nothing to do hands its input to
// the next one unchanged.
func FormatString(path, text string, sortCfg usort.Config, style format.Mode) (string, error) {
	return runPasses(path, text, sortCfg, style, nil)
}

func runPasses(path, text string, sortCfg usort.Config, style format.Mode, observe StageObserver) (string, error) {
	if observe == nil {
		observe = func(Stage) {}
	}

	observe(StageSort)
	sorted, err := usort.Sort(text, sortCfg, path)
	if err != nil {
		return "", err
	}

	observe(StageStyle)
	styled, err := format.Format(sorted, style)
	if err != nil {
		if errors.Is(err, format.ErrNothingChanged) {
			return sorted, nil
		}
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return styled, nil
}

// FormatFile formats path on disk. Changes are detected on the decoded
// text, and the detected encoding and newline convention are reapplied
// on write, so unchanged files are never rewritten and changed ones
// keep their byte-level conventions. Errors land in the Result rather
// than aborting the run.
func FormatFile(path string, opts Options) Result {
	started := time.Now()
	res := formatFile(path, opts)

	final := Event{File: path, Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(started)}
	if res.Err != nil {
		final.Status = StatusError
		final.Err = res.Err
	}
	emit(opts.Progress, final)
	return res
}

func formatFile(path string, opts Options) Result {
	res := Result{Path: path}
	working := func(stage Stage) {
		emit(opts.Progress, Event{File: path, Stage: stage, Status: StatusWorking})
	}

	working(StageConfig)
	sortCfg, err := usort.FindConfig(path)
	if err != nil {
		res.Err = err
		return res
	}
	style, err := styleMode(path)
	if err != nil {
		res.Err = err
		return res
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	text, enc, newline, err := source.DecodeBytes(raw)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}

	formatted, err := runPasses(path, text, sortCfg, style, working)
	if err != nil {
		res.Err = err
		return res
	}
	if formatted == text {
		return res
	}
	res.Changed = true

	if opts.Diff {
		diff, diffErr := textdiff.Unified(text, formatted, filepath.ToSlash(path))
		if diffErr != nil {
			res.Err = diffErr
			return res
		}
		res.Diff = diff
	}
	if opts.DryRun {
		return res
	}

	out, err := source.EncodeText(formatted, enc, newline)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}

	working(StageWrite)
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, out, mode.Perm()); err != nil {
		res.Err = err
		return res
	}
	res.Written = true
	return res
}
