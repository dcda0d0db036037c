package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cosinequanon/ufmt/internal/driver"
	"github.com/cosinequanon/ufmt/internal/observ"
)

// uiMode управляет живым прогрессом: auto смотрит на терминал.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func parseUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// live reports whether the run should draw the progress view.
func (m uiMode) live() bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// runFlags carries the presentation side of a formatting run; the
// driver.Options next to it carry the pipeline side.
type runFlags struct {
	quiet   bool
	timings bool
	ui      uiMode
}

func readRunFlags(cmd *cobra.Command) (runFlags, driver.Options, error) {
	var rf runFlags
	var opts driver.Options

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return rf, opts, err
	}
	rf.quiet = quiet

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return rf, opts, err
	}
	rf.timings = timings

	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return rf, opts, err
	}
	opts.Jobs = jobs

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return rf, opts, err
	}
	rf.ui, err = parseUIMode(uiValue)
	if err != nil {
		return rf, opts, err
	}

	if rf.timings {
		opts.Timer = observ.NewTimer()
	}
	return rf, opts, nil
}

// runPipeline expands paths and formats them, through the progress UI
// when the mode calls for one. Timings go to stderr so diffs and file
// lists on stdout stay machine-readable.
func runPipeline(cmd *cobra.Command, args []string, opts driver.Options, rf runFlags, title string) ([]driver.Result, error) {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var results []driver.Result
	if rf.ui.live() {
		results, err = runPathsWithUI(cmd, paths, opts, title)
	} else {
		results, err = driver.FormatPaths(cmd.Context(), paths, opts)
	}

	if rf.timings && opts.Timer != nil {
		fmt.Fprint(os.Stderr, opts.Timer.Summary())
	}
	return results, err
}

// reportResults prints per-file outcomes and returns (changed, failed)
// counts. verb names the action for changed files; empty keeps stdout
// silent about them.
func reportResults(results []driver.Result, verb string, quiet bool) (changed, failed int) {
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "ufmt: %v\n", res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		changed++
		if verb != "" && !quiet {
			fmt.Fprintf(os.Stdout, "%s %s\n", verb, res.Path)
		}
	}
	return changed, failed
}
