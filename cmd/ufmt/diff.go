package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [flags] [path...]",
	Short: "Show the changes formatting would make",
	Long: `Diff runs the pipeline without writing and prints a unified diff for
every file that would change. Additions and removals are colored when
the color mode allows it.`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().String("ui", "auto", "render live progress (auto|on|off)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	rf, opts, err := readRunFlags(cmd)
	if err != nil {
		return err
	}
	opts.DryRun = true
	opts.Diff = true

	results, err := runPipeline(cmd, args, opts, rf, "ufmt diff")
	if err != nil {
		return err
	}

	changed, failed := reportResults(results, "", rf.quiet)
	for _, res := range results {
		if res.Err == nil && res.Diff != "" {
			printDiff(os.Stdout, res.Diff)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to diff %d files", failed)
	}
	if changed > 0 {
		return fmt.Errorf("%d files would be reformatted", changed)
	}
	return nil
}

var (
	diffAddStyle  = color.New(color.FgGreen)
	diffDelStyle  = color.New(color.FgRed)
	diffHunkStyle = color.New(color.FgCyan)
)

// printDiff печатает diff построчно, раскрашивая по первому символу.
func printDiff(out io.Writer, diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(out, diffAddStyle.Sprint(line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(out, diffDelStyle.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprintln(out, diffHunkStyle.Sprint(line))
		default:
			fmt.Fprintln(out, line)
		}
	}
}
