package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format [flags] [path...]",
	Short: "Sort imports and format Python files in place",
	Long: `Format runs the import sorter and then the code styler over every
Python file under the given paths (the current directory by default),
rewriting files whose content changes. File encodings, newline
conventions, and permissions are preserved.`,
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().String("ui", "auto", "render live progress (auto|on|off)")
}

func runFormat(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	rf, opts, err := readRunFlags(cmd)
	if err != nil {
		return err
	}

	results, err := runPipeline(cmd, args, opts, rf, "ufmt format")
	if err != nil {
		return err
	}

	_, failed := reportResults(results, "reformatted", rf.quiet)
	if failed > 0 {
		return fmt.Errorf("failed to format %d files", failed)
	}
	return nil
}
