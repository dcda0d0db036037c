package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path...]",
	Short: "Report files that need formatting without writing",
	Long: `Check runs the same pipeline as format but never touches the files,
listing each one that would change. The exit status is non-zero when
any file needs formatting, which makes check suitable for CI.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("ui", "auto", "render live progress (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	rf, opts, err := readRunFlags(cmd)
	if err != nil {
		return err
	}
	opts.DryRun = true

	results, err := runPipeline(cmd, args, opts, rf, "ufmt check")
	if err != nil {
		return err
	}

	changed, failed := reportResults(results, "would reformat", rf.quiet)
	if failed > 0 {
		return fmt.Errorf("failed to check %d files", failed)
	}
	if changed > 0 {
		return fmt.Errorf("%d files would be reformatted", changed)
	}
	return nil
}
