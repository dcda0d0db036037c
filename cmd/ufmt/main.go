package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cosinequanon/ufmt/internal/log"
	"github.com/cosinequanon/ufmt/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ufmt",
	Short: "Safe, atomic formatting for Python files",
	Long:  `ufmt sorts imports and formats Python source files in one pass`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupRun(cmd)
	},
}

func main() {
	// Версия для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("jobs", 0, "maximum files formatted in parallel (0 = all CPUs)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupRun applies the persistent flags before any subcommand runs:
// the log level and the global color switch.
func setupRun(cmd *cobra.Command) error {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}
	level := "info"
	if quiet {
		level = "error"
	}
	log.Configure(log.Config{Level: level})

	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		// fatih/color already detects terminals and NO_COLOR.
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
