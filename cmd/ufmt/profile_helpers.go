package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosinequanon/ufmt/internal/prof"
)

// setupProfiling reads the persistent profiling flags and arms the
// matching profilers. The returned cleanup is idempotent and safe to
// defer unconditionally.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	cpuPath, err := flags.GetString("cpu-profile")
	if err != nil {
		return nil, err
	}
	heapPath, err := flags.GetString("mem-profile")
	if err != nil {
		return nil, err
	}

	var undo []func()
	if cpuPath != "" {
		cpu, err := prof.StartCPU(cpuPath)
		if err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		undo = append(undo, cpu.Stop)
	}
	if heapPath != "" {
		undo = append(undo, func() {
			if err := prof.WriteHeap(heapPath); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
			}
		})
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		for _, fn := range undo {
			fn()
		}
	}, nil
}
