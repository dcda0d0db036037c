// Package prof backs the CLI's profiling flags with the runtime
// profilers.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// CPUProfile is an in-flight CPU profile bound to its output file.
type CPUProfile struct {
	f *os.File
}

// StartCPU begins sampling CPU usage into path.
func StartCPU(path string) (*CPUProfile, error) {
	f, err := create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &CPUProfile{f: f}, nil
}

// Stop ends sampling and closes the output. Repeat calls are no-ops.
func (p *CPUProfile) Stop() {
	if p.f == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = p.f.Close()
	p.f = nil
}

// WriteHeap captures a heap profile to path. A collection runs first so
// the snapshot reflects live memory, not garbage.
func WriteHeap(path string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %q: %w", path, err)
	}
	return f, nil
}
