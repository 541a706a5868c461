package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// startProfiling writes a CPU profile to <prefix>.cpu.pprof until the
// returned stop func runs, which also writes <prefix>.mem.pprof.
func startProfiling(prefix string) (func() error, error) {
	cpu, err := os.Create(prefix + ".cpu.pprof")
	if err != nil {
		return nil, fmt.Errorf("create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpu); err != nil {
		cpu.Close()
		return nil, fmt.Errorf("start CPU profile: %w", err)
	}

	return func() error {
		pprof.StopCPUProfile()
		cpuErr := cpu.Close()

		mem, err := os.Create(prefix + ".mem.pprof")
		if err != nil {
			return errors.Join(cpuErr, fmt.Errorf("create memory profile: %w", err))
		}
		defer mem.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(mem); err != nil {
			return errors.Join(cpuErr, fmt.Errorf("write memory profile: %w", err))
		}
		return cpuErr
	}, nil
}
