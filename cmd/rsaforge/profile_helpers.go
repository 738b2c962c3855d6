package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsaforge/internal/prof"
)

// setupProfiling starts the profilers requested by flags. The returned
// cleanup stops them and is safe to call multiple times.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	cpuProfile, err := flags.GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := flags.GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}

	if cpuProfile != "" {
		if err := prof.StartCPU(cpuProfile); err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
	}

	cleaned := false
	return func() {
		if cleaned {
			return
		}
		cleaned = true
		if cpuProfile != "" {
			if err := prof.StopCPU(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to close cpu profile: %v\n", err)
			}
		}
		if memProfile != "" {
			if err := prof.WriteMem(memProfile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to write heap profile: %v\n", err)
			}
		}
	}, nil
}
