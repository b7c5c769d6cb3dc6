package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frkernel/internal/prof"
)

// setupProfiling starts the profilers the persistent flags ask for. The
// returned cleanup is safe to call more than once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	f := cmd.Flags()
	var opts prof.Options
	opts.CPU, _ = f.GetString("cpu-profile")
	opts.Mem, _ = f.GetString("mem-profile")
	opts.Trace, _ = f.GetString("runtime-trace")
	if !opts.Any() {
		return func() {}, nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := s.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
		}
	}, nil
}
