package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"frkernel/internal/trace"
)

// setupTracing merges the trace flags over the [trace] section, attaches
// the tracer to the command context and returns its cleanup.
func setupTracing(cmd *cobra.Command) (func(), error) {
	tc, err := cfg.TraceConfig()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if s, _ := flags.GetString("trace-level"); s != "" {
		if tc.Level, err = trace.ParseLevel(s); err != nil {
			return nil, err
		}
	}
	if s, _ := flags.GetString("trace-mode"); s != "" {
		if tc.Mode, err = trace.ParseMode(s); err != nil {
			return nil, err
		}
	}
	if s, _ := flags.GetString("trace-format"); s != "" {
		if tc.Format, err = trace.ParseFormat(s); err != nil {
			return nil, err
		}
	}
	if s, _ := flags.GetString("trace"); s != "" {
		tc.OutputPath = s
		// An explicit output without a level means "show phases".
		if tc.Level == trace.LevelOff {
			tc.Level = trace.LevelPhase
		}
		if tc.Mode == trace.ModeRing {
			tc.Mode = trace.ModeStream
		}
	}
	if n, _ := flags.GetInt("trace-ring-size"); n > 0 {
		tc.RingSize = n
	}
	tc.Logger = logger

	tracer, err := trace.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// dumpRing prints what a ring tracer holds, if the active tracer has one.
func dumpRing(cmd *cobra.Command) {
	var ring *trace.RingTracer
	switch t := trace.FromContext(cmd.Context()).(type) {
	case *trace.RingTracer:
		ring = t
	case *trace.MultiTracer:
		if r, ok := t.Ring(); ok && tracerOutputIsNotStderr(cmd) {
			ring = r
		}
	}
	if ring == nil {
		return
	}
	if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
		logger.Warn("trace dump failed")
	}
}

// tracerOutputIsNotStderr avoids printing both-mode events twice.
func tracerOutputIsNotStderr(cmd *cobra.Command) bool {
	s, _ := cmd.Flags().GetString("trace")
	if s == "" {
		s = cfg.Trace.Output
	}
	return s != "" && s != "-"
}
