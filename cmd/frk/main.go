package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"frkernel/internal/config"
	"frkernel/internal/version"
)

var (
	cfg     config.Config
	cfgPath string
	logger  = zap.NewNop()
	cleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "frk",
	Short: "Dependent type kernel",
	Long: `frk checks bundles of kernel declarations: universes, axioms, inductive
families and definitions, and reports every rejected declaration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return usageError(err)
		}
		if err := initLogger(cmd); err != nil {
			return err
		}
		stopProf, err := setupProfiling(cmd)
		if err != nil {
			return usageError(err)
		}
		stopTrace, err := setupTracing(cmd)
		if err != nil {
			stopProf()
			return usageError(err)
		}
		cleanup = func() {
			stopTrace()
			stopProf()
		}
		return nil
	},
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(preludeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to frk.toml (default: nearest one above the working directory)")
	pf.String("color", "", "colorize output (auto|always|never)")
	pf.BoolP("verbose", "v", false, "log at debug level")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "", "trace storage (stream|ring|both|zap)")
	pf.String("trace-format", "", "trace line format (auto|text|ndjson)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	// Cleanup runs here rather than in PersistentPostRun, which cobra skips
	// when a command fails.
	err := rootCmd.Execute()
	cleanup()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "frk: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func loadConfig(cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if path != "" {
		cfg, err = config.Load(path)
		cfgPath = path
		return err
	}
	cfg, cfgPath, err = config.Discover(".")
	return err
}

// initLogger builds the production zap logger the trace zap sink and the
// command diagnostics write to.
func initLogger(cmd *cobra.Command) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	if cfgPath != "" {
		logger.Debug("loaded config", zap.String("path", cfgPath))
	}
	return nil
}

// useColor resolves --color, then [output].color, against whether f is a
// terminal.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Flags().GetString("color")
	if mode == "" {
		mode = cfg.Output.Color
	}
	switch mode {
	case "always", "on":
		return true
	case "never", "off":
		return false
	}
	return os.Getenv("NO_COLOR") == "" && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// exitError carries a process exit status through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// errRejected is returned when a check finished with error diagnostics;
// they have already been printed.
var errRejected = errors.New("declarations rejected")

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: 2, err: err}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if errors.Is(err, errRejected) {
		return 1
	}
	return 2
}
