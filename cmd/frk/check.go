package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"frkernel/internal/diag"
	"frkernel/internal/diagfmt"
	"frkernel/internal/driver"
	"frkernel/internal/kernel"
	"frkernel/internal/store"
	"frkernel/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check bundle.frb",
	Short: "Check every declaration of a bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckCmd,
}

func init() {
	f := checkCmd.Flags()
	f.IntP("jobs", "j", -1, "parallel workers (1 = sequential, 0 = GOMAXPROCS)")
	f.Int("max-diagnostics", -1, "stop collecting after this many diagnostics (0 = unlimited)")
	f.String("format", "", "diagnostic format (pretty|json|short)")
	f.Bool("timings", false, "report per-declaration timings")
	f.Bool("notes", false, "print diagnostic notes")
	f.Bool("cache", false, "reuse and store checked environments in the snapshot cache")
	f.String("cache-dir", "", "snapshot cache directory")
	f.Bool("progress", false, "show live progress on a terminal")
}

type checkOptions struct {
	driver   driver.Options
	naturals string
	format   diagfmt.Format
	pretty   diagfmt.PrettyOpts
	cache    bool
	cacheDir string
	progress bool
}

// checkOutcome is one run: the bag to print and whether it came from the
// cache.
type checkOutcome struct {
	bag    *diag.Bag
	cached bool
	result *driver.Result
}

func checkOptionsFrom(cmd *cobra.Command) (checkOptions, error) {
	f := cmd.Flags()
	opts := checkOptions{
		driver: driver.Options{
			Jobs:           cfg.Check.Jobs,
			MaxDiagnostics: cfg.Check.MaxDiagnostics,
			Timings:        cfg.Check.Timings,
		},
		naturals: cfg.Check.Naturals,
		cache:    cfg.Cache.Enabled,
		cacheDir: cfg.Cache.Dir,
	}
	if n, _ := f.GetInt("jobs"); n >= 0 {
		opts.driver.Jobs = n
	}
	if n, _ := f.GetInt("max-diagnostics"); n >= 0 {
		opts.driver.MaxDiagnostics = n
	}
	if f.Changed("timings") {
		opts.driver.Timings, _ = f.GetBool("timings")
	}
	if f.Changed("cache") {
		opts.cache, _ = f.GetBool("cache")
	}
	if s, _ := f.GetString("cache-dir"); s != "" {
		opts.cacheDir = s
		opts.cache = true
	}
	format, _ := f.GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	var err error
	if opts.format, err = diagfmt.ParseFormat(format); err != nil {
		return opts, err
	}
	notes, _ := f.GetBool("notes")
	opts.pretty = diagfmt.PrettyOpts{
		Color:     useColor(cmd, os.Stdout),
		ShowNotes: notes,
		ShowTypes: true,
		Summary:   true,
	}
	opts.progress, _ = f.GetBool("progress")
	opts.progress = opts.progress && isTerminal(os.Stdout) && opts.format == diagfmt.FormatPretty
	return opts, nil
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	opts, err := checkOptionsFrom(cmd)
	if err != nil {
		return usageError(err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out, err := checkBundle(ctx, args[0], opts)
	if err != nil {
		return usageError(err)
	}
	w := cmd.OutOrStdout()
	if out.cached {
		fmt.Fprintf(cmd.ErrOrStderr(), "frk: %s unchanged, reusing cached result\n", args[0])
	}
	if opts.format == diagfmt.FormatPretty && out.result != nil && out.result.Timings != nil {
		fmt.Fprint(w, out.result.Timings.Summary())
	}
	if err := diagfmt.Write(w, out.bag, opts.format, opts.pretty); err != nil {
		return err
	}
	dumpRing(cmd)
	if out.bag.HasErrors() {
		return errRejected
	}
	return nil
}

// checkBundle loads path and checks it, consulting the snapshot cache when
// enabled. Cache problems degrade to warnings in the returned bag.
func checkBundle(ctx context.Context, path string, opts checkOptions) (*checkOutcome, error) {
	b, err := store.ReadBundle(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	digest, err := b.Digest()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	kopts := b.EffectiveOptions(kernel.Options{Naturals: opts.naturals, Tracer: trace.FromContext(ctx)})
	key, err := store.CheckKey{
		Bundle:         digest,
		Naturals:       kopts.Naturals,
		MaxDiagnostics: opts.driver.MaxDiagnostics,
		Timings:        opts.driver.Timings,
	}.Digest()
	if err != nil {
		return nil, err
	}
	log := logger.With(zap.String("bundle", path), zap.Stringer("digest", digest))
	warnings := diag.NewBag(0)

	var cache *store.DiskCache
	if opts.cache {
		if cache, err = store.OpenDiskCache(opts.cacheDir); err != nil {
			warnings.Add(diag.New(diag.SevWarning, diag.IOCacheRead, -1, "", err.Error()))
			cache = nil
		}
	}
	if cache != nil {
		var snap store.Snapshot
		ok, err := cache.Get(key, &snap)
		switch {
		case err != nil && (errors.Is(err, store.ErrSchema) || errors.Is(err, store.ErrStale)):
			warnings.Add(diag.New(diag.SevWarning, diag.IOCacheStale, -1, "", err.Error()))
		case err != nil:
			warnings.Add(diag.New(diag.SevWarning, diag.IOCacheRead, -1, "", err.Error()))
		case ok:
			log.Debug("cache hit", zap.Int("diagnostics", len(snap.Diagnostics)))
			bag := diag.NewBag(0)
			for _, d := range snap.Diagnostics {
				bag.Add(d)
			}
			bag.Merge(warnings)
			bag.Sort()
			return &checkOutcome{bag: bag, cached: true}, nil
		}
	}

	k, err := b.Open(kopts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug("checking", zap.Int("decls", len(b.Decls)), zap.Int("jobs", opts.driver.Jobs))

	var res *driver.Result
	if opts.progress {
		res, err = runCheckWithUI(ctx, path, k, b.Decls, opts.driver)
	} else {
		res, err = driver.Check(ctx, k, b.Decls, opts.driver)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("checked", zap.Int("accepted", res.Accepted()), zap.Int("total", len(res.Status)))

	if cache != nil && ctx.Err() == nil && complete(res) {
		if err := cache.Put(key, store.Capture(key, k, res.Bag.Items())); err != nil {
			warnings.Add(diag.New(diag.SevWarning, diag.IOCacheWrite, -1, "", err.Error()))
		}
	}
	res.Bag.Merge(warnings)
	res.Bag.Sort()
	return &checkOutcome{bag: res.Bag, result: res}, nil
}

// complete reports whether every declaration reached a verdict.
func complete(res *driver.Result) bool {
	for _, st := range res.Status {
		if st == driver.StatusCancelled || st == driver.StatusPending {
			return false
		}
	}
	return true
}
