// Package driver feeds declaration lists to a kernel and turns the outcome
// into diagnostics. Sequential checks in input order; CheckParallel checks
// independent declarations concurrently. Both apply the same policy: a
// declaration that uses a name whose every earlier definer failed is
// skipped, not checked, so both produce the same results.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"frkernel/internal/dag"
	"frkernel/internal/diag"
	"frkernel/internal/kernel"
	"frkernel/internal/observ"
	"frkernel/internal/term"
	"frkernel/internal/trace"
)

// Options tune a run.
type Options struct {
	Jobs           int  // parallel workers; <= 0 means GOMAXPROCS
	MaxDiagnostics int  // bag limit; <= 0 means unlimited
	Timings        bool // attach an ObsTimings diagnostic
	Progress       ProgressSink
}

// Status is the outcome of one declaration.
type Status uint8

const (
	StatusPending Status = iota
	StatusWorking
	StatusAccepted
	StatusRejected
	StatusSkipped
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusWorking:
		return "checking"
	case StatusAccepted:
		return "accepted"
	case StatusRejected:
		return "rejected"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// ErrSkipped marks declarations skipped for a failed dependency.
var ErrSkipped = errors.New("dependency failed")

// SkipError names the failed declaration a skipped one depends on.
type SkipError struct {
	Decl    string
	Blocker string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("%s skipped: it uses %s, which failed", e.Decl, e.Blocker)
}

func (e *SkipError) Unwrap() error { return ErrSkipped }

// Result holds one entry per input declaration, in input order.
type Result struct {
	Status  []Status
	Errors  []error
	Bag     *diag.Bag
	Timings *observ.Report
}

// Accepted counts declarations that committed.
func (r *Result) Accepted() int {
	n := 0
	for _, s := range r.Status {
		if s == StatusAccepted {
			n++
		}
	}
	return n
}

// OK reports whether every declaration committed.
func (r *Result) OK() bool { return r.Accepted() == len(r.Status) }

// Plan describes each declaration's defined and used names for ordering.
// Numerals count as a use of the naturals inductive.
func Plan(a *term.Arena, decls []kernel.Decl, naturals string) []dag.Node {
	names := a.Names()
	nodes := make([]dag.Node, len(decls))
	for i, d := range decls {
		n := dag.Node{Name: d.Name, Defines: d.Defines()}
		seen := make(map[string]struct{})
		use := func(name string) {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				n.Uses = append(n.Uses, name)
			}
		}
		for _, t := range d.Terms() {
			for _, id := range a.Constants(t) {
				use(names.MustLookup(id))
			}
			if naturals != "" && a.UsesNumerals(t) {
				use(naturals)
			}
		}
		nodes[i] = n
	}
	return nodes
}

// run is the state shared by both strategies.
type run struct {
	k        *kernel.Kernel
	decls    []kernel.Decl
	nodes    []dag.Node
	idx      dag.Index
	before   map[string]struct{}
	res      *Result
	timer    *observ.Timer
	tracer   trace.Tracer
	progress ProgressSink
}

func newRun(ctx context.Context, k *kernel.Kernel, decls []kernel.Decl, opts Options) *run {
	nodes := Plan(k.Arena(), decls, k.Options().Naturals)
	r := &run{
		k:        k,
		decls:    decls,
		nodes:    nodes,
		idx:      dag.BuildIndex(nodes),
		tracer:   trace.FromContext(ctx),
		progress: opts.Progress,
		res: &Result{
			Status: make([]Status, len(decls)),
			Errors: make([]error, len(decls)),
			Bag:    diag.NewBag(opts.MaxDiagnostics),
		},
	}
	r.before = make(map[string]struct{})
	for _, n := range nodes {
		for _, name := range n.Uses {
			if _, ok := k.Lookup(name); ok {
				r.before[name] = struct{}{}
			}
		}
	}
	if opts.Timings {
		r.timer = observ.NewTimer()
	}
	return r
}

// one checks declaration i. Earlier definers of every name i uses must be
// settled.
func (r *run) one(ctx context.Context, i int) {
	d := r.decls[i]
	if err := ctx.Err(); err != nil {
		r.res.Status[i] = StatusCancelled
		r.res.Errors[i] = fmt.Errorf("%s not checked: %w", d.Name, err)
		r.notify(i, StatusCancelled, r.res.Errors[i], 0)
		return
	}
	id := dag.NodeID(i)
	if blocker, blocked := r.idx.Blocker(r.nodes[i], id, r.accepted, r.known); blocked {
		r.res.Status[i] = StatusSkipped
		r.res.Errors[i] = &SkipError{Decl: d.Name, Blocker: r.decls[blocker].Name}
		r.notify(i, StatusSkipped, r.res.Errors[i], 0)
		return
	}
	r.notify(i, StatusWorking, nil, 0)
	start := time.Now()
	phase := -1
	if r.timer != nil {
		phase = r.timer.Begin(d.Name)
	}
	err := r.k.DeclareContext(ctx, d)
	if r.timer != nil {
		note := "ok"
		if err != nil {
			note = "failed"
		}
		r.timer.End(phase, note)
	}
	r.res.Errors[i] = err
	st := StatusAccepted
	if err != nil {
		st = StatusRejected
	}
	r.res.Status[i] = st
	r.notify(i, st, err, time.Since(start))
}

func (r *run) accepted(id dag.NodeID) bool {
	return r.res.Status[id] == StatusAccepted
}

// known reports names committed before the run began, so re-running a
// checked list fails with DuplicateName instead of skipping.
func (r *run) known(name string) bool {
	_, ok := r.before[name]
	return ok
}

// finish converts per-declaration outcomes into diagnostics.
func (r *run) finish() *Result {
	rep := diag.BagReporter{Bag: r.res.Bag}
	for i, err := range r.res.Errors {
		name := r.decls[i].Name
		switch r.res.Status[i] {
		case StatusRejected:
			rep.Report(diag.FromError(i, name, err))
		case StatusSkipped:
			var se *SkipError
			errors.As(err, &se)
			diag.ReportError(rep, diag.DrvSkipped, i, name, err.Error()).
				WithNote(se.Blocker, "failed earlier").
				Emit()
		case StatusCancelled:
			diag.ReportError(rep, diag.DrvCancelled, i, name, err.Error()).Emit()
		}
	}
	if r.timer != nil {
		report := r.timer.Report()
		r.res.Timings = &report
		appendTimingDiagnostic(r.res.Bag, report)
	}
	r.res.Bag.Sort()
	return r.res
}

// Sequential checks decls one by one in input order.
func Sequential(ctx context.Context, k *kernel.Kernel, decls []kernel.Decl, opts Options) *Result {
	r := newRun(ctx, k, decls, opts)
	span := trace.Begin(r.tracer, trace.ScopeDriver, "sequential", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	for i := range decls {
		r.one(ctx, i)
	}
	res := r.finish()
	span.WithExtra("accepted", fmt.Sprint(res.Accepted())).End("")
	return res
}
