package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"frkernel/internal/dag"
	"frkernel/internal/kernel"
	"frkernel/internal/trace"
)

// CheckParallel layers decls into batches of mutually independent
// declarations and checks each batch with up to opts.Jobs goroutines.
// Results are those Sequential would produce.
func CheckParallel(ctx context.Context, k *kernel.Kernel, decls []kernel.Decl, opts Options) (*Result, error) {
	r := newRun(ctx, k, decls, opts)
	span := trace.Begin(r.tracer, trace.ScopeDriver, "parallel", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)

	topo := dag.ToposortKahn(dag.BuildGraph(r.idx, r.nodes))
	if topo.Cyclic {
		span.End("cycle")
		return nil, fmt.Errorf("declaration graph has a cycle through %d declarations", len(topo.Cycles))
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for n, batch := range topo.Batches {
		trace.Point(r.tracer, trace.ScopeDriver, "batch", fmt.Sprintf("#%d: %d declarations", n, len(batch)), span.ID())
		// Workers never return errors: a failed declaration must not
		// cancel its independent neighbours.
		var g errgroup.Group
		g.SetLimit(min(jobs, len(batch)))
		for _, id := range batch {
			g.Go(func() error {
				r.one(ctx, int(id))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.End("error")
			return nil, err
		}
	}

	res := r.finish()
	span.WithExtra("accepted", fmt.Sprint(res.Accepted())).
		WithExtra("batches", fmt.Sprint(len(topo.Batches))).
		End("")
	return res, nil
}

// Check dispatches on opts.Jobs: 1 runs Sequential, anything else
// CheckParallel.
func Check(ctx context.Context, k *kernel.Kernel, decls []kernel.Decl, opts Options) (*Result, error) {
	if opts.Jobs == 1 {
		return Sequential(ctx, k, decls, opts), nil
	}
	return CheckParallel(ctx, k, decls, opts)
}
