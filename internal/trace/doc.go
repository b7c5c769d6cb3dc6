// Package trace records spans for the checking pipeline.
//
// Tracing is off by default and costs nothing then: Begin returns a span
// bound to the Nop tracer. When enabled, events stream to a writer, stay in
// a ring buffer for post-mortem dumps, or go to a zap logger.
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: nothing is streamed; the ring keeps its contents for dumps
//   - LevelPhase: driver and per-declaration spans
//   - LevelDetail: passes inside a declaration (binders, constructors, eliminator)
//   - LevelDebug: everything, including per-term events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeDecl, "Nat", parentID)
//	defer span.End("")
package trace
