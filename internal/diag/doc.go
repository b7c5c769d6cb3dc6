// Package diag defines the diagnostic model the driver reports kernel
// results with.
//
// Diagnostic is the central record: a severity, a stable numeric Code, the
// declaration it concerns (by name and by position in the input list), a
// short message and, for type mismatches, the expected and inferred types as
// rendered text. Notes add secondary context such as the failed dependency a
// declaration was skipped for.
//
// Producers emit through a Reporter; BagReporter collects into a Bag, which
// sorts and deduplicates deterministically. Rendering lives in
// internal/diagfmt.
package diag
