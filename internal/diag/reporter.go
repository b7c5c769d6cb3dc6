package diag

import "sync"

// Reporter receives diagnostics from the driver. Implementations:
// BagReporter (into a Bag), LockedReporter (serialises another reporter),
// DedupReporter (drops repeats).
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates details before emitting to a Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

func NewReportBuilder(r Reporter, sev Severity, code Code, index int, decl, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(sev, code, index, decl, msg)}
}

func ReportError(r Reporter, code Code, index int, decl, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, index, decl, msg)
}

func ReportInfo(r Reporter, code Code, index int, decl, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, index, decl, msg)
}

func (b *ReportBuilder) WithNote(decl, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(decl, msg)
	return b
}

// Emit sends the diagnostic exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter writes into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// LockedReporter makes another reporter safe for concurrent use.
type LockedReporter struct {
	mu   sync.Mutex
	next Reporter
}

func NewLockedReporter(next Reporter) *LockedReporter {
	return &LockedReporter{next: next}
}

func (r *LockedReporter) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.Report(d)
}
