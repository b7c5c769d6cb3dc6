package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func names(evs []Event) []string {
	out := make([]string, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind.String()+":"+ev.Name)
	}
	return out
}

func TestRingWrapsOldestFirst(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeDecl, n, "", 0)
	}
	want := []string{"point:c", "point:d", "point:e"}
	if diff := cmp.Diff(want, names(r.Snapshot())); diff != "" {
		t.Fatalf("ring (-want +got):\n%s", diff)
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	r := NewRingTracer(16, LevelPhase)
	drv := Begin(r, ScopeDriver, "run", 0)
	Begin(r, ScopeDecl, "Nat", drv.ID()).End("ok")
	Begin(r, ScopePass, "positivity", 0).End("")
	Point(r, ScopeNode, "whnf", "", 0)
	drv.End("")

	want := []string{"begin:run", "begin:Nat", "end:Nat", "end:run"}
	if diff := cmp.Diff(want, names(r.Snapshot())); diff != "" {
		t.Fatalf("phase level (-want +got):\n%s", diff)
	}
	evs := r.Snapshot()
	if evs[1].ParentID != evs[0].SpanID || evs[0].SpanID == 0 {
		t.Fatalf("decl span not parented to driver span: %+v", evs[1])
	}
	if evs[2].Detail != "ok" {
		t.Fatalf("end detail = %q", evs[2].Detail)
	}
}

func TestDisabledSpanIsInert(t *testing.T) {
	s := Begin(Nop, ScopeDecl, "x", 0).WithExtra("k", "v")
	if s.ID() != 0 || s.End("") != 0 {
		t.Fatal("span on Nop tracer recorded something")
	}
	ctx := WithSpan(context.Background(), s)
	if CurrentSpan(ctx) != 0 {
		t.Fatal("disabled span became a parent")
	}
}

func TestContextCarriesTracerAndSpan(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	if FromContext(ctx) != Tracer(r) {
		t.Fatal("tracer lost in context")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("bare context should give Nop")
	}
	s := Begin(FromContext(ctx), ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, s)
	if CurrentSpan(ctx) != s.ID() {
		t.Fatalf("current span = %d, want %d", CurrentSpan(ctx), s.ID())
	}
}

func TestFormatText(t *testing.T) {
	ev := &Event{
		Seq:    7,
		Kind:   KindSpanEnd,
		Scope:  ScopeDecl,
		Name:   "Vec",
		Detail: "ok",
		Extra:  map[string]string{"iota": "2", "beta": "5"},
	}
	want := "#7       ← decl Vec (ok) {beta=5, iota=2}\n"
	if got := string(FormatEvent(ev, FormatText)); got != want {
		t.Fatalf("text:\n got %q\nwant %q", got, want)
	}
}

func TestFormatNDJSON(t *testing.T) {
	ev := &Event{Seq: 3, Kind: KindPoint, Scope: ScopeDriver, Name: "batch", Detail: "2 decls"}
	line := FormatEvent(ev, FormatNDJSON)
	if !bytes.HasSuffix(line, []byte("\n")) {
		t.Fatalf("ndjson line not newline-terminated: %q", line)
	}
	var got map[string]any
	if err := json.Unmarshal(line, &got); err != nil {
		t.Fatalf("ndjson: %v", err)
	}
	if got["kind"] != "point" || got["scope"] != "driver" || got["detail"] != "2 decls" {
		t.Fatalf("ndjson fields: %v", got)
	}
	if _, ok := got["span_id"]; ok {
		t.Fatalf("zero span id should be omitted: %v", got)
	}
}

func TestStreamAndBoth(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Format: FormatText, Output: &buf, RingSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDecl, "Nat", 0).End("ok")
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("stream wrote %d lines:\n%s", n, buf.String())
	}
	m, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("both mode built %T", tr)
	}
	r, ok := m.Ring()
	if !ok || len(r.Snapshot()) != 2 {
		t.Fatal("ring sink missing or empty")
	}
	var dump bytes.Buffer
	if err := r.Dump(&dump, FormatText); err != nil {
		t.Fatal(err)
	}
	if dump.String() != buf.String() {
		t.Fatalf("ring dump differs from stream:\n%s\nvs\n%s", dump.String(), buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewPicksFormatFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ndjson")
	tr, err := New(Config{Level: LevelDebug, Mode: ModeStream, OutputPath: path})
	if err != nil {
		t.Fatal(err)
	}
	st, ok := tr.(*StreamTracer)
	if !ok || st.format != FormatNDJSON {
		t.Fatalf("want ndjson stream tracer, got %T", tr)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOffAndZapWithoutLogger(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeZap})
	if err != nil || tr != Nop {
		t.Fatalf("off level: %T, %v", tr, err)
	}
	if _, err := New(Config{Level: LevelPhase, Mode: ModeZap}); !errors.Is(err, errNoLogger) {
		t.Fatalf("want errNoLogger, got %v", err)
	}
}

func TestZapTracer(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tr, err := New(Config{Level: LevelDetail, Mode: ModeZap, Logger: zap.New(core)})
	if err != nil {
		t.Fatal(err)
	}
	drv := Begin(tr, ScopeDriver, "sequential", 0)
	Begin(tr, ScopeDecl, "Nat", drv.ID()).WithExtra("beta", "0").End("ok")
	drv.End("")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("got %d log entries", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.DebugLevel {
		t.Fatalf("levels: %v %v", entries[0].Level, entries[1].Level)
	}
	end := entries[2]
	if end.Message != "end Nat" || end.LoggerName != "trace" {
		t.Fatalf("entry: %q from %q", end.Message, end.LoggerName)
	}
	fields := end.ContextMap()
	if fields["detail"] != "ok" || fields["beta"] != "0" || fields["scope"] != "decl" {
		t.Fatalf("fields: %v", fields)
	}
	if fields["parent"] != drv.ID() {
		t.Fatalf("parent field = %v, want %d", fields["parent"], drv.ID())
	}
}

func TestParse(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("ParseLevel accepted junk")
	}
	if m, err := ParseMode(""); err != nil || m != ModeRing {
		t.Fatalf("ParseMode default: %v %v", m, err)
	}
	if m, err := ParseMode("zap"); err != nil || m != ModeZap {
		t.Fatalf("ParseMode zap: %v %v", m, err)
	}
	if f, err := ParseFormat("json"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
}
