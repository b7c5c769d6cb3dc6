package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerReportsEveryPhase(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for _, name := range []string{"Nat", "Vec", "True"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin(name), "ok")
		}()
	}
	wg.Wait()

	r := tm.Report()
	if len(r.Phases) != 3 {
		t.Fatalf("got %d phases, want 3", len(r.Phases))
	}
	for _, p := range r.Phases {
		if p.Note != "ok" || p.DurationMS < 0 {
			t.Fatalf("phase %+v", p)
		}
	}
	if s := tm.Summary(); !strings.Contains(s, "Vec") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestEndIgnoresUnknownIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(5, "x")
	if r := tm.Report(); len(r.Phases) != 0 || r.TotalMS != 0 {
		t.Fatalf("empty timer reported %+v", r)
	}
}
