package observ_test

import (
	"strings"
	"sync"
	"testing"

	"qirkit/internal/observ"
)

func TestTimerReport(t *testing.T) {
	tm := observ.NewTimer()
	load := tm.Begin("load")
	tm.End(load, "bell.ll")
	run := tm.Begin("execute")
	tm.End(run, "")
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d", len(report.Phases))
	}
	if report.Phases[0].Name != "load" || report.Phases[0].Note != "bell.ll" || report.Phases[0].Count != 1 {
		t.Fatalf("phase 0 = %+v", report.Phases[0])
	}
	if sum := report.Phases[0].DurationMS + report.Phases[1].DurationMS; report.TotalMS+1e-6 < sum {
		t.Fatalf("total %.3f ms below sequential sum %.3f ms", report.TotalMS, sum)
	}
	summary := tm.Summary()
	for _, want := range []string{"timings:", "load", "// bell.ll", "execute", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerGroupsConcurrentPhases(t *testing.T) {
	tm := observ.NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("execute"), "shot")
		}()
	}
	wg.Wait()

	report := tm.Report()
	if len(report.Phases) != 1 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	p := report.Phases[0]
	if p.Name != "execute" || p.Count != 8 || p.Note != "" {
		t.Fatalf("grouped phase = %+v", p)
	}
	if !strings.Contains(tm.Summary(), "// 8 runs") {
		t.Fatalf("summary:\n%s", tm.Summary())
	}
}

func TestNilTimer(t *testing.T) {
	var tm *observ.Timer
	tm.End(tm.Begin("load"), "")
	if len(tm.Report().Phases) != 0 || tm.Phases() != nil {
		t.Fatalf("nil timer recorded phases")
	}
}
