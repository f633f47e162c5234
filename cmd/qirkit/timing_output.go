package main

import (
	"fmt"
	"io"

	"qirkit/internal/observ"
)

// printTimings writes one line per phase, e.g. "load 1.2 ms (cached)".
// Phases repeated by batch shots print their summed time and run count.
func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	report := timer.Report()
	for _, p := range report.Phases {
		if p.Count > 1 {
			fmt.Fprintf(out, "%s %.1f ms (%d runs)\n", p.Name, p.DurationMS, p.Count)
			continue
		}
		if p.Note != "" {
			fmt.Fprintf(out, "%s %.1f ms (%s)\n", p.Name, p.DurationMS, p.Note)
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(out, "total %.1f ms\n", report.TotalMS)
}
