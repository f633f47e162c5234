package batch

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"qirkit/internal/vm"
)

// Job is one evaluation of the shared module. A nil Results means no result
// stream: every measurement reads false.
type Job struct {
	Name    string
	Results []bool
}

// maxRepeat bounds the "*N" suffix of a shots line.
const maxRepeat = 1 << 20

// ParseShots reads one job per line. A line is a result string accepted by
// vm.ParseResults ("1,0,1", "101"), or "-" for a job without a stream,
// optionally followed by "*N" to repeat it. Blank lines and lines starting
// with '#' are skipped.
func ParseShots(r io.Reader) ([]Job, error) {
	var jobs []Job
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		bits, repeat, err := splitRepeat(line)
		if err != nil {
			return nil, fmt.Errorf("shots line %d: %w", lineNo, err)
		}
		var results []bool
		if bits != "-" {
			results, err = vm.ParseResults(bits)
			if err != nil {
				return nil, fmt.Errorf("shots line %d: %w", lineNo, err)
			}
		}
		for i := 0; i < repeat; i++ {
			jobs = append(jobs, Job{
				Name:    fmt.Sprintf("shot %d", len(jobs)+1),
				Results: results,
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Shots builds jobs from result strings the same way ParseShots reads lines.
func Shots(lines []string) ([]Job, error) {
	return ParseShots(strings.NewReader(strings.Join(lines, "\n")))
}

func splitRepeat(line string) (string, int, error) {
	bits, count, found := strings.Cut(line, "*")
	bits = strings.TrimSpace(bits)
	if !found {
		return bits, 1, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid repeat count %q", count)
	}
	if n == 0 || n > maxRepeat {
		return "", 0, fmt.Errorf("repeat count %d out of range [1, %d]", n, maxRepeat)
	}
	repeat, err := safecast.Conv[int](n)
	if err != nil {
		return "", 0, err
	}
	return bits, repeat, nil
}

// stream returns a fresh result stream for the job.
func (j Job) stream(mode vm.ExhaustionMode) *vm.ResultStream {
	if j.Results == nil {
		return nil
	}
	return vm.NewResultStream(j.Results).WithMode(mode)
}
