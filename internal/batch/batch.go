// Package batch evaluates one loaded module against many result streams in
// parallel. Every job gets its own stream and GateSet; the module is shared
// read-only.
package batch

import (
	"context"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"qirkit/internal/evaluator"
	"qirkit/internal/gates"
	"qirkit/internal/observ"
	"qirkit/internal/qir"
	"qirkit/internal/trace"
	"qirkit/internal/vm"
)

// Options configures a batch run.
type Options struct {
	EntryPoint string
	// Jobs limits concurrent evaluations; 0 means GOMAXPROCS.
	Jobs       int
	MaxSteps   int
	Exhaustion vm.ExhaustionMode
	Progress   ProgressSink
	// Timer, when set, collects the phases of every job.
	Timer *observ.Timer
}

// JobResult is the outcome of one job. Log holds the gates the job issued,
// including those issued before a failure.
type JobResult struct {
	Name     string
	Log      *gates.Logger
	Results  vm.Outcomes
	Metadata map[string]any
	Err      error
	Elapsed  time.Duration
}

// Result aggregates a batch run. Jobs keeps the input order.
type Result struct {
	Entry *qir.Func
	Jobs  []JobResult
	// Gates counts gate calls across all jobs.
	Gates  *gates.Counter
	Failed int
}

// Histogram counts successful jobs by their measurement outcomes, keyed by
// vm.Outcomes.String ("01" means result 1 was one).
func (r *Result) Histogram() map[string]int {
	h := make(map[string]int)
	if r == nil {
		return h
	}
	for _, j := range r.Jobs {
		if j.Err != nil {
			continue
		}
		h[j.Results.String()]++
	}
	return h
}

// Outcomes returns the histogram keys in lexical order.
func (r *Result) Outcomes() []string {
	h := r.Histogram()
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run evaluates every job against m. Entry point resolution and the
// external declaration check run once up front and fail the whole batch;
// errors of individual jobs are reported in their JobResult and never
// cancel other jobs. Cancelling ctx stops jobs that have not started.
func Run(ctx context.Context, m *qir.Module, jobs []Job, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	entry, err := vm.ResolveEntryPoint(m, opts.EntryPoint)
	if err != nil {
		return nil, err
	}
	if err := vm.Preflight(m); err != nil {
		return nil, err
	}

	res := &Result{
		Entry: entry,
		Jobs:  make([]JobResult, len(jobs)),
		Gates: gates.NewCounter(),
	}
	if len(jobs) == 0 {
		return res, nil
	}

	emit := func(ev Event) {
		if opts.Progress != nil {
			opts.Progress.OnEvent(ev)
		}
	}
	for _, job := range jobs {
		emit(Event{Job: job.Name, Status: StatusQueued})
	}

	workers := opts.Jobs
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeCommand, "batch")

	// Indices are unique per goroutine, so results need no lock.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, len(jobs)))

	for i, job := range jobs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				res.Jobs[i] = JobResult{Name: job.Name, Err: gctx.Err()}
				emit(Event{Job: job.Name, Status: StatusFailed, Err: gctx.Err()})
				return nil
			default:
			}

			emit(Event{Job: job.Name, Status: StatusRunning})
			start := time.Now()
			jctx, jspan := trace.Start(trace.WithShot(gctx, job.Name), trace.ScopeShot, job.Name)
			log := gates.NewLogger()
			run, err := evaluator.Run(jctx, m, gates.Multi{log, res.Gates}, evaluator.Options{
				EntryPoint: entry.Name,
				Stream:     job.stream(opts.Exhaustion),
				MaxSteps:   opts.MaxSteps,
				Timer:      opts.Timer,
			})
			jr := JobResult{Name: job.Name, Log: log, Err: err, Elapsed: time.Since(start)}
			if err == nil {
				jr.Results = run.Results
				jr.Metadata = run.Metadata
			}
			res.Jobs[i] = jr

			status := StatusDone
			if err != nil {
				status = StatusFailed
			}
			jspan.End(string(status))
			emit(Event{Job: job.Name, Status: status, Err: err, Elapsed: jr.Elapsed})
			return nil
		})
	}
	// Workers never return errors; failures live in JobResult.
	_ = g.Wait()

	for _, j := range res.Jobs {
		if j.Err != nil {
			res.Failed++
		}
	}
	span.End(res.Gates.String())
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
