// Package evaluator is the top-level entry point: it loads a QIR module,
// picks the entry point and interprets it against a GateSet.
package evaluator

import (
	"context"
	"fmt"
	"io"
	"os"

	"qirkit/internal/cache"
	"qirkit/internal/gates"
	"qirkit/internal/loader"
	"qirkit/internal/observ"
	"qirkit/internal/qir"
	"qirkit/internal/trace"
	"qirkit/internal/version"
	"qirkit/internal/vm"
)

// Source names the program to evaluate. When Data is set it is used as is
// and Name labels it; otherwise the file at Path is read.
type Source struct {
	Path string
	Name string
	Data []byte
}

func (s Source) name() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Path != "" {
		return s.Path
	}
	return "<memory>"
}

// Options controls one evaluation. The zero value evaluates the only entry
// point with every measurement reading false.
type Options struct {
	// EntryPoint selects an entry point by name; empty means the only one.
	EntryPoint string
	// Stream supplies measurement outcomes in order. When nil and Replay is
	// set, the outcomes of the replayed run are used.
	Stream   *vm.ResultStream
	MaxSteps int

	// VMTrace receives one line per executed instruction.
	VMTrace io.Writer
	// Record receives an NDJSON log of the run.
	Record io.Writer
	Replay *vm.Replayer

	Cache *cache.DiskCache
	Timer *observ.Timer
}

// Result describes a finished evaluation.
type Result struct {
	Module   *qir.Module
	Entry    *qir.Func
	Metadata map[string]any
	// Results holds the measurement outcomes by result id.
	Results      vm.Outcomes
	Steps        int
	Measurements int
	CacheHit     bool
}

// Eval loads src and evaluates it. Load failures are returned as
// *loader.LoadError and evaluation failures as *vm.EvalError. GateSet
// callbacks issued before a failure are not undone.
func Eval(ctx context.Context, src Source, gs gates.GateSet, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, root := trace.Start(ctx, trace.ScopeCommand, "eval "+src.name())

	m, hit, err := Load(ctx, src, opts.Cache, opts.Timer)
	if err != nil {
		root.End("load failed")
		return nil, err
	}
	res, err := Run(ctx, m, gs, opts)
	if res != nil {
		res.CacheHit = hit
	}
	if err != nil {
		root.End(err.Error())
		return res, err
	}
	root.End("")
	return res, nil
}

// Load produces the program model for src, consulting c first when it is
// non-nil. hit reports whether the model came from the cache.
func Load(ctx context.Context, src Source, c *cache.DiskCache, timer *observ.Timer) (m *qir.Module, hit bool, err error) {
	p := beginPhase(ctx, timer, "load")
	defer func() {
		note := ""
		if hit {
			note = "cached"
		}
		p.end(note)
	}()

	data := src.Data
	if data == nil {
		if src.Path == "" {
			return nil, false, &loader.LoadError{Err: fmt.Errorf("no program source given")}
		}
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return nil, false, &loader.LoadError{Path: src.Path, Err: err}
		}
	}

	var key cache.Digest
	if c != nil {
		key = cache.Key(src.name(), data)
		if m, ok, err := c.Get(key); err == nil && ok {
			return m, true, nil
		}
	}
	m, err = loader.LoadBytes(src.name(), data)
	if err != nil {
		return nil, false, err
	}
	if c != nil {
		if err := c.Put(key, m); err != nil {
			trace.Point(trace.FromContext(ctx), trace.ScopePhase, "cache put", p.span.Context(), err.Error())
		}
	}
	return m, false, nil
}

// Run resolves the entry point of an already loaded model, checks its
// external declarations and interprets it. m is only read, so concurrent
// Runs over one model are safe as long as each has its own GateSet and
// stream.
func Run(ctx context.Context, m *qir.Module, gs gates.GateSet, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	res := &Result{Module: m}

	p := beginPhase(ctx, opts.Timer, "resolve")
	entry, err := vm.ResolveEntryPoint(m, opts.EntryPoint)
	if err != nil {
		p.end("failed")
		return res, err
	}
	p.end(entry.Name)
	res.Entry = entry

	p = beginPhase(ctx, opts.Timer, "preflight")
	err = vm.Preflight(m)
	p.end("")
	if err != nil {
		return res, err
	}

	p = beginPhase(ctx, opts.Timer, "execute")
	stream := opts.Stream
	if stream == nil && opts.Replay != nil {
		stream = opts.Replay.Stream()
	}
	machine := vm.New(m, entry, gs, stream)
	machine.Options.MaxSteps = opts.MaxSteps
	machine.Replayer = opts.Replay
	if opts.VMTrace != nil {
		machine.Trace = vm.NewTracer(opts.VMTrace, m)
	}
	if opts.Record != nil {
		machine.Recorder = vm.NewRecorder(opts.Record, vm.NewLogHeader(version.Version, m.Name, entry.Name))
	}
	machine.Events = trace.FromContext(ctx)
	machine.EventParent = p.span.Context()

	vmErr := machine.Run()
	res.Steps = machine.Steps
	res.Measurements = machine.Measurements
	p.end(fmt.Sprintf("steps=%d measurements=%d", machine.Steps, machine.Measurements))
	if vmErr != nil {
		return res, vmErr
	}
	res.Metadata = machine.Metadata()
	res.Results = machine.Results()
	if machine.Recorder != nil {
		if err := machine.Recorder.Err(); err != nil {
			return res, fmt.Errorf("write run log: %w", err)
		}
	}
	return res, nil
}

type phase struct {
	span  *trace.Span
	timer *observ.Timer
	idx   int
}

func beginPhase(ctx context.Context, timer *observ.Timer, name string) phase {
	return phase{
		span:  trace.Begin(trace.FromContext(ctx), trace.ScopePhase, name, trace.CurrentSpan(ctx)),
		timer: timer,
		idx:   timer.Begin(name),
	}
}

func (p phase) end(note string) {
	p.span.End(note)
	p.timer.End(p.idx, note)
}
