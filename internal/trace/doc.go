// Package trace records spans and point events for qirkit commands.
//
// Events are grouped by scope: a command span wraps phase spans (load,
// resolve, preflight, execute), batch runs add one span per shot, and the
// interpreter emits a point event for every basic block it enters. The
// level picks how deep recording goes:
//
//	qirkit eval --trace=- --trace-level=phase bell.ll
//	qirkit batch --trace=run.ndjson --trace-level=shot --shots shots.txt prog.ll
//
// Tracers travel in the context. Start opens a child of the span already
// stored there:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePhase, "load")
//	defer span.End("")
//
// Storage is either a stream (text, NDJSON or chrome://tracing JSON) or a
// ring of recent events dumped when the command ends.
package trace
