package trace

import "context"

type ctxKey struct{}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil tracer is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// SpanContext identifies the enclosing span and batch job.
type SpanContext struct {
	SpanID uint64
	Shot   string
}

type spanCtxKey struct{}

// CurrentSpan returns the span context stored in ctx, or the zero value.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanCtxKey{}).(SpanContext)
	return sc
}

// WithSpanContext attaches sc to ctx.
func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanCtxKey{}, sc)
}

// WithShot tags every event started below ctx with the batch job name.
func WithShot(ctx context.Context, shot string) context.Context {
	sc := CurrentSpan(ctx)
	sc.Shot = shot
	return WithSpanContext(ctx, sc)
}

// Start begins a span under the span stored in ctx using the tracer from
// ctx. The returned context carries the new span as parent.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	parent := CurrentSpan(ctx)
	span := Begin(FromContext(ctx), scope, name, parent)
	if span.id == 0 {
		return ctx, span
	}
	return WithSpanContext(ctx, span.Context()), span
}

// Note emits a point event under the span stored in ctx.
func Note(ctx context.Context, scope Scope, name, detail string) {
	Point(FromContext(ctx), scope, name, CurrentSpan(ctx), detail)
}
