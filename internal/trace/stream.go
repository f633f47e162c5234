package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer formats events as they arrive into a buffered writer.
// Command-scope span ends flush the buffer so a finished command is always
// visible even if the process is killed later.
type StreamTracer struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	dst    io.Writer
	level  Level
	format Format
	count  int
	err    error
}

// NewStreamTracer writes events to w. If w is an io.Closer, Close closes it.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{
		buf:    bufio.NewWriter(w),
		dst:    w,
		level:  level,
		format: format,
	}
	if format == FormatChrome {
		t.write([]byte("{\"traceEvents\":[\n"))
	}
	return t
}

// write records the first error and drops later writes.
func (t *StreamTracer) write(p []byte) {
	if t.err != nil {
		return
	}
	_, t.err = t.buf.Write(p)
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	if t.format == FormatChrome && t.count > 0 {
		t.write([]byte(",\n"))
	}
	t.count++
	t.write(FormatEvent(ev, t.format))
	if ev.Kind == KindSpanEnd && ev.Scope == ScopeCommand && t.err == nil {
		t.err = t.buf.Flush()
	}
}

// Flush writes buffered events and reports the first write error, if any.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.err = t.buf.Flush()
	return t.err
}

func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		t.write([]byte("\n]}\n"))
	}
	t.mu.Unlock()
	err := t.Flush()
	if c, ok := t.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level { return t.level }
