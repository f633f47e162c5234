package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Coarser scopes have lower values,
// so a Level emits every scope up to its own.
type Scope uint8

const (
	// ScopeCommand covers one CLI command: a single eval or a whole batch.
	ScopeCommand Scope = iota + 1
	// ScopePhase covers load, resolve, preflight and execute.
	ScopePhase
	// ScopeShot covers one batch job.
	ScopeShot
	// ScopeBlock marks basic block entries inside the interpreter.
	ScopeBlock
)

func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopePhase:
		return "phase"
	case ScopeShot:
		return "shot"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Shot     string // batch job the event belongs to, empty outside batches
	Name     string // "load", "execute", "main/entry", ...
	Detail   string
	Extra    map[string]string
}
