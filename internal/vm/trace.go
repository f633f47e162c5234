package vm

import (
	"fmt"
	"io"
	"strings"

	"qirkit/internal/qir"
)

// Tracer outputs execution traces for debugging.
type Tracer struct {
	w io.Writer
	m *qir.Module
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer, m *qir.Module) *Tracer {
	return &Tracer{w: w, m: m}
}

// TraceInstr traces execution of an instruction.
// Format: [depth=N] <func> bb<id>(<name>):ip<ip> <instr>
func (t *Tracer) TraceInstr(depth int, frame *Frame, instr *qir.Instr) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[depth=%d] %s %s:ip%d %s\n",
		depth, frame.Func.Name, t.block(frame), frame.IP, qir.FormatInstr(t.m, frame.Func, instr))
}

// TraceTerm traces execution of a terminator.
// Format: [depth=N] <func> bb<id>(<name>):term <terminator>
func (t *Tracer) TraceTerm(depth int, frame *Frame, term *qir.Terminator) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[depth=%d] %s %s:term %s\n",
		depth, frame.Func.Name, t.block(frame), qir.FormatTerm(t.m, frame.Func, term))
}

// TraceWrite records a local variable modification.
func (t *Tracer) TraceWrite(fn *qir.Func, id qir.LocalID, v Value) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "    write %s = %s\n", localName(fn, id), v)
}

func (t *Tracer) TraceGate(name string, qubits []uint64, theta *float64) {
	if t == nil || t.w == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString("    gate ")
	sb.WriteString(name)
	if theta != nil {
		fmt.Fprintf(&sb, " theta=%v", *theta)
	}
	for _, q := range qubits {
		fmt.Fprintf(&sb, " qubit[%d]", q)
	}
	sb.WriteString("\n")
	io.WriteString(t.w, sb.String())
}

func (t *Tracer) TraceMeasure(name string, qubit, result uint64, bit bool) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "    measure %s qubit[%d] => result[%d] = %d\n", name, qubit, result, b2i(bit))
}

func (t *Tracer) block(frame *Frame) string {
	if b := frame.CurrentBlock(); b != nil && b.Name != "" {
		return fmt.Sprintf("bb%d(%s)", frame.BB, b.Name)
	}
	return fmt.Sprintf("bb%d", frame.BB)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
