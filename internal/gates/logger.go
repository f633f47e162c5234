package gates

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Logger records every gate as a line of text, e.g. "cx qubit[0], qubit[1]"
// or "m qubit[1] => out[1]".
type Logger struct {
	NumQubits    uint64
	NumRegisters uint64
	Instructions []string
	Metadata     map[string]any
}

var _ GateSet = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) CX(control, target uint64) {
	l.add("cx qubit[%d], qubit[%d]", control, target)
}

func (l *Logger) CZ(control, target uint64) {
	l.add("cz qubit[%d], qubit[%d]", control, target)
}

func (l *Logger) H(qubit uint64) { l.single("h", qubit) }

func (l *Logger) M(qubit uint64) uint64 {
	result := l.NumRegisters
	l.MZ(qubit, result)
	return result
}

func (l *Logger) MZ(qubit, result uint64) {
	if result+1 > l.NumRegisters {
		l.NumRegisters = result + 1
	}
	l.add("m qubit[%d] => out[%d]", qubit, result)
}

func (l *Logger) Reset(qubit uint64) {
	l.add("reset %d", qubit)
}

func (l *Logger) RX(theta float64, qubit uint64) { l.rotation("rx", theta, qubit) }
func (l *Logger) RY(theta float64, qubit uint64) { l.rotation("ry", theta, qubit) }
func (l *Logger) RZ(theta float64, qubit uint64) { l.rotation("rz", theta, qubit) }

func (l *Logger) S(qubit uint64) { l.single("s", qubit) }
func (l *Logger) SAdj(qubit uint64) { l.single("s_adj", qubit) }
func (l *Logger) T(qubit uint64) { l.single("t", qubit) }
func (l *Logger) TAdj(qubit uint64) { l.single("t_adj", qubit) }
func (l *Logger) X(qubit uint64) { l.single("x", qubit) }
func (l *Logger) Y(qubit uint64) { l.single("y", qubit) }
func (l *Logger) Z(qubit uint64) { l.single("z", qubit) }

func (l *Logger) Finish(metadata map[string]any) {
	l.Metadata = metadata
	if n, ok := metadata[MetaNumQubits].(uint64); ok {
		l.NumQubits = n
	}
}

// Print writes the qubit and register counts followed by the instructions.
func (l *Logger) Print(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "qubits[%d]\n", l.NumQubits)
	fmt.Fprintf(&sb, "out[%d]\n", l.NumRegisters)
	for _, in := range l.Instructions {
		sb.WriteString(in)
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (l *Logger) single(name string, qubit uint64) {
	l.add("%s qubit[%d]", name, qubit)
}

func (l *Logger) rotation(name string, theta float64, qubit uint64) {
	l.add("%s theta[%s] qubit[%d]", name, FormatAngle(theta), qubit)
}

func (l *Logger) add(format string, args ...any) {
	l.Instructions = append(l.Instructions, fmt.Sprintf(format, args...))
}

// FormatAngle prints theta with the shortest exact digits and always keeps a
// fractional part ("1.0", "0.5", "1e-07").
func FormatAngle(theta float64) string {
	s := strconv.FormatFloat(theta, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
