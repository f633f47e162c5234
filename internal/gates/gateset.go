// Package gates defines the GateSet capability driven by the evaluator and
// a few reusable implementations.
package gates

// GateSet receives one callback per executed quantum instruction. Qubit and
// result arguments are static integer ids.
type GateSet interface {
	CX(control, target uint64)
	CZ(control, target uint64)
	H(qubit uint64)
	// M measures qubit and returns the id under which the outcome is stored.
	M(qubit uint64) uint64
	MZ(qubit, result uint64)
	Reset(qubit uint64)
	RX(theta float64, qubit uint64)
	RY(theta float64, qubit uint64)
	RZ(theta float64, qubit uint64)
	S(qubit uint64)
	SAdj(qubit uint64)
	T(qubit uint64)
	TAdj(qubit uint64)
	X(qubit uint64)
	Y(qubit uint64)
	Z(qubit uint64)
	// Finish is called once after the entry point returns successfully.
	Finish(metadata map[string]any)
}

// Metadata keys passed to Finish.
const (
	MetaNumQubits          = "number_of_qubits"
	MetaNumResults         = "number_of_results"
	MetaEntryPoint         = "entry_point"
	MetaOutputs            = "outputs"
	MetaRequiredNumQubits  = "required_num_qubits"
	MetaRequiredNumResults = "required_num_results"
)

// Base implements every GateSet method as a no-op. Embed it to override
// only the callbacks of interest.
type Base struct {
	nextResult uint64
}

var _ GateSet = (*Base)(nil)

func (*Base) CX(uint64, uint64) {}
func (*Base) CZ(uint64, uint64) {}
func (*Base) H(uint64) {}
func (*Base) MZ(uint64, uint64) {}
func (*Base) Reset(uint64) {}
func (*Base) RX(float64, uint64) {}
func (*Base) RY(float64, uint64) {}
func (*Base) RZ(float64, uint64) {}
func (*Base) S(uint64) {}
func (*Base) SAdj(uint64) {}
func (*Base) T(uint64) {}
func (*Base) TAdj(uint64) {}
func (*Base) X(uint64) {}
func (*Base) Y(uint64) {}
func (*Base) Z(uint64) {}
func (*Base) Finish(map[string]any) {}

// M hands out result ids in measurement order.
func (b *Base) M(uint64) uint64 {
	id := b.nextResult
	b.nextResult++
	return id
}
