package gates

// Multi forwards every callback to each of its members in order. The result
// id returned from M comes from the first member.
type Multi []GateSet

var _ GateSet = Multi(nil)

func (m Multi) CX(control, target uint64) {
	for _, g := range m {
		g.CX(control, target)
	}
}

func (m Multi) CZ(control, target uint64) {
	for _, g := range m {
		g.CZ(control, target)
	}
}

func (m Multi) H(qubit uint64) { m.each(func(g GateSet) { g.H(qubit) }) }

func (m Multi) M(qubit uint64) uint64 {
	if len(m) == 0 {
		return 0
	}
	id := m[0].M(qubit)
	for _, g := range m[1:] {
		g.MZ(qubit, id)
	}
	return id
}

func (m Multi) MZ(qubit, result uint64) {
	for _, g := range m {
		g.MZ(qubit, result)
	}
}

func (m Multi) Reset(qubit uint64) { m.each(func(g GateSet) { g.Reset(qubit) }) }

func (m Multi) RX(theta float64, qubit uint64) { m.each(func(g GateSet) { g.RX(theta, qubit) }) }
func (m Multi) RY(theta float64, qubit uint64) { m.each(func(g GateSet) { g.RY(theta, qubit) }) }
func (m Multi) RZ(theta float64, qubit uint64) { m.each(func(g GateSet) { g.RZ(theta, qubit) }) }

func (m Multi) S(qubit uint64) { m.each(func(g GateSet) { g.S(qubit) }) }
func (m Multi) SAdj(qubit uint64) { m.each(func(g GateSet) { g.SAdj(qubit) }) }
func (m Multi) T(qubit uint64) { m.each(func(g GateSet) { g.T(qubit) }) }
func (m Multi) TAdj(qubit uint64) { m.each(func(g GateSet) { g.TAdj(qubit) }) }
func (m Multi) X(qubit uint64) { m.each(func(g GateSet) { g.X(qubit) }) }
func (m Multi) Y(qubit uint64) { m.each(func(g GateSet) { g.Y(qubit) }) }
func (m Multi) Z(qubit uint64) { m.each(func(g GateSet) { g.Z(qubit) }) }

func (m Multi) Finish(metadata map[string]any) {
	m.each(func(g GateSet) { g.Finish(metadata) })
}

func (m Multi) each(fn func(GateSet)) {
	for _, g := range m {
		fn(g)
	}
}
