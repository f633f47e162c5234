package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"qirkit/internal/qir"
)

// CheckModelInvariants runs arena and SSA invariants on a loaded module:
// 1) every function id matches its slot and FuncByName points back to it
// 2) every local is defined exactly once (parameter or instruction result)
// 3) static qubit/result constants only appear on qubit/result typed operands
// 4) every type id used by a local is inside the type arena
func CheckModelInvariants(m *qir.Module) error {
	if m == nil {
		return fmt.Errorf("nil module")
	}
	nTypes, err := safecast.Conv[int32](len(m.Types))
	if err != nil {
		return fmt.Errorf("type arena overflow: %w", err)
	}

	// 1) function ids
	for i, f := range m.Funcs {
		if f == nil {
			return fmt.Errorf("nil function at slot %d", i)
		}
		if int(f.ID) != i {
			return fmt.Errorf("function %s: id %d stored at slot %d", f.Name, f.ID, i)
		}
		if got, ok := m.FuncByName[f.Name]; !ok || got != f.ID {
			return fmt.Errorf("function %s: FuncByName=%d ok=%v", f.Name, got, ok)
		}
	}

	for _, f := range m.Funcs {
		// 2) single definition
		defs := make([]int, len(f.Locals))
		for _, p := range f.Params {
			if p < 0 || int(p) >= len(defs) {
				return fmt.Errorf("function %s: parameter L%d out of range", f.Name, p)
			}
			defs[p]++
		}
		for bi := range f.Blocks {
			b := &f.Blocks[bi]
			if int(b.ID) != bi {
				return fmt.Errorf("function %s: block id %d stored at slot %d", f.Name, b.ID, bi)
			}
			for ii := range b.Instrs {
				in := &b.Instrs[ii]
				if in.HasDst {
					if in.Dst < 0 || int(in.Dst) >= len(defs) {
						return fmt.Errorf("function %s bb%d: dst L%d out of range", f.Name, bi, in.Dst)
					}
					defs[in.Dst]++
				}
				// 3) static id typing
				for _, op := range in.Operands() {
					if err := checkStaticID(m, op); err != nil {
						return fmt.Errorf("function %s bb%d: %w", f.Name, bi, err)
					}
				}
			}
		}
		for id, n := range defs {
			if n != 1 {
				return fmt.Errorf("function %s: local L%d defined %d times", f.Name, id, n)
			}
		}

		// 4) local types
		for id, l := range f.Locals {
			if l.Type < 0 || l.Type >= qir.TypeID(nTypes) {
				return fmt.Errorf("function %s: local L%d has type %d outside arena", f.Name, id, l.Type)
			}
		}
	}
	return nil
}

func checkStaticID(m *qir.Module, op qir.Operand) error {
	if op.Kind != qir.OperandConst {
		return nil
	}
	kind := m.Type(op.Type).Kind
	switch op.Const.Kind {
	case qir.ConstQubit:
		if kind != qir.TypeQubit {
			return fmt.Errorf("qubit constant on %s operand", kind)
		}
	case qir.ConstResult:
		if kind != qir.TypeResult {
			return fmt.Errorf("result constant on %s operand", kind)
		}
	}
	return nil
}
