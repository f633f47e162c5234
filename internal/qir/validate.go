package qir

import (
	"errors"
	"fmt"
)

// Validate checks program model invariants.
// Returns error if any invariant is violated.
func Validate(m *Module) error {
	if m == nil {
		return nil
	}
	var errs []error
	for _, f := range m.Funcs {
		if f == nil {
			continue
		}
		if err := validateFunc(m, f); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(m *Module, f *Func) error {
	if f.IsDecl {
		if len(f.Blocks) != 0 {
			return errors.New("declaration has a body")
		}
		return nil
	}
	if len(f.Blocks) == 0 {
		return errors.New("definition has no blocks")
	}
	if f.Entry < 0 || int(f.Entry) >= len(f.Blocks) {
		return fmt.Errorf("entry block bb%d out of range", f.Entry)
	}

	var errs []error
	if err := validateBlocksTerminated(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalIDs(f); err != nil {
		errs = append(errs, err)
	}
	if err := validatePhis(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateCallees(m, f); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		if !f.Blocks[i].Terminated() {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

func validateBlockTargets(f *Func) error {
	var errs []error
	n := len(f.Blocks)
	for i := range f.Blocks {
		for _, s := range f.Blocks[i].Term.Successors() {
			if s < 0 || int(s) >= n {
				errs = append(errs, fmt.Errorf("bb%d: branch target bb%d out of range", i, s))
			}
		}
	}
	return errors.Join(errs...)
}

func validateLocalIDs(f *Func) error {
	var errs []error
	n := len(f.Locals)
	check := func(bb int, op Operand) {
		if op.Kind == OperandLocal && (op.Local < 0 || int(op.Local) >= n) {
			errs = append(errs, fmt.Errorf("bb%d: local L%d out of range", bb, op.Local))
		}
	}
	for i := range f.Blocks {
		b := &f.Blocks[i]
		for j := range b.Instrs {
			in := &b.Instrs[j]
			if in.HasDst && (in.Dst < 0 || int(in.Dst) >= n) {
				errs = append(errs, fmt.Errorf("bb%d: destination L%d out of range", i, in.Dst))
			}
			for _, op := range in.Operands() {
				check(i, op)
			}
		}
		switch b.Term.Kind {
		case TermRet:
			if b.Term.Ret.HasValue {
				check(i, b.Term.Ret.Value)
			}
		case TermCondBr:
			check(i, b.Term.CondBr.Cond)
		case TermSwitch:
			check(i, b.Term.Switch.Value)
		}
	}
	return errors.Join(errs...)
}

// validatePhis checks that phis lead their block and name real predecessors.
func validatePhis(f *Func) error {
	var errs []error
	preds := f.Predecessors()
	for i := range f.Blocks {
		b := &f.Blocks[i]
		lead := b.PhiCount()
		for j := range b.Instrs {
			in := &b.Instrs[j]
			if in.Kind != InstrPhi {
				continue
			}
			if j >= lead {
				errs = append(errs, fmt.Errorf("bb%d: phi after non-phi instruction", i))
				continue
			}
			for _, inc := range in.Phi.Incoming {
				if !containsBlock(preds[i], inc.Block) {
					errs = append(errs, fmt.Errorf("bb%d: phi incoming bb%d is not a predecessor", i, inc.Block))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func validateCallees(m *Module, f *Func) error {
	var errs []error
	for i := range f.Blocks {
		b := &f.Blocks[i]
		for j := range b.Instrs {
			in := &b.Instrs[j]
			if in.Kind != InstrCall {
				continue
			}
			if m.Func(in.Call.Callee) == nil {
				errs = append(errs, fmt.Errorf("bb%d: call to undeclared function %s", i, in.Call.Callee))
			}
		}
	}
	return errors.Join(errs...)
}

func containsBlock(ids []BlockID, id BlockID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
