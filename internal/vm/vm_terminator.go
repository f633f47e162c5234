package vm

import (
	"qirkit/internal/qir"
)

// execTerminator executes a block terminator.
func (vm *VM) execTerminator(frame *Frame, term *qir.Terminator) *EvalError {
	if vm.Trace != nil {
		vm.Trace.TraceTerm(len(vm.Stack), frame, term)
	}

	switch term.Kind {
	case qir.TermRet:
		vm.execTermReturn(frame, term)
	case qir.TermBr:
		vm.enterBlock(frame, term.Br.Target)
	case qir.TermCondBr:
		if vm.boolOf(frame, term.CondBr.Cond) {
			vm.enterBlock(frame, term.CondBr.True)
		} else {
			vm.enterBlock(frame, term.CondBr.False)
		}
	case qir.TermSwitch:
		vm.execSwitch(frame, &term.Switch)
	case qir.TermUnreachable:
		return vm.eb.unreachable()
	default:
		return vm.eb.unsupportedInstruction(qir.FormatTerm(vm.M, frame.Func, term))
	}
	return nil
}

func (vm *VM) execTermReturn(frame *Frame, term *qir.Terminator) {
	var retVal Value
	hasVal := term.Ret.HasValue
	if hasVal {
		retVal = vm.evalOperand(frame, term.Ret.Value)
	}

	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	if len(vm.Stack) == 0 {
		return
	}

	// The caller's IP still points at the call that pushed the frame.
	caller := &vm.Stack[len(vm.Stack)-1]
	if instr := caller.CurrentInstr(); instr != nil && instr.Kind == qir.InstrCall && instr.HasDst {
		if !hasVal {
			panic(vm.eb.failedOperand("%s returned no value", frame.Func.Name))
		}
		vm.setLocal(caller, instr.Dst, retVal)
	}
	caller.IP++
}

func (vm *VM) execSwitch(frame *Frame, sw *qir.SwitchTerm) {
	v := vm.evalOperand(frame, sw.Value)
	if v.Kind != VKInt {
		panic(vm.eb.failedOperand("switch on non-integer %s", v))
	}
	for _, c := range sw.Cases {
		if qir.MaskBits(c.Value.Bits, v.Width) == v.Bits {
			vm.enterBlock(frame, c.Target)
			return
		}
	}
	vm.enterBlock(frame, sw.Default)
}

// enterBlock transfers control to target and resolves its leading phis
// against the block control came from. All phis read their inputs before
// any is written.
func (vm *VM) enterBlock(frame *Frame, target qir.BlockID) {
	from := frame.BB
	frame.Prev = from
	frame.BB = target
	frame.IP = 0
	block := frame.CurrentBlock()
	if block == nil {
		panic(vm.eb.unsupportedInstruction("branch to invalid block"))
	}

	n := block.PhiCount()
	if n > 0 {
		vals := make([]Value, n)
		for i := range n {
			vals[i] = vm.phiValue(frame, &block.Instrs[i], from)
		}
		for i := range n {
			if vm.Trace != nil {
				vm.Trace.TraceInstr(len(vm.Stack), frame, &block.Instrs[i])
			}
			vm.writeLocal(frame, &block.Instrs[i], vals[i])
		}
		frame.IP = n
	}
	vm.traceBlock(frame)
}

func (vm *VM) phiValue(frame *Frame, instr *qir.Instr, from qir.BlockID) Value {
	for _, inc := range instr.Phi.Incoming {
		if inc.Block == from {
			return vm.evalOperand(frame, inc.Value)
		}
	}
	panic(vm.eb.failedOperand("phi has no incoming value for %s", blockName(frame.Func, from)))
}

func blockName(fn *qir.Func, id qir.BlockID) string {
	if int(id) >= 0 && int(id) < len(fn.Blocks) {
		return "%" + fn.Blocks[id].Name
	}
	return "<entry>"
}
