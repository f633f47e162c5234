package vm

import "qirkit/internal/qir"

// alloca reserves a memory slot. Slots hold a single scalar value and live
// for the whole evaluation.
func (vm *VM) alloca(elem qir.TypeID) Value {
	switch vm.M.Type(elem).Kind {
	case qir.TypeInt, qir.TypeFloat, qir.TypePointer, qir.TypeQubit, qir.TypeResult:
	default:
		panic(vm.eb.unsupportedInstruction("alloca of " + vm.M.TypeString(elem)))
	}
	vm.memory = append(vm.memory, Value{})
	return Value{Kind: VKPtr, Slot: len(vm.memory) - 1}
}

func (vm *VM) load(frame *Frame, ld *qir.LoadInstr) Value {
	slot := vm.slot(frame, ld.Src)
	v := vm.memory[slot]
	if v.Kind == VKInvalid {
		panic(vm.eb.failedOperand("load from uninitialized slot#%d", slot))
	}
	return v
}

func (vm *VM) store(frame *Frame, st *qir.StoreInstr) {
	v := vm.evalOperand(frame, st.Value)
	slot := vm.slot(frame, st.Dst)
	vm.memory[slot] = v
}

func (vm *VM) slot(frame *Frame, op qir.Operand) int {
	p := vm.evalOperand(frame, op)
	if p.Kind != VKPtr || p.Slot < 0 || p.Slot >= len(vm.memory) {
		panic(vm.eb.failedOperand("%s is not an allocated slot", p))
	}
	return p.Slot
}
