package vm

import (
	"fmt"

	"qirkit/internal/qir"
)

// evalOperand resolves an operand to a runtime value. Failures panic with an
// EvalError that Step recovers.
func (vm *VM) evalOperand(frame *Frame, op qir.Operand) Value {
	switch op.Kind {
	case qir.OperandLocal:
		return vm.readLocal(frame, op.Local)
	case qir.OperandConst:
		return vm.evalConst(op)
	default:
		panic(vm.eb.failedOperand("unknown operand kind %d", op.Kind))
	}
}

func (vm *VM) evalConst(op qir.Operand) Value {
	c := op.Const
	switch c.Kind {
	case qir.ConstInt:
		return MakeInt(c.Width, c.Bits)
	case qir.ConstFloat:
		return MakeFloat(c.Float)
	case qir.ConstNull:
		return Value{Kind: VKNull}
	case qir.ConstQubit:
		return MakeQubit(c.ID)
	case qir.ConstResult:
		return MakeStaticResult(c.ID)
	case qir.ConstZero:
		return vm.zeroValue(op.Type)
	case qir.ConstGlobal:
		return Value{Kind: VKGlobal, Name: c.Name}
	default:
		panic(vm.eb.failedOperand("unsupported constant kind %d", c.Kind))
	}
}

// zeroValue is the value undef and zeroinitializer evaluate to.
func (vm *VM) zeroValue(ty qir.TypeID) Value {
	t := vm.M.Type(ty)
	switch t.Kind {
	case qir.TypeInt:
		return MakeInt(t.Width, 0)
	case qir.TypeFloat:
		return MakeFloat(0)
	case qir.TypeQubit:
		return MakeQubit(0)
	case qir.TypeResult:
		return MakeStaticResult(0)
	case qir.TypePointer:
		return Value{Kind: VKNull}
	default:
		panic(vm.eb.failedOperand("no zero value for type %s", vm.M.TypeString(ty)))
	}
}

func (vm *VM) readLocal(frame *Frame, id qir.LocalID) Value {
	if int(id) < 0 || int(id) >= len(frame.Locals) {
		panic(vm.eb.failedOperand("invalid local id %d", id))
	}
	if !frame.Defined[id] {
		panic(vm.eb.failedOperand("value %s used before definition", localName(frame.Func, id)))
	}
	return frame.Locals[id]
}

// writeLocal stores v into the destination of instr, if it has one.
func (vm *VM) writeLocal(frame *Frame, instr *qir.Instr, v Value) {
	if !instr.HasDst {
		return
	}
	vm.setLocal(frame, instr.Dst, v)
}

func (vm *VM) setLocal(frame *Frame, id qir.LocalID, v Value) {
	if int(id) < 0 || int(id) >= len(frame.Locals) {
		panic(vm.eb.failedOperand("invalid local id %d", id))
	}
	frame.Locals[id] = v
	frame.Defined[id] = true
	if vm.Trace != nil {
		vm.Trace.TraceWrite(frame.Func, id, v)
	}
}

// qubitArg resolves argument i of a call to a qubit id.
func (vm *VM) qubitArg(frame *Frame, call *qir.CallInstr, i int) uint64 {
	v := vm.arg(frame, call, i)
	switch v.Kind {
	case VKQubit:
		vm.noteQubit(v.ID)
		return v.ID
	case VKNull:
		vm.noteQubit(0)
		return 0
	case VKInt:
		// An id cast to an untyped pointer.
		vm.noteQubit(v.Bits)
		return v.Bits
	default:
		panic(vm.eb.failedOperand("argument %d of %s is not a qubit: %s", i, call.Callee, v))
	}
}

// resultArg resolves argument i of a call to a result value.
func (vm *VM) resultArg(frame *Frame, call *qir.CallInstr, i int) Value {
	v := vm.arg(frame, call, i)
	switch v.Kind {
	case VKResult:
		return v
	case VKNull:
		return MakeStaticResult(0)
	case VKInt:
		return MakeStaticResult(v.Bits)
	default:
		panic(vm.eb.failedOperand("argument %d of %s is not a result: %s", i, call.Callee, v))
	}
}

// floatArg resolves argument i of a call to a concrete double.
func (vm *VM) floatArg(frame *Frame, call *qir.CallInstr, i int) float64 {
	v := vm.arg(frame, call, i)
	if v.Kind != VKFloat {
		panic(vm.eb.failedOperand("argument %d of %s is not a floating point value: %s", i, call.Callee, v))
	}
	return v.F
}

func (vm *VM) arg(frame *Frame, call *qir.CallInstr, i int) Value {
	if i >= len(call.Args) {
		panic(vm.eb.failedOperand("%s expects at least %d argument(s), got %d", call.Callee, i+1, len(call.Args)))
	}
	return vm.evalOperand(frame, call.Args[i])
}

func (vm *VM) checkArity(call *qir.CallInstr, n int) {
	if len(call.Args) != n {
		panic(vm.eb.failedOperand("%s expects %d argument(s), got %d", call.Callee, n, len(call.Args)))
	}
}

// boolOf resolves an i1 condition.
func (vm *VM) boolOf(frame *Frame, op qir.Operand) bool {
	v := vm.evalOperand(frame, op)
	if v.Kind != VKInt || v.Width != 1 {
		panic(vm.eb.failedOperand("condition is not a boolean: %s", v))
	}
	return v.Bits != 0
}

// resultBit reads the outcome a result value stands for. Unmeasured static
// results read false.
func (vm *VM) resultBit(v Value) bool {
	if v.Dynamic {
		return v.Bit
	}
	return vm.results[v.ID]
}

func (vm *VM) noteQubit(id uint64) {
	if !vm.anyQubit || id > vm.maxQubit {
		vm.maxQubit = id
	}
	vm.anyQubit = true
}

func (vm *VM) noteResult(id uint64) {
	if !vm.anyResult || id > vm.maxResult {
		vm.maxResult = id
	}
	vm.anyResult = true
}

func localName(fn *qir.Func, id qir.LocalID) string {
	if int(id) >= 0 && int(id) < len(fn.Locals) && fn.Locals[id].Name != "" {
		return "%" + fn.Locals[id].Name
	}
	return fmt.Sprintf("%%L%d", id)
}

func (vm *VM) boolArg(frame *Frame, call *qir.CallInstr, i int) bool {
	v := vm.arg(frame, call, i)
	if v.Kind != VKInt || v.Width != 1 {
		panic(vm.eb.failedOperand("argument %d of %s is not a boolean: %s", i, call.Callee, v))
	}
	return v.Bits != 0
}
