package vm

import (
	"math"

	"qirkit/internal/qir"
)

// evalPure evaluates an instruction without side effects.
func (vm *VM) evalPure(frame *Frame, instr *qir.Instr) Value {
	switch instr.Kind {
	case qir.InstrICmp:
		return vm.evalICmp(frame, &instr.ICmp)
	case qir.InstrFCmp:
		return vm.evalFCmp(frame, &instr.FCmp)
	case qir.InstrSelect:
		if vm.boolOf(frame, instr.Select.Cond) {
			return vm.evalOperand(frame, instr.Select.True)
		}
		return vm.evalOperand(frame, instr.Select.False)
	case qir.InstrBinary:
		return vm.evalBinary(frame, &instr.Binary)
	case qir.InstrCast:
		return vm.evalCast(frame, &instr.Cast)
	default:
		panic(vm.eb.unsupportedInstruction(qir.FormatInstr(vm.M, frame.Func, instr)))
	}
}

func (vm *VM) evalBinary(frame *Frame, bin *qir.BinaryInstr) Value {
	x := vm.evalOperand(frame, bin.X)
	y := vm.evalOperand(frame, bin.Y)
	if bin.Op.IsFloat() {
		if x.Kind != VKFloat || y.Kind != VKFloat {
			panic(vm.eb.failedOperand("%s expects floating point operands, got %s and %s", bin.Op, x, y))
		}
		return MakeFloat(floatBinary(bin.Op, x.F, y.F))
	}
	if x.Kind != VKInt || y.Kind != VKInt {
		panic(vm.eb.failedOperand("%s expects integer operands, got %s and %s", bin.Op, x, y))
	}
	if x.Width != y.Width {
		panic(vm.eb.failedOperand("%s operand widths differ: i%d and i%d", bin.Op, x.Width, y.Width))
	}
	w := x.Width
	a, b := x.Bits, y.Bits
	switch bin.Op {
	case qir.OpAdd:
		return MakeInt(w, a+b)
	case qir.OpSub:
		return MakeInt(w, a-b)
	case qir.OpMul:
		return MakeInt(w, a*b)
	case qir.OpUDiv, qir.OpURem, qir.OpSDiv, qir.OpSRem:
		if b == 0 {
			panic(vm.eb.failedOperand("%s by zero", bin.Op))
		}
		return MakeInt(w, divRem(bin.Op, x, y))
	case qir.OpShl, qir.OpLShr, qir.OpAShr:
		if b >= uint64(w) {
			panic(vm.eb.failedOperand("%s amount %d out of range for i%d", bin.Op, b, w))
		}
		switch bin.Op {
		case qir.OpShl:
			return MakeInt(w, a<<b)
		case qir.OpLShr:
			return MakeInt(w, a>>b)
		default:
			return MakeInt(w, uint64(x.Signed()>>b))
		}
	case qir.OpAnd:
		return MakeInt(w, a&b)
	case qir.OpOr:
		return MakeInt(w, a|b)
	case qir.OpXor:
		return MakeInt(w, a^b)
	default:
		panic(vm.eb.unsupportedInstruction(bin.Op.String()))
	}
}

func divRem(op qir.BinaryOp, x, y Value) uint64 {
	switch op {
	case qir.OpUDiv:
		return x.Bits / y.Bits
	case qir.OpURem:
		return x.Bits % y.Bits
	}
	a, b := x.Signed(), y.Signed()
	// MinInt / -1 wraps.
	if b == -1 {
		if op == qir.OpSDiv {
			return uint64(-a)
		}
		return 0
	}
	if op == qir.OpSDiv {
		return uint64(a / b)
	}
	return uint64(a % b)
}

func floatBinary(op qir.BinaryOp, a, b float64) float64 {
	switch op {
	case qir.OpFAdd:
		return a + b
	case qir.OpFSub:
		return a - b
	case qir.OpFMul:
		return a * b
	case qir.OpFDiv:
		return a / b
	default:
		return math.Mod(a, b)
	}
}
