package vm

import (
	"math"

	"qirkit/internal/qir"
)

func (vm *VM) evalICmp(frame *Frame, cmp *qir.ICmpInstr) Value {
	x := vm.cmpOperand(frame, cmp.X)
	y := vm.cmpOperand(frame, cmp.Y)
	if x.Kind != VKInt || y.Kind != VKInt {
		panic(vm.eb.failedOperand("icmp %s expects integer operands, got %s and %s", cmp.Pred, x, y))
	}
	a, b := x.Bits, y.Bits
	sa, sb := x.Signed(), y.Signed()
	var r bool
	switch cmp.Pred {
	case qir.IntEQ:
		r = a == b
	case qir.IntNE:
		r = a != b
	case qir.IntUGT:
		r = a > b
	case qir.IntUGE:
		r = a >= b
	case qir.IntULT:
		r = a < b
	case qir.IntULE:
		r = a <= b
	case qir.IntSGT:
		r = sa > sb
	case qir.IntSGE:
		r = sa >= sb
	case qir.IntSLT:
		r = sa < sb
	case qir.IntSLE:
		r = sa <= sb
	}
	return MakeBool(r)
}

// cmpOperand lets icmp compare pointers by their static id.
func (vm *VM) cmpOperand(frame *Frame, op qir.Operand) Value {
	v := vm.evalOperand(frame, op)
	switch v.Kind {
	case VKQubit, VKResult:
		return MakeInt(64, v.ID)
	case VKNull:
		return MakeInt(64, 0)
	}
	return v
}

func (vm *VM) evalFCmp(frame *Frame, cmp *qir.FCmpInstr) Value {
	x := vm.evalOperand(frame, cmp.X)
	y := vm.evalOperand(frame, cmp.Y)
	if x.Kind != VKFloat || y.Kind != VKFloat {
		panic(vm.eb.failedOperand("fcmp %s expects floating point operands, got %s and %s", cmp.Pred, x, y))
	}
	return MakeBool(floatCompare(cmp.Pred, x.F, y.F))
}

func floatCompare(p qir.FloatPred, a, b float64) bool {
	uno := math.IsNaN(a) || math.IsNaN(b)
	switch p {
	case qir.FloatFalse:
		return false
	case qir.FloatOEQ:
		return !uno && a == b
	case qir.FloatOGT:
		return !uno && a > b
	case qir.FloatOGE:
		return !uno && a >= b
	case qir.FloatOLT:
		return !uno && a < b
	case qir.FloatOLE:
		return !uno && a <= b
	case qir.FloatONE:
		return !uno && a != b
	case qir.FloatORD:
		return !uno
	case qir.FloatUEQ:
		return uno || a == b
	case qir.FloatUGT:
		return uno || a > b
	case qir.FloatUGE:
		return uno || a >= b
	case qir.FloatULT:
		return uno || a < b
	case qir.FloatULE:
		return uno || a <= b
	case qir.FloatUNE:
		return uno || a != b
	case qir.FloatUNO:
		return uno
	default:
		return true
	}
}
