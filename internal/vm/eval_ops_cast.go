package vm

import (
	"fortio.org/safecast"

	"qirkit/internal/qir"
)

func (vm *VM) evalCast(frame *Frame, c *qir.CastInstr) Value {
	v := vm.evalOperand(frame, c.Value)
	to := vm.M.Type(c.To)
	switch c.Op {
	case qir.CastTrunc, qir.CastZExt:
		vm.expectKind(c, v, VKInt)
		return MakeInt(to.Width, v.Bits)
	case qir.CastSExt:
		vm.expectKind(c, v, VKInt)
		return MakeInt(to.Width, uint64(v.Signed()))
	case qir.CastFPTrunc, qir.CastFPExt:
		vm.expectKind(c, v, VKFloat)
		if to.Width == 32 {
			return MakeFloat(float64(float32(v.F)))
		}
		return v
	case qir.CastFPToSI:
		vm.expectKind(c, v, VKFloat)
		n, err := safecast.Truncate[int64](v.F)
		if err != nil {
			panic(vm.eb.failedOperand("fptosi: %v", err))
		}
		return MakeInt(to.Width, uint64(n))
	case qir.CastFPToUI:
		vm.expectKind(c, v, VKFloat)
		n, err := safecast.Truncate[uint64](v.F)
		if err != nil {
			panic(vm.eb.failedOperand("fptoui: %v", err))
		}
		return MakeInt(to.Width, n)
	case qir.CastSIToFP:
		vm.expectKind(c, v, VKInt)
		return MakeFloat(float64(v.Signed()))
	case qir.CastUIToFP:
		vm.expectKind(c, v, VKInt)
		return MakeFloat(float64(v.Bits))
	case qir.CastPtrToInt:
		switch v.Kind {
		case VKQubit, VKResult:
			return MakeInt(to.Width, v.ID)
		case VKNull:
			return MakeInt(to.Width, 0)
		}
		panic(vm.eb.failedOperand("ptrtoint of %s", v))
	case qir.CastIntToPtr:
		vm.expectKind(c, v, VKInt)
		return pointerOf(to.Kind, v.Bits)
	case qir.CastBitCast:
		return vm.bitcast(c, v, to)
	default:
		panic(vm.eb.unsupportedInstruction(c.Op.String()))
	}
}

// bitcast retypes static ids between %Qubit*, %Result* and opaque pointers.
func (vm *VM) bitcast(c *qir.CastInstr, v Value, to qir.Type) Value {
	switch v.Kind {
	case VKQubit, VKResult:
		if v.Dynamic {
			return v
		}
		return pointerOf(to.Kind, v.ID)
	case VKNull:
		return pointerOf(to.Kind, 0)
	case VKInt, VKFloat, VKPtr, VKGlobal:
		return v
	}
	panic(vm.eb.failedOperand("%s of %s", c.Op, v))
}

func pointerOf(kind qir.TypeKind, id uint64) Value {
	switch kind {
	case qir.TypeQubit:
		return MakeQubit(id)
	case qir.TypeResult:
		return MakeStaticResult(id)
	}
	if id == 0 {
		return Value{Kind: VKNull}
	}
	return MakeInt(64, id)
}

func (vm *VM) expectKind(c *qir.CastInstr, v Value, kind ValueKind) {
	if v.Kind != kind {
		panic(vm.eb.failedOperand("%s of %s", c.Op, v))
	}
}
