package vm

import (
	"fmt"
	"strconv"

	"qirkit/internal/qir"
)

// ValueKind identifies the runtime shape of a Value.
type ValueKind uint8

const (
	VKInvalid ValueKind = iota
	VKInt
	VKFloat
	VKNull
	VKQubit
	VKResult
	VKPtr
	VKGlobal
)

// Value is a runtime SSA value.
type Value struct {
	Kind  ValueKind
	Width uint32  // VKInt
	Bits  uint64  // VKInt, masked to Width
	F     float64 // VKFloat
	ID    uint64  // VKQubit, VKResult
	// Dynamic marks a result whose outcome travels with the value instead of
	// being looked up by ID.
	Dynamic bool
	Bit     bool
	Slot    int    // VKPtr: index into VM memory
	Name    string // VKGlobal
}

func MakeInt(width uint32, bits uint64) Value {
	return Value{Kind: VKInt, Width: width, Bits: qir.MaskBits(bits, width)}
}

func MakeBool(b bool) Value {
	if b {
		return MakeInt(1, 1)
	}
	return MakeInt(1, 0)
}

func MakeFloat(f float64) Value {
	return Value{Kind: VKFloat, F: f}
}

func MakeQubit(id uint64) Value {
	return Value{Kind: VKQubit, ID: id}
}

// MakeStaticResult refers to the outcome cached under id.
func MakeStaticResult(id uint64) Value {
	return Value{Kind: VKResult, ID: id}
}

// MakeDynamicResult carries its outcome directly.
func MakeDynamicResult(id uint64, bit bool) Value {
	return Value{Kind: VKResult, ID: id, Dynamic: true, Bit: bit}
}

// Signed interprets an integer value as two's complement.
func (v Value) Signed() int64 {
	return qir.SignExtend(v.Bits, v.Width)
}

func (v Value) String() string {
	switch v.Kind {
	case VKInt:
		if v.Width == 1 {
			return strconv.FormatBool(v.Bits != 0)
		}
		return fmt.Sprintf("i%d %d", v.Width, v.Signed())
	case VKFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case VKNull:
		return "null"
	case VKQubit:
		return fmt.Sprintf("qubit[%d]", v.ID)
	case VKResult:
		if v.Dynamic {
			return fmt.Sprintf("result(%t)", v.Bit)
		}
		return fmt.Sprintf("result[%d]", v.ID)
	case VKPtr:
		return fmt.Sprintf("slot#%d", v.Slot)
	case VKGlobal:
		return "@" + v.Name
	default:
		return "<invalid>"
	}
}
