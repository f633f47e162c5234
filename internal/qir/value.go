package qir

// Local is an SSA value slot of a function: a parameter or an instruction result.
type Local struct {
	Name string
	Type TypeID
}

type OperandKind uint8

const (
	OperandLocal OperandKind = iota
	OperandConst
)

// Operand is either a reference to a local or an inline constant.
type Operand struct {
	Kind  OperandKind
	Type  TypeID
	Local LocalID
	Const Const
}

type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstNull
	// ConstQubit is a static qubit id: null or inttoptr of an integer to %Qubit*.
	ConstQubit
	// ConstResult is a static result id: null or inttoptr of an integer to %Result*.
	ConstResult
	// ConstZero covers undef and zeroinitializer; both evaluate to the zero value.
	ConstZero
	// ConstGlobal references a global variable or function by name.
	ConstGlobal
)

type Const struct {
	Kind  ConstKind
	Width uint32
	Bits  uint64 // ConstInt, masked to Width
	Float float64
	ID    uint64 // ConstQubit, ConstResult
	Name  string // ConstGlobal
}

// LocalOperand references local id with type ty.
func LocalOperand(id LocalID, ty TypeID) Operand {
	return Operand{Kind: OperandLocal, Type: ty, Local: id}
}

// ConstOperand wraps c with type ty.
func ConstOperand(c Const, ty TypeID) Operand {
	return Operand{Kind: OperandConst, Type: ty, Local: NoLocalID, Const: c}
}

// IntConst builds an integer constant, truncating v to width bits.
func IntConst(width uint32, v uint64) Const {
	return Const{Kind: ConstInt, Width: width, Bits: MaskBits(v, width)}
}

func BoolConst(b bool) Const {
	if b {
		return IntConst(1, 1)
	}
	return IntConst(1, 0)
}

func FloatConst(f float64) Const {
	return Const{Kind: ConstFloat, Width: 64, Float: f}
}

func QubitConst(id uint64) Const {
	return Const{Kind: ConstQubit, ID: id}
}

func ResultConst(id uint64) Const {
	return Const{Kind: ConstResult, ID: id}
}

// MaskBits keeps the low width bits of v.
func MaskBits(v uint64, width uint32) uint64 {
	if width == 0 || width >= 64 {
		return v
	}
	return v & (uint64(1)<<width - 1)
}

// SignExtend interprets the low width bits of v as a two's complement integer.
func SignExtend(v uint64, width uint32) int64 {
	if width == 0 || width >= 64 {
		return int64(v)
	}
	shift := 64 - width
	return int64(v<<shift) >> shift
}
