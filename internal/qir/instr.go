package qir

// InstrKind enumerates instruction kinds in the program model.
type InstrKind uint8

const (
	// InstrCall represents a call to a named function.
	InstrCall InstrKind = iota
	// InstrICmp represents an integer comparison.
	InstrICmp
	// InstrFCmp represents a floating point comparison.
	InstrFCmp
	// InstrPhi represents an SSA merge at the top of a block.
	InstrPhi
	// InstrSelect represents a conditional value choice.
	InstrSelect
	// InstrBinary represents integer and floating point arithmetic.
	InstrBinary
	// InstrCast represents a conversion between types.
	InstrCast
	// InstrAlloca represents a stack slot allocation.
	InstrAlloca
	// InstrLoad represents a read through a stack slot.
	InstrLoad
	// InstrStore represents a write through a stack slot.
	InstrStore
	// InstrOther represents an instruction kept for printing only.
	InstrOther
)

// Instr represents one instruction. Only the payload matching Kind is set.
type Instr struct {
	Kind   InstrKind
	HasDst bool
	Dst    LocalID

	Call   CallInstr
	ICmp   ICmpInstr
	FCmp   FCmpInstr
	Phi    PhiInstr
	Select SelectInstr
	Binary BinaryInstr
	Cast   CastInstr
	Alloca AllocaInstr
	Load   LoadInstr
	Store  StoreInstr
	Other  OtherInstr
}

// CallInstr represents a call instruction.
type CallInstr struct {
	Callee string
	Kind   CallKind
	Args   []Operand
	Ret    TypeID
}

type IntPred uint8

const (
	IntEQ IntPred = iota
	IntNE
	IntUGT
	IntUGE
	IntULT
	IntULE
	IntSGT
	IntSGE
	IntSLT
	IntSLE
)

var intPredNames = [...]string{"eq", "ne", "ugt", "uge", "ult", "ule", "sgt", "sge", "slt", "sle"}

func (p IntPred) String() string {
	if int(p) < len(intPredNames) {
		return intPredNames[p]
	}
	return "?"
}

type ICmpInstr struct {
	Pred IntPred
	X, Y Operand
}

type FloatPred uint8

const (
	FloatFalse FloatPred = iota
	FloatOEQ
	FloatOGT
	FloatOGE
	FloatOLT
	FloatOLE
	FloatONE
	FloatORD
	FloatUEQ
	FloatUGT
	FloatUGE
	FloatULT
	FloatULE
	FloatUNE
	FloatUNO
	FloatTrue
)

var floatPredNames = [...]string{
	"false", "oeq", "ogt", "oge", "olt", "ole", "one", "ord",
	"ueq", "ugt", "uge", "ult", "ule", "une", "uno", "true",
}

func (p FloatPred) String() string {
	if int(p) < len(floatPredNames) {
		return floatPredNames[p]
	}
	return "?"
}

type FCmpInstr struct {
	Pred FloatPred
	X, Y Operand
}

// PhiIncoming pairs a value with the predecessor block it flows from.
type PhiIncoming struct {
	Value Operand
	Block BlockID
}

type PhiInstr struct {
	Incoming []PhiIncoming
}

type SelectInstr struct {
	Cond  Operand
	True  Operand
	False Operand
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpUDiv
	OpSDiv
	OpURem
	OpSRem
	OpShl
	OpLShr
	OpAShr
	OpAnd
	OpOr
	OpXor
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv
	OpFRem
)

var binaryOpNames = [...]string{
	"add", "sub", "mul", "udiv", "sdiv", "urem", "srem", "shl", "lshr", "ashr",
	"and", "or", "xor", "fadd", "fsub", "fmul", "fdiv", "frem",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// IsFloat reports whether op works on floating point operands.
func (op BinaryOp) IsFloat() bool {
	return op >= OpFAdd
}

type BinaryInstr struct {
	Op   BinaryOp
	X, Y Operand
}

type CastOp uint8

const (
	CastTrunc CastOp = iota
	CastZExt
	CastSExt
	CastFPTrunc
	CastFPExt
	CastFPToUI
	CastFPToSI
	CastUIToFP
	CastSIToFP
	CastPtrToInt
	CastIntToPtr
	CastBitCast
)

var castOpNames = [...]string{
	"trunc", "zext", "sext", "fptrunc", "fpext", "fptoui", "fptosi",
	"uitofp", "sitofp", "ptrtoint", "inttoptr", "bitcast",
}

func (op CastOp) String() string {
	if int(op) < len(castOpNames) {
		return castOpNames[op]
	}
	return "?"
}

type CastInstr struct {
	Op    CastOp
	Value Operand
	To    TypeID
}

type AllocaInstr struct {
	Elem TypeID
}

type LoadInstr struct {
	Elem TypeID
	Src  Operand
}

type StoreInstr struct {
	Value Operand
	Dst   Operand
}

// OtherInstr keeps an unsupported instruction visible to the dump and to
// error messages. Executing it fails.
type OtherInstr struct {
	Opcode   string
	Operands []Operand
}

// Operands returns the value operands read by the instruction.
func (in *Instr) Operands() []Operand {
	switch in.Kind {
	case InstrCall:
		return in.Call.Args
	case InstrICmp:
		return []Operand{in.ICmp.X, in.ICmp.Y}
	case InstrFCmp:
		return []Operand{in.FCmp.X, in.FCmp.Y}
	case InstrPhi:
		out := make([]Operand, len(in.Phi.Incoming))
		for i, inc := range in.Phi.Incoming {
			out[i] = inc.Value
		}
		return out
	case InstrSelect:
		return []Operand{in.Select.Cond, in.Select.True, in.Select.False}
	case InstrBinary:
		return []Operand{in.Binary.X, in.Binary.Y}
	case InstrCast:
		return []Operand{in.Cast.Value}
	case InstrLoad:
		return []Operand{in.Load.Src}
	case InstrStore:
		return []Operand{in.Store.Value, in.Store.Dst}
	case InstrOther:
		return in.Other.Operands
	default:
		return nil
	}
}
