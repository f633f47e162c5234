package loader

import (
	"fmt"
	"math"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qirkit/internal/qir"
)

// funcConv carries the per-function value and block numbering.
type funcConv struct {
	c       *converter
	fn      *qir.Func
	defined map[string]bool
	locals  map[value.Value]qir.LocalID
	blocks  map[*ir.Block]qir.BlockID
}

func (fc *funcConv) newLocal(v value.Value) qir.LocalID {
	id := qir.LocalID(len(fc.fn.Locals))
	fc.fn.Locals = append(fc.fn.Locals, qir.Local{
		Name: strings.TrimPrefix(v.Ident(), "%"),
		Type: fc.c.typ(v.Type()),
	})
	fc.locals[v] = id
	return id
}

func (fc *funcConv) operand(v value.Value) (qir.Operand, error) {
	if v == nil {
		return qir.Operand{}, fmt.Errorf("missing operand")
	}
	if id, ok := fc.locals[v]; ok {
		return qir.LocalOperand(id, fc.fn.Locals[id].Type), nil
	}
	if k, ok := v.(constant.Constant); ok {
		cv, err := fc.c.constant(k)
		if err != nil {
			return qir.Operand{}, err
		}
		return qir.ConstOperand(cv, fc.c.typ(k.Type())), nil
	}
	return qir.Operand{}, fmt.Errorf("unsupported operand %s", v.Ident())
}

func (fc *funcConv) operands(vs ...value.Value) ([]qir.Operand, error) {
	out := make([]qir.Operand, len(vs))
	for i, v := range vs {
		op, err := fc.operand(v)
		if err != nil {
			return nil, err
		}
		out[i] = op
	}
	return out, nil
}

func (fc *funcConv) block(v value.Value) (qir.BlockID, error) {
	b, ok := v.(*ir.Block)
	if !ok {
		return qir.NoBlockID, fmt.Errorf("branch target %s is not a block", v.Ident())
	}
	id, ok := fc.blocks[b]
	if !ok {
		return qir.NoBlockID, fmt.Errorf("branch target %s is not in function %s", b.Ident(), fc.fn.Name)
	}
	return id, nil
}

// dst fills in the destination slot for value-producing instructions.
func (fc *funcConv) dst(in *qir.Instr, inst ir.Instruction) {
	in.Dst = qir.NoLocalID
	if v, ok := inst.(value.Value); ok {
		if id, ok := fc.locals[v]; ok {
			in.HasDst = true
			in.Dst = id
		}
	}
}

func (fc *funcConv) instr(inst ir.Instruction) (qir.Instr, error) {
	var in qir.Instr
	var err error
	switch inst := inst.(type) {
	case *ir.InstCall:
		in, err = fc.call(inst)
	case *ir.InstICmp:
		in, err = fc.icmp(inst)
	case *ir.InstFCmp:
		in, err = fc.fcmp(inst)
	case *ir.InstPhi:
		in, err = fc.phi(inst)
	case *ir.InstSelect:
		var ops []qir.Operand
		ops, err = fc.operands(inst.Cond, inst.ValueTrue, inst.ValueFalse)
		if err == nil {
			in = qir.Instr{Kind: qir.InstrSelect, Select: qir.SelectInstr{Cond: ops[0], True: ops[1], False: ops[2]}}
		}
	case *ir.InstAlloca:
		in = qir.Instr{Kind: qir.InstrAlloca, Alloca: qir.AllocaInstr{Elem: fc.c.typ(inst.ElemType)}}
	case *ir.InstLoad:
		var src qir.Operand
		src, err = fc.operand(inst.Src)
		if err == nil {
			in = qir.Instr{Kind: qir.InstrLoad, Load: qir.LoadInstr{Elem: fc.c.typ(inst.ElemType), Src: src}}
		}
	case *ir.InstStore:
		var ops []qir.Operand
		ops, err = fc.operands(inst.Src, inst.Dst)
		if err == nil {
			in = qir.Instr{Kind: qir.InstrStore, Store: qir.StoreInstr{Value: ops[0], Dst: ops[1]}}
		}
	case *ir.InstFNeg:
		// fneg x is lowered to fsub -0.0, x.
		var x qir.Operand
		x, err = fc.operand(inst.X)
		if err == nil {
			negZero := qir.ConstOperand(qir.FloatConst(negativeZero()), x.Type)
			in = qir.Instr{Kind: qir.InstrBinary, Binary: qir.BinaryInstr{Op: qir.OpFSub, X: negZero, Y: x}}
		}
	default:
		if op, x, y, ok := binaryOf(inst); ok {
			var ops []qir.Operand
			ops, err = fc.operands(x, y)
			if err == nil {
				in = qir.Instr{Kind: qir.InstrBinary, Binary: qir.BinaryInstr{Op: op, X: ops[0], Y: ops[1]}}
			}
			break
		}
		if op, from, to, ok := castOf(inst); ok {
			var v qir.Operand
			v, err = fc.operand(from)
			if err == nil {
				in = qir.Instr{Kind: qir.InstrCast, Cast: qir.CastInstr{Op: op, Value: v, To: fc.c.typ(to)}}
			}
			break
		}
		in = qir.Instr{Kind: qir.InstrOther, Other: qir.OtherInstr{Opcode: opcodeOf(inst)}}
	}
	if err != nil {
		return qir.Instr{}, err
	}
	fc.dst(&in, inst)
	return in, nil
}

func (fc *funcConv) call(inst *ir.InstCall) (qir.Instr, error) {
	name, ok := calleeName(inst.Callee)
	if !ok {
		return qir.Instr{Kind: qir.InstrOther, Other: qir.OtherInstr{Opcode: "call"}}, nil
	}
	args, err := fc.operands(inst.Args...)
	if err != nil {
		return qir.Instr{}, fmt.Errorf("call %s: %w", name, err)
	}
	return qir.Instr{Kind: qir.InstrCall, Call: qir.CallInstr{
		Callee: name,
		Kind:   qir.ClassifyCallee(name, fc.defined[name]),
		Args:   args,
		Ret:    fc.c.typ(inst.Type()),
	}}, nil
}

// calleeName resolves direct calls, looking through constant bitcasts.
func calleeName(v value.Value) (string, bool) {
	switch v := v.(type) {
	case *ir.Func:
		return v.Name(), true
	case *constant.ExprBitCast:
		return calleeName(v.From)
	default:
		return "", false
	}
}

func (fc *funcConv) icmp(inst *ir.InstICmp) (qir.Instr, error) {
	pred, ok := intPreds[inst.Pred]
	if !ok {
		return qir.Instr{}, fmt.Errorf("unsupported icmp predicate %s", inst.Pred)
	}
	ops, err := fc.operands(inst.X, inst.Y)
	if err != nil {
		return qir.Instr{}, err
	}
	return qir.Instr{Kind: qir.InstrICmp, ICmp: qir.ICmpInstr{Pred: pred, X: ops[0], Y: ops[1]}}, nil
}

func (fc *funcConv) fcmp(inst *ir.InstFCmp) (qir.Instr, error) {
	pred, ok := floatPreds[inst.Pred]
	if !ok {
		return qir.Instr{}, fmt.Errorf("unsupported fcmp predicate %s", inst.Pred)
	}
	ops, err := fc.operands(inst.X, inst.Y)
	if err != nil {
		return qir.Instr{}, err
	}
	return qir.Instr{Kind: qir.InstrFCmp, FCmp: qir.FCmpInstr{Pred: pred, X: ops[0], Y: ops[1]}}, nil
}

func (fc *funcConv) phi(inst *ir.InstPhi) (qir.Instr, error) {
	incs := make([]qir.PhiIncoming, 0, len(inst.Incs))
	for _, inc := range inst.Incs {
		v, err := fc.operand(inc.X)
		if err != nil {
			return qir.Instr{}, fmt.Errorf("phi: %w", err)
		}
		b, err := fc.block(inc.Pred)
		if err != nil {
			return qir.Instr{}, fmt.Errorf("phi: %w", err)
		}
		incs = append(incs, qir.PhiIncoming{Value: v, Block: b})
	}
	return qir.Instr{Kind: qir.InstrPhi, Phi: qir.PhiInstr{Incoming: incs}}, nil
}

func (fc *funcConv) term(t ir.Terminator) (qir.Terminator, error) {
	switch t := t.(type) {
	case *ir.TermRet:
		if t.X == nil {
			return qir.Terminator{Kind: qir.TermRet}, nil
		}
		v, err := fc.operand(t.X)
		if err != nil {
			return qir.Terminator{}, err
		}
		return qir.Terminator{Kind: qir.TermRet, Ret: qir.RetTerm{HasValue: true, Value: v}}, nil
	case *ir.TermBr:
		target, err := fc.block(t.Target)
		if err != nil {
			return qir.Terminator{}, err
		}
		return qir.Terminator{Kind: qir.TermBr, Br: qir.BrTerm{Target: target}}, nil
	case *ir.TermCondBr:
		cond, err := fc.operand(t.Cond)
		if err != nil {
			return qir.Terminator{}, err
		}
		then, err := fc.block(t.TargetTrue)
		if err != nil {
			return qir.Terminator{}, err
		}
		els, err := fc.block(t.TargetFalse)
		if err != nil {
			return qir.Terminator{}, err
		}
		return qir.Terminator{Kind: qir.TermCondBr, CondBr: qir.CondBrTerm{Cond: cond, True: then, False: els}}, nil
	case *ir.TermSwitch:
		return fc.switchTerm(t)
	case *ir.TermUnreachable:
		return qir.Terminator{Kind: qir.TermUnreachable}, nil
	default:
		return qir.Terminator{Kind: qir.TermOther, Other: qir.OtherTerm{Opcode: opcodeOf(t)}}, nil
	}
}

func (fc *funcConv) switchTerm(t *ir.TermSwitch) (qir.Terminator, error) {
	v, err := fc.operand(t.X)
	if err != nil {
		return qir.Terminator{}, err
	}
	def, err := fc.block(t.TargetDefault)
	if err != nil {
		return qir.Terminator{}, err
	}
	sw := qir.SwitchTerm{Value: v, Default: def, Cases: make([]qir.SwitchCase, 0, len(t.Cases))}
	for _, c := range t.Cases {
		cv, err := fc.operand(c.X)
		if err != nil {
			return qir.Terminator{}, err
		}
		if cv.Kind != qir.OperandConst || cv.Const.Kind != qir.ConstInt {
			return qir.Terminator{}, fmt.Errorf("switch case %s is not an integer constant", c.X.Ident())
		}
		target, err := fc.block(c.Target)
		if err != nil {
			return qir.Terminator{}, err
		}
		sw.Cases = append(sw.Cases, qir.SwitchCase{Value: cv.Const, Target: target})
	}
	return qir.Terminator{Kind: qir.TermSwitch, Switch: sw}, nil
}

var intPreds = map[enum.IPred]qir.IntPred{
	enum.IPredEQ:  qir.IntEQ,
	enum.IPredNE:  qir.IntNE,
	enum.IPredUGT: qir.IntUGT,
	enum.IPredUGE: qir.IntUGE,
	enum.IPredULT: qir.IntULT,
	enum.IPredULE: qir.IntULE,
	enum.IPredSGT: qir.IntSGT,
	enum.IPredSGE: qir.IntSGE,
	enum.IPredSLT: qir.IntSLT,
	enum.IPredSLE: qir.IntSLE,
}

var floatPreds = map[enum.FPred]qir.FloatPred{
	enum.FPredFalse: qir.FloatFalse,
	enum.FPredOEQ:   qir.FloatOEQ,
	enum.FPredOGT:   qir.FloatOGT,
	enum.FPredOGE:   qir.FloatOGE,
	enum.FPredOLT:   qir.FloatOLT,
	enum.FPredOLE:   qir.FloatOLE,
	enum.FPredONE:   qir.FloatONE,
	enum.FPredORD:   qir.FloatORD,
	enum.FPredUEQ:   qir.FloatUEQ,
	enum.FPredUGT:   qir.FloatUGT,
	enum.FPredUGE:   qir.FloatUGE,
	enum.FPredULT:   qir.FloatULT,
	enum.FPredULE:   qir.FloatULE,
	enum.FPredUNE:   qir.FloatUNE,
	enum.FPredUNO:   qir.FloatUNO,
	enum.FPredTrue:  qir.FloatTrue,
}

func binaryOf(inst ir.Instruction) (qir.BinaryOp, value.Value, value.Value, bool) {
	switch inst := inst.(type) {
	case *ir.InstAdd:
		return qir.OpAdd, inst.X, inst.Y, true
	case *ir.InstSub:
		return qir.OpSub, inst.X, inst.Y, true
	case *ir.InstMul:
		return qir.OpMul, inst.X, inst.Y, true
	case *ir.InstUDiv:
		return qir.OpUDiv, inst.X, inst.Y, true
	case *ir.InstSDiv:
		return qir.OpSDiv, inst.X, inst.Y, true
	case *ir.InstURem:
		return qir.OpURem, inst.X, inst.Y, true
	case *ir.InstSRem:
		return qir.OpSRem, inst.X, inst.Y, true
	case *ir.InstShl:
		return qir.OpShl, inst.X, inst.Y, true
	case *ir.InstLShr:
		return qir.OpLShr, inst.X, inst.Y, true
	case *ir.InstAShr:
		return qir.OpAShr, inst.X, inst.Y, true
	case *ir.InstAnd:
		return qir.OpAnd, inst.X, inst.Y, true
	case *ir.InstOr:
		return qir.OpOr, inst.X, inst.Y, true
	case *ir.InstXor:
		return qir.OpXor, inst.X, inst.Y, true
	case *ir.InstFAdd:
		return qir.OpFAdd, inst.X, inst.Y, true
	case *ir.InstFSub:
		return qir.OpFSub, inst.X, inst.Y, true
	case *ir.InstFMul:
		return qir.OpFMul, inst.X, inst.Y, true
	case *ir.InstFDiv:
		return qir.OpFDiv, inst.X, inst.Y, true
	case *ir.InstFRem:
		return qir.OpFRem, inst.X, inst.Y, true
	default:
		return 0, nil, nil, false
	}
}

func castOf(inst ir.Instruction) (qir.CastOp, value.Value, types.Type, bool) {
	switch inst := inst.(type) {
	case *ir.InstTrunc:
		return qir.CastTrunc, inst.From, inst.To, true
	case *ir.InstZExt:
		return qir.CastZExt, inst.From, inst.To, true
	case *ir.InstSExt:
		return qir.CastSExt, inst.From, inst.To, true
	case *ir.InstFPTrunc:
		return qir.CastFPTrunc, inst.From, inst.To, true
	case *ir.InstFPExt:
		return qir.CastFPExt, inst.From, inst.To, true
	case *ir.InstFPToUI:
		return qir.CastFPToUI, inst.From, inst.To, true
	case *ir.InstFPToSI:
		return qir.CastFPToSI, inst.From, inst.To, true
	case *ir.InstUIToFP:
		return qir.CastUIToFP, inst.From, inst.To, true
	case *ir.InstSIToFP:
		return qir.CastSIToFP, inst.From, inst.To, true
	case *ir.InstPtrToInt:
		return qir.CastPtrToInt, inst.From, inst.To, true
	case *ir.InstIntToPtr:
		return qir.CastIntToPtr, inst.From, inst.To, true
	case *ir.InstBitCast:
		return qir.CastBitCast, inst.From, inst.To, true
	default:
		return 0, nil, nil, false
	}
}

// opcodeOf derives an LLVM-style opcode name from the llir node type.
func opcodeOf(v any) string {
	name := fmt.Sprintf("%T", v)
	name = strings.TrimPrefix(name, "*ir.")
	name = strings.TrimPrefix(name, "Inst")
	name = strings.TrimPrefix(name, "Term")
	return strings.ToLower(name)
}

func negativeZero() float64 {
	return math.Copysign(0, -1)
}
