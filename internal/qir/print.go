package qir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DumpOptions configures module dumping.
type DumpOptions struct {
	// Declarations includes body-less functions in the dump.
	Declarations bool
}

// DumpModule writes a human-readable representation of a program model.
func DumpModule(w io.Writer, m *Module, opts DumpOptions) error {
	if w == nil || m == nil {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", m.Name)
	if m.SourceFile != "" {
		fmt.Fprintf(&sb, "source=%s\n", m.SourceFile)
	}
	if len(m.Globals) > 0 {
		fmt.Fprintf(&sb, "globals=%d\n", len(m.Globals))
		for i := range m.Globals {
			g := &m.Globals[i]
			flags := ""
			if g.Constant {
				flags = " const"
			}
			if g.Data != nil {
				fmt.Fprintf(&sb, "  @%s: %s%s %q\n", g.Name, m.TypeString(g.Type), flags, trimNUL(g.Data))
				continue
			}
			fmt.Fprintf(&sb, "  @%s: %s%s\n", g.Name, m.TypeString(g.Type), flags)
		}
	}

	funcs := 0
	for _, f := range m.Funcs {
		if !f.IsDecl || opts.Declarations {
			funcs++
		}
	}
	fmt.Fprintf(&sb, "funcs=%d\n", funcs)
	for _, f := range m.Funcs {
		if f.IsDecl {
			if opts.Declarations {
				fmt.Fprintf(&sb, "declare %s\n", FuncSignature(m, f))
			}
			continue
		}
		dumpFunc(&sb, m, f)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func dumpFunc(sb *strings.Builder, m *Module, f *Func) {
	fmt.Fprintf(sb, "\nfn %s", FuncSignature(m, f))
	if keys := f.Attrs.Keys(); len(keys) > 0 {
		parts := make([]string, len(keys))
		for i, k := range keys {
			if v := f.Attrs.Strings[k]; v != "" {
				parts[i] = fmt.Sprintf("%s=%q", k, v)
			} else {
				parts[i] = k
			}
		}
		fmt.Fprintf(sb, " [%s]", strings.Join(parts, " "))
	}
	sb.WriteString(":\n")
	for i := range f.Blocks {
		b := &f.Blocks[i]
		fmt.Fprintf(sb, "  bb%d(%s):\n", b.ID, b.Name)
		for j := range b.Instrs {
			fmt.Fprintf(sb, "    %s\n", FormatInstr(m, f, &b.Instrs[j]))
		}
		fmt.Fprintf(sb, "    %s\n", FormatTerm(m, f, &b.Term))
	}
}

// FuncSignature renders "name(params) -> ret".
func FuncSignature(m *Module, f *Func) string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		if p < 0 || int(p) >= len(f.Locals) {
			continue
		}
		local := f.Locals[p]
		if local.Name == "" {
			params = append(params, m.TypeString(local.Type))
			continue
		}
		params = append(params, fmt.Sprintf("%s %%%s", m.TypeString(local.Type), local.Name))
	}
	if f.Variadic {
		params = append(params, "...")
	}
	return fmt.Sprintf("%s(%s) -> %s", f.Name, strings.Join(params, ", "), m.TypeString(f.Result))
}

// FormatInstr renders one instruction.
func FormatInstr(m *Module, f *Func, in *Instr) string {
	dst := ""
	if in.HasDst {
		dst = formatLocal(f, in.Dst) + " = "
	}
	switch in.Kind {
	case InstrCall:
		return fmt.Sprintf("%scall %s(%s)", dst, in.Call.Callee, formatOperands(m, f, in.Call.Args))
	case InstrICmp:
		return fmt.Sprintf("%sicmp %s %s, %s", dst, in.ICmp.Pred, FormatOperand(m, f, in.ICmp.X), FormatOperand(m, f, in.ICmp.Y))
	case InstrFCmp:
		return fmt.Sprintf("%sfcmp %s %s, %s", dst, in.FCmp.Pred, FormatOperand(m, f, in.FCmp.X), FormatOperand(m, f, in.FCmp.Y))
	case InstrPhi:
		parts := make([]string, len(in.Phi.Incoming))
		for i, inc := range in.Phi.Incoming {
			parts[i] = fmt.Sprintf("[%s, bb%d]", FormatOperand(m, f, inc.Value), inc.Block)
		}
		return fmt.Sprintf("%sphi %s", dst, strings.Join(parts, ", "))
	case InstrSelect:
		return fmt.Sprintf("%sselect %s, %s, %s", dst,
			FormatOperand(m, f, in.Select.Cond),
			FormatOperand(m, f, in.Select.True),
			FormatOperand(m, f, in.Select.False))
	case InstrBinary:
		return fmt.Sprintf("%s%s %s, %s", dst, in.Binary.Op, FormatOperand(m, f, in.Binary.X), FormatOperand(m, f, in.Binary.Y))
	case InstrCast:
		return fmt.Sprintf("%s%s %s to %s", dst, in.Cast.Op, FormatOperand(m, f, in.Cast.Value), m.TypeString(in.Cast.To))
	case InstrAlloca:
		return fmt.Sprintf("%salloca %s", dst, m.TypeString(in.Alloca.Elem))
	case InstrLoad:
		return fmt.Sprintf("%sload %s, %s", dst, m.TypeString(in.Load.Elem), FormatOperand(m, f, in.Load.Src))
	case InstrStore:
		return fmt.Sprintf("store %s, %s", FormatOperand(m, f, in.Store.Value), FormatOperand(m, f, in.Store.Dst))
	case InstrOther:
		return fmt.Sprintf("%s%s %s", dst, in.Other.Opcode, formatOperands(m, f, in.Other.Operands))
	default:
		return fmt.Sprintf("<?instr:%d>", in.Kind)
	}
}

// FormatTerm renders one terminator.
func FormatTerm(m *Module, f *Func, t *Terminator) string {
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermRet:
		if t.Ret.HasValue {
			return "ret " + FormatOperand(m, f, t.Ret.Value)
		}
		return "ret void"
	case TermBr:
		return fmt.Sprintf("br bb%d", t.Br.Target)
	case TermCondBr:
		return fmt.Sprintf("br %s, bb%d, bb%d", FormatOperand(m, f, t.CondBr.Cond), t.CondBr.True, t.CondBr.False)
	case TermSwitch:
		parts := make([]string, len(t.Switch.Cases))
		for i, c := range t.Switch.Cases {
			parts[i] = fmt.Sprintf("%s: bb%d", formatConst(c.Value), c.Target)
		}
		return fmt.Sprintf("switch %s, default bb%d [%s]", FormatOperand(m, f, t.Switch.Value), t.Switch.Default, strings.Join(parts, ", "))
	case TermUnreachable:
		return "unreachable"
	case TermOther:
		return t.Other.Opcode
	default:
		return fmt.Sprintf("<?term:%d>", t.Kind)
	}
}

// FormatOperand renders an operand with its type.
func FormatOperand(m *Module, f *Func, op Operand) string {
	if op.Kind == OperandLocal {
		return m.TypeString(op.Type) + " " + formatLocal(f, op.Local)
	}
	return m.TypeString(op.Type) + " " + formatConst(op.Const)
}

func formatOperands(m *Module, f *Func, ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = FormatOperand(m, f, op)
	}
	return strings.Join(parts, ", ")
}

func formatLocal(f *Func, id LocalID) string {
	if f != nil && id >= 0 && int(id) < len(f.Locals) && f.Locals[id].Name != "" {
		return "%" + f.Locals[id].Name
	}
	return fmt.Sprintf("%%L%d", id)
}

func formatConst(c Const) string {
	switch c.Kind {
	case ConstInt:
		if c.Width == 1 {
			return strconv.FormatBool(c.Bits != 0)
		}
		return strconv.FormatInt(SignExtend(c.Bits, c.Width), 10)
	case ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case ConstNull:
		return "null"
	case ConstQubit:
		return fmt.Sprintf("qubit[%d]", c.ID)
	case ConstResult:
		return fmt.Sprintf("result[%d]", c.ID)
	case ConstZero:
		return "zeroinit"
	case ConstGlobal:
		return "@" + c.Name
	default:
		return "?"
	}
}

func trimNUL(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
