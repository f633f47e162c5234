package qir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermRet
	TermBr
	TermCondBr
	TermSwitch
	TermUnreachable
	// TermOther is a terminator the evaluator cannot execute (invoke, resume, ...).
	TermOther
)

type Terminator struct {
	Kind TermKind

	Ret    RetTerm
	Br     BrTerm
	CondBr CondBrTerm
	Switch SwitchTerm
	Other  OtherTerm
}

type RetTerm struct {
	HasValue bool
	Value    Operand
}

type BrTerm struct {
	Target BlockID
}

type CondBrTerm struct {
	Cond  Operand
	True  BlockID
	False BlockID
}

type SwitchCase struct {
	Value  Const
	Target BlockID
}

type SwitchTerm struct {
	Value   Operand
	Default BlockID
	Cases   []SwitchCase
}

type OtherTerm struct {
	Opcode string
}

// Successors lists the blocks control may transfer to, in operand order.
func (t *Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermBr:
		return []BlockID{t.Br.Target}
	case TermCondBr:
		return []BlockID{t.CondBr.True, t.CondBr.False}
	case TermSwitch:
		out := make([]BlockID, 0, len(t.Switch.Cases)+1)
		out = append(out, t.Switch.Default)
		for _, c := range t.Switch.Cases {
			out = append(out, c.Target)
		}
		return out
	default:
		return nil
	}
}
