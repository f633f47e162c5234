package qir

type Block struct {
	ID     BlockID
	Name   string
	Instrs []Instr
	Term   Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// PhiCount returns the number of leading phi instructions.
func (b *Block) PhiCount() int {
	n := 0
	for n < len(b.Instrs) && b.Instrs[n].Kind == InstrPhi {
		n++
	}
	return n
}
