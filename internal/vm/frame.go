package vm

import "qirkit/internal/qir"

// Frame represents a function activation record on the call stack.
type Frame struct {
	Func *qir.Func   // The function being executed
	BB   qir.BlockID // Current basic block
	// Prev is the block control arrived from; phis read it.
	Prev    qir.BlockID
	IP      int     // Instruction pointer within BB.Instrs
	Locals  []Value // SSA value slots
	Defined []bool
}

// NewFrame creates a new frame for executing the given function.
func NewFrame(fn *qir.Func) *Frame {
	return &Frame{
		Func:    fn,
		BB:      fn.Entry,
		Prev:    qir.NoBlockID,
		IP:      0,
		Locals:  make([]Value, len(fn.Locals)),
		Defined: make([]bool, len(fn.Locals)),
	}
}

// CurrentBlock returns the current basic block being executed.
func (f *Frame) CurrentBlock() *qir.Block {
	if int(f.BB) < 0 || int(f.BB) >= len(f.Func.Blocks) {
		return nil
	}
	return &f.Func.Blocks[f.BB]
}

// CurrentInstr returns the current instruction, or nil if at terminator.
func (f *Frame) CurrentInstr() *qir.Instr {
	block := f.CurrentBlock()
	if block == nil || f.IP >= len(block.Instrs) {
		return nil
	}
	return &block.Instrs[f.IP]
}

// AtTerminator returns true if the IP is past all instructions (at terminator).
func (f *Frame) AtTerminator() bool {
	block := f.CurrentBlock()
	if block == nil {
		return true
	}
	return f.IP >= len(block.Instrs)
}
