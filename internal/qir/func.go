package qir

type Func struct {
	ID   FuncID
	Name string

	Params   []LocalID
	Result   TypeID
	Variadic bool

	Locals []Local
	Blocks []Block
	Entry  BlockID

	Attrs FuncAttrs
	// IsDecl marks a declaration without a body.
	IsDecl bool
}

// IsEntryPoint reports whether the function carries an entry point attribute.
func (f *Func) IsEntryPoint() bool {
	return f != nil && f.Attrs.EntryPoint
}

// IsInteropFriendly reports whether the function carries the InteropFriendly attribute.
func (f *Func) IsInteropFriendly() bool {
	return f != nil && f.Attrs.InteropFriendly
}

// BlockByName finds a block by its label.
func (f *Func) BlockByName(name string) *Block {
	for i := range f.Blocks {
		if f.Blocks[i].Name == name {
			return &f.Blocks[i]
		}
	}
	return nil
}

// Predecessors maps each block to the blocks that branch to it.
func (f *Func) Predecessors() [][]BlockID {
	preds := make([][]BlockID, len(f.Blocks))
	for i := range f.Blocks {
		for _, s := range f.Blocks[i].Term.Successors() {
			if s < 0 || int(s) >= len(f.Blocks) {
				continue
			}
			preds[s] = appendUnique(preds[s], BlockID(i))
		}
	}
	return preds
}

func appendUnique(ids []BlockID, id BlockID) []BlockID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}
