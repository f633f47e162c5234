package loader

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"fortio.org/safecast"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"qirkit/internal/qir"
)

type converter struct {
	m         *qir.Module
	src       *ir.Module
	typeCache map[types.Type]qir.TypeID
}

func (c *converter) run() error {
	c.typeCache = make(map[types.Type]qir.TypeID)
	for _, g := range c.src.Globals {
		c.m.Globals = append(c.m.Globals, c.global(g))
	}
	defined := make(map[string]bool, len(c.src.Funcs))
	for _, f := range c.src.Funcs {
		defined[f.Name()] = len(f.Blocks) > 0
	}
	for _, f := range c.src.Funcs {
		fn, err := c.function(f, defined)
		if err != nil {
			return fmt.Errorf("function %s: %w", f.Name(), err)
		}
		c.m.AddFunc(fn)
	}
	return nil
}

func (c *converter) global(g *ir.Global) qir.Global {
	out := qir.Global{
		Name:     g.Name(),
		Type:     c.typ(g.ContentType),
		Constant: g.Immutable,
	}
	if arr, ok := g.Init.(*constant.CharArray); ok {
		out.Data = append([]byte(nil), arr.X...)
	}
	return out
}

func (c *converter) function(f *ir.Func, defined map[string]bool) (*qir.Func, error) {
	fn := &qir.Func{
		Name:     f.Name(),
		Result:   c.typ(f.Sig.RetType),
		Variadic: f.Sig.Variadic,
		Entry:    qir.NoBlockID,
		IsDecl:   len(f.Blocks) == 0,
	}
	c.attrs(&fn.Attrs, f.FuncAttrs)

	fc := &funcConv{
		c:       c,
		fn:      fn,
		defined: defined,
		locals:  make(map[value.Value]qir.LocalID),
		blocks:  make(map[*ir.Block]qir.BlockID, len(f.Blocks)),
	}
	for _, p := range f.Params {
		id := fc.newLocal(p)
		fn.Params = append(fn.Params, id)
	}
	if fn.IsDecl {
		return fn, nil
	}

	for i, b := range f.Blocks {
		id, err := safecast.Conv[int32](i)
		if err != nil {
			return nil, fmt.Errorf("too many blocks: %w", err)
		}
		fc.blocks[b] = qir.BlockID(id)
	}
	// Results are numbered before conversion so that phis can refer forward.
	for _, b := range f.Blocks {
		for _, inst := range b.Insts {
			if v, ok := inst.(value.Value); ok && !isVoid(v.Type()) {
				fc.newLocal(v)
			}
		}
	}

	fn.Entry = 0
	fn.Blocks = make([]qir.Block, len(f.Blocks))
	for i, b := range f.Blocks {
		blk := qir.Block{
			ID:     qir.BlockID(i),
			Name:   strings.TrimPrefix(b.Ident(), "%"),
			Instrs: make([]qir.Instr, 0, len(b.Insts)),
		}
		for _, inst := range b.Insts {
			in, err := fc.instr(inst)
			if err != nil {
				return nil, fmt.Errorf("block %s: %w", blk.Name, err)
			}
			blk.Instrs = append(blk.Instrs, in)
		}
		if b.Term == nil {
			return nil, fmt.Errorf("block %s: missing terminator", blk.Name)
		}
		term, err := fc.term(b.Term)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", blk.Name, err)
		}
		blk.Term = term
		fn.Blocks[i] = blk
	}
	return fn, nil
}

// attrs flattens direct and group attributes into string key/value pairs.
func (c *converter) attrs(dst *qir.FuncAttrs, attrs []ir.FuncAttribute) {
	for _, a := range attrs {
		switch a := a.(type) {
		case ir.AttrString:
			dst.Set(string(a), "")
		case ir.AttrPair:
			dst.Set(a.Key, a.Value)
		case *ir.AttrGroupDef:
			c.attrs(dst, a.FuncAttrs)
		}
	}
}

func (c *converter) typ(t types.Type) qir.TypeID {
	if t == nil {
		return c.m.InternType(qir.Type{Kind: qir.TypeVoid})
	}
	if id, ok := c.typeCache[t]; ok {
		return id
	}
	id := c.m.InternType(c.convertType(t))
	c.typeCache[t] = id
	return id
}

func (c *converter) convertType(t types.Type) qir.Type {
	switch t := t.(type) {
	case *types.VoidType:
		return qir.Type{Kind: qir.TypeVoid}
	case *types.IntType:
		width, err := safecast.Conv[uint32](t.BitSize)
		if err != nil {
			return qir.Type{Kind: qir.TypeOther, Name: t.String()}
		}
		return qir.Type{Kind: qir.TypeInt, Width: width}
	case *types.FloatType:
		switch t.Kind {
		case types.FloatKindHalf:
			return qir.Type{Kind: qir.TypeFloat, Width: 16}
		case types.FloatKindFloat:
			return qir.Type{Kind: qir.TypeFloat, Width: 32}
		case types.FloatKindDouble:
			return qir.Type{Kind: qir.TypeFloat, Width: 64}
		default:
			return qir.Type{Kind: qir.TypeOther, Name: t.String()}
		}
	case *types.PointerType:
		if st, ok := t.ElemType.(*types.StructType); ok {
			switch st.Name() {
			case "Qubit":
				return qir.Type{Kind: qir.TypeQubit}
			case "Result":
				return qir.Type{Kind: qir.TypeResult}
			}
		}
		return qir.Type{Kind: qir.TypePointer, Elem: c.typ(t.ElemType), AddrSpace: uint64(t.AddrSpace)}
	case *types.ArrayType:
		return qir.Type{Kind: qir.TypeArray, Len: t.Len, Elem: c.typ(t.ElemType)}
	case *types.StructType:
		if t.Name() != "" {
			// Named structs may be recursive; they are identified by name alone.
			return qir.Type{Kind: qir.TypeStruct, Name: t.Name(), Opaque: t.Opaque}
		}
		out := qir.Type{Kind: qir.TypeStruct, Fields: make([]qir.TypeID, len(t.Fields))}
		for i, f := range t.Fields {
			out.Fields[i] = c.typ(f)
		}
		return out
	case *types.LabelType:
		return qir.Type{Kind: qir.TypeLabel}
	default:
		return qir.Type{Kind: qir.TypeOther, Name: t.String()}
	}
}

func (c *converter) constant(v constant.Constant) (qir.Const, error) {
	switch v := v.(type) {
	case *constant.Int:
		width, err := safecast.Conv[uint32](v.Typ.BitSize)
		if err != nil {
			return qir.Const{}, fmt.Errorf("integer width %d: %w", v.Typ.BitSize, err)
		}
		return qir.IntConst(width, bigBits(v.X)), nil
	case *constant.Float:
		if v.X == nil {
			return qir.FloatConst(math.NaN()), nil
		}
		f, _ := v.X.Float64()
		return qir.FloatConst(f), nil
	case *constant.Null:
		switch c.m.Type(c.typ(v.Typ)).Kind {
		case qir.TypeQubit:
			return qir.QubitConst(0), nil
		case qir.TypeResult:
			return qir.ResultConst(0), nil
		default:
			return qir.Const{Kind: qir.ConstNull}, nil
		}
	case *constant.ExprIntToPtr:
		return c.intToPtr(v)
	case *constant.ExprBitCast:
		return c.constant(v.From)
	case *constant.ExprGetElementPtr:
		return c.constant(v.Src)
	case *constant.Undef, *constant.ZeroInitializer:
		return qir.Const{Kind: qir.ConstZero}, nil
	case *ir.Global:
		return qir.Const{Kind: qir.ConstGlobal, Name: v.Name()}, nil
	case *ir.Func:
		return qir.Const{Kind: qir.ConstGlobal, Name: v.Name()}, nil
	default:
		return qir.Const{}, fmt.Errorf("unsupported constant %s", v.Ident())
	}
}

// intToPtr decodes the static id encoding "inttoptr (i64 N to %Qubit*)".
func (c *converter) intToPtr(v *constant.ExprIntToPtr) (qir.Const, error) {
	n, ok := v.From.(*constant.Int)
	if !ok {
		return qir.Const{}, fmt.Errorf("unsupported inttoptr operand %s", v.From.Ident())
	}
	kind := c.m.Type(c.typ(v.To)).Kind
	if kind != qir.TypeQubit && kind != qir.TypeResult {
		if n.X.Sign() == 0 {
			return qir.Const{Kind: qir.ConstNull}, nil
		}
		return qir.IntConst(64, bigBits(n.X)), nil
	}
	if n.X.Sign() < 0 || !n.X.IsUint64() {
		return qir.Const{}, fmt.Errorf("invalid static id %s in %s", n.X, v.Ident())
	}
	if kind == qir.TypeQubit {
		return qir.QubitConst(n.X.Uint64()), nil
	}
	return qir.ResultConst(n.X.Uint64()), nil
}

var mask64 = new(big.Int).SetUint64(math.MaxUint64)

// bigBits returns the low 64 bits of x in two's complement.
func bigBits(x *big.Int) uint64 {
	if x.IsUint64() {
		return x.Uint64()
	}
	if x.IsInt64() {
		return uint64(x.Int64())
	}
	return new(big.Int).And(x, mask64).Uint64()
}

func isVoid(t types.Type) bool {
	_, ok := t.(*types.VoidType)
	return ok
}
