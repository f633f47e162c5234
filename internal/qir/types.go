package qir

import (
	"fmt"
	"strings"
)

type FuncID int32
type BlockID int32
type LocalID int32
type TypeID int32

const (
	NoFuncID  FuncID  = -1
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
	NoTypeID  TypeID  = -1
)

// TypeKind enumerates the shapes of IR types the evaluator understands.
type TypeKind uint8

const (
	TypeVoid TypeKind = iota
	TypeInt
	TypeFloat
	TypePointer
	TypeArray
	TypeStruct
	// TypeQubit is a pointer to the opaque %Qubit struct.
	TypeQubit
	// TypeResult is a pointer to the opaque %Result struct.
	TypeResult
	TypeLabel
	TypeOther
)

func (k TypeKind) String() string {
	switch k {
	case TypeVoid:
		return "void"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypePointer:
		return "pointer"
	case TypeArray:
		return "array"
	case TypeStruct:
		return "struct"
	case TypeQubit:
		return "qubit"
	case TypeResult:
		return "result"
	case TypeLabel:
		return "label"
	default:
		return "other"
	}
}

// Type describes one interned IR type. Which fields are meaningful depends on Kind.
type Type struct {
	Kind      TypeKind
	Width     uint32 // TypeInt and TypeFloat bit width
	Elem      TypeID // TypePointer, TypeArray
	Len       uint64 // TypeArray
	AddrSpace uint64 // TypePointer
	Name      string // named TypeStruct, or the textual form for TypeOther
	Fields    []TypeID
	Opaque    bool
}

// IsDouble reports whether t is the 64-bit floating point type.
func (t Type) IsDouble() bool {
	return t.Kind == TypeFloat && t.Width == 64
}

// IsBool reports whether t is i1.
func (t Type) IsBool() bool {
	return t.Kind == TypeInt && t.Width == 1
}

// typeKey returns a structural key used for interning.
func typeKey(t Type) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d/%d/%d/%d/%d/%s/%t", t.Kind, t.Width, t.Elem, t.Len, t.AddrSpace, t.Name, t.Opaque)
	for _, f := range t.Fields {
		fmt.Fprintf(&sb, ",%d", f)
	}
	return sb.String()
}

// TypeString renders a type id in LLVM-like syntax.
func (m *Module) TypeString(id TypeID) string {
	if m == nil || id < 0 || int(id) >= len(m.Types) {
		return "?"
	}
	t := m.Types[id]
	switch t.Kind {
	case TypeVoid:
		return "void"
	case TypeInt:
		return fmt.Sprintf("i%d", t.Width)
	case TypeFloat:
		switch t.Width {
		case 16:
			return "half"
		case 32:
			return "float"
		case 64:
			return "double"
		default:
			return fmt.Sprintf("f%d", t.Width)
		}
	case TypeQubit:
		return "%Qubit*"
	case TypeResult:
		return "%Result*"
	case TypePointer:
		if t.AddrSpace != 0 {
			return fmt.Sprintf("%s addrspace(%d)*", m.TypeString(t.Elem), t.AddrSpace)
		}
		return m.TypeString(t.Elem) + "*"
	case TypeArray:
		return fmt.Sprintf("[%d x %s]", t.Len, m.TypeString(t.Elem))
	case TypeStruct:
		if t.Name != "" {
			return "%" + t.Name
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = m.TypeString(f)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case TypeLabel:
		return "label"
	default:
		if t.Name != "" {
			return t.Name
		}
		return "?"
	}
}
