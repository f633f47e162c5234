package qir

// Module is the immutable program model of one QIR module. Functions,
// blocks and locals refer to each other through arena indices.
type Module struct {
	Name       string
	SourceFile string

	Types      []Type
	Funcs      []*Func
	FuncByName map[string]FuncID
	Globals    []Global

	typeIndex map[string]TypeID
}

// Global is a module-level variable. Data holds constant byte-array
// initializers such as output labels.
type Global struct {
	Name     string
	Type     TypeID
	Constant bool
	Data     []byte
}

func NewModule(name string) *Module {
	return &Module{
		Name:       name,
		FuncByName: make(map[string]FuncID),
	}
}

// InternType returns the id of t, adding it to the type arena on first use.
func (m *Module) InternType(t Type) TypeID {
	if m.typeIndex == nil {
		m.typeIndex = make(map[string]TypeID, len(m.Types))
		for i, existing := range m.Types {
			m.typeIndex[typeKey(existing)] = TypeID(i)
		}
	}
	key := typeKey(t)
	if id, ok := m.typeIndex[key]; ok {
		return id
	}
	id := TypeID(len(m.Types))
	m.Types = append(m.Types, t)
	m.typeIndex[key] = id
	return id
}

// Type returns the type for id, or a TypeOther placeholder when out of range.
func (m *Module) Type(id TypeID) Type {
	if m == nil || id < 0 || int(id) >= len(m.Types) {
		return Type{Kind: TypeOther}
	}
	return m.Types[id]
}

// AddFunc appends f, assigns its id and indexes it by name.
func (m *Module) AddFunc(f *Func) FuncID {
	id := FuncID(len(m.Funcs))
	f.ID = id
	m.Funcs = append(m.Funcs, f)
	if m.FuncByName == nil {
		m.FuncByName = make(map[string]FuncID)
	}
	m.FuncByName[f.Name] = id
	return id
}

// Func looks a function up by name.
func (m *Module) Func(name string) *Func {
	if m == nil {
		return nil
	}
	id, ok := m.FuncByName[name]
	if !ok || id < 0 || int(id) >= len(m.Funcs) {
		return nil
	}
	return m.Funcs[id]
}

// EntryPoints returns the functions with an entry point attribute, in
// declaration order.
func (m *Module) EntryPoints() []*Func {
	var out []*Func
	for _, f := range m.Funcs {
		if f.IsEntryPoint() {
			out = append(out, f)
		}
	}
	return out
}

// InteropFuncs returns the functions with the InteropFriendly attribute.
func (m *Module) InteropFuncs() []*Func {
	var out []*Func
	for _, f := range m.Funcs {
		if f.IsInteropFriendly() {
			out = append(out, f)
		}
	}
	return out
}

// Declarations returns the body-less functions, in declaration order.
func (m *Module) Declarations() []*Func {
	var out []*Func
	for _, f := range m.Funcs {
		if f.IsDecl {
			out = append(out, f)
		}
	}
	return out
}

// Global looks a global up by name.
func (m *Module) Global(name string) *Global {
	for i := range m.Globals {
		if m.Globals[i].Name == name {
			return &m.Globals[i]
		}
	}
	return nil
}
