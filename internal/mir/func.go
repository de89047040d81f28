package mir

// Param is a declared function parameter.
type Param struct {
	Name string `msgpack:"name"`
	Type Type   `msgpack:"type"`
}

// Func is one function: parameters, a return type and basic blocks.
// Block IDs index into Blocks; the entry block is Blocks[0].
type Func struct {
	Name   string  `msgpack:"name"`
	Params []Param `msgpack:"params,omitempty"`
	Result Type    `msgpack:"result"`
	Blocks []Block `msgpack:"blocks"`
}

// GlobalKind distinguishes global value kinds.
type GlobalKind uint8

const (
	// GlobalConst is an immutable constant (read-only data).
	GlobalConst GlobalKind = iota
	// GlobalStatic is a mutable static (writable data).
	GlobalStatic
)

// Global is a program-level value.
type Global struct {
	Name string     `msgpack:"name"`
	Kind GlobalKind `msgpack:"kind"`
	Type Type       `msgpack:"type"`

	IntValue    int64  `msgpack:"int,omitempty"`
	StringValue string `msgpack:"str,omitempty"`
	IsString    bool   `msgpack:"is_string,omitempty"`
}

// RecordDecl carries a record type's declared field order. The table is
// optional: the backend degrades to positional field names for record
// types the module does not declare.
type RecordDecl struct {
	Name   string   `msgpack:"name"`
	Fields []string `msgpack:"fields"`
}

// Module is a whole compilation unit.
type Module struct {
	Name    string       `msgpack:"name"`
	Funcs   []Func       `msgpack:"funcs"`
	Globals []Global     `msgpack:"globals,omitempty"`
	Records []RecordDecl `msgpack:"records,omitempty"`
}

// FuncByName returns the function with the given name, if present.
func (m *Module) FuncByName(name string) (*Func, bool) {
	if m == nil {
		return nil, false
	}
	for i := range m.Funcs {
		if m.Funcs[i].Name == name {
			return &m.Funcs[i], true
		}
	}
	return nil, false
}

// RecordFields returns the declared field order for a record type.
func (m *Module) RecordFields(name string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	for i := range m.Records {
		if m.Records[i].Name == name {
			return m.Records[i].Fields, true
		}
	}
	return nil, false
}
