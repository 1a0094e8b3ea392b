// Package wasm models the subset of a WebAssembly module the compiler emits
// and renders it as text (WAT) or as the binary format.
package wasm

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (t FuncType) key() string {
	buf := make([]byte, 0, len(t.Params)+len(t.Results)+1)
	for _, p := range t.Params {
		buf = append(buf, byte(p))
	}
	buf = append(buf, '|')
	for _, r := range t.Results {
		buf = append(buf, byte(r))
	}
	return string(buf)
}

// Import is an imported host function.
type Import struct {
	Module string
	Name   string
	Type   FuncType
}

// Global is a module-level variable with a constant initializer.
type Global struct {
	Name    string
	Type    ValType
	Mutable bool
	Init    int32
}

// Local names a parameter or local slot.
type Local struct {
	Name string
	Type ValType
}

// Function is a defined function. Parameters occupy the first local slots,
// followed by Locals in order.
type Function struct {
	Name    string
	Params  []Local
	Results []ValType
	Locals  []Local
	Body    []Instr
	// Export, when set, exports the function under this name.
	Export string
}

func (f Function) Type() FuncType {
	params := make([]ValType, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.Type)
	}
	return FuncType{Params: params, Results: f.Results}
}

// CustomSection carries opaque named bytes, emitted after all standard sections.
type CustomSection struct {
	Name string
	Data []byte
}

// Module is a complete module. Function indices number imports first, then
// Functions in order.
type Module struct {
	Imports   []Import
	Globals   []Global
	Functions []Function
	Custom    []CustomSection
}

// FunctionIndex returns the index of the defined function at position i.
func (m *Module) FunctionIndex(i int) uint32 {
	return uint32(len(m.Imports) + i)
}

// Instr is one instruction. Index holds the local, global, function or
// branch-depth operand; Value holds the i32.const operand. Name is the
// symbolic operand used by the text format.
type Instr struct {
	Op    Opcode
	Index uint32
	Value int32
	Name  string
}

func Op(op Opcode) Instr { return Instr{Op: op} }

func I32Const(v int32) Instr { return Instr{Op: OpI32Const, Value: v} }

func LocalGet(index uint32, name string) Instr {
	return Instr{Op: OpLocalGet, Index: index, Name: name}
}

func LocalSet(index uint32, name string) Instr {
	return Instr{Op: OpLocalSet, Index: index, Name: name}
}

func GlobalGet(index uint32, name string) Instr {
	return Instr{Op: OpGlobalGet, Index: index, Name: name}
}

func GlobalSet(index uint32, name string) Instr {
	return Instr{Op: OpGlobalSet, Index: index, Name: name}
}

func Call(index uint32, name string) Instr {
	return Instr{Op: OpCall, Index: index, Name: name}
}

func Br(depth uint32) Instr { return Instr{Op: OpBr, Index: depth} }

func BrIf(depth uint32) Instr { return Instr{Op: OpBrIf, Index: depth} }
