package wasm

import (
	"github.com/pkg/errors"
)

// Encode renders the module in the binary format. Section order and type
// numbering depend only on the module's contents.
func (m *Module) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	types, typeIndex := m.collectTypes()

	var out []byte
	out = append(out, wasmMagic...)
	out = append(out, wasmVersion...)

	var contents []byte
	for _, t := range types {
		contents = append(contents, funcTypeTag)
		contents = append(contents, encodeValTypes(t.Params)...)
		contents = append(contents, encodeValTypes(t.Results)...)
	}
	out = append(out, encodeSection(sectionType, encodeVector(len(types), contents))...)

	if len(m.Imports) > 0 {
		contents = contents[:0]
		for _, imp := range m.Imports {
			contents = append(contents, encodeString(imp.Module)...)
			contents = append(contents, encodeString(imp.Name)...)
			contents = append(contents, externFunc)
			contents = append(contents, encodeLEB128U(uint64(typeIndex[imp.Type.key()]))...)
		}
		out = append(out, encodeSection(sectionImport, encodeVector(len(m.Imports), contents))...)
	}

	contents = contents[:0]
	for _, fn := range m.Functions {
		contents = append(contents, encodeLEB128U(uint64(typeIndex[fn.Type().key()]))...)
	}
	out = append(out, encodeSection(sectionFunction, encodeVector(len(m.Functions), contents))...)

	if len(m.Globals) > 0 {
		contents = contents[:0]
		for _, g := range m.Globals {
			contents = append(contents, byte(g.Type))
			if g.Mutable {
				contents = append(contents, 0x01)
			} else {
				contents = append(contents, 0x00)
			}
			contents = append(contents, byte(OpI32Const))
			contents = append(contents, encodeLEB128S(int64(g.Init))...)
			contents = append(contents, byte(OpEnd))
		}
		out = append(out, encodeSection(sectionGlobal, encodeVector(len(m.Globals), contents))...)
	}

	contents = contents[:0]
	exports := 0
	for i, fn := range m.Functions {
		if fn.Export == "" {
			continue
		}
		contents = append(contents, encodeString(fn.Export)...)
		contents = append(contents, externFunc)
		contents = append(contents, encodeLEB128U(uint64(m.FunctionIndex(i)))...)
		exports++
	}
	out = append(out, encodeSection(sectionExport, encodeVector(exports, contents))...)

	contents = contents[:0]
	for _, fn := range m.Functions {
		code := encodeFunctionBody(fn)
		contents = append(contents, encodeLEB128U(uint64(len(code)))...)
		contents = append(contents, code...)
	}
	out = append(out, encodeSection(sectionCode, encodeVector(len(m.Functions), contents))...)

	for _, custom := range m.Custom {
		body := encodeString(custom.Name)
		body = append(body, custom.Data...)
		out = append(out, encodeSection(sectionCustom, body)...)
	}
	return out, nil
}

// collectTypes numbers distinct signatures in first-use order: imports, then functions.
func (m *Module) collectTypes() ([]FuncType, map[string]int) {
	var types []FuncType
	index := make(map[string]int)
	add := func(t FuncType) {
		key := t.key()
		if _, ok := index[key]; ok {
			return
		}
		index[key] = len(types)
		types = append(types, t)
	}
	for _, imp := range m.Imports {
		add(imp.Type)
	}
	for _, fn := range m.Functions {
		add(fn.Type())
	}
	return types, index
}

func encodeFunctionBody(fn Function) []byte {
	var body []byte
	groups := compactLocals(fn.Locals)
	body = append(body, encodeLEB128U(uint64(len(groups)))...)
	for _, g := range groups {
		body = append(body, encodeLEB128U(uint64(g.count))...)
		body = append(body, byte(g.vtype))
	}
	for _, instr := range fn.Body {
		body = append(body, encodeInstr(instr)...)
	}
	return append(body, byte(OpEnd))
}

func encodeInstr(instr Instr) []byte {
	out := []byte{byte(instr.Op)}
	switch instr.Op.immediate() {
	case immBlockType:
		out = append(out, blockTypeEmpty)
	case immIndex:
		out = append(out, encodeLEB128U(uint64(instr.Index))...)
	case immConst:
		out = append(out, encodeLEB128S(int64(instr.Value))...)
	}
	return out
}

type localGroup struct {
	count int
	vtype ValType
}

func compactLocals(locals []Local) []localGroup {
	if len(locals) == 0 {
		return nil
	}
	var groups []localGroup
	current := localGroup{count: 1, vtype: locals[0].Type}
	for _, local := range locals[1:] {
		if local.Type == current.vtype {
			current.count++
			continue
		}
		groups = append(groups, current)
		current = localGroup{count: 1, vtype: local.Type}
	}
	return append(groups, current)
}

// Validate checks operand ranges and block nesting of every function body.
func (m *Module) Validate() error {
	funcCount := uint32(len(m.Imports) + len(m.Functions))
	exported := make(map[string]struct{})
	for _, fn := range m.Functions {
		if fn.Export != "" {
			if _, dup := exported[fn.Export]; dup {
				return errors.Errorf("wasm: duplicate export %q", fn.Export)
			}
			exported[fn.Export] = struct{}{}
		}
		locals := uint32(len(fn.Params) + len(fn.Locals))
		depth := 0
		for _, instr := range fn.Body {
			if !instr.Op.Known() {
				return errors.Errorf("wasm: function %s: unknown opcode 0x%02x", fn.Name, byte(instr.Op))
			}
			switch instr.Op {
			case OpBlock, OpLoop, OpIf:
				depth++
			case OpEnd:
				depth--
				if depth < 0 {
					return errors.Errorf("wasm: function %s: unbalanced end", fn.Name)
				}
			case OpElse:
				if depth == 0 {
					return errors.Errorf("wasm: function %s: else outside if", fn.Name)
				}
			case OpBr, OpBrIf:
				if int(instr.Index) >= depth {
					return errors.Errorf("wasm: function %s: branch depth %d outside %d enclosing blocks", fn.Name, instr.Index, depth)
				}
			case OpLocalGet, OpLocalSet:
				if instr.Index >= locals {
					return errors.Errorf("wasm: function %s: local index %d out of range", fn.Name, instr.Index)
				}
			case OpGlobalGet, OpGlobalSet:
				if instr.Index >= uint32(len(m.Globals)) {
					return errors.Errorf("wasm: function %s: global index %d out of range", fn.Name, instr.Index)
				}
			case OpCall:
				if instr.Index >= funcCount {
					return errors.Errorf("wasm: function %s: call target %d out of range", fn.Name, instr.Index)
				}
			}
		}
		if depth != 0 {
			return errors.Errorf("wasm: function %s: %d unclosed blocks", fn.Name, depth)
		}
	}
	return nil
}

func encodeSection(id byte, body []byte) []byte {
	out := []byte{id}
	out = append(out, encodeLEB128U(uint64(len(body)))...)
	return append(out, body...)
}

func encodeVector(count int, contents []byte) []byte {
	out := encodeLEB128U(uint64(count))
	return append(out, contents...)
}

func encodeString(s string) []byte {
	out := encodeLEB128U(uint64(len(s)))
	return append(out, s...)
}

func encodeValTypes(types []ValType) []byte {
	out := encodeLEB128U(uint64(len(types)))
	for _, t := range types {
		out = append(out, byte(t))
	}
	return out
}

func encodeLEB128U(value uint64) []byte {
	var out []byte
	for {
		b := byte(value & 0x7F)
		value >>= 7
		if value != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if value == 0 {
			return out
		}
	}
}

func encodeLEB128S(value int64) []byte {
	var out []byte
	for {
		b := byte(value & 0x7F)
		value >>= 7
		done := (value == 0 && b&0x40 == 0) || (value == -1 && b&0x40 != 0)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}
