package wasm

// Opcode is a single-byte WebAssembly instruction opcode.
type Opcode byte

const (
	OpBlock  Opcode = 0x02
	OpLoop   Opcode = 0x03
	OpIf     Opcode = 0x04
	OpElse   Opcode = 0x05
	OpEnd    Opcode = 0x0B
	OpBr     Opcode = 0x0C
	OpBrIf   Opcode = 0x0D
	OpReturn Opcode = 0x0F
	OpCall   Opcode = 0x10
	OpDrop   Opcode = 0x1A

	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24

	OpI32Const Opcode = 0x41
	OpI32Eqz   Opcode = 0x45
	OpI32Eq    Opcode = 0x46
	OpI32Ne    Opcode = 0x47
	OpI32LtS   Opcode = 0x48
	OpI32GtS   Opcode = 0x4A
	OpI32LeS   Opcode = 0x4C
	OpI32GeS   Opcode = 0x4E
	OpI32Add   Opcode = 0x6A
	OpI32Sub   Opcode = 0x6B
	OpI32Mul   Opcode = 0x6C
	OpI32DivS  Opcode = 0x6D
	OpI32RemS  Opcode = 0x6F
	OpI32Xor   Opcode = 0x73
)

var mnemonics = map[Opcode]string{
	OpBlock:     "block",
	OpLoop:      "loop",
	OpIf:        "if",
	OpElse:      "else",
	OpEnd:       "end",
	OpBr:        "br",
	OpBrIf:      "br_if",
	OpReturn:    "return",
	OpCall:      "call",
	OpDrop:      "drop",
	OpLocalGet:  "local.get",
	OpLocalSet:  "local.set",
	OpGlobalGet: "global.get",
	OpGlobalSet: "global.set",
	OpI32Const:  "i32.const",
	OpI32Eqz:    "i32.eqz",
	OpI32Eq:     "i32.eq",
	OpI32Ne:     "i32.ne",
	OpI32LtS:    "i32.lt_s",
	OpI32GtS:    "i32.gt_s",
	OpI32LeS:    "i32.le_s",
	OpI32GeS:    "i32.ge_s",
	OpI32Add:    "i32.add",
	OpI32Sub:    "i32.sub",
	OpI32Mul:    "i32.mul",
	OpI32DivS:   "i32.div_s",
	OpI32RemS:   "i32.rem_s",
	OpI32Xor:    "i32.xor",
}

func (op Opcode) String() string {
	if name, ok := mnemonics[op]; ok {
		return name
	}
	return "unknown"
}

// Known reports whether op is part of the instruction subset this package encodes.
func (op Opcode) Known() bool {
	_, ok := mnemonics[op]
	return ok
}

// immediate classifies the operand an opcode carries.
type immediate int

const (
	immNone immediate = iota
	immBlockType
	immIndex
	immConst
)

func (op Opcode) immediate() immediate {
	switch op {
	case OpBlock, OpLoop, OpIf:
		return immBlockType
	case OpBr, OpBrIf, OpCall, OpLocalGet, OpLocalSet, OpGlobalGet, OpGlobalSet:
		return immIndex
	case OpI32Const:
		return immConst
	default:
		return immNone
	}
}

type ValType byte

const I32 ValType = 0x7F

func (v ValType) String() string {
	if v == I32 {
		return "i32"
	}
	return "unknown"
}

const (
	blockTypeEmpty = 0x40
	funcTypeTag    = 0x60

	sectionCustom   = 0
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionGlobal   = 6
	sectionExport   = 7
	sectionCode     = 10

	externFunc = 0x00
)

var (
	wasmMagic   = []byte{0x00, 0x61, 0x73, 0x6D}
	wasmVersion = []byte{0x01, 0x00, 0x00, 0x00}
)
