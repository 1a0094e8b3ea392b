package wasm

import (
	"fmt"
	"strings"
)

// Text renders the module in the WebAssembly text format using symbolic
// names. Custom sections have no text form and are rendered as comments.
func (m *Module) Text() string {
	var b strings.Builder
	b.WriteString("(module\n")
	for _, imp := range m.Imports {
		fmt.Fprintf(&b, "  (import %q %q (func $%s%s))\n", imp.Module, imp.Name, ImportID(imp), signatureText(nil, imp.Type))
	}
	for _, g := range m.Globals {
		typ := g.Type.String()
		if g.Mutable {
			typ = "(mut " + typ + ")"
		}
		fmt.Fprintf(&b, "  (global $%s %s (i32.const %d))\n", g.Name, typ, g.Init)
	}
	for _, fn := range m.Functions {
		writeFunctionText(&b, fn)
	}
	for _, custom := range m.Custom {
		fmt.Fprintf(&b, "  ;; custom section %q: %q\n", custom.Name, string(custom.Data))
	}
	b.WriteString(")\n")
	return b.String()
}

// ImportID is the symbolic name of an import. It contains a dot so it can
// never collide with a source-level identifier.
func ImportID(imp Import) string {
	return imp.Module + "." + imp.Name
}

func signatureText(params []Local, t FuncType) string {
	var b strings.Builder
	if params != nil {
		for _, p := range params {
			fmt.Fprintf(&b, " (param $%s %s)", p.Name, p.Type)
		}
	} else if len(t.Params) > 0 {
		b.WriteString(" (param")
		for _, p := range t.Params {
			b.WriteString(" " + p.String())
		}
		b.WriteString(")")
	}
	if len(t.Results) > 0 {
		b.WriteString(" (result")
		for _, r := range t.Results {
			b.WriteString(" " + r.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

func writeFunctionText(b *strings.Builder, fn Function) {
	fmt.Fprintf(b, "  (func $%s", fn.Name)
	if fn.Export != "" {
		fmt.Fprintf(b, " (export %q)", fn.Export)
	}
	b.WriteString(signatureText(fn.Params, fn.Type()))
	b.WriteString("\n")
	for _, local := range fn.Locals {
		fmt.Fprintf(b, "    (local $%s %s)\n", local.Name, local.Type)
	}
	depth := 2
	for _, instr := range fn.Body {
		switch instr.Op {
		case OpEnd:
			depth--
		case OpElse:
			depth--
		}
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(instrText(instr))
		b.WriteString("\n")
		switch instr.Op {
		case OpBlock, OpLoop, OpIf, OpElse:
			depth++
		}
	}
	b.WriteString("  )\n")
}

func instrText(instr Instr) string {
	switch instr.Op.immediate() {
	case immIndex:
		if instr.Name != "" && instr.Op != OpBr && instr.Op != OpBrIf {
			return fmt.Sprintf("%s $%s", instr.Op, instr.Name)
		}
		return fmt.Sprintf("%s %d", instr.Op, instr.Index)
	case immConst:
		return fmt.Sprintf("%s %d", instr.Op, instr.Value)
	default:
		return instr.Op.String()
	}
}
