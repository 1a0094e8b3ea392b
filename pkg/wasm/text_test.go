package wasm

import (
	"strings"
	"testing"
)

func TestTextRendering(t *testing.T) {
	text := sampleModule().Text()

	wantLines := []string{
		`(module`,
		`  (import "imports" "print_num" (func $imports.print_num (param i32) (result i32)))`,
		`  (global $counter (mut i32) (i32.const 0))`,
		`  (func $inc (param $x i32) (result i32)`,
		`    (local $.scratch i32)`,
		`    local.get $x`,
		`    i32.add`,
		`  (func $.start (export "_start") (result i32)`,
		`    block`,
		`      loop`,
		`        global.get $counter`,
		`        br_if 1`,
		`        call $inc`,
		`        br 0`,
		`      end`,
		`    end`,
		`    call $imports.print_num`,
		`)`,
	}
	lines := strings.Split(text, "\n")
	index := 0
	for _, line := range lines {
		if index < len(wantLines) && line == wantLines[index] {
			index++
		}
	}
	if index != len(wantLines) {
		t.Fatalf("missing line %q in rendered text:\n%s", wantLines[index], text)
	}
}

func TestTextRendersIfElseIndentation(t *testing.T) {
	mod := &Module{Functions: []Function{{
		Name:    "branch",
		Results: []ValType{I32},
		Body: []Instr{
			I32Const(1),
			Op(OpIf),
			I32Const(2),
			Op(OpDrop),
			Op(OpElse),
			I32Const(3),
			Op(OpDrop),
			Op(OpEnd),
			I32Const(0),
		},
	}}}
	want := `  (func $branch (result i32)
    i32.const 1
    if
      i32.const 2
      drop
    else
      i32.const 3
      drop
    end
    i32.const 0
  )
`
	if got := mod.Text(); !strings.Contains(got, want) {
		t.Fatalf("if/else rendering mismatch:\n%s", got)
	}
}

func TestTextRendersCustomSectionAsComment(t *testing.T) {
	mod := &Module{Custom: []CustomSection{{Name: "pywasm.revision", Data: []byte("abc")}}}
	if got := mod.Text(); !strings.Contains(got, `;; custom section "pywasm.revision": "abc"`) {
		t.Fatalf("custom section comment missing:\n%s", got)
	}
}
