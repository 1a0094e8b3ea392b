package host

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"pywasm/compiler-go/pkg/wasm"
)

func hostImports() []wasm.Import {
	unary := wasm.FuncType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I32}}
	binary := wasm.FuncType{Params: []wasm.ValType{wasm.I32, wasm.I32}, Results: []wasm.ValType{wasm.I32}}
	return []wasm.Import{
		{Module: Namespace, Name: "print_num", Type: unary},
		{Module: Namespace, Name: "print_bool", Type: unary},
		{Module: Namespace, Name: "print_none", Type: unary},
		{Module: Namespace, Name: "abs", Type: unary},
		{Module: Namespace, Name: "max", Type: binary},
		{Module: Namespace, Name: "min", Type: binary},
		{Module: Namespace, Name: "pow", Type: binary},
	}
}

func encode(t *testing.T, results []wasm.ValType, body ...wasm.Instr) []byte {
	t.Helper()
	mod := &wasm.Module{
		Imports: hostImports(),
		Functions: []wasm.Function{{
			Name:    "start",
			Export:  EntryPoint,
			Results: results,
			Body:    body,
		}},
	}
	bin, err := mod.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return bin
}

func TestRunPrintsThroughImports(t *testing.T) {
	bin := encode(t, nil,
		wasm.I32Const(-7), wasm.Call(0, ""), wasm.Op(wasm.OpDrop),
		wasm.I32Const(1), wasm.Call(1, ""), wasm.Op(wasm.OpDrop),
		wasm.I32Const(0), wasm.Call(1, ""), wasm.Op(wasm.OpDrop),
		wasm.I32Const(0), wasm.Call(2, ""), wasm.Op(wasm.OpDrop),
	)
	var out bytes.Buffer
	result, err := Run(context.Background(), bin, Options{Stdout: &out})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.HasValue {
		t.Fatalf("expected no result, got %d", result.Value)
	}
	if got, want := out.String(), "-7\nTrue\nFalse\nNone\n"; got != want {
		t.Fatalf("stdout = %q, want %q", got, want)
	}
}

func TestRunReturnsEntryValue(t *testing.T) {
	bin := encode(t, []wasm.ValType{wasm.I32},
		wasm.I32Const(-3), wasm.Call(3, ""),
		wasm.I32Const(2), wasm.I32Const(9), wasm.Call(4, ""),
		wasm.Op(wasm.OpI32Add),
	)
	result, err := Run(context.Background(), bin, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !result.HasValue || result.Value != 12 {
		t.Fatalf("result = %+v, want 12", result)
	}
}

func TestRunReportsTraps(t *testing.T) {
	bin := encode(t, []wasm.ValType{wasm.I32},
		wasm.I32Const(1), wasm.I32Const(0), wasm.Op(wasm.OpI32DivS),
	)
	_, err := Run(context.Background(), bin, Options{})
	if err == nil || !strings.Contains(err.Error(), "host: run _start") {
		t.Fatalf("expected trap error, got %v", err)
	}
}

func TestRunRejectsInvalidBinary(t *testing.T) {
	if _, err := Run(context.Background(), []byte("not wasm"), Options{}); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestArithmeticImports(t *testing.T) {
	cases := []struct {
		name string
		got  int32
		want int32
	}{
		{"abs negative", Abs(-5), 5},
		{"abs min int wraps", Abs(math.MinInt32), math.MinInt32},
		{"max", Max(3, -4), 3},
		{"min", Min(3, -4), -4},
		{"pow", Pow(2, 10), 1024},
		{"pow zero exponent", Pow(7, 0), 1},
		{"pow negative base", Pow(-3, 3), -27},
		{"pow negative exponent", Pow(2, -1), 0},
		{"pow wraps", Pow(2, 31), math.MinInt32},
		{"pow wraps to zero", Pow(2, 32), 0},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s = %d, want %d", tc.name, tc.got, tc.want)
		}
	}
}
