package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"pywasm/compiler-go/pkg/ast"
	"pywasm/compiler-go/pkg/host"
	"pywasm/compiler-go/pkg/parser"
	"pywasm/compiler-go/pkg/typechecker"
	"pywasm/compiler-go/pkg/wasm"
)

func mustCompile(t *testing.T, opts Options, source string) *Result {
	t.Helper()
	result, err := New(opts).CompileSource([]byte(source))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return result
}

const loopSource = `i: int = 1
total: int = 0
while i <= 5:
    total = total + i
    i = i + 1
total
`

func TestCompileIsDeterministic(t *testing.T) {
	source := `def f(x: int, y: int = 2) -> int:
    acc: int = 0
    acc = x // y
    return acc
z = f(y=3, x=9)
print(z)
`
	first := mustCompile(t, Options{}, source)
	second := mustCompile(t, Options{}, source)
	if !bytes.Equal(first.Binary, second.Binary) {
		t.Fatalf("binary output differs between compilations")
	}
	if first.Text != second.Text {
		t.Fatalf("text output differs between compilations:\n%s\n---\n%s", first.Text, second.Text)
	}
}

func TestCompileModuleShape(t *testing.T) {
	result := mustCompile(t, Options{}, `limit: int = 3
def f(x: int) -> int:
    return x + limit
f(4)
`)
	mod := result.Module

	var imports []string
	for _, imp := range mod.Imports {
		if imp.Module != HostModule {
			t.Fatalf("import %s in namespace %q", imp.Name, imp.Module)
		}
		imports = append(imports, imp.Name)
	}
	if got, want := strings.Join(imports, ","), "print_num,print_bool,print_none,abs,max,min,pow"; got != want {
		t.Fatalf("imports = %s, want %s", got, want)
	}

	if len(mod.Globals) != 1 || mod.Globals[0].Name != "limit" || !mod.Globals[0].Mutable || mod.Globals[0].Init != 0 {
		t.Fatalf("unexpected globals: %+v", mod.Globals)
	}
	if len(mod.Functions) != 2 {
		t.Fatalf("expected user function plus entry, got %d functions", len(mod.Functions))
	}
	fn, entry := mod.Functions[0], mod.Functions[1]
	if fn.Name != "f" || fn.Export != "" || len(fn.Params) != 1 || len(fn.Results) != 1 {
		t.Fatalf("unexpected user function: %+v", fn)
	}
	if entry.Export != EntryExport || len(entry.Params) != 0 || len(entry.Results) != 1 {
		t.Fatalf("unexpected entry function: %+v", entry)
	}
	if !strings.Contains(result.Text, "call $f") {
		t.Fatalf("entry does not call f:\n%s", result.Text)
	}
}

func TestEntryOmitsResultForNoneProgram(t *testing.T) {
	result := mustCompile(t, Options{}, "x = 5\n")
	entry := result.Module.Functions[len(result.Module.Functions)-1]
	if len(entry.Results) != 0 {
		t.Fatalf("entry should return nothing, results = %v", entry.Results)
	}
	if len(result.Module.Globals) != 1 || result.Module.Globals[0].Name != "x" {
		t.Fatalf("expected implicit global x, got %+v", result.Module.Globals)
	}
}

func TestImplicitGlobalsFollowInitializers(t *testing.T) {
	result := mustCompile(t, Options{}, `a: int = 1
if a == 1:
    b = 2
else:
    c = True
d = 4
`)
	var names []string
	for _, g := range result.Module.Globals {
		names = append(names, g.Name)
	}
	if got, want := strings.Join(names, ","), "a,b,c,d"; got != want {
		t.Fatalf("globals = %s, want %s", got, want)
	}
}

func TestFunctionSlotLayout(t *testing.T) {
	result := mustCompile(t, Options{}, `def sum_to(n: int) -> int:
    acc: int = 0
    i: int = 1
    while i <= n:
        acc += i
        i += 1
    return acc
sum_to(3)
`)
	fn := result.Module.Functions[0]
	var slots []string
	for _, p := range fn.Params {
		slots = append(slots, p.Name)
	}
	for _, l := range fn.Locals {
		slots = append(slots, l.Name)
	}
	if got, want := strings.Join(slots, ","), "n,acc,i,"+scratchName; got != want {
		t.Fatalf("slots = %s, want %s", got, want)
	}
	last := fn.Body[len(fn.Body)-1]
	if last.Op != wasm.OpI32Const || last.Value != 0 {
		t.Fatalf("function should end with i32.const 0, got %s", last.Op)
	}
}

func TestFunctionSlotsAreIsolated(t *testing.T) {
	_, err := New(Options{}).CompileSource([]byte(`def f() -> int:
    a: int = 1
    return a
def g() -> int:
    return a
g()
`))
	var typeErr *typechecker.Error
	if !errors.As(err, &typeErr) || typeErr.Code != typechecker.CodeUnresolvedName {
		t.Fatalf("expected unresolved-name error, got %v", err)
	}

	result := mustCompile(t, Options{}, `a: int = 10
def f() -> int:
    a: int = 1
    return a
def g() -> int:
    return a
f() + g()
`)
	g := result.Module.Functions[1]
	if g.Name != "g" {
		t.Fatalf("function 1 = %s, want g", g.Name)
	}
	for _, local := range append(append([]wasm.Local{}, g.Params...), g.Locals...) {
		if local.Name == "a" {
			t.Fatalf("g should not have a slot for a: %+v", g.Locals)
		}
	}
	var sawGlobal bool
	for _, instr := range g.Body {
		if instr.Op == wasm.OpGlobalGet && instr.Name == "a" {
			sawGlobal = true
		}
		if instr.Op == wasm.OpLocalGet && instr.Name == "a" {
			t.Fatalf("g reads a local named a")
		}
	}
	if !sawGlobal {
		t.Fatalf("g should read the global a")
	}

	run, err := host.Run(context.Background(), result.Binary, host.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.Value != 11 {
		t.Fatalf("result = %d, want 11", run.Value)
	}
}

func TestWhileLowersToBlockLoop(t *testing.T) {
	result := mustCompile(t, Options{}, loopSource)
	want := `    block
      loop
        global.get $i
        i32.const 5
        i32.le_s
        i32.eqz
        br_if 1
`
	if !strings.Contains(result.Text, want) {
		t.Fatalf("while lowering mismatch:\n%s", result.Text)
	}
	if !strings.Contains(result.Text, "        br 0\n      end\n    end\n") {
		t.Fatalf("loop back-edge missing:\n%s", result.Text)
	}
}

func TestFloorDivisionUsesSignedDivide(t *testing.T) {
	result := mustCompile(t, Options{}, "9 // 2\n")
	if !strings.Contains(result.Text, "i32.div_s") || strings.Contains(result.Text, "i32.mul") {
		t.Fatalf("floor division lowering mismatch:\n%s", result.Text)
	}
}

func TestPrintSelectsImportByStaticType(t *testing.T) {
	result := mustCompile(t, Options{}, "print(1)\nprint(True)\nprint(None)\n")
	for _, want := range []string{"call $imports.print_num", "call $imports.print_bool", "call $imports.print_none"} {
		if !strings.Contains(result.Text, want) {
			t.Fatalf("missing %q:\n%s", want, result.Text)
		}
	}
}

func TestCompileFoldsIdentity(t *testing.T) {
	result := mustCompile(t, Options{}, "None is None\n")
	stmt, ok := result.Program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", result.Program.Body[0])
	}
	lit, ok := stmt.Expression.(*ast.LiteralExpression)
	if !ok || lit.Value != ast.BoolLiteral(true) {
		t.Fatalf("identity not folded: %#v", stmt.Expression)
	}
}

func TestCompileProgramFromAST(t *testing.T) {
	program := ast.Prog(
		[]*ast.FunctionDefinition{
			ast.Fn("double", []*ast.TypedVariable{ast.Param("n", ast.TypeNum)}, ast.TypeNum, nil,
				ast.Ret(ast.Bin(ast.OpMul, ast.ID("n"), ast.Num(2)))),
		},
		[]*ast.VariableInitializer{ast.Init("seed", ast.TypeNum, ast.NumLiteral(21))},
		ast.Expr(ast.Call("double", ast.ID("seed"))),
	)
	result, err := New(Options{}).Compile(program)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	run, err := host.Run(context.Background(), result.Binary, host.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !run.HasValue || run.Value != 42 {
		t.Fatalf("result = %+v, want 42", run)
	}
}

func TestCompileErrorsAreClassified(t *testing.T) {
	cases := []struct {
		name   string
		source string
		stage  Stage
		class  Class
	}{
		{"syntax", "x = (\n", StageParse, ClassStructural},
		{"structure", "a < b < c\n", StageParse, ClassStructural},
		{"type", "1 + True\n", StageCheck, ClassType},
		{"unresolved", "y\n", StageCheck, ClassType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(Options{}).CompileSource([]byte(tc.source))
			var compileErr *Error
			if !errors.As(err, &compileErr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if compileErr.Stage != tc.stage || compileErr.Class != tc.class {
				t.Fatalf("got %s/%s, want %s/%s", compileErr.Stage, compileErr.Class, tc.stage, tc.class)
			}
		})
	}
}

func TestCompileErrorsUnwrapToStageErrors(t *testing.T) {
	_, err := New(Options{}).CompileSource([]byte("def f(a: int, a: int) -> int:\n    return a\n"))
	var typeErr *typechecker.Error
	if !errors.As(err, &typeErr) || typeErr.Code != typechecker.CodeDuplicateDeclaration {
		t.Fatalf("expected duplicate-declaration error, got %v", err)
	}

	_, err = New(Options{}).CompileSource([]byte("if True:\n    pass\n"))
	var parseErr *parser.ParseError
	if !errors.As(err, &parseErr) || parseErr.Kind != parser.ErrorStructure {
		t.Fatalf("expected structure parse error, got %v", err)
	}
}

func TestMalformedASTFailsTypeChecking(t *testing.T) {
	programs := map[string]*ast.Program{
		"operator": ast.Prog(nil, nil, ast.Expr(ast.Bin("&", ast.Num(1), ast.Num(2)))),
		"literal":  ast.Prog(nil, nil, ast.Expr(ast.NewLiteralExpression(ast.Literal{Kind: "str"}))),
	}
	for name, program := range programs {
		_, err := New(Options{}).Compile(program)
		var compileErr *Error
		if !errors.As(err, &compileErr) || compileErr.Stage != StageCheck || compileErr.Class != ClassType {
			t.Fatalf("%s: expected check/type error, got %v", name, err)
		}
	}
}

func TestUserFunctionMayReuseImportName(t *testing.T) {
	result := mustCompile(t, Options{}, `def print_num(x: int) -> int:
    return x * 2
print(print_num(4))
`)
	var calls []string
	for _, instr := range result.Module.Functions[len(result.Module.Functions)-1].Body {
		if instr.Op == wasm.OpCall {
			calls = append(calls, instr.Name)
		}
	}
	if got, want := strings.Join(calls, ","), "print_num,imports.print_num"; got != want {
		t.Fatalf("calls = %s, want %s", got, want)
	}

	var stdout bytes.Buffer
	run, err := host.Run(context.Background(), result.Binary, host.Options{Stdout: &stdout})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.String() != "8\n" || run.Value != 8 {
		t.Fatalf("stdout = %q, result = %d", stdout.String(), run.Value)
	}
}

func TestGeneratorReportsInternalErrors(t *testing.T) {
	unchecked := ast.Prog(nil, nil, ast.Expr(ast.Bin(ast.OpIs, ast.None(), ast.None())))
	_, err := newGenerator(Options{}).generate(unchecked, nil)
	if err == nil {
		t.Fatalf("expected error for unchecked identity comparison")
	}
	if got := ClassOf(classify(StageCodegen, err)); got != ClassInternal {
		t.Fatalf("class = %s, want internal", got)
	}

	missing := ast.Prog(nil, nil, ast.Expr(ast.ID("ghost")))
	if _, err := newGenerator(Options{}).generate(missing, nil); err == nil || !strings.Contains(err.Error(), "no slot for ghost") {
		t.Fatalf("expected missing slot error, got %v", err)
	}
}

func TestRevisionIsEmbedded(t *testing.T) {
	result := mustCompile(t, Options{Revision: "0123abcd"}, "1\n")
	if len(result.Module.Custom) != 1 || result.Module.Custom[0].Name != RevisionSection {
		t.Fatalf("unexpected custom sections: %+v", result.Module.Custom)
	}
	if !bytes.Contains(result.Binary, []byte("0123abcd")) {
		t.Fatalf("revision missing from binary")
	}
	if _, err := host.Run(context.Background(), result.Binary, host.Options{}); err != nil {
		t.Fatalf("stamped module failed to run: %v", err)
	}
}

func TestResultWriteHonorsEmit(t *testing.T) {
	dir := t.TempDir()
	result := mustCompile(t, Options{Name: "demo", Emit: []Artifact{ArtifactWAT}}, "1\n")
	if err := result.Write(dir); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "demo.wat"))
	if err != nil {
		t.Fatalf("read demo.wat: %v", err)
	}
	if !strings.HasPrefix(string(data), "(module") {
		t.Fatalf("unexpected wat contents: %s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo.wasm")); !os.IsNotExist(err) {
		t.Fatalf("demo.wasm should not be written, stat err = %v", err)
	}

	full := mustCompile(t, Options{}, "1\n")
	if err := full.Write(dir); err != nil {
		t.Fatalf("write: %v", err)
	}
	bin, err := os.ReadFile(filepath.Join(dir, "module.wasm"))
	if err != nil {
		t.Fatalf("read module.wasm: %v", err)
	}
	if !bytes.Equal(bin, full.Binary) {
		t.Fatalf("written binary differs from result")
	}
}

func TestCheckSourceSkipsCodegen(t *testing.T) {
	program, err := New(Options{}).CheckSource([]byte("1 == 1\n"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if typ, ok := program.Annotation().Type(); !ok || typ != ast.TypeBool {
		t.Fatalf("program type = %v, want bool", program.Annotation())
	}
}
