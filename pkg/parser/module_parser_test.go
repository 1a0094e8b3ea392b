package parser

import (
	"sync"
	"testing"

	"pywasm/compiler-go/pkg/ast"
)

func TestParseTopLevelDeclarationsAndStatements(t *testing.T) {
	source := `# running total
x: int = 5
flag: bool = False
nothing: None = None
def inc(n: int) -> int:
    return n + 1

x = inc(x)
print(x)
`
	program := mustParse(t, source)

	expected := ast.Prog(
		[]*ast.FunctionDefinition{
			ast.Fn("inc",
				[]*ast.TypedVariable{ast.Param("n", ast.TypeNum)},
				ast.TypeNum,
				nil,
				ast.Ret(ast.Bin(ast.OpAdd, ast.ID("n"), ast.Num(1))),
			),
		},
		[]*ast.VariableInitializer{
			ast.Init("x", ast.TypeNum, ast.NumLiteral(5)),
			ast.Init("flag", ast.TypeBool, ast.BoolLiteral(false)),
			ast.Init("nothing", ast.TypeNone, ast.NoneLiteral()),
		},
		ast.Assign("x", ast.Call("inc", ast.ID("x"))),
		ast.Expr(ast.Print(ast.ID("x"))),
	)
	assertProgramsEqual(t, expected, program)
}

func TestParseFunctionLocalsAndScopeDeclarations(t *testing.T) {
	source := `def f(a: int, b: bool = True) -> None:
    global g
    count: int = -3
    pass
`
	program := mustParse(t, source)

	expected := ast.Prog(
		[]*ast.FunctionDefinition{
			ast.FnDecl("f",
				[]*ast.TypedVariable{
					ast.Param("a", ast.TypeNum),
					ast.ParamDefault("b", ast.TypeBool, ast.BoolLiteral(true)),
				},
				ast.TypeNone,
				[]*ast.ScopeDeclaration{ast.Global("g")},
				[]*ast.VariableInitializer{ast.Init("count", ast.TypeNum, ast.NumLiteral(-3))},
				ast.Pass(),
			),
		},
		nil,
	)
	assertProgramsEqual(t, expected, program)
}

func TestParseMissingReturnTypeDefaultsToNone(t *testing.T) {
	program := mustParse(t, "def f():\n    pass\n")
	if got := program.Functions[0].ReturnType; got != ast.TypeNone {
		t.Fatalf("return type mismatch: got %s, want none", got)
	}
}

func TestParseEmptyProgram(t *testing.T) {
	program := mustParse(t, "")
	assertProgramsEqual(t, ast.Prog(nil, nil), program)
}

func TestParseDeclarationOrdering(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		fragment string
	}{
		{"initializer after statement", "print(1)\nx: int = 1\n", "variable initializer after the first statement"},
		{"def after statement", "print(1)\ndef f() -> int:\n    return 1\n", "function definition after the first statement"},
		{"global at top level", "global x\n", "global declaration is not allowed at top level"},
		{"local after statement", "def f() -> int:\n    pass\n    y: int = 1\n    return y\n", "variable initializer after the first statement"},
		{"nested def", "def f() -> int:\n    def g() -> int:\n        return 1\n    return 1\n", "nested function definitions are not supported"},
		{"initializer in block", "while True:\n    y: int = 1\n", "not allowed inside nested blocks"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectParseError(t, tc.source, ErrorStructure, tc.fragment)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	expectParseError(t, "x = (1 +\n", ErrorSyntax, "syntax error")
	expectParseError(t, "def f(:\n", ErrorSyntax, "syntax error")
	expectParseError(t, "if True\n    pass\nelse:\n    pass\n", ErrorSyntax, "syntax error")
}

func TestDescribeMissingToken(t *testing.T) {
	cases := map[string]string{
		":":                  "':'",
		")":                  "')'",
		"_newline":           "end of line",
		"_indent":            "an indented block",
		"identifier":         "a name",
		"expression":         "expression",
		"_simple_statements": "simple statements",
		"":                   "a token",
	}
	for kind, want := range cases {
		if got := describeMissing(kind); got != want {
			t.Fatalf("describeMissing(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestParseIndependentParsersConcurrently(t *testing.T) {
	sources := []string{
		"1 + 2\n",
		"x: int = 1\nwhile x < 3:\n    x = x + 1\n",
		"def f(a: int) -> int:\n    return a\nf(1)\n",
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(sources)*4)
	for i := 0; i < 4; i++ {
		for _, src := range sources {
			wg.Add(1)
			go func(src string) {
				defer wg.Done()
				if _, err := ParseSource([]byte(src)); err != nil {
					errs <- err
				}
			}(src)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent parse error: %v", err)
	}
}
