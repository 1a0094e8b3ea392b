package parser

import (
	"testing"

	"pywasm/compiler-go/pkg/ast"
)

func TestParseIfElifElseDesugarsToNestedIf(t *testing.T) {
	source := `x: int = 0
if x < 0:
    x = 1
elif x == 0:
    x = 2
else:
    x = 3
`
	program := mustParse(t, source)

	expected := ast.Prog(nil,
		[]*ast.VariableInitializer{ast.Init("x", ast.TypeNum, ast.NumLiteral(0))},
		ast.If(
			ast.Bin(ast.OpLt, ast.ID("x"), ast.Num(0)),
			ast.Block(ast.Assign("x", ast.Num(1))),
			ast.Block(ast.If(
				ast.Bin(ast.OpEq, ast.ID("x"), ast.Num(0)),
				ast.Block(ast.Assign("x", ast.Num(2))),
				ast.Block(ast.Assign("x", ast.Num(3))),
			)),
		),
	)
	assertProgramsEqual(t, expected, program)
}

func TestParseIfWithoutElseIsRejected(t *testing.T) {
	expectParseError(t, "if True:\n    pass\n", ErrorStructure, "requires an else branch")
	expectParseError(t, "if True:\n    pass\nelif False:\n    pass\n", ErrorStructure, "requires an else branch")
}

func TestParseWhileLoop(t *testing.T) {
	source := `i: int = 0
total: int = 0
while i < 5:
    i += 1
    total = total + i
`
	program := mustParse(t, source)

	expected := ast.Prog(nil,
		[]*ast.VariableInitializer{
			ast.Init("i", ast.TypeNum, ast.NumLiteral(0)),
			ast.Init("total", ast.TypeNum, ast.NumLiteral(0)),
		},
		ast.While(
			ast.Bin(ast.OpLt, ast.ID("i"), ast.Num(5)),
			ast.Assign("i", ast.Bin(ast.OpAdd, ast.ID("i"), ast.Num(1))),
			ast.Assign("total", ast.Bin(ast.OpAdd, ast.ID("total"), ast.ID("i"))),
		),
	)
	assertProgramsEqual(t, expected, program)
}

func TestParseWhileElseIsRejected(t *testing.T) {
	expectParseError(t, "while False:\n    pass\nelse:\n    pass\n", ErrorStructure, "while statement with else")
}

func TestParseReturnForms(t *testing.T) {
	source := `def f() -> None:
    return
def g() -> int:
    return 7
`
	program := mustParse(t, source)
	if got := program.Functions[0].Body[0]; !isReturnOf(got, ast.NoneLiteral()) {
		t.Fatalf("bare return should lower to return None, got %#v", got)
	}
	if got := program.Functions[1].Body[0]; !isReturnOf(got, ast.NumLiteral(7)) {
		t.Fatalf("return 7 mismatch, got %#v", got)
	}
}

func isReturnOf(stmt ast.Statement, lit ast.Literal) bool {
	ret, ok := stmt.(*ast.ReturnStatement)
	if !ok {
		return false
	}
	value, ok := ret.Value.(*ast.LiteralExpression)
	return ok && value.Value == lit
}

func TestParseAugmentedAssignmentOperators(t *testing.T) {
	cases := map[string]ast.BinaryOperator{
		"+=":  ast.OpAdd,
		"-=":  ast.OpSub,
		"*=":  ast.OpMul,
		"//=": ast.OpFloorDiv,
		"%=":  ast.OpMod,
	}
	for token, op := range cases {
		program := mustParse(t, "x: int = 9\nx "+token+" 2\n")
		expected := ast.Assign("x", ast.Bin(op, ast.ID("x"), ast.Num(2)))
		assertProgramsEqual(t, expected, program.Body[0])
	}
	expectParseError(t, "x: int = 1\nx **= 2\n", ErrorStructure, "unsupported operator **=")
}

func TestParseUnsupportedStatements(t *testing.T) {
	cases := map[string]string{
		"for":    "for i in x:\n    pass\n",
		"import": "import os\n",
		"class":  "class A:\n    pass\n",
		"break":  "while True:\n    break\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			expectParseError(t, source, ErrorStructure, "unsupported statement")
		})
	}
}

func TestParseAssignmentTargetMustBeName(t *testing.T) {
	expectParseError(t, "a.b = 1\n", ErrorStructure, "assignment target must be a name")
}
