package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pywasm/compiler-go/pkg/ast"
)

// parseBlock lowers the body of an if/else/while arm. Declarations are not
// allowed here.
func (ctx *parseContext) parseBlock(node *sitter.Node) ([]ast.Statement, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: missing block")
	}
	statements := make([]ast.Statement, 0)
	for _, child := range namedChildren(node) {
		switch {
		case child.Kind() == "function_definition":
			return nil, fmt.Errorf("parser: function definitions are only allowed at top level")
		case isVariableInitializer(child):
			return nil, fmt.Errorf("parser: variable initializers are not allowed inside nested blocks")
		case isScopeDeclaration(child):
			return nil, fmt.Errorf("parser: %s declarations are not allowed inside nested blocks", scopeKindOf(child))
		}
		stmt, err := ctx.parseStatement(child)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

func (ctx *parseContext) parseStatement(node *sitter.Node) (ast.Statement, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: nil statement")
	}
	switch node.Kind() {
	case "expression_statement":
		return ctx.parseExpressionStatement(node)
	case "return_statement":
		return ctx.parseReturnStatement(node)
	case "if_statement":
		return ctx.parseIfStatement(node)
	case "while_statement":
		return ctx.parseWhileStatement(node)
	case "pass_statement":
		return ast.NewPassStatement(), nil
	default:
		return nil, fmt.Errorf("parser: unsupported statement %s", strings.TrimSuffix(node.Kind(), "_statement"))
	}
}

func (ctx *parseContext) parseExpressionStatement(node *sitter.Node) (ast.Statement, error) {
	children := namedChildren(node)
	if len(children) != 1 {
		return nil, fmt.Errorf("parser: expression statement must contain exactly one expression")
	}
	child := children[0]
	switch child.Kind() {
	case "assignment":
		return ctx.parseAssignment(child)
	case "augmented_assignment":
		return ctx.parseAugmentedAssignment(child)
	}
	expr, err := ctx.parseExpression(child)
	if err != nil {
		return nil, err
	}
	return ast.NewExpressionStatement(expr), nil
}

func (ctx *parseContext) parseAssignment(node *sitter.Node) (ast.Statement, error) {
	if node.ChildByFieldName("type") != nil {
		return nil, fmt.Errorf("parser: variable initializer after the first statement")
	}
	left := node.ChildByFieldName("left")
	name, err := parseIdentifier(left, ctx.source)
	if err != nil {
		return nil, fmt.Errorf("parser: assignment target must be a name")
	}
	right := node.ChildByFieldName("right")
	if right == nil {
		return nil, fmt.Errorf("parser: assignment to %s requires a value", name)
	}
	value, err := ctx.parseExpression(right)
	if err != nil {
		return nil, err
	}
	return ast.NewAssignmentStatement(name, value), nil
}

var augmentedOperators = map[string]ast.BinaryOperator{
	"+=":  ast.OpAdd,
	"-=":  ast.OpSub,
	"*=":  ast.OpMul,
	"//=": ast.OpFloorDiv,
	"%=":  ast.OpMod,
}

// parseAugmentedAssignment desugars `x op= e` into `x = x op e`.
func (ctx *parseContext) parseAugmentedAssignment(node *sitter.Node) (ast.Statement, error) {
	name, err := parseIdentifier(node.ChildByFieldName("left"), ctx.source)
	if err != nil {
		return nil, fmt.Errorf("parser: assignment target must be a name")
	}
	opNode := node.ChildByFieldName("operator")
	if opNode == nil {
		return nil, fmt.Errorf("parser: augmented assignment missing operator")
	}
	op, ok := augmentedOperators[opNode.Kind()]
	if !ok {
		return nil, fmt.Errorf("parser: unsupported operator %s", opNode.Kind())
	}
	value, err := ctx.parseExpression(node.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	return ast.NewAssignmentStatement(name, ast.NewBinaryExpression(op, ast.NewIdentifier(name), value)), nil
}

func (ctx *parseContext) parseReturnStatement(node *sitter.Node) (ast.Statement, error) {
	children := namedChildren(node)
	switch len(children) {
	case 0:
		return ast.NewReturnStatement(ast.NewLiteralExpression(ast.NoneLiteral())), nil
	case 1:
		value, err := ctx.parseExpression(children[0])
		if err != nil {
			return nil, err
		}
		return ast.NewReturnStatement(value), nil
	default:
		return nil, fmt.Errorf("parser: return accepts a single value")
	}
}

func (ctx *parseContext) parseIfStatement(node *sitter.Node) (ast.Statement, error) {
	cond, err := ctx.parseExpression(node.ChildByFieldName("condition"))
	if err != nil {
		return nil, err
	}
	thn, err := ctx.parseBlock(node.ChildByFieldName("consequence"))
	if err != nil {
		return nil, err
	}

	var clauses []*sitter.Node
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "elif_clause", "else_clause":
			clauses = append(clauses, child)
		}
	}
	els, err := ctx.parseElseChain(clauses)
	if err != nil {
		return nil, err
	}
	return ast.NewIfStatement(cond, thn, els), nil
}

// parseElseChain folds `elif` clauses into nested if statements. The chain
// must end in an `else` clause.
func (ctx *parseContext) parseElseChain(clauses []*sitter.Node) ([]ast.Statement, error) {
	if len(clauses) == 0 {
		return nil, fmt.Errorf("parser: if statement requires an else branch")
	}
	clause := clauses[0]
	switch clause.Kind() {
	case "else_clause":
		if len(clauses) > 1 {
			return nil, fmt.Errorf("parser: clause after else")
		}
		return ctx.parseBlock(clause.ChildByFieldName("body"))
	case "elif_clause":
		cond, err := ctx.parseExpression(clause.ChildByFieldName("condition"))
		if err != nil {
			return nil, err
		}
		thn, err := ctx.parseBlock(clause.ChildByFieldName("consequence"))
		if err != nil {
			return nil, err
		}
		els, err := ctx.parseElseChain(clauses[1:])
		if err != nil {
			return nil, err
		}
		return []ast.Statement{ast.NewIfStatement(cond, thn, els)}, nil
	default:
		return nil, fmt.Errorf("parser: unexpected %s in if statement", clause.Kind())
	}
}

func (ctx *parseContext) parseWhileStatement(node *sitter.Node) (ast.Statement, error) {
	if node.ChildByFieldName("alternative") != nil {
		return nil, fmt.Errorf("parser: while statement with else is not supported")
	}
	cond, err := ctx.parseExpression(node.ChildByFieldName("condition"))
	if err != nil {
		return nil, err
	}
	body, err := ctx.parseBlock(node.ChildByFieldName("body"))
	if err != nil {
		return nil, err
	}
	return ast.NewWhileStatement(cond, body), nil
}
