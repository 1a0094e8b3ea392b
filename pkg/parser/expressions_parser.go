package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pywasm/compiler-go/pkg/ast"
)

func (ctx *parseContext) parseExpression(node *sitter.Node) (ast.Expression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: missing expression")
	}
	switch node.Kind() {
	case "integer":
		value, err := parseIntegerText(ctx.text(node), false)
		if err != nil {
			return nil, err
		}
		return ast.NewLiteralExpression(ast.NumLiteral(value)), nil
	case "true":
		return ast.NewLiteralExpression(ast.BoolLiteral(true)), nil
	case "false":
		return ast.NewLiteralExpression(ast.BoolLiteral(false)), nil
	case "none":
		return ast.NewLiteralExpression(ast.NoneLiteral()), nil
	case "identifier":
		name, err := parseIdentifier(node, ctx.source)
		if err != nil {
			return nil, err
		}
		return ast.NewIdentifier(name), nil
	case "parenthesized_expression":
		inner := namedChildren(node)
		if len(inner) != 1 {
			return nil, fmt.Errorf("parser: malformed parenthesized expression")
		}
		return ctx.parseExpression(inner[0])
	case "binary_operator":
		return ctx.parseBinaryOperator(node)
	case "comparison_operator":
		return ctx.parseComparison(node)
	case "unary_operator":
		return ctx.parseUnaryOperator(node)
	case "not_operator":
		operand, err := ctx.parseExpression(node.ChildByFieldName("argument"))
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpression(ast.UnaryNot, operand), nil
	case "call":
		return ctx.parseCall(node)
	case "boolean_operator":
		return nil, fmt.Errorf("parser: unsupported operator %s", operatorToken(node))
	default:
		return nil, fmt.Errorf("parser: unsupported expression %s", node.Kind())
	}
}

func operatorToken(node *sitter.Node) string {
	if op := node.ChildByFieldName("operator"); op != nil {
		return op.Kind()
	}
	return node.Kind()
}

func (ctx *parseContext) parseBinaryOperator(node *sitter.Node) (ast.Expression, error) {
	opNode := node.ChildByFieldName("operator")
	if opNode == nil {
		return nil, fmt.Errorf("parser: binary expression missing operator")
	}
	op, ok := ast.ParseBinaryOperator(opNode.Kind())
	if !ok || op.Class() != ast.ClassArithmetic {
		return nil, fmt.Errorf("parser: unsupported operator %s", opNode.Kind())
	}
	left, err := ctx.parseExpression(node.ChildByFieldName("left"))
	if err != nil {
		return nil, err
	}
	right, err := ctx.parseExpression(node.ChildByFieldName("right"))
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryExpression(op, left, right), nil
}

// parseComparison accepts a single comparison. Chains such as `a < b < c`
// are rejected.
func (ctx *parseContext) parseComparison(node *sitter.Node) (ast.Expression, error) {
	var (
		operands  []*sitter.Node
		operators []string
	)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || isIgnorableNode(child) {
			continue
		}
		if child.IsNamed() {
			operands = append(operands, child)
			continue
		}
		operators = append(operators, child.Kind())
	}
	if len(operands) != 2 || len(operators) != 1 {
		return nil, fmt.Errorf("parser: chained comparisons are not supported")
	}
	op, ok := ast.ParseBinaryOperator(operators[0])
	if !ok || op.Class() == ast.ClassArithmetic {
		return nil, fmt.Errorf("parser: unsupported operator %s", operators[0])
	}
	left, err := ctx.parseExpression(operands[0])
	if err != nil {
		return nil, err
	}
	right, err := ctx.parseExpression(operands[1])
	if err != nil {
		return nil, err
	}
	return ast.NewBinaryExpression(op, left, right), nil
}

func (ctx *parseContext) parseUnaryOperator(node *sitter.Node) (ast.Expression, error) {
	opNode := node.ChildByFieldName("operator")
	if opNode == nil {
		return nil, fmt.Errorf("parser: unary expression missing operator")
	}
	if opNode.Kind() != string(ast.UnaryNegate) {
		return nil, fmt.Errorf("parser: unsupported operator %s", opNode.Kind())
	}
	argument := node.ChildByFieldName("argument")
	if argument != nil && argument.Kind() == "integer" {
		// The most negative i32 has no positive counterpart; read it as one literal.
		if _, err := parseIntegerText(ctx.text(argument), false); err != nil {
			value, negErr := parseIntegerText(ctx.text(argument), true)
			if negErr != nil {
				return nil, negErr
			}
			return ast.NewLiteralExpression(ast.NumLiteral(value)), nil
		}
	}
	operand, err := ctx.parseExpression(argument)
	if err != nil {
		return nil, err
	}
	return ast.NewUnaryExpression(ast.UnaryNegate, operand), nil
}

var (
	unaryBuiltins  = map[string]struct{}{"print": {}, "abs": {}}
	binaryBuiltins = map[string]struct{}{"max": {}, "min": {}, "pow": {}}
)

func (ctx *parseContext) parseCall(node *sitter.Node) (ast.Expression, error) {
	calleeNode := node.ChildByFieldName("function")
	if calleeNode == nil || calleeNode.Kind() != "identifier" {
		return nil, fmt.Errorf("parser: call target must be a name")
	}
	name, err := parseIdentifier(calleeNode, ctx.source)
	if err != nil {
		return nil, err
	}

	argsNode := node.ChildByFieldName("arguments")
	if argsNode == nil || argsNode.Kind() != "argument_list" {
		return nil, fmt.Errorf("parser: call to %s has an unsupported argument form", name)
	}

	args := make([]ast.Expression, 0)
	keywords := make([]*ast.KeywordArgument, 0)
	seen := make(map[string]struct{})
	for _, child := range namedChildren(argsNode) {
		switch child.Kind() {
		case "keyword_argument":
			kwName, err := parseIdentifier(child.ChildByFieldName("name"), ctx.source)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[kwName]; dup {
				return nil, fmt.Errorf("parser: keyword argument %s repeated in call to %s", kwName, name)
			}
			seen[kwName] = struct{}{}
			value, err := ctx.parseExpression(child.ChildByFieldName("value"))
			if err != nil {
				return nil, err
			}
			keywords = append(keywords, ast.NewKeywordArgument(kwName, value))
		case "list_splat", "dictionary_splat", "parenthesized_list_splat":
			return nil, fmt.Errorf("parser: argument unpacking is not supported")
		default:
			if len(keywords) > 0 {
				return nil, fmt.Errorf("parser: positional argument follows keyword argument in call to %s", name)
			}
			arg, err := ctx.parseExpression(child)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}

	if len(keywords) == 0 {
		if _, ok := unaryBuiltins[name]; ok && len(args) == 1 {
			return ast.NewBuiltin1Call(name, args[0]), nil
		}
		if _, ok := binaryBuiltins[name]; ok && len(args) == 2 {
			return ast.NewBuiltin2Call(name, args[0], args[1]), nil
		}
		keywords = nil
	}
	return ast.NewFunctionCall(name, args, keywords), nil
}
