package parser

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pywasm/compiler-go/pkg/ast"
)

type parseContext struct {
	source []byte
}

func newParseContext(source []byte) *parseContext {
	return &parseContext{source: source}
}

func (ctx *parseContext) text(node *sitter.Node) string {
	return sliceContent(node, ctx.source)
}

func parseIdentifier(node *sitter.Node, source []byte) (string, error) {
	if node == nil || node.Kind() != "identifier" {
		return "", fmt.Errorf("parser: expected identifier")
	}
	content := sliceContent(node, source)
	if content == "" {
		return "", fmt.Errorf("parser: empty identifier")
	}
	return content, nil
}

func sliceContent(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start < 0 || end < start || end > len(source) {
		return ""
	}
	return string(source[start:end])
}

// withContext prefixes a lowering error with the construct it occurred in.
func withContext(context string, err error) error {
	return fmt.Errorf("parser: %s: %s", context, strings.TrimPrefix(err.Error(), "parser: "))
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && !isIgnorableNode(child) {
			return child
		}
	}
	return nil
}

// namedChildren returns the named, non-comment children of node in order.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || isIgnorableNode(child) {
			continue
		}
		children = append(children, child)
	}
	return children
}

func isIgnorableNode(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "comment", "line_continuation":
		return true
	default:
		return false
	}
}

func (ctx *parseContext) parseType(node *sitter.Node) (ast.Type, error) {
	if node == nil {
		return "", fmt.Errorf("parser: missing type annotation")
	}
	name := strings.TrimSpace(ctx.text(node))
	typ, ok := ast.ParseTypeName(name)
	if !ok {
		return "", fmt.Errorf("parser: unsupported type %q", name)
	}
	return typ, nil
}

// parseLiteral accepts the literal forms allowed in initializers and
// defaults, including a negated integer literal.
func (ctx *parseContext) parseLiteral(node *sitter.Node) (ast.Literal, error) {
	if node == nil {
		return ast.Literal{}, fmt.Errorf("parser: missing literal")
	}
	switch node.Kind() {
	case "integer":
		value, err := parseIntegerText(ctx.text(node), false)
		if err != nil {
			return ast.Literal{}, err
		}
		return ast.NumLiteral(value), nil
	case "true":
		return ast.BoolLiteral(true), nil
	case "false":
		return ast.BoolLiteral(false), nil
	case "none":
		return ast.NoneLiteral(), nil
	case "parenthesized_expression":
		return ctx.parseLiteral(firstNamedChild(node))
	case "unary_operator":
		operator := node.ChildByFieldName("operator")
		argument := node.ChildByFieldName("argument")
		if operator != nil && operator.Kind() == "-" && argument != nil && argument.Kind() == "integer" {
			value, err := parseIntegerText(ctx.text(argument), true)
			if err != nil {
				return ast.Literal{}, err
			}
			return ast.NumLiteral(value), nil
		}
	}
	return ast.Literal{}, fmt.Errorf("parser: expected literal, found %s", node.Kind())
}

func parseIntegerText(text string, negate bool) (int32, error) {
	raw := strings.TrimSpace(text)
	if isLegacyOctal(raw) {
		return 0, fmt.Errorf("parser: invalid integer literal %q", raw)
	}
	value, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parser: invalid integer literal %q", raw)
	}
	if negate {
		value = -value
	}
	if value < -1<<31 || value > 1<<31-1 {
		return 0, fmt.Errorf("parser: integer literal %q out of 32-bit range", raw)
	}
	return int32(value), nil
}

// Go reads 0755 as octal; Python rejects it. Runs of zeros stay valid.
func isLegacyOctal(text string) bool {
	if len(text) < 2 || text[0] != '0' {
		return false
	}
	if text[1] != '_' && (text[1] < '0' || text[1] > '9') {
		return false
	}
	for _, r := range text {
		if r != '0' && r != '_' {
			return true
		}
	}
	return false
}
