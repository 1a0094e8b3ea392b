package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"pywasm/compiler-go/pkg/ast"
)

func isVariableInitializer(node *sitter.Node) bool {
	assignment := assignmentOf(node)
	return assignment != nil && assignment.ChildByFieldName("type") != nil
}

func isScopeDeclaration(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Kind() {
	case "global_statement", "nonlocal_statement":
		return true
	default:
		return false
	}
}

func scopeKindOf(node *sitter.Node) ast.ScopeKind {
	if node != nil && node.Kind() == "nonlocal_statement" {
		return ast.ScopeNonlocal
	}
	return ast.ScopeGlobal
}

// assignmentOf unwraps `expression_statement > assignment`.
func assignmentOf(node *sitter.Node) *sitter.Node {
	if node == nil || node.Kind() != "expression_statement" {
		return nil
	}
	children := namedChildren(node)
	if len(children) != 1 || children[0].Kind() != "assignment" {
		return nil
	}
	return children[0]
}

func (ctx *parseContext) parseVariableInitializer(node *sitter.Node) (*ast.VariableInitializer, error) {
	assignment := assignmentOf(node)
	if assignment == nil {
		return nil, fmt.Errorf("parser: expected variable initializer")
	}
	name, err := parseIdentifier(assignment.ChildByFieldName("left"), ctx.source)
	if err != nil {
		return nil, fmt.Errorf("parser: initializer target must be a name")
	}
	typ, err := ctx.parseType(assignment.ChildByFieldName("type"))
	if err != nil {
		return nil, err
	}
	valueNode := assignment.ChildByFieldName("right")
	if valueNode == nil {
		return nil, fmt.Errorf("parser: initializer for %s requires a value", name)
	}
	value, err := ctx.parseLiteral(valueNode)
	if err != nil {
		return nil, fmt.Errorf("parser: initializer for %s must be a literal", name)
	}
	return ast.NewVariableInitializer(name, typ, value), nil
}

func (ctx *parseContext) parseScopeDeclarations(node *sitter.Node) ([]*ast.ScopeDeclaration, error) {
	kind := scopeKindOf(node)
	names := namedChildren(node)
	if len(names) == 0 {
		return nil, fmt.Errorf("parser: %s declaration without names", kind)
	}
	decls := make([]*ast.ScopeDeclaration, 0, len(names))
	for _, child := range names {
		name, err := parseIdentifier(child, ctx.source)
		if err != nil {
			return nil, err
		}
		decls = append(decls, ast.NewScopeDeclaration(kind, name))
	}
	return decls, nil
}

func (ctx *parseContext) parseFunctionDefinition(node *sitter.Node) (*ast.FunctionDefinition, error) {
	if node == nil || node.Kind() != "function_definition" {
		return nil, fmt.Errorf("parser: expected function definition")
	}
	if node.ChildByFieldName("type_parameters") != nil {
		return nil, fmt.Errorf("parser: generic functions are not supported")
	}
	if child := node.Child(0); child != nil && child.Kind() == "async" {
		return nil, fmt.Errorf("parser: async functions are not supported")
	}

	name, err := parseIdentifier(node.ChildByFieldName("name"), ctx.source)
	if err != nil {
		return nil, err
	}

	params, err := ctx.parseParameters(node.ChildByFieldName("parameters"))
	if err != nil {
		return nil, withContext("function "+name, err)
	}

	ret := ast.TypeNone
	if retNode := node.ChildByFieldName("return_type"); retNode != nil {
		ret, err = ctx.parseType(retNode)
		if err != nil {
			return nil, withContext("function "+name, err)
		}
	}

	decls, inits, body, err := ctx.parseFunctionBody(node.ChildByFieldName("body"))
	if err != nil {
		return nil, withContext("function "+name, err)
	}

	return ast.NewFunctionDefinition(name, params, ret, decls, inits, body), nil
}

func (ctx *parseContext) parseParameters(node *sitter.Node) ([]*ast.TypedVariable, error) {
	params := make([]*ast.TypedVariable, 0)
	if node == nil {
		return params, nil
	}
	sawDefault := false
	for _, child := range namedChildren(node) {
		var param *ast.TypedVariable
		switch child.Kind() {
		case "typed_parameter":
			ident := firstNamedChild(child)
			name, err := parseIdentifier(ident, ctx.source)
			if err != nil {
				return nil, fmt.Errorf("parser: unsupported parameter form")
			}
			typ, err := ctx.parseType(child.ChildByFieldName("type"))
			if err != nil {
				return nil, err
			}
			if sawDefault {
				return nil, fmt.Errorf("parser: parameter %s without default follows a default parameter", name)
			}
			param = ast.NewTypedVariable(name, typ, nil)
		case "typed_default_parameter":
			name, err := parseIdentifier(child.ChildByFieldName("name"), ctx.source)
			if err != nil {
				return nil, err
			}
			typ, err := ctx.parseType(child.ChildByFieldName("type"))
			if err != nil {
				return nil, err
			}
			def, err := ctx.parseLiteral(child.ChildByFieldName("value"))
			if err != nil {
				return nil, fmt.Errorf("parser: default for parameter %s must be a literal", name)
			}
			sawDefault = true
			param = ast.NewTypedVariable(name, typ, &def)
		case "identifier", "default_parameter":
			return nil, fmt.Errorf("parser: parameter %s requires a type annotation", ctx.text(child))
		default:
			return nil, fmt.Errorf("parser: unsupported parameter form %s", child.Kind())
		}
		params = append(params, param)
	}
	return params, nil
}

func (ctx *parseContext) parseFunctionBody(node *sitter.Node) ([]*ast.ScopeDeclaration, []*ast.VariableInitializer, []ast.Statement, error) {
	if node == nil {
		return nil, nil, nil, fmt.Errorf("parser: missing function body")
	}
	var (
		decls = make([]*ast.ScopeDeclaration, 0)
		inits = make([]*ast.VariableInitializer, 0)
		body  = make([]ast.Statement, 0)
	)
	declaring := true
	for _, child := range namedChildren(node) {
		if declaring {
			switch {
			case isVariableInitializer(child):
				init, err := ctx.parseVariableInitializer(child)
				if err != nil {
					return nil, nil, nil, err
				}
				inits = append(inits, init)
				continue
			case isScopeDeclaration(child):
				scoped, err := ctx.parseScopeDeclarations(child)
				if err != nil {
					return nil, nil, nil, err
				}
				decls = append(decls, scoped...)
				continue
			}
			declaring = false
		}
		if err := ctx.rejectLateDeclaration(child, false); err != nil {
			return nil, nil, nil, err
		}
		stmt, err := ctx.parseStatement(child)
		if err != nil {
			return nil, nil, nil, err
		}
		body = append(body, stmt)
	}
	return decls, inits, body, nil
}
