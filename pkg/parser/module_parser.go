package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"pywasm/compiler-go/pkg/ast"
)

// ModuleParser wraps a tree-sitter parser configured for Python source.
// A ModuleParser is not safe for concurrent use; give each compilation its own.
type ModuleParser struct {
	parser *sitter.Parser
}

// NewModuleParser constructs a parser with the Python language loaded.
func NewModuleParser() (*ModuleParser, error) {
	lang := sitter.NewLanguage(tree_sitter_python.Language())
	if lang == nil {
		return nil, fmt.Errorf("parser: python language not available")
	}

	p := sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, fmt.Errorf("parser: %w", err)
	}

	return &ModuleParser{parser: p}, nil
}

// Close releases parser resources.
func (p *ModuleParser) Close() {
	if p == nil || p.parser == nil {
		return
	}
	p.parser.Close()
}

// ParseProgram parses source text and lowers it into an untyped program.
func (p *ModuleParser) ParseProgram(source []byte) (*ast.Program, error) {
	if p == nil || p.parser == nil {
		return nil, fmt.Errorf("parser: nil parser")
	}

	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser: parse produced no tree")
	}
	defer tree.Close()

	return LowerTree(tree.RootNode(), source)
}

// ParseSource is a one-shot helper that owns its parser for a single call.
func ParseSource(source []byte) (*ast.Program, error) {
	p, err := NewModuleParser()
	if err != nil {
		return nil, err
	}
	defer p.Close()
	return p.ParseProgram(source)
}

// LowerTree lowers an already-parsed Python CST. The caller keeps ownership of root.
func LowerTree(root *sitter.Node, source []byte) (*ast.Program, error) {
	if root == nil {
		return nil, wrapParseError(fmt.Errorf("parser: nil root node"))
	}
	if root.HasError() {
		return nil, syntaxError(root, source)
	}
	if root.Kind() != "module" {
		return nil, wrapParseError(fmt.Errorf("parser: unexpected root node %q", root.Kind()))
	}
	program, err := newParseContext(source).parseProgram(root)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return program, nil
}

func (ctx *parseContext) parseProgram(root *sitter.Node) (*ast.Program, error) {
	var (
		functions = make([]*ast.FunctionDefinition, 0)
		inits     = make([]*ast.VariableInitializer, 0)
		body      = make([]ast.Statement, 0)
	)

	declaring := true
	for _, node := range namedChildren(root) {
		if declaring {
			switch {
			case node.Kind() == "function_definition":
				fn, err := ctx.parseFunctionDefinition(node)
				if err != nil {
					return nil, err
				}
				functions = append(functions, fn)
				continue
			case isVariableInitializer(node):
				init, err := ctx.parseVariableInitializer(node)
				if err != nil {
					return nil, err
				}
				inits = append(inits, init)
				continue
			case isScopeDeclaration(node):
				return nil, fmt.Errorf("parser: %s declaration is not allowed at top level", scopeKindOf(node))
			}
			declaring = false
		}

		if err := ctx.rejectLateDeclaration(node, true); err != nil {
			return nil, err
		}
		stmt, err := ctx.parseStatement(node)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}

	return ast.NewProgram(functions, inits, body), nil
}

// rejectLateDeclaration reports declarations that appear after the first
// ordinary statement of a block.
func (ctx *parseContext) rejectLateDeclaration(node *sitter.Node, topLevel bool) error {
	switch {
	case node.Kind() == "function_definition":
		if topLevel {
			return fmt.Errorf("parser: function definition after the first statement")
		}
		return fmt.Errorf("parser: nested function definitions are not supported")
	case isVariableInitializer(node):
		return fmt.Errorf("parser: variable initializer after the first statement")
	case isScopeDeclaration(node):
		if topLevel {
			return fmt.Errorf("parser: %s declaration is not allowed at top level", scopeKindOf(node))
		}
		return fmt.Errorf("parser: %s declaration after the first statement", scopeKindOf(node))
	}
	return nil
}
