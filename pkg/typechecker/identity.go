package typechecker

import (
	"fmt"

	"pywasm/compiler-go/pkg/ast"
)

// IdentityResult decides `left is right` from the operand types alone. There
// are no reference values, so a none left operand is always identical and
// anything else is identical only to a value of the same type.
func IdentityResult(left, right ast.Type) bool {
	return left == ast.TypeNone || left == right
}

// FoldIdentity returns a copy of a checked program in which every `is`
// comparison is replaced by its boolean literal. Operands of a folded
// comparison are dropped without being evaluated.
func FoldIdentity(program *ast.Program) (*ast.Program, error) {
	if program == nil {
		return nil, fmt.Errorf("typechecker: program is nil")
	}
	functions := make([]*ast.FunctionDefinition, 0, len(program.Functions))
	for _, fn := range program.Functions {
		body, err := foldStatements(fn.Body)
		if err != nil {
			return nil, err
		}
		copied := *fn
		copied.Body = body
		functions = append(functions, &copied)
	}
	body, err := foldStatements(program.Body)
	if err != nil {
		return nil, err
	}
	out := *program
	out.Functions = functions
	out.Body = body
	return &out, nil
}

func foldStatements(stmts []ast.Statement) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		folded, err := foldStatement(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, folded)
	}
	return out, nil
}

func foldStatement(stmt ast.Statement) (ast.Statement, error) {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		value, err := foldExpression(s.Value)
		if err != nil {
			return nil, err
		}
		c := *s
		c.Value = value
		return &c, nil
	case *ast.ReturnStatement:
		value, err := foldExpression(s.Value)
		if err != nil {
			return nil, err
		}
		c := *s
		c.Value = value
		return &c, nil
	case *ast.ExpressionStatement:
		expr, err := foldExpression(s.Expression)
		if err != nil {
			return nil, err
		}
		c := *s
		c.Expression = expr
		return &c, nil
	case *ast.IfStatement:
		cond, err := foldExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		thn, err := foldStatements(s.Then)
		if err != nil {
			return nil, err
		}
		els, err := foldStatements(s.Else)
		if err != nil {
			return nil, err
		}
		c := *s
		c.Condition, c.Then, c.Else = cond, thn, els
		return &c, nil
	case *ast.WhileStatement:
		cond, err := foldExpression(s.Condition)
		if err != nil {
			return nil, err
		}
		body, err := foldStatements(s.Body)
		if err != nil {
			return nil, err
		}
		c := *s
		c.Condition, c.Body = cond, body
		return &c, nil
	case *ast.PassStatement:
		c := *s
		return &c, nil
	default:
		return nil, fmt.Errorf("typechecker: unsupported statement %T", stmt)
	}
}

func foldExpression(expr ast.Expression) (ast.Expression, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		c := *e
		return &c, nil
	case *ast.Identifier:
		c := *e
		return &c, nil
	case *ast.BinaryExpression:
		if e.Operator == ast.OpIs {
			value, err := FoldedIdentity(e)
			if err != nil {
				return nil, err
			}
			lit := ast.NewLiteralExpression(ast.BoolLiteral(value))
			lit.Annot = ast.Resolved(ast.TypeBool)
			return lit, nil
		}
		left, err := foldExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := foldExpression(e.Right)
		if err != nil {
			return nil, err
		}
		c := *e
		c.Left, c.Right = left, right
		return &c, nil
	case *ast.UnaryExpression:
		operand, err := foldExpression(e.Operand)
		if err != nil {
			return nil, err
		}
		c := *e
		c.Operand = operand
		return &c, nil
	case *ast.Builtin1Call:
		arg, err := foldExpression(e.Argument)
		if err != nil {
			return nil, err
		}
		c := *e
		c.Argument = arg
		return &c, nil
	case *ast.Builtin2Call:
		left, err := foldExpression(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := foldExpression(e.Right)
		if err != nil {
			return nil, err
		}
		c := *e
		c.Left, c.Right = left, right
		return &c, nil
	case *ast.FunctionCall:
		args := make([]ast.Expression, 0, len(e.Arguments))
		for _, arg := range e.Arguments {
			folded, err := foldExpression(arg)
			if err != nil {
				return nil, err
			}
			args = append(args, folded)
		}
		c := *e
		c.Arguments = args
		return &c, nil
	default:
		return nil, fmt.Errorf("typechecker: unsupported expression %T", expr)
	}
}

// FoldedIdentity evaluates a checked `is` expression from its operand annotations.
func FoldedIdentity(e *ast.BinaryExpression) (bool, error) {
	if e == nil || e.Operator != ast.OpIs {
		return false, fmt.Errorf("typechecker: not an identity comparison")
	}
	lt, lok := e.Left.Annotation().Type()
	rt, rok := e.Right.Annotation().Type()
	if !lok || !rok {
		return false, fmt.Errorf("typechecker: identity comparison has unchecked operands")
	}
	return IdentityResult(lt, rt), nil
}
