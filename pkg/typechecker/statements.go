package typechecker

import (
	"fmt"

	"pywasm/compiler-go/pkg/ast"
)

func checkBlock(globals *GlobalEnv, env *localEnv, stmts []ast.Statement) ([]ast.Statement, error) {
	checked := make([]ast.Statement, 0, len(stmts))
	for _, stmt := range stmts {
		typed, err := checkStatement(globals, env, stmt)
		if err != nil {
			return nil, err
		}
		checked = append(checked, typed)
	}
	return checked, nil
}

func checkStatement(globals *GlobalEnv, env *localEnv, stmt ast.Statement) (ast.Statement, error) {
	switch s := stmt.(type) {
	case *ast.AssignmentStatement:
		return checkAssignment(globals, env, s)
	case *ast.ReturnStatement:
		if env.topLevel {
			return nil, errorf(CodeReturnOutsideFunction, "return outside of a function")
		}
		value, err := checkExpression(globals, env, s.Value)
		if err != nil {
			return nil, err
		}
		if !assignable(typeOf(value), env.expectedRet) {
			return nil, mismatch("return value", env.expectedRet, typeOf(value))
		}
		ret := ast.NewReturnStatement(value)
		ret.Annot = ast.Resolved(typeOf(value))
		return ret, nil
	case *ast.ExpressionStatement:
		expr, err := checkExpression(globals, env, s.Expression)
		if err != nil {
			return nil, err
		}
		out := ast.NewExpressionStatement(expr)
		out.Annot = ast.Resolved(typeOf(expr))
		return out, nil
	case *ast.IfStatement:
		cond, err := checkCondition(globals, env, s.Condition, "if")
		if err != nil {
			return nil, err
		}
		thn, err := checkBlock(globals, env, s.Then)
		if err != nil {
			return nil, err
		}
		els, err := checkBlock(globals, env, s.Else)
		if err != nil {
			return nil, err
		}
		out := ast.NewIfStatement(cond, thn, els)
		out.Annot = ast.Resolved(joinTypes(blockType(thn), blockType(els)))
		return out, nil
	case *ast.WhileStatement:
		cond, err := checkCondition(globals, env, s.Condition, "while")
		if err != nil {
			return nil, err
		}
		env.loopDepth++
		body, err := checkBlock(globals, env, s.Body)
		env.loopDepth--
		if err != nil {
			return nil, err
		}
		out := ast.NewWhileStatement(cond, body)
		out.Annot = ast.Resolved(ast.TypeNone)
		return out, nil
	case *ast.PassStatement:
		out := ast.NewPassStatement()
		out.Annot = ast.Resolved(ast.TypeNone)
		return out, nil
	case nil:
		return nil, fmt.Errorf("typechecker: nil statement")
	default:
		return nil, fmt.Errorf("typechecker: unsupported statement %T", stmt)
	}
}

func checkCondition(globals *GlobalEnv, env *localEnv, expr ast.Expression, construct string) (ast.Expression, error) {
	cond, err := checkExpression(globals, env, expr)
	if err != nil {
		return nil, err
	}
	if typeOf(cond) != ast.TypeBool {
		return nil, mismatch(construct+" condition", ast.TypeBool, typeOf(cond))
	}
	return cond, nil
}

// checkAssignment resolves the target locally, then globally. At top level
// an unresolved target becomes an implicit global typed by the value.
func checkAssignment(globals *GlobalEnv, env *localEnv, s *ast.AssignmentStatement) (ast.Statement, error) {
	value, err := checkExpression(globals, env, s.Value)
	if err != nil {
		return nil, err
	}
	valueType := typeOf(value)

	target, ok := env.lookup(s.Name)
	if !ok {
		target, ok = globals.Global(s.Name)
	}
	if !ok {
		if _, isFunction := globals.Function(s.Name); isFunction || s.Name == "print" {
			return nil, errorf(CodeInvalidAssignment, "cannot assign to function %s", s.Name)
		}
		if !env.topLevel {
			return nil, errorf(CodeUnresolvedName, "assignment to undeclared name %s", s.Name)
		}
		globals.declareGlobal(s.Name, valueType)
		target = valueType
	}
	if !assignable(valueType, target) {
		return nil, mismatch("assignment to "+s.Name, target, valueType)
	}

	out := ast.NewAssignmentStatement(s.Name, value)
	out.Annot = ast.Resolved(ast.TypeNone)
	return out, nil
}
