package typechecker

import (
	"fmt"

	"pywasm/compiler-go/pkg/ast"
)

func checkExpression(globals *GlobalEnv, env *localEnv, expr ast.Expression) (ast.Expression, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpression:
		typ, err := literalType(e.Value)
		if err != nil {
			return nil, err
		}
		out := ast.NewLiteralExpression(e.Value)
		out.Annot = ast.Resolved(typ)
		return out, nil
	case *ast.Identifier:
		typ, err := resolveName(globals, env, e.Name)
		if err != nil {
			return nil, err
		}
		out := ast.NewIdentifier(e.Name)
		out.Annot = ast.Resolved(typ)
		return out, nil
	case *ast.BinaryExpression:
		return checkBinary(globals, env, e)
	case *ast.UnaryExpression:
		operand, err := checkExpression(globals, env, e.Operand)
		if err != nil {
			return nil, err
		}
		var want ast.Type
		switch e.Operator {
		case ast.UnaryNegate:
			want = ast.TypeNum
		case ast.UnaryNot:
			want = ast.TypeBool
		default:
			return nil, errorf(CodeMalformedNode, "unknown unary operator %q", e.Operator)
		}
		if typeOf(operand) != want {
			return nil, mismatch(fmt.Sprintf("operand of %s", e.Operator), want, typeOf(operand))
		}
		out := ast.NewUnaryExpression(e.Operator, operand)
		out.Annot = ast.Resolved(want)
		return out, nil
	case *ast.Builtin1Call:
		return checkBuiltin1(globals, env, e)
	case *ast.Builtin2Call:
		return checkBuiltin2(globals, env, e)
	case *ast.FunctionCall:
		return checkCall(globals, env, e)
	case nil:
		return nil, errorf(CodeMalformedNode, "missing expression")
	default:
		return nil, errorf(CodeMalformedNode, "unsupported expression %T", expr)
	}
}

func resolveName(globals *GlobalEnv, env *localEnv, name string) (ast.Type, error) {
	if typ, ok := env.lookup(name); ok {
		return typ, nil
	}
	if typ, ok := globals.Global(name); ok {
		return typ, nil
	}
	if _, ok := globals.Function(name); ok {
		return "", errorf(CodeUnresolvedName, "function %s cannot be used as a value", name)
	}
	return "", errorf(CodeUnresolvedName, "unresolved name %s", name)
}

func checkBinary(globals *GlobalEnv, env *localEnv, e *ast.BinaryExpression) (ast.Expression, error) {
	left, err := checkExpression(globals, env, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := checkExpression(globals, env, e.Right)
	if err != nil {
		return nil, err
	}
	lt, rt := typeOf(left), typeOf(right)

	var result ast.Type
	switch e.Operator.Class() {
	case ast.ClassArithmetic:
		if err := requireNum(e.Operator, lt, rt); err != nil {
			return nil, err
		}
		result = ast.TypeNum
	case ast.ClassRelational:
		if err := requireNum(e.Operator, lt, rt); err != nil {
			return nil, err
		}
		result = ast.TypeBool
	case ast.ClassEquality:
		if lt != rt {
			return nil, errorf(CodeTypeMismatch, "operands of %s must have the same type, got %s and %s", e.Operator, lt, rt)
		}
		result = ast.TypeBool
	case ast.ClassIdentity:
		// Decided from the operand types; FoldIdentity turns it into a constant.
		result = ast.TypeBool
	default:
		return nil, errorf(CodeMalformedNode, "unknown binary operator %q", e.Operator)
	}

	out := ast.NewBinaryExpression(e.Operator, left, right)
	out.Annot = ast.Resolved(result)
	return out, nil
}

func requireNum(op ast.BinaryOperator, lt, rt ast.Type) error {
	if lt != ast.TypeNum {
		return mismatch(fmt.Sprintf("left operand of %s", op), ast.TypeNum, lt)
	}
	if rt != ast.TypeNum {
		return mismatch(fmt.Sprintf("right operand of %s", op), ast.TypeNum, rt)
	}
	return nil
}
