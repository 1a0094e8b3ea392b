package typechecker

import (
	"fmt"

	"pywasm/compiler-go/pkg/ast"
)

func checkBuiltin1(globals *GlobalEnv, env *localEnv, e *ast.Builtin1Call) (ast.Expression, error) {
	arg, err := checkExpression(globals, env, e.Argument)
	if err != nil {
		return nil, err
	}
	out := ast.NewBuiltin1Call(e.Name, arg)
	if e.Name == "print" {
		// print is type-preserving; codegen picks the import from this type.
		out.Annot = ast.Resolved(typeOf(arg))
		return out, nil
	}

	sig, err := lookupFunction(globals, e.Name, 1)
	if err != nil {
		return nil, err
	}
	param := sig.Params[0]
	if !assignable(typeOf(arg), param.Type) {
		return nil, mismatch(fmt.Sprintf("argument %s of %s", param.Name, e.Name), param.Type, typeOf(arg))
	}
	out.Annot = ast.Resolved(sig.Return)
	return out, nil
}

func checkBuiltin2(globals *GlobalEnv, env *localEnv, e *ast.Builtin2Call) (ast.Expression, error) {
	left, err := checkExpression(globals, env, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := checkExpression(globals, env, e.Right)
	if err != nil {
		return nil, err
	}
	sig, err := lookupFunction(globals, e.Name, 2)
	if err != nil {
		return nil, err
	}
	// Parameter types are checked into the argument types.
	for i, arg := range []ast.Expression{left, right} {
		param := sig.Params[i]
		if !assignable(param.Type, typeOf(arg)) {
			return nil, mismatch(fmt.Sprintf("argument %s of %s", param.Name, e.Name), param.Type, typeOf(arg))
		}
	}
	out := ast.NewBuiltin2Call(e.Name, left, right)
	out.Annot = ast.Resolved(sig.Return)
	return out, nil
}

func lookupFunction(globals *GlobalEnv, name string, arity int) (FunctionSignature, error) {
	sig, ok := globals.Function(name)
	if !ok {
		return FunctionSignature{}, errorf(CodeUnknownFunction, "unknown function %s", name)
	}
	if arity >= 0 && sig.Arity() != arity {
		return FunctionSignature{}, errorf(CodeArityMismatch, "%s expects %d arguments, got %d", name, sig.Arity(), arity)
	}
	return sig, nil
}

// checkCall types a general call after merging keyword arguments and
// parameter defaults into a purely positional argument list.
func checkCall(globals *GlobalEnv, env *localEnv, e *ast.FunctionCall) (ast.Expression, error) {
	sig, err := lookupFunction(globals, e.Name, -1)
	if err != nil {
		return nil, err
	}
	populated, err := PopulateArguments(sig, e)
	if err != nil {
		return nil, err
	}

	args := make([]ast.Expression, 0, len(populated))
	for i, raw := range populated {
		arg, err := checkExpression(globals, env, raw)
		if err != nil {
			return nil, err
		}
		param := sig.Params[i]
		if !assignable(typeOf(arg), param.Type) {
			return nil, mismatch(fmt.Sprintf("argument %s of %s", param.Name, e.Name), param.Type, typeOf(arg))
		}
		args = append(args, arg)
	}

	out := ast.NewFunctionCall(e.Name, args, nil)
	out.Annot = ast.Resolved(sig.Return)
	return out, nil
}

// PopulateArguments returns the positional argument list for call: the
// given positional arguments, then for each remaining parameter its keyword
// argument or, failing that, its default literal.
func PopulateArguments(sig FunctionSignature, call *ast.FunctionCall) ([]ast.Expression, error) {
	if len(call.Arguments) > len(sig.Params) {
		return nil, errorf(CodeArityMismatch, "%s expects %d arguments, got %d", sig.Name, len(sig.Params), len(call.Arguments))
	}

	keywords := make(map[string]ast.Expression, len(call.Keywords))
	for _, kw := range call.Keywords {
		index := -1
		for i, param := range sig.Params {
			if param.Name == kw.Name {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, errorf(CodeInvalidKeyword, "%s has no parameter named %s", sig.Name, kw.Name)
		}
		if index < len(call.Arguments) {
			return nil, errorf(CodeInvalidKeyword, "argument %s of %s given both by position and by keyword", kw.Name, sig.Name)
		}
		if _, dup := keywords[kw.Name]; dup {
			return nil, errorf(CodeInvalidKeyword, "argument %s of %s given more than once", kw.Name, sig.Name)
		}
		keywords[kw.Name] = kw.Value
	}

	args := make([]ast.Expression, 0, len(sig.Params))
	args = append(args, call.Arguments...)
	for _, param := range sig.Params[len(call.Arguments):] {
		if value, ok := keywords[param.Name]; ok {
			args = append(args, value)
			continue
		}
		if param.Default != nil {
			args = append(args, ast.NewLiteralExpression(*param.Default))
			continue
		}
		return nil, errorf(CodeArityMismatch, "missing argument %s in call to %s", param.Name, sig.Name)
	}
	return args, nil
}
